package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// RedisSessionStore keeps signed-in sessions in Redis. Each key maps a
// session id to a user id and expires with the session.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewRedisSessionStore creates a RedisSessionStore on an existing client.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// Save records a session for userID that expires after ttl.
func (s *RedisSessionStore) Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKeyPrefix+sessionID, userID, ttl).Err(); err != nil {
		return fmt.Errorf("SaveSession: %w", err)
	}
	return nil
}

// Lookup returns the user id of a live session. Unknown or expired sessions
// are reported as models.ErrUnauthenticated.
func (s *RedisSessionStore) Lookup(ctx context.Context, sessionID string) (string, error) {
	userID, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("LookupSession: %w", models.ErrUnauthenticated)
	}
	if err != nil {
		return "", fmt.Errorf("LookupSession: %w", err)
	}
	return userID, nil
}

// Delete ends a session. Deleting an unknown session is not an error.
func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("DeleteSession: %w", err)
	}
	return nil
}
