package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"github.com/go-redis/redismock/v9"
)

func TestRedisSessionStore_SaveLookupDelete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisSessionStore(client)
	ctx := context.Background()

	mock.ExpectSet("session:s1", "u1", time.Hour).SetVal("OK")
	mock.ExpectGet("session:s1").SetVal("u1")
	mock.ExpectDel("session:s1").SetVal(1)

	if err := store.Save(ctx, "s1", "u1", time.Hour); err != nil {
		t.Fatalf("Save: %v", err)
	}
	userID, err := store.Lookup(ctx, "s1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if userID != "u1" {
		t.Errorf("Lookup = %q; want u1", userID)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRedisSessionStore_LookupExpired(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisSessionStore(client)

	mock.ExpectGet("session:gone").RedisNil()

	_, err := store.Lookup(context.Background(), "gone")
	if !errors.Is(err, models.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRedisSessionStore_SaveError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisSessionStore(client)

	mock.ExpectSet("session:s2", "u2", time.Minute).SetErr(errors.New("READONLY"))

	if err := store.Save(context.Background(), "s2", "u2", time.Minute); err == nil {
		t.Error("expected error, got nil")
	}
}
