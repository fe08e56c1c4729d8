package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/GolfClubAuctions/internal/events"
	"github.com/atinyakov/GolfClubAuctions/internal/metrics"
	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 6
	tokenIssuer    = "golfclub-auctions"
)

// UserRepository defines the persistence operations for accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// SessionStore keeps server-side sessions keyed by the token id.
type SessionStore interface {
	Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

// AuthMetrics counts auth state transitions.
type AuthMetrics interface {
	AuthTransition(state string)
}

// AuthService signs users up and in, and resolves session tokens back to
// identities.
type AuthService struct {
	users      UserRepository
	sessions   SessionStore
	secret     []byte
	ttl        time.Duration
	events     Publisher
	metrics    AuthMetrics
	log        *zap.Logger
	bcryptCost int
	now        func() time.Time
}

// NewAuthService constructs an AuthService signing HS256 tokens with secret.
func NewAuthService(users UserRepository, sessions SessionStore, secret []byte, ttl time.Duration, pub Publisher, m AuthMetrics, log *zap.Logger) *AuthService {
	if pub == nil {
		pub = events.Nop{}
	}
	if m == nil {
		m = metrics.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		secret:     secret,
		ttl:        ttl,
		events:     pub,
		metrics:    m,
		log:        log,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// SessionTTL is the lifetime of tokens issued by the service.
func (s *AuthService) SessionTTL() time.Duration { return s.ttl }

// SignUp registers a non-admin account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, email, password, displayName string) (string, *models.Identity, error) {
	email = models.NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return "", nil, fmt.Errorf("%w: a valid email is required", models.ErrInvalidCredentials)
	}
	if len(password) < minPasswordLen {
		return "", nil, fmt.Errorf("%w: password must be at least %d characters", models.ErrInvalidCredentials, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", nil, fmt.Errorf("SignUp: hash password: %w", err)
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return "", nil, err
	}
	s.transition(ctx, u.ID, events.StateSignedUp)

	return s.signIn(ctx, u)
}

// SignIn verifies the password and opens a new session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, *models.Identity, error) {
	u, err := s.users.GetUserByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return "", nil, models.ErrInvalidCredentials
	}
	return s.signIn(ctx, u)
}

func (s *AuthService) signIn(ctx context.Context, u *models.User) (string, *models.Identity, error) {
	sessionID := uuid.NewString()
	if err := s.sessions.Save(ctx, sessionID, u.ID, s.ttl); err != nil {
		return "", nil, fmt.Errorf("SignIn: %w", err)
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Subject:   u.ID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("SignIn: sign token: %w", err)
	}

	s.transition(ctx, u.ID, events.StateSignedIn)
	id := u.Identity()
	return token, &id, nil
}

func (s *AuthService) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrUnauthenticated, err)
	}
	return claims, nil
}

// Resolve returns the identity behind a token. The token must verify and
// its session must still exist.
func (s *AuthService) Resolve(ctx context.Context, token string) (*models.Identity, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	userID, err := s.sessions.Lookup(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if userID != claims.Subject {
		return nil, models.ErrUnauthenticated
	}
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			return nil, models.ErrUnauthenticated
		}
		return nil, err
	}
	id := u.Identity()
	return &id, nil
}

// SignOut ends the session behind token. Unverifiable tokens have no
// session to end and are ignored.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("SignOut: %w", err)
	}
	s.transition(ctx, claims.Subject, events.StateSignedOut)
	return nil
}

func (s *AuthService) transition(ctx context.Context, userID, state string) {
	s.metrics.AuthTransition(state)
	ev := events.AuthEvent{UserID: userID, State: state, At: s.now().UTC()}
	if err := s.events.Publish(ctx, events.SubjectAuthState, ev); err != nil {
		s.log.Warn("failed to publish auth event", zap.String("state", state), zap.Error(err))
	}
}
