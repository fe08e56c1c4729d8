// Package service holds the marketplace business logic. Services validate
// input, enforce ownership and map repository failures onto the error
// taxonomy in models.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/atinyakov/GolfClubAuctions/internal/events"
	"github.com/atinyakov/GolfClubAuctions/internal/metrics"
	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"go.uber.org/zap"
)

// ListingRepository is implemented by the postgres and mongo listing stores.
type ListingRepository interface {
	Insert(ctx context.Context, l *models.Listing) error
	FindAll(ctx context.Context) ([]models.Listing, error)
	FindByType(ctx context.Context, clubType models.ClubType) ([]models.Listing, error)
	FindByOwner(ctx context.Context, userID string) ([]models.Listing, error)
	FindByID(ctx context.Context, id string) (*models.Listing, error)
	Update(ctx context.Context, l *models.Listing) error
	Delete(ctx context.Context, id string) error
}

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// ListingMetrics counts successful listing writes.
type ListingMetrics interface {
	ListingMutation(op string)
}

// ListingService is the listing store used by handlers and the filter engine.
type ListingService struct {
	repo    ListingRepository
	events  Publisher
	metrics ListingMetrics
	log     *zap.Logger
	now     func() time.Time
}

// NewListingService wires a ListingService. Nil events, metrics or log fall
// back to no-op implementations.
func NewListingService(repo ListingRepository, pub Publisher, m ListingMetrics, log *zap.Logger) *ListingService {
	if pub == nil {
		pub = events.Nop{}
	}
	if m == nil {
		m = metrics.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ListingService{repo: repo, events: pub, metrics: m, log: log, now: time.Now}
}

// MaxPrice is the largest price the listings table can hold.
const MaxPrice = 99_999_999.99

// roundCents rounds a price to whole cents, the precision prices are stored
// at.
func roundCents(p float64) float64 {
	return math.Round(p*100) / 100
}

// validateListing checks the required fields and rounds the price to cents
// so that the stored value matches the one returned to the caller.
func validateListing(l *models.Listing) error {
	if !math.IsNaN(l.Price) && !math.IsInf(l.Price, 0) {
		l.Price = roundCents(l.Price)
	}
	switch {
	case strings.TrimSpace(l.ClubName) == "":
		return fmt.Errorf("%w: club name is required", models.ErrInvalidListing)
	case !l.ClubType.Valid():
		return fmt.Errorf("%w: unknown club type %q", models.ErrInvalidListing, l.ClubType)
	case !l.Condition.Valid():
		return fmt.Errorf("%w: unknown condition %q", models.ErrInvalidListing, l.Condition)
	case math.IsNaN(l.Price) || math.IsInf(l.Price, 0) || l.Price <= 0:
		return fmt.Errorf("%w: price must be at least $0.01", models.ErrInvalidListing)
	case l.Price > MaxPrice:
		return fmt.Errorf("%w: price must not exceed %s", models.ErrInvalidListing, strconv.FormatFloat(MaxPrice, 'f', 2, 64))
	}
	return nil
}

// Create stores a new listing owned by owner. The owner identity and the
// stock image are stamped here; the id and creation time come from the
// repository.
func (s *ListingService) Create(ctx context.Context, l models.Listing, owner *models.Identity) (*models.Listing, error) {
	if owner == nil || owner.UserID == "" {
		return nil, models.ErrUnauthenticated
	}
	l.ClubName = strings.TrimSpace(l.ClubName)
	l.Brand = strings.TrimSpace(l.Brand)
	if err := validateListing(&l); err != nil {
		return nil, err
	}

	l.ID = ""
	l.Owner = models.Owner{
		UserID:      owner.UserID,
		Email:       owner.Email,
		DisplayName: owner.Name(),
	}
	if l.ImageURL == "" {
		l.ImageURL = l.ClubType.StockImage()
	}

	if err := s.repo.Insert(ctx, &l); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrRejected, err)
	}

	s.metrics.ListingMutation("create")
	s.publish(ctx, events.SubjectListingCreated, l, owner.UserID)
	return &l, nil
}

func unavailable(err error) ([]models.Listing, error) {
	return []models.Listing{}, fmt.Errorf("%w: %w", models.ErrUnavailable, err)
}

// ListAll returns every listing, newest first.
func (s *ListingService) ListAll(ctx context.Context) ([]models.Listing, error) {
	listings, err := s.repo.FindAll(ctx)
	if err != nil {
		return unavailable(err)
	}
	return listings, nil
}

// ListByType returns the listings whose type equals clubType, newest first.
func (s *ListingService) ListByType(ctx context.Context, clubType models.ClubType) ([]models.Listing, error) {
	listings, err := s.repo.FindByType(ctx, clubType)
	if err != nil {
		return unavailable(err)
	}
	return listings, nil
}

// ListByOwner returns the listings created by userID, newest first.
func (s *ListingService) ListByOwner(ctx context.Context, userID string) ([]models.Listing, error) {
	listings, err := s.repo.FindByOwner(ctx, userID)
	if err != nil {
		return unavailable(err)
	}
	return listings, nil
}

// Get returns one listing by id.
func (s *ListingService) Get(ctx context.Context, id string) (*models.Listing, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", models.ErrUnavailable, err)
	}
	return l, nil
}

// authorize loads the listing and checks that requester may modify it.
func (s *ListingService) authorize(ctx context.Context, id string, requester *models.Identity) (*models.Listing, error) {
	if requester == nil || requester.UserID == "" {
		return nil, models.ErrUnauthenticated
	}
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.OwnedBy(*requester) && !requester.IsAdmin {
		return nil, models.ErrForbidden
	}
	return l, nil
}

// DeleteOne removes the listing if requester owns it or is an admin.
func (s *ListingService) DeleteOne(ctx context.Context, id string, requester *models.Identity) error {
	l, err := s.authorize(ctx, id, requester)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %w", models.ErrRejected, err)
	}

	s.metrics.ListingMutation("delete")
	s.publish(ctx, events.SubjectListingDeleted, *l, requester.UserID)
	return nil
}

// Update merges fields into the listing. The owner never changes. When the
// club type changes and the listing still shows the old stock image, the
// image follows the new type.
func (s *ListingService) Update(ctx context.Context, id string, fields models.ListingFields, requester *models.Identity) (*models.Listing, error) {
	if fields.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", models.ErrInvalidListing)
	}
	l, err := s.authorize(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	oldImage := l.ClubType.StockImage()
	owner := l.Owner
	fields.Apply(l)
	l.Owner = owner
	l.ClubName = strings.TrimSpace(l.ClubName)
	if err := validateListing(l); err != nil {
		return nil, err
	}
	if l.ImageURL == "" || l.ImageURL == oldImage {
		l.ImageURL = l.ClubType.StockImage()
	}

	if err := s.repo.Update(ctx, l); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", models.ErrRejected, err)
	}

	s.metrics.ListingMutation("update")
	s.publish(ctx, events.SubjectListingUpdated, *l, requester.UserID)
	return l, nil
}

func (s *ListingService) publish(ctx context.Context, subject string, l models.Listing, actor string) {
	ev := events.ListingEvent{
		ListingID: l.ID,
		ClubType:  string(l.ClubType),
		Price:     l.Price,
		OwnerID:   l.Owner.UserID,
		ActorID:   actor,
		At:        s.now().UTC(),
	}
	if err := s.events.Publish(ctx, subject, ev); err != nil {
		s.log.Warn("failed to publish listing event",
			zap.String("subject", subject),
			zap.String("listing_id", l.ID),
			zap.Error(err),
		)
	}
}
