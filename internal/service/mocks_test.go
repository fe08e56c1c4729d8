package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"github.com/stretchr/testify/mock"
)

type mockListingRepo struct {
	mock.Mock
}

func (m *mockListingRepo) Insert(ctx context.Context, l *models.Listing) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockListingRepo) FindAll(ctx context.Context) ([]models.Listing, error) {
	args := m.Called(ctx)
	listings, _ := args.Get(0).([]models.Listing)
	return listings, args.Error(1)
}

func (m *mockListingRepo) FindByType(ctx context.Context, clubType models.ClubType) ([]models.Listing, error) {
	args := m.Called(ctx, clubType)
	listings, _ := args.Get(0).([]models.Listing)
	return listings, args.Error(1)
}

func (m *mockListingRepo) FindByOwner(ctx context.Context, userID string) ([]models.Listing, error) {
	args := m.Called(ctx, userID)
	listings, _ := args.Get(0).([]models.Listing)
	return listings, args.Error(1)
}

func (m *mockListingRepo) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(*models.Listing)
	return l, args.Error(1)
}

func (m *mockListingRepo) Update(ctx context.Context, l *models.Listing) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockListingRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// memListingRepo is an in-memory store that assigns ids and strictly
// increasing creation times.
type memListingRepo struct {
	mu    sync.Mutex
	seq   int
	clock time.Time
	rows  map[string]models.Listing
}

func newMemListingRepo() *memListingRepo {
	return &memListingRepo{
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		rows:  make(map[string]models.Listing),
	}
}

func (r *memListingRepo) Insert(_ context.Context, l *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.clock = r.clock.Add(time.Second)
	l.ID = "l" + strconv.Itoa(r.seq)
	l.CreatedAt, l.UpdatedAt = r.clock, r.clock
	r.rows[l.ID] = *l
	return nil
}

func (r *memListingRepo) sorted(keep func(models.Listing) bool) []models.Listing {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Listing, 0, len(r.rows))
	for _, l := range r.rows {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memListingRepo) FindAll(context.Context) ([]models.Listing, error) {
	return r.sorted(func(models.Listing) bool { return true }), nil
}

func (r *memListingRepo) FindByType(_ context.Context, t models.ClubType) ([]models.Listing, error) {
	return r.sorted(func(l models.Listing) bool { return l.ClubType == t }), nil
}

func (r *memListingRepo) FindByOwner(_ context.Context, userID string) ([]models.Listing, error) {
	return r.sorted(func(l models.Listing) bool { return l.Owner.UserID == userID }), nil
}

func (r *memListingRepo) FindByID(_ context.Context, id string) (*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.rows[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &l, nil
}

func (r *memListingRepo) Update(_ context.Context, l *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[l.ID]; !ok {
		return models.ErrNotFound
	}
	r.clock = r.clock.Add(time.Second)
	l.UpdatedAt = r.clock
	r.rows[l.ID] = *l
	return nil
}

func (r *memListingRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

type countingMetrics struct {
	mutations map[string]int
	filtered  []int
	auth      []string
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{mutations: map[string]int{}}
}

func (c *countingMetrics) ListingMutation(op string)   { c.mutations[op]++ }
func (c *countingMetrics) FilterApplied(n int)         { c.filtered = append(c.filtered, n) }
func (c *countingMetrics) AuthTransition(state string) { c.auth = append(c.auth, state) }
