package service

import (
	"context"
	"errors"
	"testing"

	"github.com/atinyakov/GolfClubAuctions/internal/events"
	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	alice = &models.Identity{UserID: "u-alice", Email: "alice@golf.test", DisplayName: "Alice"}
	bob   = &models.Identity{UserID: "u-bob", Email: "bob@golf.test"}
	admin = &models.Identity{UserID: "u-admin", Email: "admin@golf.test", IsAdmin: true}
)

func putter(price float64) models.Listing {
	return models.Listing{
		ClubName:    "Scotty Cameron Newport 2",
		Brand:       "Titleist",
		ClubType:    models.Putter,
		Condition:   models.Excellent,
		Price:       price,
		Description: "Rolls true.",
	}
}

func TestListingService_CreateStampsOwner(t *testing.T) {
	repo := &mockListingRepo{}
	rec := &events.Recorder{}
	m := newCountingMetrics()
	svc := NewListingService(repo, rec, m, nil)

	repo.On("Insert", mock.Anything, mock.AnythingOfType("*models.Listing")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Listing).ID = "new-id" }).
		Return(nil).Once()

	in := putter(180)
	in.Owner = models.Owner{UserID: "spoofed"}
	got, err := svc.Create(context.Background(), in, bob)
	require.NoError(t, err)

	assert.Equal(t, "new-id", got.ID)
	assert.Equal(t, models.Owner{UserID: "u-bob", Email: "bob@golf.test", DisplayName: "bob@golf.test"}, got.Owner)
	assert.Equal(t, "assets/club-images/putter.svg", got.ImageURL)
	assert.Equal(t, []string{events.SubjectListingCreated}, rec.Subjects())
	assert.Equal(t, 1, m.mutations["create"])
	repo.AssertExpectations(t)
}

func TestListingService_CreateRequiresOwner(t *testing.T) {
	repo := &mockListingRepo{}
	svc := NewListingService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), putter(100), nil)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestListingService_CreateValidates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Listing)
	}{
		{"blank name", func(l *models.Listing) { l.ClubName = "   " }},
		{"unknown type", func(l *models.Listing) { l.ClubType = "Chipper" }},
		{"unknown condition", func(l *models.Listing) { l.Condition = "Mint" }},
		{"zero price", func(l *models.Listing) { l.Price = 0 }},
		{"negative price", func(l *models.Listing) { l.Price = -5 }},
		{"price rounds to zero", func(l *models.Listing) { l.Price = 0.001 }},
		{"price above column range", func(l *models.Listing) { l.Price = 1e8 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockListingRepo{}
			svc := NewListingService(repo, nil, nil, nil)
			l := putter(120)
			tt.mutate(&l)

			_, err := svc.Create(context.Background(), l, alice)
			assert.ErrorIs(t, err, models.ErrInvalidListing)
			repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
		})
	}
}

func TestListingService_CreateRejected(t *testing.T) {
	repo := &mockListingRepo{}
	svc := NewListingService(repo, nil, nil, nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("InsertListing: permission denied"))

	_, err := svc.Create(context.Background(), putter(90), alice)
	assert.ErrorIs(t, err, models.ErrRejected)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestListingService_ListFailureShape(t *testing.T) {
	repo := &mockListingRepo{}
	svc := NewListingService(repo, nil, nil, nil)
	boom := errors.New("FindAllListings: connection refused")
	repo.On("FindAll", mock.Anything).Return(nil, boom)
	repo.On("FindByType", mock.Anything, models.Wedge).Return(nil, boom)
	repo.On("FindByOwner", mock.Anything, "u-alice").Return(nil, boom)

	calls := map[string]func() ([]models.Listing, error){
		"all":   func() ([]models.Listing, error) { return svc.ListAll(context.Background()) },
		"type":  func() ([]models.Listing, error) { return svc.ListByType(context.Background(), models.Wedge) },
		"owner": func() ([]models.Listing, error) { return svc.ListByOwner(context.Background(), "u-alice") },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			got, err := call()
			assert.NotNil(t, got)
			assert.Empty(t, got)
			assert.ErrorIs(t, err, models.ErrUnavailable)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestListingService_CreateThenListAll(t *testing.T) {
	svc := NewListingService(newMemListingRepo(), nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, putter(50), alice)
	require.NoError(t, err)
	created, err := svc.Create(ctx, putter(75), alice)
	require.NoError(t, err)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, created.ID, all[0].ID)
	assert.Equal(t, "u-alice", all[0].Owner.UserID)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt))
}

func TestListingService_DeleteOne(t *testing.T) {
	tests := []struct {
		name      string
		requester *models.Identity
		id        string
		wantErr   error
	}{
		{"anonymous", nil, "l1", models.ErrUnauthenticated},
		{"missing listing", alice, "nope", models.ErrNotFound},
		{"not the owner", bob, "l1", models.ErrForbidden},
		{"owner", alice, "l1", nil},
		{"admin", admin, "l1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemListingRepo()
			rec := &events.Recorder{}
			svc := NewListingService(repo, rec, nil, nil)
			ctx := context.Background()
			_, err := svc.Create(ctx, putter(100), alice)
			require.NoError(t, err)

			err = svc.DeleteOne(ctx, tt.id, tt.requester)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				all, _ := svc.ListAll(ctx)
				assert.Len(t, all, 1, "listing must survive a failed delete")
				return
			}
			require.NoError(t, err)
			all, _ := svc.ListAll(ctx)
			assert.Empty(t, all)
			assert.Equal(t, []string{events.SubjectListingCreated, events.SubjectListingDeleted}, rec.Subjects())
		})
	}
}

func TestListingService_DeleteStoreFailure(t *testing.T) {
	repo := &mockListingRepo{}
	svc := NewListingService(repo, nil, nil, nil)
	l := putter(100)
	l.ID = "l1"
	l.Owner.UserID = alice.UserID
	repo.On("FindByID", mock.Anything, "l1").Return(&l, nil)
	repo.On("Delete", mock.Anything, "l1").Return(errors.New("DeleteListing: read-only replica"))

	err := svc.DeleteOne(context.Background(), "l1", alice)
	assert.ErrorIs(t, err, models.ErrRejected)
}

func TestListingService_Update(t *testing.T) {
	repo := newMemListingRepo()
	svc := NewListingService(repo, nil, nil, nil)
	ctx := context.Background()
	created, err := svc.Create(ctx, putter(100), alice)
	require.NoError(t, err)

	price := 95.0
	wedge := models.Wedge
	got, err := svc.Update(ctx, created.ID, models.ListingFields{Price: &price, ClubType: &wedge}, alice)
	require.NoError(t, err)
	assert.Equal(t, 95.0, got.Price)
	assert.Equal(t, "assets/club-images/wedge.svg", got.ImageURL)
	assert.Equal(t, alice.UserID, got.Owner.UserID)
	assert.True(t, got.UpdatedAt.After(created.CreatedAt))

	_, err = svc.Update(ctx, created.ID, models.ListingFields{Price: &price}, bob)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = svc.Update(ctx, created.ID, models.ListingFields{}, alice)
	assert.ErrorIs(t, err, models.ErrInvalidListing)

	bad := -1.0
	_, err = svc.Update(ctx, created.ID, models.ListingFields{Price: &bad}, admin)
	assert.ErrorIs(t, err, models.ErrInvalidListing)
}

func TestListingService_PublishFailureIsNotReturned(t *testing.T) {
	rec := &events.Recorder{Err: errors.New("nats down")}
	svc := NewListingService(newMemListingRepo(), rec, nil, nil)

	_, err := svc.Create(context.Background(), putter(40), alice)
	assert.NoError(t, err)
}

func TestListingService_CreateRoundsPriceToCents(t *testing.T) {
	svc := NewListingService(newMemListingRepo(), nil, nil, nil)
	engine := NewFilterEngine(svc, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, putter(99.996), alice)
	require.NoError(t, err)
	assert.Equal(t, 100.0, created.Price)

	kept, err := svc.Create(ctx, putter(99.994), alice)
	require.NoError(t, err)
	assert.Equal(t, 99.99, kept.Price)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, kept.Price, all[0].Price)
	assert.Equal(t, created.Price, all[1].Price)

	under, err := engine.Apply(ctx, models.FilterCriteria{Bucket: models.Under100})
	require.NoError(t, err)
	require.Len(t, under, 1)
	assert.Equal(t, kept.ID, under[0].ID)

	mid, err := engine.Apply(ctx, models.FilterCriteria{Bucket: models.From100To250})
	require.NoError(t, err)
	require.Len(t, mid, 1)
	assert.Equal(t, created.ID, mid[0].ID)
}

func TestListingService_CreateAcceptsMaxPrice(t *testing.T) {
	svc := NewListingService(newMemListingRepo(), nil, nil, nil)

	got, err := svc.Create(context.Background(), putter(MaxPrice), alice)
	require.NoError(t, err)
	assert.Equal(t, MaxPrice, got.Price)
}
