package service

import (
	"context"

	"github.com/atinyakov/GolfClubAuctions/internal/metrics"
	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"github.com/atinyakov/GolfClubAuctions/internal/tracer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ListingReader is the subset of the listing store the filter needs.
type ListingReader interface {
	ListAll(ctx context.Context) ([]models.Listing, error)
	ListByType(ctx context.Context, clubType models.ClubType) ([]models.Listing, error)
}

// FilterMetrics observes filter result sizes.
type FilterMetrics interface {
	FilterApplied(n int)
}

// FilterEngine narrows the listing store by club type and price bucket.
type FilterEngine struct {
	store   ListingReader
	metrics FilterMetrics
}

// NewFilterEngine returns an engine reading from store. A nil m disables
// result-size metrics.
func NewFilterEngine(store ListingReader, m FilterMetrics) *FilterEngine {
	if m == nil {
		m = metrics.Nop{}
	}
	return &FilterEngine{store: store, metrics: m}
}

// Apply queries by type in the store, then drops listings outside the price
// bucket while keeping the store's newest-first order. On failure the slice
// is empty and the error carries the store's reason.
func (e *FilterEngine) Apply(ctx context.Context, c models.FilterCriteria) ([]models.Listing, error) {
	ctx, span := otel.Tracer(tracer.Name).Start(ctx, "FilterEngine.Apply")
	defer span.End()
	span.SetAttributes(
		attribute.String("filter.club_type", c.ClubType),
		attribute.String("filter.price", string(c.Bucket)),
	)

	var (
		listings []models.Listing
		err      error
	)
	if c.AllClubTypes() {
		listings, err = e.store.ListAll(ctx)
	} else {
		listings, err = e.store.ListByType(ctx, models.ClubType(c.ClubType))
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return []models.Listing{}, err
	}

	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if c.Bucket.Contains(l.Price) {
			out = append(out, l)
		}
	}
	e.metrics.FilterApplied(len(out))
	span.SetAttributes(attribute.Int("filter.results", len(out)))
	return out, nil
}
