package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const listingsCollection = "listings"

type ownerDocument struct {
	UserID      string `bson:"user_id"`
	Email       string `bson:"email"`
	DisplayName string `bson:"display_name"`
}

type listingDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ClubName    string             `bson:"club_name"`
	Brand       string             `bson:"brand,omitempty"`
	ClubType    string             `bson:"club_type"`
	Condition   string             `bson:"condition"`
	Price       float64            `bson:"price"`
	Description string             `bson:"description"`
	ImageURL    string             `bson:"image_url"`
	Owner       ownerDocument      `bson:"owner"`
	CreatedAt   primitive.DateTime `bson:"created_at"`
	UpdatedAt   primitive.DateTime `bson:"updated_at"`
}

func toListing(d *listingDocument) models.Listing {
	return models.Listing{
		ID:          d.ID.Hex(),
		ClubName:    d.ClubName,
		Brand:       d.Brand,
		ClubType:    models.ClubType(d.ClubType),
		Condition:   models.Condition(d.Condition),
		Price:       d.Price,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		Owner: models.Owner{
			UserID:      d.Owner.UserID,
			Email:       d.Owner.Email,
			DisplayName: d.Owner.DisplayName,
		},
		CreatedAt: d.CreatedAt.Time().UTC(),
		UpdatedAt: d.UpdatedAt.Time().UTC(),
	}
}

// newestFirst orders by creation time, then by _id so listings stamped in
// the same millisecond keep a stable order.
var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// ListingRepository stores listings as documents in the "listings" collection.
type ListingRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewListingRepository creates a ListingRepository on db.
func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{coll: db.Collection(listingsCollection), now: time.Now}
}

// Insert stores a new listing, assigning an ObjectID and the creation time.
func (r *ListingRepository) Insert(ctx context.Context, l *models.Listing) error {
	now := primitive.NewDateTimeFromTime(r.now())
	doc := listingDocument{
		ID:          primitive.NewObjectID(),
		ClubName:    l.ClubName,
		Brand:       l.Brand,
		ClubType:    string(l.ClubType),
		Condition:   string(l.Condition),
		Price:       l.Price,
		Description: l.Description,
		ImageURL:    l.ImageURL,
		Owner: ownerDocument{
			UserID:      l.Owner.UserID,
			Email:       l.Owner.Email,
			DisplayName: l.Owner.DisplayName,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("InsertListing: %w", err)
	}
	l.ID = doc.ID.Hex()
	l.CreatedAt = now.Time().UTC()
	l.UpdatedAt = l.CreatedAt
	return nil
}

func (r *ListingRepository) find(ctx context.Context, op string, filter bson.M) ([]models.Listing, error) {
	opts := options.Find().SetSort(newestFirst)
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	var docs []listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	listings := make([]models.Listing, 0, len(docs))
	for i := range docs {
		listings = append(listings, toListing(&docs[i]))
	}
	return listings, nil
}

// FindAll returns every listing, newest first.
func (r *ListingRepository) FindAll(ctx context.Context) ([]models.Listing, error) {
	return r.find(ctx, "FindAllListings", bson.M{})
}

// FindByType returns listings of exactly clubType, newest first.
func (r *ListingRepository) FindByType(ctx context.Context, clubType models.ClubType) ([]models.Listing, error) {
	return r.find(ctx, "FindListingsByType", bson.M{"club_type": string(clubType)})
}

// FindByOwner returns the listings created by userID, newest first.
func (r *ListingRepository) FindByOwner(ctx context.Context, userID string) ([]models.Listing, error) {
	return r.find(ctx, "FindListingsByOwner", bson.M{"owner.user_id": userID})
}

// FindByID returns a single listing. Malformed and unknown ids are both
// reported as models.ErrNotFound.
func (r *ListingRepository) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("FindListingByID: %w", models.ErrNotFound)
	}
	var doc listingDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("FindListingByID: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("FindListingByID: %w", err)
	}
	l := toListing(&doc)
	return &l, nil
}

// Update overwrites the mutable fields of a listing and refreshes
// updated_at. The owner sub-document is never written.
func (r *ListingRepository) Update(ctx context.Context, l *models.Listing) error {
	oid, err := primitive.ObjectIDFromHex(l.ID)
	if err != nil {
		return fmt.Errorf("UpdateListing: %w", models.ErrNotFound)
	}
	now := primitive.NewDateTimeFromTime(r.now())
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"club_name":   l.ClubName,
		"brand":       l.Brand,
		"club_type":   string(l.ClubType),
		"condition":   string(l.Condition),
		"price":       l.Price,
		"description": l.Description,
		"image_url":   l.ImageURL,
		"updated_at":  now,
	}})
	if err != nil {
		return fmt.Errorf("UpdateListing: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("UpdateListing: %w", models.ErrNotFound)
	}
	l.UpdatedAt = now.Time().UTC()
	return nil
}

// Delete permanently removes a listing.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("DeleteListing: %w", models.ErrNotFound)
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("DeleteListing: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("DeleteListing: %w", models.ErrNotFound)
	}
	return nil
}
