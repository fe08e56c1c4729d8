// Package models defines the core data structures for users, listings and
// seller messages.
package models

import (
	"strings"
	"time"
)

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Email is the login address of the user.
	Email string
	// DisplayName is the name shown to other users.
	DisplayName string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
	// IsAdmin grants delete and update rights over every listing.
	IsAdmin bool
	// CreatedAt is the registration time.
	CreatedAt time.Time
}

// Identity returns the public identity of the user.
func (u User) Identity() Identity {
	return Identity{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		IsAdmin:     u.IsAdmin,
	}
}

// NormalizeEmail returns the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Identity is the authenticated principal that owns listings and performs
// mutations.
type Identity struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin,omitempty"`
}

// Name returns the display name, falling back to the email.
func (i Identity) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.Email
}

// Owner is the identity stamped on a listing at creation time.
type Owner struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Listing is a single club offered for sale.
type Listing struct {
	// ID is assigned by the store on creation.
	ID        string    `json:"id"`
	ClubName  string    `json:"club_name"`
	Brand     string    `json:"brand,omitempty"`
	ClubType  ClubType  `json:"club_type"`
	Condition Condition `json:"condition"`
	Price     float64   `json:"price"`
	// Description is free text supplied by the seller.
	Description string `json:"description"`
	// ImageURL defaults to the stock image for ClubType.
	ImageURL string `json:"image_url"`
	// Owner is immutable after creation.
	Owner     Owner     `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnedBy reports whether the identity created the listing.
func (l Listing) OwnedBy(id Identity) bool {
	return id.UserID != "" && l.Owner.UserID == id.UserID
}

// ListingFields holds a partial update. Nil fields are left unchanged.
type ListingFields struct {
	ClubName    *string    `json:"club_name,omitempty"`
	Brand       *string    `json:"brand,omitempty"`
	ClubType    *ClubType  `json:"club_type,omitempty"`
	Condition   *Condition `json:"condition,omitempty"`
	Price       *float64   `json:"price,omitempty"`
	Description *string    `json:"description,omitempty"`
}

// Empty reports whether no field is set.
func (f ListingFields) Empty() bool {
	return f.ClubName == nil && f.Brand == nil && f.ClubType == nil &&
		f.Condition == nil && f.Price == nil && f.Description == nil
}

// Apply merges the set fields into l.
func (f ListingFields) Apply(l *Listing) {
	if f.ClubName != nil {
		l.ClubName = *f.ClubName
	}
	if f.Brand != nil {
		l.Brand = *f.Brand
	}
	if f.ClubType != nil {
		l.ClubType = *f.ClubType
	}
	if f.Condition != nil {
		l.Condition = *f.Condition
	}
	if f.Price != nil {
		l.Price = *f.Price
	}
	if f.Description != nil {
		l.Description = *f.Description
	}
}

// Message is a note sent from a buyer to the seller of a listing.
type Message struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	Sender    Owner     `json:"sender"`
	Text      string    `json:"message"`
	SentAt    time.Time `json:"sent_at"`
}

// ClubType enumerates the kinds of equipment that can be listed.
type ClubType string

const (
	Driver         ClubType = "Driver"
	FairwayWood    ClubType = "Fairway Wood"
	Hybrid         ClubType = "Hybrid"
	IronSet        ClubType = "Iron Set"
	IndividualIron ClubType = "Individual Iron"
	Wedge          ClubType = "Wedge"
	Putter         ClubType = "Putter"
	CompleteSet    ClubType = "Complete Set"
)

// AllTypes is the filter sentinel that disables type filtering.
const AllTypes = "All Types"

// ClubTypes lists every club type in display order.
var ClubTypes = []ClubType{
	Driver, FairwayWood, Hybrid, IronSet, IndividualIron, Wedge, Putter, CompleteSet,
}

var stockImages = map[ClubType]string{
	Driver:         "assets/club-images/driver.svg",
	FairwayWood:    "assets/club-images/fairway-wood.svg",
	Hybrid:         "assets/club-images/hybrid.svg",
	IronSet:        "assets/club-images/iron-set.svg",
	IndividualIron: "assets/club-images/individual-iron.svg",
	Wedge:          "assets/club-images/wedge.svg",
	Putter:         "assets/club-images/putter.svg",
	CompleteSet:    "assets/club-images/complete-set.svg",
}

// Valid reports whether t is a known club type.
func (t ClubType) Valid() bool {
	_, ok := stockImages[t]
	return ok
}

// StockImage returns the stock image path for the type, or the driver image
// for unknown types.
func (t ClubType) StockImage() string {
	if img, ok := stockImages[t]; ok {
		return img
	}
	return stockImages[Driver]
}

// Condition grades the wear of a club.
type Condition string

const (
	LikeNew   Condition = "Like New"
	Excellent Condition = "Excellent"
	VeryGood  Condition = "Very Good"
	Good      Condition = "Good"
	Fair      Condition = "Fair"
)

// Conditions lists every condition from best to worst.
var Conditions = []Condition{LikeNew, Excellent, VeryGood, Good, Fair}

// Valid reports whether c is a known condition.
func (c Condition) Valid() bool {
	for _, known := range Conditions {
		if c == known {
			return true
		}
	}
	return false
}
