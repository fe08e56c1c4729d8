// Package render turns listings and the current session into page content.
package render

import (
	"fmt"
	"unicode/utf8"

	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"github.com/atinyakov/GolfClubAuctions/internal/session"
)

const excerptLen = 100

// Card is the display form of one listing.
type Card struct {
	ID       string
	Title    string
	Subtitle string
	Excerpt  string
	Seller   string
	Price    string
	ImageURL string
	// CanDelete is set only for the listing's owner. The store checks
	// ownership again on delete.
	CanDelete bool
	// CanContact is set for signed-in users who do not own the listing.
	CanContact bool
}

// Placeholder replaces the card grid when there is nothing to show.
type Placeholder struct {
	Text   string
	Action string
	Label  string
}

// Excerpt returns the first 100 characters of s, with "..." appended only
// when something was cut.
func Excerpt(s string) string {
	if utf8.RuneCountInString(s) <= excerptLen {
		return s
	}
	return string([]rune(s)[:excerptLen]) + "..."
}

// Price formats a price with two decimals.
func Price(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}

func seller(o models.Owner) string {
	if o.DisplayName != "" {
		return o.DisplayName
	}
	return o.Email
}

// Cards builds one card per listing, keeping the input order.
func Cards(listings []models.Listing, s session.Session) []Card {
	viewer := s.UserID()
	cards := make([]Card, 0, len(listings))
	for _, l := range listings {
		brand := l.Brand
		if brand == "" {
			brand = "No brand"
		}
		img := l.ImageURL
		if img == "" {
			img = l.ClubType.StockImage()
		}
		owned := viewer != "" && viewer == l.Owner.UserID
		cards = append(cards, Card{
			ID:         l.ID,
			Title:      l.ClubName,
			Subtitle:   string(l.Condition) + " - " + brand,
			Excerpt:    Excerpt(l.Description),
			Seller:     seller(l.Owner),
			Price:      Price(l.Price),
			ImageURL:   img,
			CanDelete:  owned,
			CanContact: viewer != "" && !owned,
		})
	}
	return cards
}

// Empty returns the placeholder for an empty result. Signed-out visitors are
// invited to sign in, signed-in users to create a listing.
func Empty(s session.Session) Placeholder {
	if s.SignedIn() {
		return Placeholder{
			Text:   "No listings found. Be the first to create one!",
			Action: "create",
			Label:  "Create Listing",
		}
	}
	return Placeholder{
		Text:   "No listings found. Sign in to create a listing.",
		Action: "signin",
		Label:  "Sign In",
	}
}

// Count returns the result summary line.
func Count(n int) string {
	if n == 1 {
		return "Showing 1 listing"
	}
	return fmt.Sprintf("Showing %d listings", n)
}
