package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/atinyakov/GolfClubAuctions/internal/middleware"
	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"github.com/atinyakov/GolfClubAuctions/internal/render"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FilterService narrows listings by club type and price bucket.
type FilterService interface {
	Apply(ctx context.Context, c models.FilterCriteria) ([]models.Listing, error)
}

// ListingService is the listing store as seen by the handlers.
type ListingService interface {
	Create(ctx context.Context, l models.Listing, owner *models.Identity) (*models.Listing, error)
	ListByOwner(ctx context.Context, userID string) ([]models.Listing, error)
	DeleteOne(ctx context.Context, id string, requester *models.Identity) error
	Update(ctx context.Context, id string, fields models.ListingFields, requester *models.Identity) (*models.Listing, error)
}

// ContactService sends buyer messages to sellers.
type ContactService interface {
	Send(ctx context.Context, listingID, text string, sender *models.Identity) (*models.Message, error)
}

// PageHandler serves the single page and its form posts.
type PageHandler struct {
	Filter   FilterService
	Listings ListingService
	Contact  ContactService
	Renderer *render.Renderer
	Log      *zap.Logger
}

// criteriaFromQuery reads club_type and price from the query string.
func criteriaFromQuery(r *http.Request) models.FilterCriteria {
	q := r.URL.Query()
	return models.FilterCriteria{
		ClubType: q.Get("club_type"),
		Bucket:   models.ParsePriceBucket(q.Get("price")),
	}
}

// Index handles GET /?view=home|browse|create.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := render.Page{
		View:    render.ParseView(r.URL.Query().Get("view")),
		Session: middleware.SessionFrom(r),
		Notice:  popFlash(w, r),
	}

	switch p.View {
	case render.ViewBrowse:
		p.Criteria = criteriaFromQuery(r)
		listings, err := h.Filter.Apply(ctx, p.Criteria)
		if err != nil {
			h.Log.Warn("failed to load listings", zap.Error(err))
			p.Notice = &render.Notice{Kind: render.NoticeError, Text: "Error loading listings: " + err.Error()}
		}
		p.SetListings(listings)
	case render.ViewCreate:
		if p.Session.SignedIn() {
			mine, err := h.Listings.ListByOwner(ctx, p.Session.UserID())
			if err != nil {
				h.Log.Warn("failed to load own listings", zap.Error(err))
			}
			p.MyListings = render.Cards(mine, p.Session)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.Renderer.Page(w, p); err != nil {
		h.Log.Error("failed to render page", zap.String("view", p.View), zap.Error(err))
	}
}

func listingFromForm(r *http.Request) (models.Listing, error) {
	if err := r.ParseForm(); err != nil {
		return models.Listing{}, err
	}
	l := models.Listing{
		ClubName:    r.PostFormValue("club_name"),
		Brand:       r.PostFormValue("brand"),
		ClubType:    models.ClubType(r.PostFormValue("club_type")),
		Condition:   models.Condition(r.PostFormValue("condition")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(r.PostFormValue("price")), 64)
	if err != nil {
		return l, models.ErrInvalidListing
	}
	l.Price = price
	return l, nil
}

// CreateListing handles POST /listings.
func (h *PageHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	l, err := listingFromForm(r)
	if err == nil {
		_, err = h.Listings.Create(r.Context(), l, middleware.IdentityFrom(r))
	}
	if err != nil {
		redirectWithNotice(w, r, "/?view=create", render.NoticeError, "Error creating listing: "+err.Error())
		return
	}
	redirectWithNotice(w, r, "/?view=browse", render.NoticeSuccess, "Listing created successfully!")
}

// DeleteListing handles POST /listings/{id}/delete.
func (h *PageHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Listings.DeleteOne(r.Context(), id, middleware.IdentityFrom(r)); err != nil {
		redirectWithNotice(w, r, "/?view=browse", render.NoticeError, "Error deleting listing: "+err.Error())
		return
	}
	redirectWithNotice(w, r, "/?view=browse", render.NoticeSuccess, "Listing deleted successfully")
}

// ContactSeller handles POST /listings/{id}/contact.
func (h *PageHandler) ContactSeller(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		redirectWithNotice(w, r, "/?view=browse", render.NoticeError, "Error sending message: invalid request")
		return
	}
	if _, err := h.Contact.Send(r.Context(), id, r.PostFormValue("message"), middleware.IdentityFrom(r)); err != nil {
		redirectWithNotice(w, r, "/?view=browse", render.NoticeError, "Error sending message: "+err.Error())
		return
	}
	redirectWithNotice(w, r, "/?view=browse", render.NoticeSuccess, "Message sent to the seller!")
}
