package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atinyakov/GolfClubAuctions/internal/events"
	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"go.uber.org/zap"
)

const maxMessageLen = 2000

// MessageRepository stores contact messages.
type MessageRepository interface {
	Insert(ctx context.Context, m *models.Message) error
}

// ListingFinder looks up a listing by id.
type ListingFinder interface {
	Get(ctx context.Context, id string) (*models.Listing, error)
}

// Mailer delivers an email to the seller.
type Mailer interface {
	Send(ctx context.Context, to, replyTo, subject, body string) error
}

// ContactService lets signed-in buyers message the seller of a listing.
type ContactService struct {
	listings ListingFinder
	messages MessageRepository
	mailer   Mailer
	events   Publisher
	log      *zap.Logger
}

// NewContactService wires a ContactService. A nil pub or log falls back to a
// no-op; a nil mailer skips seller email.
func NewContactService(listings ListingFinder, messages MessageRepository, mailer Mailer, pub Publisher, log *zap.Logger) *ContactService {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ContactService{listings: listings, messages: messages, mailer: mailer, events: pub, log: log}
}

// Send stores the message and notifies the seller. Mail and event failures
// are logged; only the store write can fail the call.
func (s *ContactService) Send(ctx context.Context, listingID, text string, sender *models.Identity) (*models.Message, error) {
	if sender == nil || sender.UserID == "" {
		return nil, models.ErrUnauthenticated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message must not be empty", models.ErrInvalidMessage)
	}
	if utf8.RuneCountInString(text) > maxMessageLen {
		return nil, fmt.Errorf("%w: message must be at most %d characters", models.ErrInvalidMessage, maxMessageLen)
	}

	l, err := s.listings.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}

	m := &models.Message{
		ListingID: l.ID,
		Sender: models.Owner{
			UserID:      sender.UserID,
			Email:       sender.Email,
			DisplayName: sender.Name(),
		},
		Text: text,
	}
	if err := s.messages.Insert(ctx, m); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrRejected, err)
	}

	if s.mailer != nil && l.Owner.Email != "" {
		subject := fmt.Sprintf("Question about your %s", l.ClubName)
		body := fmt.Sprintf("%s wrote about %s ($%.2f):\n\n%s\n", m.Sender.DisplayName, l.ClubName, l.Price, text)
		if err := s.mailer.Send(ctx, l.Owner.Email, sender.Email, subject, body); err != nil {
			s.log.Warn("failed to email seller", zap.String("listing_id", l.ID), zap.Error(err))
		}
	}

	ev := events.MessageEvent{
		MessageID: m.ID,
		ListingID: l.ID,
		SenderID:  sender.UserID,
		SellerID:  l.Owner.UserID,
		At:        m.SentAt,
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if err := s.events.Publish(ctx, events.SubjectMessageSent, ev); err != nil {
		s.log.Warn("failed to publish message event", zap.String("listing_id", l.ID), zap.Error(err))
	}
	return m, nil
}
