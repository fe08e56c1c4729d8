// Package events publishes marketplace domain events to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Subjects published by the server.
const (
	SubjectListingCreated = "listings.created"
	SubjectListingUpdated = "listings.updated"
	SubjectListingDeleted = "listings.deleted"
	SubjectMessageSent    = "messages.sent"
	SubjectAuthState      = "auth.state"
)

// ListingEvent is the payload of the listings.* subjects.
type ListingEvent struct {
	ListingID string    `json:"listing_id"`
	ClubType  string    `json:"club_type,omitempty"`
	Price     float64   `json:"price,omitempty"`
	OwnerID   string    `json:"owner_id"`
	ActorID   string    `json:"actor_id"`
	At        time.Time `json:"at"`
}

// MessageEvent is the payload of messages.sent.
type MessageEvent struct {
	MessageID string    `json:"message_id"`
	ListingID string    `json:"listing_id"`
	SenderID  string    `json:"sender_id"`
	SellerID  string    `json:"seller_id"`
	At        time.Time `json:"at"`
}

// Auth states carried by AuthEvent.
const (
	StateSignedUp  = "signed_up"
	StateSignedIn  = "signed_in"
	StateSignedOut = "signed_out"
)

// AuthEvent is the payload of auth.state.
type AuthEvent struct {
	UserID string    `json:"user_id"`
	State  string    `json:"state"`
	At     time.Time `json:"at"`
}

// Publisher sends JSON encoded events.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close()
}

// NATSPublisher publishes events over a NATS connection.
type NATSPublisher struct {
	conn *nats.Conn
	log  *zap.Logger
}

// Connect dials the NATS server at url. The connection reconnects forever.
func Connect(url string, log *zap.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("golfclub-auctions"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &NATSPublisher{conn: conn, log: log}, nil
}

// Publish marshals payload to JSON and publishes it on subject.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.log.Warn("nats drain failed", zap.Error(err))
	}
}

// Nop discards every event. It is used when NATS is not configured.
type Nop struct{}

// Publish drops the event.
func (Nop) Publish(context.Context, string, any) error { return nil }

// Close does nothing.
func (Nop) Close() {}

// Recorder keeps published events in memory. It is useful in tests.
type Recorder struct {
	Events []Recorded
	Err    error
}

// Recorded is one event captured by Recorder.
type Recorded struct {
	Subject string
	Payload any
}

// Publish appends the event, or returns Err when it is set.
func (r *Recorder) Publish(_ context.Context, subject string, payload any) error {
	if r.Err != nil {
		return r.Err
	}
	r.Events = append(r.Events, Recorded{Subject: subject, Payload: payload})
	return nil
}

// Close does nothing; recorded events stay readable.
func (r *Recorder) Close() {}

// Subjects returns the recorded subjects in publish order.
func (r *Recorder) Subjects() []string {
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Subject)
	}
	return out
}
