// Package session holds the signed-in identity for the duration of a request
// and lets consumers observe changes to it.
package session

import (
	"context"
	"sync"

	"github.com/atinyakov/GolfClubAuctions/internal/models"
)

// State is the resolution state of a session.
type State int

const (
	// Unknown means the credential has not been resolved yet.
	Unknown State = iota
	// Absent means there is no signed-in user.
	Absent
	// Present means Identity is set.
	Present
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Present:
		return "present"
	default:
		return "unknown"
	}
}

// Session is a snapshot of the holder.
type Session struct {
	State    State
	Identity *models.Identity
}

// SignedIn reports whether an identity is present. Unknown counts as signed
// out.
func (s Session) SignedIn() bool {
	return s.State == Present && s.Identity != nil
}

// UserID returns the identity's id, or "" when signed out.
func (s Session) UserID() string {
	if !s.SignedIn() {
		return ""
	}
	return s.Identity.UserID
}

// Listener receives every session transition.
type Listener func(Session)

// Holder is an observable session value. The zero value is not usable; use
// NewHolder.
type Holder struct {
	mu        sync.Mutex
	current   Session
	listeners map[int]Listener
	nextID    int
}

// NewHolder returns a holder in the Unknown state.
func NewHolder() *Holder {
	return &Holder{listeners: make(map[int]Listener)}
}

// Current returns the present snapshot.
func (h *Holder) Current() Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Set transitions to Present with a copy of id.
func (h *Holder) Set(id models.Identity) {
	h.transition(Session{State: Present, Identity: &id})
}

// Clear transitions to Absent.
func (h *Holder) Clear() {
	h.transition(Session{State: Absent})
}

func (h *Holder) transition(s Session) {
	h.mu.Lock()
	h.current = s
	fns := make([]Listener, 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Subscribe registers fn, calls it once with the current snapshot and then
// on every transition. The returned func removes the listener.
func (h *Holder) Subscribe(fn Listener) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	cur := h.current
	h.mu.Unlock()

	fn(cur)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

type ctxKey struct{}

// WithHolder stores h in ctx.
func WithHolder(ctx context.Context, h *Holder) context.Context {
	return context.WithValue(ctx, ctxKey{}, h)
}

// FromContext returns the holder stored in ctx, or nil.
func FromContext(ctx context.Context) *Holder {
	h, _ := ctx.Value(ctxKey{}).(*Holder)
	return h
}

// Current returns the session stored in ctx. Without a holder the session is
// Unknown.
func Current(ctx context.Context) Session {
	if h := FromContext(ctx); h != nil {
		return h.Current()
	}
	return Session{}
}
