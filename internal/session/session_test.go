package session

import (
	"context"
	"testing"

	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolder_StartsUnknown(t *testing.T) {
	h := NewHolder()
	s := h.Current()
	assert.Equal(t, Unknown, s.State)
	assert.False(t, s.SignedIn())
	assert.Equal(t, "", s.UserID())
}

func TestHolder_SubscribeGetsCurrentThenTransitions(t *testing.T) {
	h := NewHolder()
	var seen []State
	unsubscribe := h.Subscribe(func(s Session) { seen = append(seen, s.State) })

	h.Set(models.Identity{UserID: "u1", Email: "a@golf.test"})
	h.Clear()
	unsubscribe()
	h.Set(models.Identity{UserID: "u2"})

	assert.Equal(t, []State{Unknown, Present, Absent}, seen)
	unsubscribe()
}

func TestHolder_SetCopiesIdentity(t *testing.T) {
	h := NewHolder()
	id := models.Identity{UserID: "u1"}
	h.Set(id)
	id.UserID = "changed"

	cur := h.Current()
	require.True(t, cur.SignedIn())
	assert.Equal(t, "u1", cur.UserID())
}

func TestHolder_ListenerMaySubscribe(t *testing.T) {
	h := NewHolder()
	calls := 0
	h.Subscribe(func(s Session) {
		if s.State == Present {
			h.Subscribe(func(Session) { calls++ })
		}
	})
	h.Set(models.Identity{UserID: "u1"})
	assert.Equal(t, 1, calls)
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	assert.Equal(t, Unknown, Current(context.Background()).State)

	h := NewHolder()
	h.Clear()
	ctx := WithHolder(context.Background(), h)
	assert.Same(t, h, FromContext(ctx))
	assert.Equal(t, Absent, Current(ctx).State)
	assert.Equal(t, "absent", Current(ctx).State.String())
}
