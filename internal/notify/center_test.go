package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiefduck/ratewatch/internal/logger"
)

func newTestCenter(t *testing.T, schedule string) *Center {
	t.Helper()
	c, err := NewCenter(logger.Discard(), NewHub(), Options{
		DefaultDuration: 40 * time.Millisecond,
		ExitGrace:       20 * time.Millisecond,
	}, schedule)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func nextEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "stream closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for toast event")
		return Event{}
	}
}

func TestCenterLifecycleOverWallClock(t *testing.T) {
	c := newTestCenter(t, "")
	events, cancel := c.Subscribe("user-1")
	defer cancel()

	start := time.Now()
	toast, err := c.Add("user-1", Toast{Type: TypeSuccess, Message: "Rate alert saved"})
	require.NoError(t, err)

	added := nextEvent(t, events)
	assert.Equal(t, EventAdded, added.Kind)
	assert.Equal(t, toast.ID, added.Toast.ID)
	assert.Equal(t, "user-1", added.UserID)

	exiting := nextEvent(t, events)
	assert.Equal(t, EventExiting, exiting.Kind)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)

	removed := nextEvent(t, events)
	assert.Equal(t, EventRemoved, removed.Kind)
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
	assert.Empty(t, c.List("user-1"))
}

func TestCenterDismiss(t *testing.T) {
	c := newTestCenter(t, "")
	events, cancel := c.Subscribe("user-1")
	defer cancel()

	toast, err := c.Add("user-1", Toast{Message: "hello", Duration: time.Minute})
	require.NoError(t, err)
	nextEvent(t, events)

	assert.True(t, c.Dismiss("user-1", toast.ID))
	assert.False(t, c.Dismiss("user-1", toast.ID))
	assert.False(t, c.Dismiss("user-2", toast.ID), "toasts are scoped per user")

	assert.Equal(t, EventExiting, nextEvent(t, events).Kind)
	assert.Equal(t, EventRemoved, nextEvent(t, events).Kind)
}

func TestCenterAddValidation(t *testing.T) {
	c := newTestCenter(t, "")
	_, err := c.Add("user-1", Toast{Message: "  "})
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = c.Add("user-1", Toast{Message: "x", Type: "loud"})
	assert.ErrorIs(t, err, ErrInvalidType)
	_, err = c.Add("", Toast{Message: "x"})
	assert.Error(t, err)
}

func TestCenterPrune(t *testing.T) {
	c := newTestCenter(t, "")
	_, err := c.Add("busy", Toast{Message: "x", Duration: time.Minute})
	require.NoError(t, err)
	_, err = c.Add("idle", Toast{Message: "x", Duration: time.Minute})
	require.NoError(t, err)
	for _, toast := range c.List("idle") {
		c.Dismiss("idle", toast.ID)
	}

	require.Eventually(t, func() bool { return len(c.List("idle")) == 0 }, 2*time.Second, 5*time.Millisecond)

	_, cancel := c.Subscribe("watched")
	defer cancel()
	_, err = c.Add("watched", Toast{Message: "x", Duration: time.Millisecond})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(c.List("watched")) == 0 }, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, c.Prune(), "only the empty unwatched queue is dropped")
	assert.Len(t, c.List("busy"), 1)
}

func TestNewCenterRejectsBadSchedule(t *testing.T) {
	_, err := NewCenter(logger.Discard(), nil, Options{}, "every now and then")
	assert.Error(t, err)
}
