package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Options tunes a Queue. Zero values fall back to the package defaults.
type Options struct {
	// DefaultDuration applies to toasts added without a duration.
	DefaultDuration time.Duration
	// ExitGrace is how long an exiting toast stays before removal.
	ExitGrace time.Duration
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

type entry struct {
	toast    Toast
	deadline time.Time
}

// Queue holds toasts in insertion order. Every entry carries exactly one
// pending deadline: a visible toast starts exiting at its deadline and an
// exiting toast is removed at its deadline. Queue does not own a timer;
// callers invoke Advance when Next is reached.
type Queue struct {
	mu       sync.Mutex
	entries  []*entry
	byID     map[string]*entry
	now      func() time.Time
	duration time.Duration
	grace    time.Duration
}

// NewQueue returns an empty queue. Unset options take DefaultDuration,
// ExitGrace and time.Now.
func NewQueue(opts Options) *Queue {
	q := &Queue{
		byID:     map[string]*entry{},
		now:      opts.Now,
		duration: opts.DefaultDuration,
		grace:    opts.ExitGrace,
	}
	if q.now == nil {
		q.now = time.Now
	}
	if q.duration <= 0 {
		q.duration = DefaultDuration
	}
	if q.grace <= 0 {
		q.grace = ExitGrace
	}
	return q
}

// Add appends t, or replaces the toast with the same id in place and
// restarts its timer. An empty id is generated.
func (q *Queue) Add(t Toast) (Toast, Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Type == "" {
		t.Type = TypeInfo
	}
	if t.Duration <= 0 {
		t.Duration = q.duration
	}
	t.State = StateVisible
	t.CreatedAt = now

	if e, ok := q.byID[t.ID]; ok {
		e.toast = t
		e.deadline = now.Add(t.Duration)
	} else {
		e := &entry{toast: t, deadline: now.Add(t.Duration)}
		q.entries = append(q.entries, e)
		q.byID[t.ID] = e
	}
	return t, Event{Kind: EventAdded, Toast: t, At: now}
}

// Dismiss starts the exit transition of a visible toast. Unknown ids and
// toasts already exiting are left alone and report false.
func (q *Queue) Dismiss(id string) (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.byID[id]
	if !ok || e.toast.State != StateVisible {
		return Event{}, false
	}
	now := q.now()
	e.toast.State = StateExiting
	e.deadline = now.Add(q.grace)
	return Event{Kind: EventExiting, Toast: e.toast, At: now}, true
}

// Advance fires every transition that is due, earliest deadline first.
// A toast whose display time and grace have both elapsed yields its
// exiting and removed events in the same call.
func (q *Queue) Advance() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	var events []Event
	for {
		idx := q.earliestLocked()
		if idx < 0 || q.entries[idx].deadline.After(now) {
			return events
		}
		e := q.entries[idx]
		at := e.deadline
		switch e.toast.State {
		case StateVisible:
			e.toast.State = StateExiting
			e.deadline = at.Add(q.grace)
			events = append(events, Event{Kind: EventExiting, Toast: e.toast, At: at})
		default:
			q.removeLocked(idx)
			e.toast.State = StateRemoved
			events = append(events, Event{Kind: EventRemoved, Toast: e.toast, At: at})
		}
	}
}

// Next returns the earliest pending deadline.
func (q *Queue) Next() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	idx := q.earliestLocked()
	if idx < 0 {
		return time.Time{}, false
	}
	return q.entries[idx].deadline, true
}

// List returns a snapshot in display order, exiting toasts included.
func (q *Queue) List() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Toast, 0, len(q.entries))
	for _, e := range q.entries {
		out = append(out, e.toast)
	}
	return out
}

// Len counts visible and exiting toasts.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Clear drops every toast and its pending deadline.
func (q *Queue) Clear() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	events := make([]Event, 0, len(q.entries))
	for _, e := range q.entries {
		e.toast.State = StateRemoved
		events = append(events, Event{Kind: EventRemoved, Toast: e.toast, At: now})
	}
	q.entries = nil
	q.byID = map[string]*entry{}
	return events
}

func (q *Queue) earliestLocked() int {
	idx := -1
	for i, e := range q.entries {
		if idx < 0 || e.deadline.Before(q.entries[idx].deadline) {
			idx = i
		}
	}
	return idx
}

func (q *Queue) removeLocked(idx int) {
	e := q.entries[idx]
	delete(q.byID, e.toast.ID)
	copy(q.entries[idx:], q.entries[idx+1:])
	q.entries[len(q.entries)-1] = nil
	q.entries = q.entries[:len(q.entries)-1]
}
