// Package notify implements the toast notification queue: timed
// auto-dismiss, manual dismiss with an exit grace period, and per-user
// event streams for connected dashboards.
package notify

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultDuration is how long a toast stays visible when no duration is given.
	DefaultDuration = 5 * time.Second
	// ExitGrace is the exit-animation window between dismissal and removal.
	ExitGrace = 300 * time.Millisecond
)

// Type is the toast severity.
type Type string

// Toast types. The dashboard picks the accent color from the type.
const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
)

// Validation errors returned by ParseType and Center.Add.
var (
	ErrInvalidType  = errors.New("toast type must be one of success, error, info, warning")
	ErrEmptyMessage = errors.New("toast message is required")
)

// ParseType normalizes s. An empty string is info.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TypeInfo, nil
	case TypeSuccess, TypeError, TypeInfo, TypeWarning:
		return t, nil
	default:
		return "", ErrInvalidType
	}
}

// State is a toast's position in its lifecycle.
type State int

// Toast states. A toast only moves forward: Visible, then Exiting, then Removed.
const (
	// StateVisible is shown and counting down to its deadline.
	StateVisible State = iota
	// StateExiting is playing its exit animation; it is removed after the grace period.
	StateExiting
	// StateRemoved is gone from the queue. Only events carry it.
	StateRemoved
)

// String returns the lowercase wire name of s.
func (s State) String() string {
	switch s {
	case StateVisible:
		return "visible"
	case StateExiting:
		return "exiting"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// MarshalText encodes s by name so JSON payloads read "visible", "exiting", "removed".
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a name written by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "visible":
		*s = StateVisible
	case "exiting":
		*s = StateExiting
	case "removed":
		*s = StateRemoved
	default:
		return fmt.Errorf("unknown toast state %q", b)
	}
	return nil
}

// Toast is one transient notification.
type Toast struct {
	ID        string        `json:"id"`
	Type      Type          `json:"type"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"-"`
	State     State         `json:"state"`
	CreatedAt time.Time     `json:"created_at"`
}

// Exiting reports whether the exit transition has started.
func (t Toast) Exiting() bool {
	return t.State == StateExiting
}

// EventKind names a queue transition.
type EventKind string

// Event kinds, one per transition.
const (
	EventAdded   EventKind = "added"
	EventExiting EventKind = "exiting"
	EventRemoved EventKind = "removed"
)

// Event reports one transition of one toast.
type Event struct {
	Kind   EventKind `json:"kind"`
	UserID string    `json:"-"`
	Toast  Toast     `json:"toast"`
	At     time.Time `json:"at"`
}
