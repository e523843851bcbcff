package connectivity

import (
	"context"
	"time"
)

// Status represents the last known network state.
type Status string

const (
	Online  Status = "online"
	Offline Status = "offline"
)

// Event is a single online/offline transition.
type Event struct {
	Status Status
	At     time.Time
}

// Subscription receives transition events from a Monitor.
// Implementations must be safe for concurrent use.
type Subscription interface {
	// Events returns the channel transition events are delivered on.
	// The channel is closed when the subscription is closed.
	Events() <-chan Event

	// Close closes the subscription and releases resources.
	// Close is idempotent and safe to call multiple times.
	Close() error
}

// Monitor exposes the current network state and a push-based subscription
// for transitions. Consumers subscribe, they never poll for changes.
type Monitor interface {
	// Status returns the last reported network state.
	Status() Status

	// Subscribe creates a new subscription receiving every subsequent
	// transition. The subscription is cleaned up automatically when the
	// context is cancelled.
	Subscribe(ctx context.Context) Subscription
}
