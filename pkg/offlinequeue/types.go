package offlinequeue

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/safecheck/pkg/alert"
)

// MaxAttempts is the number of failed redelivery attempts after which a
// queued message is dropped and reported as a permanent failure.
const MaxAttempts = 3

// Message is one undelivered notification waiting for network recovery.
// Persisted across process restarts; owned exclusively by the queue.
type Message struct {
	ID         uuid.UUID       `json:"id"`
	Recipient  alert.Recipient `json:"recipient"`
	Title      string          `json:"title"`
	Body       string          `json:"body"`
	Payload    map[string]any  `json:"payload,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	Attempts   int             `json:"attempts"`
}

// RetryExhausted is emitted exactly once when a message is dropped after
// MaxAttempts failed redeliveries. It is an event, not an error return:
// by the time it fires the drop has already been durably recorded.
type RetryExhausted struct {
	Message Message
	LastErr error
	At      time.Time
}

// ExhaustedHandler consumes RetryExhausted events. Handlers are invoked
// synchronously from the drain loop and must not block; delivery is
// at-least-once, so handlers tolerate duplicates across process restarts.
type ExhaustedHandler func(ev RetryExhausted)
