package offlinequeue

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence interface for queued messages. Implementations
// must make every method atomic with respect to the message it touches:
// in particular the attempt-count update and a later removal must never
// interleave in a way that loses a message.
type Store interface {
	// Append durably adds a message. It must not return until the message
	// would survive a process restart.
	Append(ctx context.Context, msg Message) error

	// Snapshot returns a point-in-time copy of all queued messages in
	// enqueue order. Messages appended after the snapshot is taken are
	// picked up by the next drain.
	Snapshot(ctx context.Context) ([]Message, error)

	// Remove durably deletes a message. Removing an unknown id is not an
	// error: a concurrent drain may have removed it already.
	Remove(ctx context.Context, id uuid.UUID) error

	// IncrementAttempts atomically increments a message's attempt count and
	// returns the new value. Returns ErrMessageNotFound for unknown ids.
	IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error)
}
