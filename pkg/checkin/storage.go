package checkin

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence interface for check-in records. The core never
// deletes records; retention is an external concern.
type Store interface {
	// Create durably stores a new check-in.
	Create(ctx context.Context, c CheckIn) error

	// Get returns a copy of the check-in, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*CheckIn, error)

	// UpdateStatus applies the full record as an atomic read-modify-write,
	// but only while the stored status still equals expected. Returns
	// ErrStatusConflict when another transition won the race, ErrNotFound
	// for unknown ids. This compare-and-swap is what makes concurrent
	// respond/markOverdue races safe without last-write-wins.
	UpdateStatus(ctx context.Context, c CheckIn, expected Status) error

	// ListUnresolved returns every check-in still in Pending or Overdue,
	// for time-based sweeping.
	ListUnresolved(ctx context.Context) ([]CheckIn, error)
}
