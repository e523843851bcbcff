package checkin

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no check-in exists for the given id
	ErrNotFound = errors.New("check-in not found")

	// ErrStatusConflict is returned by a store when a compare-and-swap
	// update found a different status than expected. The lifecycle converts
	// it into an InvalidStateError or a silent no-op depending on the event.
	ErrStatusConflict = errors.New("check-in status changed concurrently")

	// ErrStoreNil is returned when constructing a Lifecycle without a store
	ErrStoreNil = errors.New("store cannot be nil")

	// ErrNotifierNil is returned when constructing a Lifecycle without a delivery engine
	ErrNotifierNil = errors.New("notifier cannot be nil")

	// ErrDirectoryNil is returned when constructing a Lifecycle without a contact directory
	ErrDirectoryNil = errors.New("contact directory cannot be nil")

	// ErrSenderRequired is returned by Create when the sender id is empty
	ErrSenderRequired = errors.New("sender id is required")

	// ErrRecipientRequired is returned by Create when the recipient id is empty
	ErrRecipientRequired = errors.New("recipient id is required")

	// ErrQuestionRequired is returned by Create when the question text is empty
	ErrQuestionRequired = errors.New("question text is required")

	// ErrStatusExpiryRequired is returned by Respond for status-kind
	// responses without an expiry time
	ErrStatusExpiryRequired = errors.New("status responses require an expiry time")
)

// InvalidStateError indicates an illegal check-in transition. It is
// recoverable and surfaced to the caller; the record is left unchanged and
// nothing is retried.
type InvalidStateError struct {
	CheckInID uuid.UUID
	Status    Status
	Event     Event
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("check-in %s: cannot apply event '%s' in status '%s'", e.CheckInID, e.Event, e.Status)
}

func NewInvalidStateError(id uuid.UUID, status Status, event Event) *InvalidStateError {
	return &InvalidStateError{
		CheckInID: id,
		Status:    status,
		Event:     event,
	}
}

func IsInvalidStateError(err error) bool {
	var e *InvalidStateError
	return errors.As(err, &e)
}
