package offlinequeue

import "errors"

var (
	// ErrStoreNil is returned when a nil store is provided
	ErrStoreNil = errors.New("store cannot be nil")

	// ErrPushChannelNil is returned when a drainer is built without a push channel
	ErrPushChannelNil = errors.New("push channel cannot be nil")

	// ErrMonitorNil is returned when a drainer is built without a connectivity monitor
	ErrMonitorNil = errors.New("connectivity monitor cannot be nil")

	// ErrMessageNotFound is returned when operating on a message id that is not in the store
	ErrMessageNotFound = errors.New("queued message not found")

	// ErrPersistence is returned when the backing store failed to record a change.
	// For Enqueue this is fatal to the call: the message has no delivery path at all.
	ErrPersistence = errors.New("queue persistence failed")

	// ErrAlreadyStarted is returned when Start is called on a running drainer
	ErrAlreadyStarted = errors.New("drainer already started")

	// ErrNoPushAddress marks a queued message whose recipient has no push
	// token; each drain counts it as a failed attempt.
	ErrNoPushAddress = errors.New("queued message recipient has no push address")

	// ErrRetryExhausted marks a message whose attempt count already reached
	// the cap; it is dropped without a further delivery attempt.
	ErrRetryExhausted = errors.New("retry attempts exhausted")
)
