package offlinequeue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/safecheck/pkg/alert"
	"github.com/dmitrymomot/safecheck/pkg/logger"
)

// Queue accepts undeliverable messages from the delivery engine and hands
// them to the durable store. It satisfies alert.Enqueuer.
type Queue struct {
	store  Store
	logger *slog.Logger
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithQueueLogger sets the logger for the Queue.
func WithQueueLogger(log *slog.Logger) QueueOption {
	return func(q *Queue) {
		if log != nil {
			q.logger = log
		}
	}
}

// NewQueue creates a Queue backed by the given store.
func NewQueue(store Store, opts ...QueueOption) (*Queue, error) {
	if store == nil {
		return nil, ErrStoreNil
	}

	q := &Queue{
		store:  store,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(q)
	}

	return q, nil
}

// Enqueue durably appends a message with a fresh id and a zero attempt
// count. A persistence failure is fatal to the call and surfaced to the
// caller wrapped in ErrPersistence: at that point the message has no
// delivery path at all.
func (q *Queue) Enqueue(ctx context.Context, rcpt alert.Recipient, title, body string, payload map[string]any) error {
	msg := Message{
		ID:         uuid.New(),
		Recipient:  rcpt,
		Title:      title,
		Body:       body,
		Payload:    payload,
		EnqueuedAt: time.Now(),
		Attempts:   0,
	}

	if err := q.store.Append(ctx, msg); err != nil {
		return errors.Join(ErrPersistence, err)
	}

	q.logger.LogAttrs(ctx, slog.LevelInfo, "Message queued for later delivery",
		logger.MessageID(msg.ID),
		logger.ContactID(rcpt.ContactID),
	)

	return nil
}
