package emergency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/safecheck/pkg/alert"
	"github.com/dmitrymomot/safecheck/pkg/logger"
)

var (
	// ErrEngineNil is returned when constructing a Fanout without a delivery engine
	ErrEngineNil = errors.New("delivery engine cannot be nil")

	// ErrContactStoreNil is returned when constructing a Fanout without a contact store
	ErrContactStoreNil = errors.New("contact store cannot be nil")
)

// Deliverer hands one notification to the alert delivery engine.
// *alert.Engine satisfies this interface.
type Deliverer interface {
	Deliver(ctx context.Context, rcpt alert.Recipient, title, body string, payload map[string]any) alert.Outcome
}

// ContactStore resolves contact ids to reachable recipients.
// Read-only to the core.
//
// Implementations must return recipients in the order of the requested ids,
// omitting ids they cannot resolve. Fanout results follow this order, so a
// store that reorders or duplicates entries would misattribute outcomes.
type ContactStore interface {
	RecipientsFor(ctx context.Context, contactIDs []uuid.UUID) ([]alert.Recipient, error)
}

// Delivery is the per-recipient result of a fanout.
type Delivery struct {
	ContactID uuid.UUID
	Outcome   alert.Outcome
}

// Fanout dispatches one emergency alert to every recipient concurrently.
type Fanout struct {
	engine   Deliverer
	contacts ContactStore
	limit    int
	logger   *slog.Logger
}

// FanoutOption configures a Fanout.
type FanoutOption func(*Fanout)

// WithConcurrencyLimit bounds the number of in-flight deliveries. Values
// below 1 are ignored. Bounded concurrency is a resource courtesy, not a
// correctness requirement.
func WithConcurrencyLimit(n int) FanoutOption {
	return func(f *Fanout) {
		if n >= 1 {
			f.limit = n
		}
	}
}

// WithFanoutLogger sets the logger for the Fanout.
func WithFanoutLogger(log *slog.Logger) FanoutOption {
	return func(f *Fanout) {
		if log != nil {
			f.logger = log
		}
	}
}

// NewFanout creates a fanout over the given delivery engine and contact
// store.
func NewFanout(engine Deliverer, contacts ContactStore, opts ...FanoutOption) (*Fanout, error) {
	if engine == nil {
		return nil, ErrEngineNil
	}
	if contacts == nil {
		return nil, ErrContactStoreNil
	}

	f := &Fanout{
		engine:   engine,
		contacts: contacts,
		limit:    8,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// Notify delivers the emergency alert to every recipient in the event's
// snapshot and returns one Delivery per resolved recipient, in the order the
// contact store returned them. The only top-level error is recipient
// resolution failing before any delivery attempt starts; per-recipient
// failures are partial results, never errors.
func (f *Fanout) Notify(ctx context.Context, ev Event) ([]Delivery, error) {
	if len(ev.RecipientContactIDs) == 0 {
		return nil, nil
	}

	rcpts, err := f.contacts.RecipientsFor(ctx, ev.RecipientContactIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve emergency recipients for event %s: %w", ev.ID, err)
	}

	title, body := ev.title(), ev.body()
	payload := map[string]any{
		"type":        "emergency",
		"emergencyId": ev.ID.String(),
	}

	out := make([]Delivery, len(rcpts))

	// A plain errgroup, deliberately not WithContext: one recipient's bad
	// outcome must not cancel sibling deliveries. The goroutines only
	// report outcomes, never errors.
	var g errgroup.Group
	g.SetLimit(f.limit)

	for i, rcpt := range rcpts {
		i, rcpt := i, rcpt
		g.Go(func() error {
			outcome := f.engine.Deliver(ctx, rcpt, title, body, payload)
			out[i] = Delivery{ContactID: rcpt.ContactID, Outcome: outcome}

			if !outcome.Success {
				f.logger.LogAttrs(ctx, slog.LevelError, "Emergency alert has no delivery path",
					logger.EmergencyID(ev.ID),
					logger.ContactID(rcpt.ContactID),
					logger.Error(outcome.Err),
				)
			}
			return nil
		})
	}

	_ = g.Wait()

	f.logger.LogAttrs(ctx, slog.LevelInfo, "Emergency fanout completed",
		logger.EmergencyID(ev.ID),
		slog.Int("recipients", len(out)),
	)

	return out, nil
}
