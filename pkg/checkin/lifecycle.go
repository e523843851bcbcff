package checkin

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/safecheck/pkg/alert"
	"github.com/dmitrymomot/safecheck/pkg/logger"
)

// Notifier hands one notification to the alert delivery engine.
// *alert.Engine satisfies this interface.
type Notifier interface {
	Deliver(ctx context.Context, rcpt alert.Recipient, title, body string, payload map[string]any) alert.Outcome
}

// Directory resolves a contact relationship to a reachable recipient.
// Read-only to the core.
type Directory interface {
	Recipient(ctx context.Context, contactID uuid.UUID) (alert.Recipient, error)
}

// PreferenceSource returns the sender's notification opt-ins at trigger
// time.
type PreferenceSource interface {
	PreferencesFor(ctx context.Context, userID uuid.UUID) (Preferences, error)
}

// StaticPreferences is a PreferenceSource returning the same opt-ins for
// every user. Useful for tests and single-user deployments.
type StaticPreferences Preferences

func (p StaticPreferences) PreferencesFor(ctx context.Context, userID uuid.UUID) (Preferences, error) {
	return Preferences(p), nil
}

// Lifecycle enforces the check-in state machine and triggers alert delivery
// on the relevant transitions. Transitions for the same check-in are
// mutually exclusive; the status flip is durably applied before any
// notification fires, and no lock is held across channel I/O.
type Lifecycle struct {
	store    Store
	notifier Notifier
	contacts Directory
	prefs    PreferenceSource
	cfg      Config
	locks    *keyedMutex
	logger   *slog.Logger
	now      func() time.Time
}

// LifecycleOption configures a Lifecycle.
type LifecycleOption func(*Lifecycle)

// WithPreferenceSource sets where sender opt-ins are read from. Defaults to
// all opt-ins disabled, which matches the original product default of only
// notifying on negative responses.
func WithPreferenceSource(src PreferenceSource) LifecycleOption {
	return func(l *Lifecycle) {
		if src != nil {
			l.prefs = src
		}
	}
}

// WithConfig overrides the time-based policy.
func WithConfig(cfg Config) LifecycleOption {
	return func(l *Lifecycle) {
		l.cfg = cfg
	}
}

// WithLifecycleLogger sets the logger for the Lifecycle.
func WithLifecycleLogger(log *slog.Logger) LifecycleOption {
	return func(l *Lifecycle) {
		if log != nil {
			l.logger = log
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) LifecycleOption {
	return func(l *Lifecycle) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLifecycle creates the lifecycle service. Store, notifier, and contact
// directory are required collaborators.
func NewLifecycle(store Store, notifier Notifier, contacts Directory, opts ...LifecycleOption) (*Lifecycle, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	if notifier == nil {
		return nil, ErrNotifierNil
	}
	if contacts == nil {
		return nil, ErrDirectoryNil
	}

	l := &Lifecycle{
		store:    store,
		notifier: notifier,
		contacts: contacts,
		prefs:    StaticPreferences{},
		cfg: Config{
			OverdueGracePeriod: 4 * time.Hour,
			ExpiryHorizon:      24 * time.Hour,
		},
		locks:  newKeyedMutex(),
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// CreateParams describes a new check-in. Empty tokens fall back to the
// "YES"/"NO" defaults; custom tokens are snapshotted into the record and
// stay authoritative for this check-in.
type CreateParams struct {
	SenderID      uuid.UUID
	RecipientID   uuid.UUID
	SenderName    string
	RecipientName string
	Question      string
	PositiveToken string
	NegativeToken string
}

// Create stores a new pending check-in and notifies the recipient.
// Notification delivery is best effort: the check-in exists once the store
// accepted it, whatever happens to the channels afterwards.
func (l *Lifecycle) Create(ctx context.Context, params CreateParams) (*CheckIn, error) {
	if params.SenderID == uuid.Nil {
		return nil, ErrSenderRequired
	}
	if params.RecipientID == uuid.Nil {
		return nil, ErrRecipientRequired
	}
	if params.Question == "" {
		return nil, ErrQuestionRequired
	}

	positive := params.PositiveToken
	if positive == "" {
		positive = DefaultPositiveToken
	}
	negative := params.NegativeToken
	if negative == "" {
		negative = DefaultNegativeToken
	}

	c := CheckIn{
		ID:            uuid.New(),
		SenderID:      params.SenderID,
		RecipientID:   params.RecipientID,
		SenderName:    params.SenderName,
		RecipientName: params.RecipientName,
		Question:      params.Question,
		PositiveToken: positive,
		NegativeToken: negative,
		Status:        StatusPending,
		CreatedAt:     l.now(),
	}

	if err := l.store.Create(ctx, c); err != nil {
		return nil, err
	}

	l.notifyContact(ctx, c.RecipientID, "New Check-In",
		c.SenderName+" is checking in on you", c.ID)

	return &c, nil
}

// RespondParams describes the recipient's single response.
type RespondParams struct {
	Response        string
	Kind            ResponseKind
	StatusExpiresAt *time.Time // required for ResponseStatus, ignored otherwise
}

// Respond records the recipient's response. A response is accepted exactly
// once: any status other than Pending, including a markOverdue that won the
// race, yields an InvalidStateError and leaves the record unchanged.
// The sender is notified only for a negative-token response or when they
// opted into all-response notifications.
func (l *Lifecycle) Respond(ctx context.Context, id uuid.UUID, params RespondParams) (*CheckIn, error) {
	kind := params.Kind
	if kind == "" {
		kind = ResponseStandard
	}
	if kind == ResponseStatus && params.StatusExpiresAt == nil {
		return nil, ErrStatusExpiryRequired
	}

	updated, err := l.transition(ctx, id, EventRespond, func(c *CheckIn) {
		now := l.now()
		c.Response = params.Response
		c.ResponseKind = kind
		c.RespondedAt = &now
		if kind == ResponseStatus {
			c.StatusExpiresAt = params.StatusExpiresAt
		}
	})
	if err != nil {
		return nil, err
	}

	l.logger.LogAttrs(ctx, slog.LevelInfo, "Check-in responded",
		logger.CheckInID(updated.ID),
		slog.String("response_kind", string(kind)),
	)

	negative := updated.IsNegativeResponse()
	if !negative {
		prefs, err := l.prefs.PreferencesFor(ctx, updated.SenderID)
		if err != nil {
			l.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to read sender preferences",
				logger.CheckInID(updated.ID),
				logger.Error(err),
			)
			return updated, nil
		}
		if !prefs.NotifyOnAllResponses {
			return updated, nil
		}
	}

	body := updated.RecipientName + " has responded to your check-in"
	if negative {
		body = updated.RecipientName + " has indicated they need help"
	}
	l.notifyUser(ctx, updated.SenderID, "Check-In Response", body, updated.ID)

	return updated, nil
}

// MarkOverdue transitions a pending check-in into the Overdue warning state.
// It is a silent no-op for any other status, including losing the race
// against a response. The sender is notified at most once per check-in, and
// only when they opted into no-response notifications.
func (l *Lifecycle) MarkOverdue(ctx context.Context, id uuid.UUID) error {
	updated, err := l.transition(ctx, id, EventMarkOverdue, nil)
	if err != nil {
		if IsInvalidStateError(err) {
			return nil
		}
		return err
	}

	l.logger.LogAttrs(ctx, slog.LevelInfo, "Check-in marked overdue",
		logger.CheckInID(updated.ID),
	)

	prefs, err := l.prefs.PreferencesFor(ctx, updated.SenderID)
	if err != nil {
		l.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to read sender preferences",
			logger.CheckInID(updated.ID),
			logger.Error(err),
		)
		return nil
	}
	if !prefs.NotifyOnNoResponse {
		return nil
	}

	l.notifyUser(ctx, updated.SenderID, "Check-In Overdue",
		updated.RecipientName+" hasn't responded to your check-in", updated.ID)

	return nil
}

// Expire finalizes a check-in whose recipient window has fully elapsed.
// Valid from Pending and Overdue; a silent no-op once terminal. Expiry
// carries no notification obligation beyond what Overdue already produced.
func (l *Lifecycle) Expire(ctx context.Context, id uuid.UUID) error {
	_, err := l.transition(ctx, id, EventExpire, nil)
	if err != nil {
		if IsInvalidStateError(err) {
			return nil
		}
		return err
	}

	return nil
}

// Sweep applies the time-based policy to every unresolved check-in: past the
// expiry horizon they expire, past the grace period they go overdue. Meant
// to be invoked periodically by an external scheduler.
func (l *Lifecycle) Sweep(ctx context.Context) error {
	unresolved, err := l.store.ListUnresolved(ctx)
	if err != nil {
		return err
	}

	now := l.now()
	for _, c := range unresolved {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		age := now.Sub(c.CreatedAt)
		switch {
		case age >= l.cfg.ExpiryHorizon:
			if err := l.Expire(ctx, c.ID); err != nil {
				l.logger.LogAttrs(ctx, slog.LevelError, "Failed to expire check-in",
					logger.CheckInID(c.ID),
					logger.Error(err),
				)
			}
		case c.Status == StatusPending && age >= l.cfg.OverdueGracePeriod:
			if err := l.MarkOverdue(ctx, c.ID); err != nil {
				l.logger.LogAttrs(ctx, slog.LevelError, "Failed to mark check-in overdue",
					logger.CheckInID(c.ID),
					logger.Error(err),
				)
			}
		}
	}

	return nil
}

// transition applies one state-machine event under the per-id lock: read,
// validate against the transition table, mutate, compare-and-swap. The lock
// is released before the caller does any channel I/O. A CAS conflict is
// reported as an InvalidStateError carrying the status that won.
func (l *Lifecycle) transition(ctx context.Context, id uuid.UUID, event Event, mutate func(*CheckIn)) (*CheckIn, error) {
	l.locks.lock(id)
	defer l.locks.unlock(id)

	c, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	to, ok := nextStatus(c.Status, event)
	if !ok {
		return nil, NewInvalidStateError(id, c.Status, event)
	}

	expected := c.Status
	c.Status = to
	if mutate != nil {
		mutate(c)
	}

	if err := l.store.UpdateStatus(ctx, *c, expected); err != nil {
		if errors.Is(err, ErrStatusConflict) {
			// The store saw a racing transition that the per-id lock could
			// not observe (e.g. another process). First applied wins.
			current, getErr := l.store.Get(ctx, id)
			if getErr != nil {
				return nil, NewInvalidStateError(id, expected, event)
			}
			return nil, NewInvalidStateError(id, current.Status, event)
		}
		return nil, err
	}

	return c, nil
}

// notifyContact resolves a contact relationship and hands the notification
// to the delivery engine. Failures are logged, never surfaced: the engine
// owns the fallback chain, and a dead directory entry must not fail the
// lifecycle operation that triggered the notification.
func (l *Lifecycle) notifyContact(ctx context.Context, contactID uuid.UUID, title, body string, checkInID uuid.UUID) {
	rcpt, err := l.contacts.Recipient(ctx, contactID)
	if err != nil {
		l.logger.LogAttrs(ctx, slog.LevelError, "Failed to resolve notification recipient",
			logger.CheckInID(checkInID),
			logger.ContactID(contactID),
			logger.Error(err),
		)
		return
	}

	outcome := l.notifier.Deliver(ctx, rcpt, title, body, map[string]any{
		"type":      "checkIn",
		"checkInId": checkInID.String(),
	})
	if !outcome.Success {
		l.logger.LogAttrs(ctx, slog.LevelError, "Check-in notification has no delivery path",
			logger.CheckInID(checkInID),
			logger.ContactID(contactID),
			logger.Error(outcome.Err),
		)
		return
	}

	l.logger.LogAttrs(ctx, slog.LevelDebug, "Check-in notification dispatched",
		logger.CheckInID(checkInID),
		logger.Channel(string(outcome.Channel)),
	)
}

// notifyUser delivers to a user identity (the sender side) through the same
// directory lookup.
func (l *Lifecycle) notifyUser(ctx context.Context, userID uuid.UUID, title, body string, checkInID uuid.UUID) {
	l.notifyContact(ctx, userID, title, body, checkInID)
}
