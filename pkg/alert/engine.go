package alert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/safecheck/pkg/connectivity"
	"github.com/dmitrymomot/safecheck/pkg/logger"
)

// Enqueuer hands a message to the durable offline queue when no channel can
// take it right now. offlinequeue.Queue satisfies this interface.
type Enqueuer interface {
	Enqueue(ctx context.Context, rcpt Recipient, title, body string, payload map[string]any) error
}

// Engine delivers one notification to one recipient with channel fallback.
type Engine struct {
	monitor connectivity.Monitor
	push    PushChannel
	sms     SMSChannel
	queue   Enqueuer
	logger  *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSMSChannel enables the SMS fallback. Without it the Engine goes
// straight from push failure to the offline queue, which is the correct
// behavior on device classes with no SMS capability.
func WithSMSChannel(sms SMSChannel) EngineOption {
	return func(e *Engine) {
		e.sms = sms
	}
}

// WithEngineLogger sets the logger for the Engine.
func WithEngineLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.logger = log
		}
	}
}

// NewEngine creates a delivery engine. Monitor, push channel, and queue are
// required; SMS is optional via WithSMSChannel.
func NewEngine(monitor connectivity.Monitor, push PushChannel, queue Enqueuer, opts ...EngineOption) (*Engine, error) {
	if monitor == nil {
		return nil, ErrMonitorNil
	}
	if push == nil {
		return nil, ErrPushChannelNil
	}
	if queue == nil {
		return nil, ErrQueueNil
	}

	e := &Engine{
		monitor: monitor,
		push:    push,
		queue:   queue,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Deliver attempts push, then SMS, then the offline queue, strictly in that
// order. Channel-level failures are absorbed and converted into the next
// fallback step; they never surface to the caller. The returned Outcome names
// the channel that accepted the message. Outcome.Success is false only when
// the final fallback, queue persistence, failed.
func (e *Engine) Deliver(ctx context.Context, rcpt Recipient, title, body string, payload map[string]any) Outcome {
	if e.monitor.Status() == connectivity.Online && rcpt.HasPushAddress() {
		err := e.push.Send(ctx, rcpt.PushToken, title, body, payload)
		if err == nil {
			return Outcome{Channel: ChannelPush, Success: true}
		}
		e.logger.LogAttrs(ctx, slog.LevelWarn, "Push delivery failed, falling back",
			logger.ContactID(rcpt.ContactID),
			logger.Channel(string(ChannelPush)),
			logger.Error(err),
		)
	}

	if rcpt.HasPhoneNumber() && e.sms != nil && e.sms.Available(ctx) {
		// SMS carries no structured payload; fold title and body into the text.
		err := e.sms.Send(ctx, rcpt.PhoneNumber, title+": "+body)
		if err == nil {
			return Outcome{Channel: ChannelSMS, Success: true}
		}
		e.logger.LogAttrs(ctx, slog.LevelWarn, "SMS delivery failed, falling back",
			logger.ContactID(rcpt.ContactID),
			logger.Channel(string(ChannelSMS)),
			logger.Error(err),
		)
	}

	if err := e.queue.Enqueue(ctx, rcpt, title, body, payload); err != nil {
		// No delivery path left at all; this is the only terminal failure.
		e.logger.LogAttrs(ctx, slog.LevelError, "Failed to enqueue undeliverable message",
			logger.ContactID(rcpt.ContactID),
			logger.Error(err),
		)
		return Outcome{
			Channel: ChannelQueued,
			Success: false,
			Err:     fmt.Errorf("enqueue message for contact %s: %w", rcpt.ContactID, err),
		}
	}

	return Outcome{Channel: ChannelQueued, Success: true}
}
