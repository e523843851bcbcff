package offlinequeue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/safecheck/pkg/alert"
	"github.com/dmitrymomot/safecheck/pkg/connectivity"
	"github.com/dmitrymomot/safecheck/pkg/logger"
)

// Drainer redelivers queued messages through the push channel whenever the
// connectivity monitor reports an online transition. Draining is push-only:
// SMS was already the synchronous last resort at send time.
type Drainer struct {
	store       Store
	push        alert.PushChannel
	monitor     connectivity.Monitor
	onExhausted ExhaustedHandler
	maxAttempts int
	logger      *slog.Logger

	drainMu  sync.Mutex // serializes overlapping drains
	stopOnce sync.Once
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	started  bool
	mu       sync.Mutex // guards started/cancel
}

// DrainerOption configures a Drainer.
type DrainerOption func(*Drainer)

// WithMaxAttempts overrides the number of failed redeliveries before a
// message is dropped. Values below 1 are ignored.
func WithMaxAttempts(n int) DrainerOption {
	return func(d *Drainer) {
		if n >= 1 {
			d.maxAttempts = n
		}
	}
}

// WithExhaustedHandler registers the consumer of RetryExhausted events.
// The handler fires exactly once per dropped message, after the drop has
// been durably recorded.
func WithExhaustedHandler(h ExhaustedHandler) DrainerOption {
	return func(d *Drainer) {
		if h != nil {
			d.onExhausted = h
		}
	}
}

// WithDrainerLogger sets the logger for the Drainer.
func WithDrainerLogger(log *slog.Logger) DrainerOption {
	return func(d *Drainer) {
		if log != nil {
			d.logger = log
		}
	}
}

// NewDrainer creates a drainer over the given store, push channel, and
// connectivity monitor.
func NewDrainer(store Store, push alert.PushChannel, monitor connectivity.Monitor, opts ...DrainerOption) (*Drainer, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	if push == nil {
		return nil, ErrPushChannelNil
	}
	if monitor == nil {
		return nil, ErrMonitorNil
	}

	d := &Drainer{
		store:       store,
		push:        push,
		monitor:     monitor,
		maxAttempts: MaxAttempts,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// resubscribeDelay paces reconnection attempts after the monitor closed a
// subscription, so a permanently closed monitor cannot spin the intake loop.
const resubscribeDelay = time.Second

// Start subscribes to the connectivity monitor and drains on every online
// transition until Stop is called or ctx is cancelled. If the monitor
// already reports online, an initial drain runs immediately so messages
// queued while the process was down are not stuck waiting for the next
// transition.
//
// Event intake and draining run on separate goroutines. The intake loop
// only folds online transitions into a buffered signal, so it always keeps
// up with the monitor no matter how long a drain takes; a burst of
// transitions mid-drain coalesces into one pending drain instead of backing
// the subscription up until the monitor detaches it.
func (d *Drainer) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return ErrAlreadyStarted
	}
	d.started = true
	ctx, d.cancel = context.WithCancel(ctx)
	d.mu.Unlock()

	drainSignal := make(chan struct{}, 1)

	d.wg.Add(2)
	go func() {
		defer d.wg.Done()
		d.consumeTransitions(ctx, drainSignal)
	}()
	go func() {
		defer d.wg.Done()

		if d.monitor.Status() == connectivity.Online {
			d.drainLogged(ctx)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-drainSignal:
				d.drainLogged(ctx)
			}
		}
	}()

	return nil
}

// consumeTransitions forwards online transitions into drainSignal without
// ever blocking. A closed events channel is resubscribed after a delay: the
// monitor may have detached this consumer, and giving up would leave queued
// messages stranded until restart.
func (d *Drainer) consumeTransitions(ctx context.Context, drainSignal chan<- struct{}) {
	sub := d.monitor.Subscribe(ctx)
	defer func() { _ = sub.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				if ctx.Err() != nil {
					return
				}
				d.logger.LogAttrs(ctx, slog.LevelWarn, "Connectivity subscription closed, resubscribing")
				select {
				case <-ctx.Done():
					return
				case <-time.After(resubscribeDelay):
				}
				_ = sub.Close()
				sub = d.monitor.Subscribe(ctx)
				// An online transition may have fired while detached.
				if d.monitor.Status() == connectivity.Online {
					select {
					case drainSignal <- struct{}{}:
					default:
					}
				}
				continue
			}
			if ev.Status == connectivity.Online {
				select {
				case drainSignal <- struct{}{}:
				default:
				}
			}
		}
	}
}

// Stop cancels the subscription loop and waits for an in-flight drain to
// yield. Messages not yet confirmed delivered remain in the durable store.
func (d *Drainer) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		cancel := d.cancel
		d.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		d.wg.Wait()
	})
}

func (d *Drainer) drainLogged(ctx context.Context) {
	if err := d.Drain(ctx); err != nil && !errors.Is(err, context.Canceled) {
		d.logger.LogAttrs(ctx, slog.LevelError, "Queue drain failed",
			logger.Error(err),
		)
	}
}

// Drain attempts redelivery of every queued message once. It is idempotent
// and safe to invoke concurrently with new enqueues: it works off a
// point-in-time snapshot, and messages appended mid-drain simply wait for
// the next one. Cancellation between messages leaves the remainder queued.
func (d *Drainer) Drain(ctx context.Context) error {
	d.drainMu.Lock()
	defer d.drainMu.Unlock()

	msgs, err := d.store.Snapshot(ctx)
	if err != nil {
		return errors.Join(ErrPersistence, err)
	}

	for _, msg := range msgs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if msg.Attempts >= d.maxAttempts {
			// A previous drain recorded the final failed attempt but was
			// interrupted before the drop; finish the drop without granting
			// another attempt.
			d.dropExhausted(ctx, msg, msg.Attempts, ErrRetryExhausted)
			continue
		}

		sendErr := ErrNoPushAddress
		if msg.Recipient.HasPushAddress() {
			sendErr = d.push.Send(ctx, msg.Recipient.PushToken, msg.Title, msg.Body, msg.Payload)
		}

		if sendErr == nil {
			if err := d.store.Remove(ctx, msg.ID); err != nil {
				// Delivered but not durably recorded; the message will be
				// redelivered next drain, which consumers must tolerate.
				d.logger.LogAttrs(ctx, slog.LevelError, "Failed to remove delivered message",
					logger.MessageID(msg.ID),
					logger.Error(err),
				)
			} else {
				d.logger.LogAttrs(ctx, slog.LevelInfo, "Queued message delivered",
					logger.MessageID(msg.ID),
					logger.ContactID(msg.Recipient.ContactID),
					logger.Channel("push"),
				)
			}
			continue
		}

		attempts, err := d.store.IncrementAttempts(ctx, msg.ID)
		if err != nil {
			if errors.Is(err, ErrMessageNotFound) {
				continue // removed by a concurrent drain
			}
			d.logger.LogAttrs(ctx, slog.LevelError, "Failed to record delivery attempt",
				logger.MessageID(msg.ID),
				logger.Error(err),
			)
			continue
		}

		if attempts < d.maxAttempts {
			d.logger.LogAttrs(ctx, slog.LevelWarn, "Queued message redelivery failed",
				logger.MessageID(msg.ID),
				logger.Attempts(attempts),
				logger.Error(sendErr),
			)
			continue
		}

		d.dropExhausted(ctx, msg, attempts, sendErr)
	}

	return nil
}

// dropExhausted records the drop durably first, then emits the
// permanent-failure event exactly once.
func (d *Drainer) dropExhausted(ctx context.Context, msg Message, attempts int, lastErr error) {
	if err := d.store.Remove(ctx, msg.ID); err != nil {
		d.logger.LogAttrs(ctx, slog.LevelError, "Failed to drop exhausted message",
			logger.MessageID(msg.ID),
			logger.Error(err),
		)
		return
	}

	msg.Attempts = attempts
	d.logger.LogAttrs(ctx, slog.LevelError, "Queued message dropped after exhausting retries",
		logger.MessageID(msg.ID),
		logger.ContactID(msg.Recipient.ContactID),
		logger.Attempts(attempts),
		logger.Error(lastErr),
	)
	if d.onExhausted != nil {
		d.onExhausted(RetryExhausted{Message: msg, LastErr: lastErr, At: time.Now()})
	}
}
