package offlinequeue_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/safecheck/pkg/connectivity"
	"github.com/dmitrymomot/safecheck/pkg/offlinequeue"
)

// fakePush records push sends and fails while failing is set. Safe for
// concurrent use because the drainer loop runs on its own goroutine.
type fakePush struct {
	mu      sync.Mutex
	failing bool
	err     error
	sends   []string
}

func (fp *fakePush) Send(ctx context.Context, pushToken, title, body string, payload map[string]any) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.sends = append(fp.sends, pushToken)
	if fp.failing {
		if fp.err != nil {
			return fp.err
		}
		return assert.AnError
	}
	return nil
}

func (fp *fakePush) sendCount() int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return len(fp.sends)
}

func (fp *fakePush) setFailing(failing bool) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.failing = failing
}

// exhaustedRecorder collects permanent-failure events.
type exhaustedRecorder struct {
	mu     sync.Mutex
	events []offlinequeue.RetryExhausted
}

func (er *exhaustedRecorder) handle(ev offlinequeue.RetryExhausted) {
	er.mu.Lock()
	defer er.mu.Unlock()
	er.events = append(er.events, ev)
}

func (er *exhaustedRecorder) all() []offlinequeue.RetryExhausted {
	er.mu.Lock()
	defer er.mu.Unlock()
	return append([]offlinequeue.RetryExhausted(nil), er.events...)
}

func TestNewDrainer_Validation(t *testing.T) {
	t.Parallel()

	store := offlinequeue.NewMemoryStore()
	push := &fakePush{}
	mon := connectivity.NewMemoryMonitor(connectivity.Offline)
	defer mon.Close()

	_, err := offlinequeue.NewDrainer(nil, push, mon)
	assert.ErrorIs(t, err, offlinequeue.ErrStoreNil)

	_, err = offlinequeue.NewDrainer(store, nil, mon)
	assert.ErrorIs(t, err, offlinequeue.ErrPushChannelNil)

	_, err = offlinequeue.NewDrainer(store, push, nil)
	assert.ErrorIs(t, err, offlinequeue.ErrMonitorNil)
}

func TestDrainer_DrainDeliversAndRemoves(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := offlinequeue.NewMemoryStore()
	push := &fakePush{}
	mon := connectivity.NewMemoryMonitor(connectivity.Online)
	defer mon.Close()

	require.NoError(t, store.Append(ctx, newTestMessage()))
	require.NoError(t, store.Append(ctx, newTestMessage()))

	drainer, err := offlinequeue.NewDrainer(store, push, mon)
	require.NoError(t, err)

	require.NoError(t, drainer.Drain(ctx))

	assert.Equal(t, 2, push.sendCount())
	assert.Equal(t, 0, store.Len())
}

func TestDrainer_DrainFailureKeepsMessageAndCountsAttempt(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := offlinequeue.NewMemoryStore()
	push := &fakePush{failing: true}
	mon := connectivity.NewMemoryMonitor(connectivity.Online)
	defer mon.Close()

	require.NoError(t, store.Append(ctx, newTestMessage()))

	drainer, err := offlinequeue.NewDrainer(store, push, mon)
	require.NoError(t, err)

	require.NoError(t, drainer.Drain(ctx))

	msgs, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, 1, msgs[0].Attempts)
}

func TestDrainer_ExhaustedAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := offlinequeue.NewMemoryStore()
	push := &fakePush{failing: true}
	mon := connectivity.NewMemoryMonitor(connectivity.Online)
	defer mon.Close()

	msg := newTestMessage()
	require.NoError(t, store.Append(ctx, msg))

	rec := &exhaustedRecorder{}
	drainer, err := offlinequeue.NewDrainer(store, push, mon,
		offlinequeue.WithExhaustedHandler(rec.handle))
	require.NoError(t, err)

	// Two failed drains keep the message queued.
	require.NoError(t, drainer.Drain(ctx))
	require.NoError(t, drainer.Drain(ctx))
	assert.Equal(t, 1, store.Len())
	assert.Empty(t, rec.all())

	// The third failure exhausts the message.
	require.NoError(t, drainer.Drain(ctx))
	assert.Equal(t, 0, store.Len())

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, msg.ID, events[0].Message.ID)
	assert.Equal(t, offlinequeue.MaxAttempts, events[0].Message.Attempts)
	assert.Error(t, events[0].LastErr)

	// A later drain must not resurrect it or re-emit the event.
	require.NoError(t, drainer.Drain(ctx))
	assert.Len(t, rec.all(), 1)
}

func TestDrainer_MissingPushTokenCountsAsFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := offlinequeue.NewMemoryStore()
	push := &fakePush{}
	mon := connectivity.NewMemoryMonitor(connectivity.Online)
	defer mon.Close()

	msg := newTestMessage()
	msg.Recipient.PushToken = ""
	require.NoError(t, store.Append(ctx, msg))

	rec := &exhaustedRecorder{}
	drainer, err := offlinequeue.NewDrainer(store, push, mon,
		offlinequeue.WithExhaustedHandler(rec.handle))
	require.NoError(t, err)

	for i := 0; i < offlinequeue.MaxAttempts; i++ {
		require.NoError(t, drainer.Drain(ctx))
	}

	assert.Equal(t, 0, push.sendCount(), "no push address means no send attempt")
	assert.Equal(t, 0, store.Len())

	events := rec.all()
	require.Len(t, events, 1)
	assert.ErrorIs(t, events[0].LastErr, offlinequeue.ErrNoPushAddress)
}

func TestDrainer_DropsMessageAlreadyAtAttemptCap(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := offlinequeue.NewMemoryStore()
	push := &fakePush{}
	mon := connectivity.NewMemoryMonitor(connectivity.Online)
	defer mon.Close()

	// Simulates a crash after the final attempt was recorded but before
	// the drop completed.
	msg := newTestMessage()
	msg.Attempts = offlinequeue.MaxAttempts
	require.NoError(t, store.Append(ctx, msg))

	rec := &exhaustedRecorder{}
	drainer, err := offlinequeue.NewDrainer(store, push, mon,
		offlinequeue.WithExhaustedHandler(rec.handle))
	require.NoError(t, err)

	require.NoError(t, drainer.Drain(ctx))

	assert.Equal(t, 0, push.sendCount(), "a message at the cap gets no further delivery attempt")
	assert.Equal(t, 0, store.Len())

	events := rec.all()
	require.Len(t, events, 1)
	assert.ErrorIs(t, events[0].LastErr, offlinequeue.ErrRetryExhausted)
}

func TestDrainer_WithMaxAttemptsOverride(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := offlinequeue.NewMemoryStore()
	push := &fakePush{failing: true}
	mon := connectivity.NewMemoryMonitor(connectivity.Online)
	defer mon.Close()

	require.NoError(t, store.Append(ctx, newTestMessage()))

	rec := &exhaustedRecorder{}
	drainer, err := offlinequeue.NewDrainer(store, push, mon,
		offlinequeue.WithMaxAttempts(1),
		offlinequeue.WithExhaustedHandler(rec.handle))
	require.NoError(t, err)

	require.NoError(t, drainer.Drain(ctx))

	assert.Equal(t, 0, store.Len())
	assert.Len(t, rec.all(), 1)
}

func TestDrainer_StartDrainsOnOnlineTransition(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := offlinequeue.NewMemoryStore()
	push := &fakePush{}
	mon := connectivity.NewMemoryMonitor(connectivity.Offline)
	defer mon.Close()

	require.NoError(t, store.Append(ctx, newTestMessage()))

	drainer, err := offlinequeue.NewDrainer(store, push, mon)
	require.NoError(t, err)

	require.NoError(t, drainer.Start(ctx))
	defer drainer.Stop()

	assert.ErrorIs(t, drainer.Start(ctx), offlinequeue.ErrAlreadyStarted)

	// Still offline: nothing should move.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, store.Len())

	mon.SetOnline()

	require.Eventually(t, func() bool {
		return store.Len() == 0
	}, time.Second, 10*time.Millisecond, "expected online transition to trigger a drain")
	assert.Equal(t, 1, push.sendCount())
}

func TestDrainer_StartDrainsImmediatelyWhenAlreadyOnline(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := offlinequeue.NewMemoryStore()
	push := &fakePush{}
	mon := connectivity.NewMemoryMonitor(connectivity.Online)
	defer mon.Close()

	require.NoError(t, store.Append(ctx, newTestMessage()))

	drainer, err := offlinequeue.NewDrainer(store, push, mon)
	require.NoError(t, err)

	require.NoError(t, drainer.Start(ctx))
	defer drainer.Stop()

	require.Eventually(t, func() bool {
		return store.Len() == 0
	}, time.Second, 10*time.Millisecond, "expected an initial drain when already online")
}

// gatedPush blocks every send until the gate is closed, simulating a slow
// delivery backend.
type gatedPush struct {
	gate    chan struct{}
	mu      sync.Mutex
	entered int
}

func (gp *gatedPush) Send(ctx context.Context, pushToken, title, body string, payload map[string]any) error {
	gp.mu.Lock()
	gp.entered++
	gp.mu.Unlock()
	select {
	case <-gp.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (gp *gatedPush) enteredCount() int {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	return gp.entered
}

func TestDrainer_SurvivesTransitionBurstDuringDrain(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := offlinequeue.NewMemoryStore()
	push := &gatedPush{gate: make(chan struct{})}
	mon := connectivity.NewMemoryMonitor(connectivity.Offline)
	defer mon.Close()

	require.NoError(t, store.Append(ctx, newTestMessage()))

	drainer, err := offlinequeue.NewDrainer(store, push, mon)
	require.NoError(t, err)
	require.NoError(t, drainer.Start(ctx))
	defer drainer.Stop()

	mon.SetOnline()

	// Wait until the drain is stuck inside the slow send.
	require.Eventually(t, func() bool {
		return push.enteredCount() > 0
	}, time.Second, 10*time.Millisecond)

	// Flap connectivity well past any subscriber buffer while the drain is
	// still in flight.
	for i := 0; i < 10; i++ {
		mon.SetOffline()
		mon.SetOnline()
	}

	close(push.gate)

	require.Eventually(t, func() bool {
		return store.Len() == 0
	}, time.Second, 10*time.Millisecond)

	// The drainer must still react to transitions after the burst.
	mon.SetOffline()
	require.NoError(t, store.Append(ctx, newTestMessage()))
	mon.SetOnline()

	require.Eventually(t, func() bool {
		return store.Len() == 0
	}, 3*time.Second, 10*time.Millisecond, "drainer stopped reacting to online transitions after the burst")
}

func TestDrainer_RecoveredMessageDeliveredOnNextDrain(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := offlinequeue.NewMemoryStore()
	push := &fakePush{failing: true}
	mon := connectivity.NewMemoryMonitor(connectivity.Online)
	defer mon.Close()

	require.NoError(t, store.Append(ctx, newTestMessage()))

	drainer, err := offlinequeue.NewDrainer(store, push, mon)
	require.NoError(t, err)

	require.NoError(t, drainer.Drain(ctx))
	assert.Equal(t, 1, store.Len())

	push.setFailing(false)
	require.NoError(t, drainer.Drain(ctx))
	assert.Equal(t, 0, store.Len())
}
