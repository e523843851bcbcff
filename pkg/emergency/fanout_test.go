package emergency_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/safecheck/pkg/alert"
	"github.com/dmitrymomot/safecheck/pkg/connectivity"
	"github.com/dmitrymomot/safecheck/pkg/emergency"
	"github.com/dmitrymomot/safecheck/pkg/offlinequeue"
)

// outcomeByToken is a Deliverer whose per-recipient result is keyed on the
// push token, so tests can fail a specific recipient.
type outcomeByToken struct {
	mu       sync.Mutex
	failures map[string]error
	calls    int
}

func (d *outcomeByToken) Deliver(ctx context.Context, rcpt alert.Recipient, title, body string, payload map[string]any) alert.Outcome {
	d.mu.Lock()
	d.calls++
	err, failed := d.failures[rcpt.PushToken]
	d.mu.Unlock()

	if failed {
		return alert.Outcome{Channel: alert.ChannelQueued, Success: false, Err: err}
	}
	return alert.Outcome{Channel: alert.ChannelPush, Success: true}
}

func (d *outcomeByToken) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// mapContacts resolves from a fixed id-to-recipient map, preserving input order.
type mapContacts struct {
	recipients map[uuid.UUID]alert.Recipient
	err        error
}

func (mc *mapContacts) RecipientsFor(ctx context.Context, contactIDs []uuid.UUID) ([]alert.Recipient, error) {
	if mc.err != nil {
		return nil, mc.err
	}
	out := make([]alert.Recipient, 0, len(contactIDs))
	for _, id := range contactIDs {
		if rcpt, ok := mc.recipients[id]; ok {
			out = append(out, rcpt)
		}
	}
	return out, nil
}

func newContacts(n int) (*mapContacts, []uuid.UUID) {
	mc := &mapContacts{recipients: make(map[uuid.UUID]alert.Recipient)}
	ids := make([]uuid.UUID, n)
	for i := 0; i < n; i++ {
		id := uuid.New()
		ids[i] = id
		mc.recipients[id] = alert.Recipient{
			ContactID: id,
			PushToken: "token-" + id.String(),
		}
	}
	return mc, ids
}

func TestNewFanout_Validation(t *testing.T) {
	t.Parallel()

	engine := &outcomeByToken{}
	contacts := &mapContacts{}

	_, err := emergency.NewFanout(nil, contacts)
	assert.ErrorIs(t, err, emergency.ErrEngineNil)

	_, err = emergency.NewFanout(engine, nil)
	assert.ErrorIs(t, err, emergency.ErrContactStoreNil)
}

func TestFanout_NotifyDeliversToEveryRecipientInOrder(t *testing.T) {
	t.Parallel()

	engine := &outcomeByToken{}
	contacts, ids := newContacts(5)

	fanout, err := emergency.NewFanout(engine, contacts)
	require.NoError(t, err)

	ev := emergency.NewEvent(uuid.New(), "Alice", nil, ids)
	deliveries, err := fanout.Notify(context.Background(), ev)
	require.NoError(t, err)
	require.Len(t, deliveries, 5)

	for i, d := range deliveries {
		assert.Equal(t, ids[i], d.ContactID, "deliveries must follow snapshot order")
		assert.True(t, d.Outcome.Success)
	}
	assert.Equal(t, 5, engine.callCount())
}

func TestFanout_NotifyIsolatesPartialFailures(t *testing.T) {
	t.Parallel()

	contacts, ids := newContacts(3)
	engine := &outcomeByToken{failures: map[string]error{
		"token-" + ids[1].String(): assert.AnError,
	}}

	fanout, err := emergency.NewFanout(engine, contacts)
	require.NoError(t, err)

	ev := emergency.NewEvent(uuid.New(), "Alice", nil, ids)
	deliveries, err := fanout.Notify(context.Background(), ev)
	require.NoError(t, err, "per-recipient failures never become a batch error")
	require.Len(t, deliveries, 3)

	assert.True(t, deliveries[0].Outcome.Success)
	assert.False(t, deliveries[1].Outcome.Success)
	assert.ErrorIs(t, deliveries[1].Outcome.Err, assert.AnError)
	assert.True(t, deliveries[2].Outcome.Success)
}

func TestFanout_NotifyEmptySnapshot(t *testing.T) {
	t.Parallel()

	fanout, err := emergency.NewFanout(&outcomeByToken{}, &mapContacts{})
	require.NoError(t, err)

	ev := emergency.NewEvent(uuid.New(), "Alice", nil, nil)
	deliveries, err := fanout.Notify(context.Background(), ev)
	assert.NoError(t, err)
	assert.Nil(t, deliveries)
}

func TestFanout_NotifyResolutionFailure(t *testing.T) {
	t.Parallel()

	engine := &outcomeByToken{}
	contacts := &mapContacts{err: assert.AnError}

	fanout, err := emergency.NewFanout(engine, contacts)
	require.NoError(t, err)

	ev := emergency.NewEvent(uuid.New(), "Alice", nil, []uuid.UUID{uuid.New()})
	_, err = fanout.Notify(context.Background(), ev)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, engine.callCount(), "no delivery may start when resolution failed")
}

func TestFanout_NotifyWithConcurrencyLimit(t *testing.T) {
	t.Parallel()

	engine := &outcomeByToken{}
	contacts, ids := newContacts(20)

	fanout, err := emergency.NewFanout(engine, contacts, emergency.WithConcurrencyLimit(2))
	require.NoError(t, err)

	ev := emergency.NewEvent(uuid.New(), "Alice", nil, ids)
	deliveries, err := fanout.Notify(context.Background(), ev)
	require.NoError(t, err)
	assert.Len(t, deliveries, 20)
	assert.Equal(t, 20, engine.callCount())
}

func TestEvent_SnapshotIsolatedFromCallerSlice(t *testing.T) {
	t.Parallel()

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	ev := emergency.NewEvent(uuid.New(), "Alice", nil, ids)

	ids[0] = uuid.New()
	assert.NotEqual(t, ids[0], ev.RecipientContactIDs[0])
}

// failingPush rejects sends for one specific token.
type failingPush struct {
	badToken string
	mu       sync.Mutex
	sent     []string
}

func (fp *failingPush) Send(ctx context.Context, pushToken, title, body string, payload map[string]any) error {
	if pushToken == fp.badToken {
		return assert.AnError
	}
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.sent = append(fp.sent, pushToken)
	return nil
}

// Exercises the full chain: fanout over a real delivery engine backed by the
// durable queue. One recipient's push rejects; their alert must land in the
// queue as a successful handoff without disturbing the others.
func TestFanout_WithDeliveryEngineAndQueue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	mon := connectivity.NewMemoryMonitor(connectivity.Online)
	defer mon.Close()

	contacts, ids := newContacts(3)
	push := &failingPush{badToken: "token-" + ids[1].String()}

	queueStore := offlinequeue.NewMemoryStore()
	queue, err := offlinequeue.NewQueue(queueStore)
	require.NoError(t, err)

	engine, err := alert.NewEngine(mon, push, queue)
	require.NoError(t, err)

	fanout, err := emergency.NewFanout(engine, contacts)
	require.NoError(t, err)

	loc := &emergency.LatLng{Latitude: 51.5, Longitude: -0.12}
	ev := emergency.NewEvent(uuid.New(), "Alice", loc, ids)

	deliveries, err := fanout.Notify(ctx, ev)
	require.NoError(t, err)
	require.Len(t, deliveries, 3)

	assert.Equal(t, alert.ChannelPush, deliveries[0].Outcome.Channel)
	assert.Equal(t, alert.ChannelQueued, deliveries[1].Outcome.Channel)
	assert.True(t, deliveries[1].Outcome.Success, "queue handoff counts as success")
	assert.Equal(t, alert.ChannelPush, deliveries[2].Outcome.Channel)

	queued, err := queueStore.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, ids[1], queued[0].Recipient.ContactID)
	assert.Equal(t, "EMERGENCY ALERT", queued[0].Title)
	assert.True(t, strings.Contains(queued[0].Body, "Alice needs help!"))
	assert.True(t, strings.Contains(queued[0].Body, "https://maps.google.com/?q=51.5,-0.12"))
	assert.Equal(t, "emergency", queued[0].Payload["type"])
}
