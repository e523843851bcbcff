package offlinequeue_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/safecheck/pkg/alert"
	"github.com/dmitrymomot/safecheck/pkg/offlinequeue"
)

type failingStore struct {
	offlinequeue.Store
	err error
}

func (fs *failingStore) Append(ctx context.Context, msg offlinequeue.Message) error {
	return fs.err
}

func TestNewQueue_RequiresStore(t *testing.T) {
	t.Parallel()

	_, err := offlinequeue.NewQueue(nil)
	assert.ErrorIs(t, err, offlinequeue.ErrStoreNil)
}

func TestQueue_EnqueuePersistsMessage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := offlinequeue.NewMemoryStore()
	queue, err := offlinequeue.NewQueue(store)
	require.NoError(t, err)

	rcpt := alert.Recipient{
		ContactID: uuid.New(),
		PushToken: "ExponentPushToken[test]",
	}
	payload := map[string]any{"type": "checkIn", "checkInId": uuid.New().String()}

	require.NoError(t, queue.Enqueue(ctx, rcpt, "Check-In", "are you ok?", payload))

	msgs, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	msg := msgs[0]
	assert.NotEqual(t, uuid.Nil, msg.ID)
	assert.Equal(t, rcpt, msg.Recipient)
	assert.Equal(t, "Check-In", msg.Title)
	assert.Equal(t, "are you ok?", msg.Body)
	assert.Equal(t, payload, msg.Payload)
	assert.Zero(t, msg.Attempts)
	assert.False(t, msg.EnqueuedAt.IsZero())
}

func TestQueue_EnqueueWrapsPersistenceFailure(t *testing.T) {
	t.Parallel()

	queue, err := offlinequeue.NewQueue(&failingStore{err: assert.AnError})
	require.NoError(t, err)

	err = queue.Enqueue(context.Background(), alert.Recipient{ContactID: uuid.New()}, "t", "b", nil)
	assert.ErrorIs(t, err, offlinequeue.ErrPersistence)
	assert.ErrorIs(t, err, assert.AnError)
}
