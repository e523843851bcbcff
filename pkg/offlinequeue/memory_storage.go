package offlinequeue

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Store in memory for testing and local development.
// It preserves enqueue order and is safe for concurrent use. It is durable
// only for the lifetime of the process; production deployments use RedisStore.
type MemoryStore struct {
	mu       sync.RWMutex
	messages map[uuid.UUID]*Message
	order    []uuid.UUID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		messages: make(map[uuid.UUID]*Message),
	}
}

// Append implements Store.
func (ms *MemoryStore) Append(ctx context.Context, msg Message) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	// Clone to prevent external modifications
	msgCopy := msg
	ms.messages[msg.ID] = &msgCopy
	ms.order = append(ms.order, msg.ID)

	return nil
}

// Snapshot implements Store.
func (ms *MemoryStore) Snapshot(ctx context.Context) ([]Message, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make([]Message, 0, len(ms.messages))
	for _, id := range ms.order {
		if msg, ok := ms.messages[id]; ok {
			out = append(out, *msg)
		}
	}

	return out, nil
}

// Remove implements Store. Removing an unknown id is a no-op.
func (ms *MemoryStore) Remove(ctx context.Context, id uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.messages[id]; !ok {
		return nil
	}

	delete(ms.messages, id)
	ms.order = slices.DeleteFunc(ms.order, func(other uuid.UUID) bool {
		return other == id
	})

	return nil
}

// IncrementAttempts implements Store.
func (ms *MemoryStore) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	msg, ok := ms.messages[id]
	if !ok {
		return 0, ErrMessageNotFound
	}

	msg.Attempts++
	return msg.Attempts, nil
}

// Len returns the number of queued messages.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.messages)
}
