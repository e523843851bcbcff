package checkin

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Store in memory for testing and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*CheckIn
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID]*CheckIn),
	}
}

// Create implements Store.
func (ms *MemoryStore) Create(ctx context.Context, c CheckIn) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.records[c.ID]; exists {
		return fmt.Errorf("check-in with ID %s already exists", c.ID)
	}

	// Clone to prevent external modifications
	record := c
	ms.records[c.ID] = &record

	return nil
}

// Get implements Store.
func (ms *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*CheckIn, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	record, ok := ms.records[id]
	if !ok {
		return nil, ErrNotFound
	}

	recordCopy := *record
	return &recordCopy, nil
}

// UpdateStatus implements Store with an in-memory compare-and-swap.
func (ms *MemoryStore) UpdateStatus(ctx context.Context, c CheckIn, expected Status) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	record, ok := ms.records[c.ID]
	if !ok {
		return ErrNotFound
	}

	if record.Status != expected {
		return ErrStatusConflict
	}

	recordCopy := c
	ms.records[c.ID] = &recordCopy

	return nil
}

// ListUnresolved implements Store.
func (ms *MemoryStore) ListUnresolved(ctx context.Context) ([]CheckIn, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make([]CheckIn, 0)
	for _, record := range ms.records {
		if record.Status == StatusPending || record.Status == StatusOverdue {
			out = append(out, *record)
		}
	}

	return out, nil
}
