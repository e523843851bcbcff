package checkin

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex serializes lifecycle transitions per check-in id. Entries are
// reference-counted and removed when the last holder unlocks, so the map
// does not grow with the number of check-ins ever seen.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[uuid.UUID]*lockEntry),
	}
}

func (km *keyedMutex) lock(id uuid.UUID) {
	km.mu.Lock()
	entry, ok := km.locks[id]
	if !ok {
		entry = &lockEntry{}
		km.locks[id] = entry
	}
	entry.refs++
	km.mu.Unlock()

	entry.mu.Lock()
}

func (km *keyedMutex) unlock(id uuid.UUID) {
	km.mu.Lock()
	entry := km.locks[id]
	entry.refs--
	if entry.refs == 0 {
		delete(km.locks, id)
	}
	km.mu.Unlock()

	entry.mu.Unlock()
}
