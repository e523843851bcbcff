package checkin

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializesPerKey(t *testing.T) {
	t.Parallel()

	km := newKeyedMutex()
	id := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.lock(id)
			defer km.unlock(id)
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestKeyedMutex_ReleasesEntries(t *testing.T) {
	t.Parallel()

	km := newKeyedMutex()

	for i := 0; i < 10; i++ {
		id := uuid.New()
		km.lock(id)
		km.unlock(id)
	}

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.locks, "entries must be removed once the last holder unlocks")
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	t.Parallel()

	km := newKeyedMutex()
	a, b := uuid.New(), uuid.New()

	km.lock(a)
	defer km.unlock(a)

	// A different key must not block.
	done := make(chan struct{})
	go func() {
		km.lock(b)
		km.unlock(b)
		close(done)
	}()
	<-done
}
