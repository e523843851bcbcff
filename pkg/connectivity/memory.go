package connectivity

import (
	"context"
	"sync"
	"time"
)

type subscription struct {
	ch     chan Event
	closed bool
	mu     sync.RWMutex
}

func newSubscription(bufferSize int) *subscription {
	return &subscription{
		ch: make(chan Event, bufferSize),
	}
}

func (s *subscription) Events() <-chan Event {
	return s.ch
}

func (s *subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
	return nil
}

func (s *subscription) send(ev Event) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

// MemoryMonitor is an in-process Monitor fed by the platform's reachability
// callbacks through SetOnline/SetOffline. It drops events for slow consumers
// rather than blocking the producer. All methods are safe for concurrent use.
type MemoryMonitor struct {
	status      Status
	subscribers map[*subscription]struct{}
	bufferSize  int
	closed      bool
	mu          sync.RWMutex
	cleanupWg   sync.WaitGroup // tracks context-cancellation cleanup goroutines
}

// MonitorOption configures a MemoryMonitor.
type MonitorOption func(*MemoryMonitor)

// WithBufferSize sets the per-subscriber channel buffer. A minimum of 1 is
// enforced so sends stay non-blocking.
func WithBufferSize(n int) MonitorOption {
	return func(m *MemoryMonitor) {
		m.bufferSize = max(n, 1)
	}
}

// NewMemoryMonitor creates a monitor starting in the given state.
func NewMemoryMonitor(initial Status, opts ...MonitorOption) *MemoryMonitor {
	m := &MemoryMonitor{
		status:      initial,
		subscribers: make(map[*subscription]struct{}),
		bufferSize:  4,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Status returns the last reported network state.
func (m *MemoryMonitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Subscribe creates a new subscription that receives every subsequent
// transition. The subscription is removed automatically when the provided
// context is cancelled. If the monitor is already closed, the returned
// subscription is closed too.
func (m *MemoryMonitor) Subscribe(ctx context.Context) Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub := newSubscription(m.bufferSize)
	if m.closed {
		_ = sub.Close()
		return sub
	}

	m.subscribers[sub] = struct{}{}

	if ctx.Done() != nil {
		m.cleanupWg.Add(1)
		go func() {
			defer m.cleanupWg.Done()
			<-ctx.Done()
			m.unsubscribe(sub)
		}()
	}

	return sub
}

// SetOnline reports that connectivity has been restored.
func (m *MemoryMonitor) SetOnline() {
	m.setStatus(Online)
}

// SetOffline reports that connectivity has been lost.
func (m *MemoryMonitor) SetOffline() {
	m.setStatus(Offline)
}

// setStatus publishes a transition to all subscribers. Repeated reports of
// the current state are ignored so subscribers only see actual transitions.
func (m *MemoryMonitor) setStatus(s Status) {
	m.mu.Lock()
	if m.closed || m.status == s {
		m.mu.Unlock()
		return
	}
	m.status = s
	ev := Event{Status: s, At: time.Now()}

	subs := make([]*subscription, 0, len(m.subscribers))
	for sub := range m.subscribers {
		subs = append(subs, sub)
	}
	m.mu.Unlock()

	for _, sub := range subs {
		if !sub.send(ev) {
			// Detach slow/closed subscribers asynchronously so one stuck
			// consumer cannot delay the rest.
			go m.unsubscribe(sub)
		}
	}
}

// Close shuts down the monitor and closes all subscriptions.
// It is safe to call Close multiple times.
func (m *MemoryMonitor) Close() error {
	m.mu.Lock()

	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true

	for sub := range m.subscribers {
		_ = sub.Close()
	}
	clear(m.subscribers)
	m.mu.Unlock()

	m.cleanupWg.Wait()
	return nil
}

func (m *MemoryMonitor) unsubscribe(sub *subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.subscribers, sub)
	_ = sub.Close()
}
