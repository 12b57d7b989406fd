package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/taskweave/taskweave/pkg/graph"
)

// DefaultDebounce is the quiet period before a scheduled save is written.
const DefaultDebounce = 500 * time.Millisecond

// Saver debounces writes to a Store. Rapid successive Schedule calls
// coalesce into one write after a quiet period; Flush writes any pending
// state immediately and must be called before the owning context is torn
// down, or the final state is lost.
type Saver struct {
	store Store
	delay time.Duration

	// OnError receives failures from debounced background writes, which
	// have no caller left to return to. Optional.
	OnError func(error)

	mu      sync.Mutex
	timer   *time.Timer
	pending *graph.GraphData
	closed  bool
}

// NewSaver wraps store with debouncing. A non-positive delay uses
// DefaultDebounce.
func NewSaver(store Store, delay time.Duration) *Saver {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Saver{store: store, delay: delay}
}

// Schedule records data as the state to persist and (re)starts the quiet
// period. Only the most recent data survives coalescing.
func (s *Saver) Schedule(data graph.GraphData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.pending = &data
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		if err := s.Flush(context.Background()); err != nil && s.OnError != nil {
			s.OnError(err)
		}
	})
}

// Flush writes any pending state now and cancels the quiet period.
// With nothing pending it is a no-op.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if pending == nil {
		return nil
	}
	return s.store.Save(ctx, *pending)
}

// Close flushes pending state and rejects further scheduling. The
// underlying store is left open; it belongs to the caller.
func (s *Saver) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.Flush(ctx)
}
