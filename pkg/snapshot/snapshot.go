// Package snapshot persists the graph's node/edge/viewport state.
//
// A [Store] holds exactly one snapshot, replaced wholesale on every save.
// Three backends are provided: a file store for local use, plus Redis and
// MongoDB stores for hosted deployments. The [Saver] wraps a store with
// debouncing so rapid successive position changes coalesce into one write,
// with an unconditional Flush for teardown.
package snapshot

import (
	"context"

	"github.com/taskweave/taskweave/pkg/graph"
)

// Store persists one graph snapshot.
//
// Load reports ok=false when no snapshot has been saved yet; that is not an
// error, it is the first-use state. Save replaces the previous snapshot
// wholesale.
type Store interface {
	Load(ctx context.Context) (data graph.GraphData, ok bool, err error)
	Save(ctx context.Context, data graph.GraphData) error
	Close() error
}

// MemStore is an in-memory store, useful for tests and ephemeral sessions.
type MemStore struct {
	data  graph.GraphData
	saved bool
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore { return &MemStore{} }

// Load returns the last saved snapshot.
func (s *MemStore) Load(ctx context.Context) (graph.GraphData, bool, error) {
	return s.data, s.saved, nil
}

// Save replaces the stored snapshot.
func (s *MemStore) Save(ctx context.Context, data graph.GraphData) error {
	s.data = data
	s.saved = true
	return nil
}

// Close does nothing for the in-memory store.
func (s *MemStore) Close() error { return nil }

var _ Store = (*MemStore)(nil)
