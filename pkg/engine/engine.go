// Package engine coordinates one synchronization session over a vault.
//
// A [Session] owns the live graph state (nodes, edges, viewport), scans the
// vault for tasks, lays nodes out, persists snapshots, and rewrites
// documents when the graph is mutated. All collaborators are injected
// through [Options]; the session holds no ambient globals.
//
// Mutations are optimistic: the in-memory graph is updated first, then the
// document rewrite is confirmed. A rewrite that fails or leaves the text
// unchanged reverts the in-memory change, using a revert captured when the
// optimistic update was applied.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taskweave/taskweave/pkg/errors"
	"github.com/taskweave/taskweave/pkg/graph"
	"github.com/taskweave/taskweave/pkg/layout"
	"github.com/taskweave/taskweave/pkg/marker"
	"github.com/taskweave/taskweave/pkg/observability"
	"github.com/taskweave/taskweave/pkg/snapshot"
	"github.com/taskweave/taskweave/pkg/task"
	"github.com/taskweave/taskweave/pkg/vault"
)

// Options configures a session. Vault is required; everything else has a
// usable default.
type Options struct {
	// Vault is the document store the session scans and rewrites.
	Vault vault.Store

	// Snapshots persists the graph between sessions. Defaults to an
	// in-memory store.
	Snapshots snapshot.Store

	// Layout positions nodes on Rebuild. Nil skips layout; nodes keep
	// their default stacked positions.
	Layout layout.Engine

	// Dialect is the write policy for new dependency markers.
	// Defaults to the individual dialect.
	Dialect marker.Dialect

	// Display travels with every node for the rendering layer.
	Display graph.DisplayConfig

	// Debounce is the quiet period for coalesced snapshot saves.
	Debounce time.Duration
}

// Session is one live synchronization session.
type Session struct {
	vault   vault.Store
	snaps   snapshot.Store
	saver   *snapshot.Saver
	layout  layout.Engine
	dialect marker.Dialect
	display graph.DisplayConfig

	mu       sync.Mutex
	nodes    []graph.Node
	edges    []graph.Edge
	viewport graph.Viewport
}

// New creates a session from opts.
func New(opts Options) (*Session, error) {
	if opts.Vault == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "vault store is required")
	}
	if opts.Dialect == marker.DialectNone {
		opts.Dialect = marker.DialectIndividual
	}
	if !opts.Dialect.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidDialect, "unknown dialect: %s", opts.Dialect)
	}
	if opts.Display.Direction == "" {
		opts.Display.Direction = graph.DirectionVertical
	}
	if !opts.Display.Direction.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidDirection, "unknown direction: %s", opts.Display.Direction)
	}
	if opts.Snapshots == nil {
		opts.Snapshots = snapshot.NewMemStore()
	}

	snaps := hookedStore{store: opts.Snapshots, name: fmt.Sprintf("%T", opts.Snapshots)}
	return &Session{
		vault:   opts.Vault,
		snaps:   snaps,
		saver:   snapshot.NewSaver(snaps, opts.Debounce),
		layout:  opts.Layout,
		dialect: opts.Dialect,
		display: opts.Display,
	}, nil
}

// =============================================================================
// Scanning
// =============================================================================

// Scan parses every vault document into tasks. Each document contributes
// its checklist lines as inline tasks; a document whose frontmatter carries
// a status is additionally a note task. Empty tasks are filtered out.
//
// Malformed frontmatter never fails the scan; the document simply
// contributes no note task.
func (s *Session) Scan(ctx context.Context) ([]task.Task, error) {
	root := s.vaultRoot()
	start := time.Now()
	observability.Engine().OnScanStart(ctx, root)

	tasks, err := s.scan(ctx)
	observability.Engine().OnScanComplete(ctx, root, len(tasks), time.Since(start), err)
	return tasks, err
}

func (s *Session) scan(ctx context.Context) ([]task.Task, error) {
	docs, err := s.vault.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	resolve := vault.Resolver(ctx, s.vault)

	var tasks []task.Task
	for _, doc := range docs {
		text, err := s.vault.ReadDocument(ctx, doc.Path)
		if err != nil {
			return nil, err
		}
		if attrs, ok, err := vault.ParseFrontmatter(text); err == nil && ok {
			tasks = append(tasks, task.ParseNote(doc.Path, doc.Name, attrs, resolve))
		}
		tasks = append(tasks, task.ParseDocument(doc.Path, text)...)
	}
	return graph.FilterEmpty(tasks), nil
}

// =============================================================================
// Graph lifecycle
// =============================================================================

// Rebuild rescans the vault and rebuilds nodes and edges from scratch,
// recomputing edges from task dependency data and running a full layout
// pass. User positions from the previous state are discarded; use Refresh
// to keep them.
func (s *Session) Rebuild(ctx context.Context) error {
	tasks, err := s.Scan(ctx)
	if err != nil {
		return err
	}

	nodes := graph.BuildNodes(tasks, s.display)
	edges := graph.BuildEdges(tasks)

	if s.layout != nil {
		dir := string(s.display.Direction)
		start := time.Now()
		observability.Engine().OnLayoutStart(ctx, dir, len(nodes))
		nodes, err = layout.Apply(ctx, s.layout, nodes, edges, s.display.Direction)
		observability.Engine().OnLayoutComplete(ctx, dir, time.Since(start), err)
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.nodes, s.edges = nodes, edges
	s.mu.Unlock()
	s.scheduleSave()
	return nil
}

// Refresh rescans the vault and reconciles the fresh tasks into the
// existing nodes by identifier, preserving every node's position. Nodes
// are never added or removed and the edge list is left untouched; only
// Rebuild recomputes those.
func (s *Session) Refresh(ctx context.Context) error {
	tasks, err := s.Scan(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.nodes = graph.Refresh(s.nodes, tasks)
	s.mu.Unlock()
	s.scheduleSave()
	return nil
}

// Load restores the session state from the saved snapshot. It reports
// ok=false when no snapshot exists yet, which leaves the state empty.
func (s *Session) Load(ctx context.Context) (bool, error) {
	data, ok, err := s.snaps.Load(ctx)
	if err != nil || !ok {
		return false, err
	}

	nodes, edges := graph.Restore(data, s.display)
	s.mu.Lock()
	s.nodes, s.edges, s.viewport = nodes, edges, data.Viewport
	s.mu.Unlock()
	return true, nil
}

// Save writes the complete current state to the snapshot store
// immediately, bypassing the debounce.
func (s *Session) Save(ctx context.Context) error {
	return s.snaps.Save(ctx, s.SnapshotData())
}

// Flush writes any debounced pending save now.
func (s *Session) Flush(ctx context.Context) error {
	return s.saver.Flush(ctx)
}

// Close flushes pending state and closes the snapshot store. Call it
// unconditionally on teardown; skipping it can lose the final state.
func (s *Session) Close(ctx context.Context) error {
	if err := s.saver.Close(ctx); err != nil {
		return err
	}
	return s.snaps.Close()
}

// scheduleSave queues a debounced snapshot of the current state.
func (s *Session) scheduleSave() {
	s.saver.Schedule(s.SnapshotData())
}

// =============================================================================
// State access
// =============================================================================

// Nodes returns a copy of the current nodes.
func (s *Session) Nodes() []graph.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]graph.Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Edges returns a copy of the current edges.
func (s *Session) Edges() []graph.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]graph.Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// Tasks returns the task payload of every current node.
func (s *Session) Tasks() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]task.Task, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.Data.Task
	}
	return out
}

// Viewport returns the current pan/zoom state.
func (s *Session) Viewport() graph.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// SetViewport records a new pan/zoom state and schedules a save.
func (s *Session) SetViewport(v graph.Viewport) {
	s.mu.Lock()
	s.viewport = v
	s.mu.Unlock()
	s.scheduleSave()
}

// MoveNode repositions one node and schedules a save. Rapid successive
// moves coalesce into a single write.
func (s *Session) MoveNode(id string, pos graph.Position) bool {
	s.mu.Lock()
	i := s.nodeIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.nodes[i].Position = pos
	s.mu.Unlock()
	s.scheduleSave()
	return true
}

// SnapshotData serializes the complete current state into the persisted
// snapshot form.
func (s *Session) SnapshotData() graph.GraphData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return graph.Snapshot(s.nodes, s.edges, s.viewport)
}

// nodeIndex returns the index of the node with id, or -1. Callers hold mu.
func (s *Session) nodeIndex(id string) int {
	for i, n := range s.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) vaultRoot() string {
	if r, ok := s.vault.(interface{ Root() string }); ok {
		return r.Root()
	}
	return ""
}

// =============================================================================
// Snapshot instrumentation
// =============================================================================

// hookedStore wraps a snapshot store with observability hooks.
type hookedStore struct {
	store snapshot.Store
	name  string
}

func (h hookedStore) Load(ctx context.Context) (graph.GraphData, bool, error) {
	start := time.Now()
	data, ok, err := h.store.Load(ctx)
	observability.Snapshot().OnLoad(ctx, h.name, ok, time.Since(start), err)
	return data, ok, err
}

func (h hookedStore) Save(ctx context.Context, data graph.GraphData) error {
	start := time.Now()
	err := h.store.Save(ctx, data)
	observability.Snapshot().OnSave(ctx, h.name, len(data.Nodes), time.Since(start), err)
	return err
}

func (h hookedStore) Close() error { return h.store.Close() }

var _ snapshot.Store = hookedStore{}
