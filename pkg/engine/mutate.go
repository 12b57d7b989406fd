package engine

import (
	"context"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/taskweave/taskweave/pkg/document"
	"github.com/taskweave/taskweave/pkg/errors"
	"github.com/taskweave/taskweave/pkg/graph"
	"github.com/taskweave/taskweave/pkg/marker"
	"github.com/taskweave/taskweave/pkg/observability"
	"github.com/taskweave/taskweave/pkg/task"
	"github.com/taskweave/taskweave/pkg/vault"
)

// SetStatus sets the task's status, updating the graph optimistically and
// rewriting the owning document.
func (s *Session) SetStatus(ctx context.Context, taskID string, status task.Status) error {
	prev, revert, err := s.tentative(taskID, func(t *task.Task) {
		t.Status = status
	})
	if err != nil {
		return err
	}
	return s.confirm(ctx, prev.Link, document.Operation{
		Kind:   document.OpSetStatus,
		Target: prev,
		Status: status,
	}, revert)
}

// AddTag adds a tag to the task. Adding a tag that is already present is a
// successful no-op.
func (s *Session) AddTag(ctx context.Context, taskID, tag string) error {
	if err := errors.ValidateTag(tag); err != nil {
		return err
	}
	prev, revert, err := s.tentative(taskID, func(t *task.Task) {
		if !slices.Contains(t.Tags, tag) {
			t.Tags = append(slices.Clone(t.Tags), tag)
		}
	})
	if err != nil {
		return err
	}
	return s.confirm(ctx, prev.Link, document.Operation{
		Kind:   document.OpAddTag,
		Target: prev,
		Tag:    tag,
	}, revert)
}

// RemoveTag removes a tag from the task. A missing tag is a no-op.
func (s *Session) RemoveTag(ctx context.Context, taskID, tag string) error {
	if err := errors.ValidateTag(tag); err != nil {
		return err
	}
	prev, revert, err := s.tentative(taskID, func(t *task.Task) {
		if i := slices.Index(t.Tags, tag); i >= 0 {
			t.Tags = slices.Delete(slices.Clone(t.Tags), i, i+1)
		}
	})
	if err != nil {
		return err
	}
	return s.confirm(ctx, prev.Link, document.Operation{
		Kind:   document.OpRemoveTag,
		Target: prev,
		Tag:    tag,
	}, revert)
}

// Star marks the task starred.
func (s *Session) Star(ctx context.Context, taskID string) error {
	return s.setStar(ctx, taskID, true)
}

// Unstar clears the task's star.
func (s *Session) Unstar(ctx context.Context, taskID string) error {
	return s.setStar(ctx, taskID, false)
}

func (s *Session) setStar(ctx context.Context, taskID string, starred bool) error {
	prev, revert, err := s.tentative(taskID, func(t *task.Task) {
		t.Starred = starred
	})
	if err != nil {
		return err
	}
	kind := document.OpAddStar
	if !starred {
		kind = document.OpRemoveStar
	}
	return s.confirm(ctx, prev.Link, document.Operation{
		Kind:   kind,
		Target: prev,
	}, revert)
}

// =============================================================================
// Dependencies
// =============================================================================

// AddDependency records that the source task blocks the target task: an
// edge source -> target, a dependency marker in the target's document, and
// an identity marker on the source when it has none yet.
func (s *Session) AddDependency(ctx context.Context, sourceID, targetID string) error {
	s.mu.Lock()
	si, ti := s.nodeIndex(sourceID), s.nodeIndex(targetID)
	if si < 0 || ti < 0 {
		s.mu.Unlock()
		return errors.New(errors.ErrCodeTaskNotFound, "dependency endpoints %s -> %s not in graph", sourceID, targetID)
	}
	source := s.nodes[si].Data.Task
	target := s.nodes[ti].Data.Task
	s.mu.Unlock()

	op := document.Operation{Kind: document.OpAddDependency, Target: target}
	linkEntry := source.ID

	if target.Kind == task.KindNote {
		op.DependencyRef = "[[" + docTitle(source.Link) + "]]"
		op.DependencyPath = source.Link
		op.Resolve = vault.Resolver(ctx, s.vault)
	} else {
		id, err := s.ensureShortID(ctx, sourceID)
		if err != nil {
			return err
		}
		op.DependencyID = id
		op.Dialect = s.dialect
		linkEntry = id
		// The target captured above predates a possible id rewrite of the
		// source's document; re-read it in case both live in one document.
		s.mu.Lock()
		if i := s.nodeIndex(targetID); i >= 0 {
			target = s.nodes[i].Data.Task
			op.Target = target
		}
		s.mu.Unlock()
	}

	revert, err := s.tentativeEdge(targetID, linkEntry, true)
	if err != nil {
		return err
	}
	return s.confirm(ctx, target.Link, op, revert)
}

// RemoveDependency removes the source -> target dependency from both the
// graph and the target's document.
func (s *Session) RemoveDependency(ctx context.Context, sourceID, targetID string) error {
	s.mu.Lock()
	si, ti := s.nodeIndex(sourceID), s.nodeIndex(targetID)
	if si < 0 || ti < 0 {
		s.mu.Unlock()
		return errors.New(errors.ErrCodeTaskNotFound, "dependency endpoints %s -> %s not in graph", sourceID, targetID)
	}
	source := s.nodes[si].Data.Task
	target := s.nodes[ti].Data.Task
	s.mu.Unlock()

	op := document.Operation{Kind: document.OpRemoveDependency, Target: target}
	if target.Kind == task.KindNote {
		op.DependencyRef = "[[" + docTitle(source.Link) + "]]"
		op.DependencyPath = source.Link
		op.Resolve = vault.Resolver(ctx, s.vault)
	} else {
		op.DependencyID = sourceID
	}

	revert, err := s.tentativeEdge(targetID, sourceID, false)
	if err != nil {
		return err
	}
	return s.confirm(ctx, target.Link, op, revert)
}

// ensureShortID returns the six-character identifier of the task, writing a
// freshly generated identity marker into its document when it has none.
// On a successful write the node, its task, and its stored text are renamed
// to the new identifier.
func (s *Session) ensureShortID(ctx context.Context, taskID string) (string, error) {
	s.mu.Lock()
	i := s.nodeIndex(taskID)
	if i < 0 {
		s.mu.Unlock()
		return "", errors.New(errors.ErrCodeTaskNotFound, "task %s not in graph", taskID)
	}
	t := s.nodes[i].Data.Task
	s.mu.Unlock()

	if id := marker.OwnID(t.Text); id != "" {
		return id, nil
	}
	if errors.ValidateShortID(t.ID) == nil {
		return t.ID, nil
	}

	id := marker.NewID()
	op := document.Operation{Kind: document.OpSetID, Target: t, ID: id, Dialect: s.dialect}
	changed, err := s.rewrite(ctx, t.Link, op)
	if err != nil {
		return "", err
	}
	if !changed {
		return "", errors.New(errors.ErrCodeTaskNotFound, "task %s not found in %s", taskID, t.Link)
	}

	s.mu.Lock()
	if j := s.nodeIndex(taskID); j >= 0 {
		nt := s.nodes[j].Data.Task
		nt.ID = id
		nt.Text = marker.SetOwnID(nt.Text, id, s.dialect)
		s.nodes[j].ID = id
		s.nodes[j].Data.Task = nt
	}
	s.mu.Unlock()
	return id, nil
}

// =============================================================================
// Optimistic apply
// =============================================================================

// tentative applies a pure in-memory change to the task and returns the
// prior task value plus the revert restoring it, captured as paired data at
// apply time.
func (s *Session) tentative(taskID string, apply func(*task.Task)) (task.Task, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.nodeIndex(taskID)
	if i < 0 {
		return task.Task{}, nil, errors.New(errors.ErrCodeTaskNotFound, "task %s not in graph", taskID)
	}

	prev := s.nodes[i].Data.Task
	next := prev
	apply(&next)
	s.nodes[i].Data.Task = next

	revert := func() {
		if j := s.nodeIndex(taskID); j >= 0 {
			s.nodes[j].Data.Task = prev
		}
	}
	return prev, revert, nil
}

// tentativeEdge optimistically adds or removes the source -> target edge
// together with the target's incoming link entry.
func (s *Session) tentativeEdge(targetID, sourceID string, add bool) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.nodeIndex(targetID)
	if i < 0 {
		return nil, errors.New(errors.ErrCodeTaskNotFound, "task %s not in graph", targetID)
	}

	prevTask := s.nodes[i].Data.Task
	prevEdges := s.edges

	next := prevTask
	edgeID := graph.EdgeID(sourceID, targetID)
	if add {
		if !slices.Contains(next.IncomingLinks, sourceID) {
			next.IncomingLinks = append(slices.Clone(next.IncomingLinks), sourceID)
		}
		if !slices.ContainsFunc(s.edges, func(e graph.Edge) bool { return e.ID == edgeID }) {
			s.edges = append(slices.Clone(s.edges), graph.Edge{
				ID:     edgeID,
				Source: sourceID,
				Target: targetID,
				Data:   graph.EdgeData{Marker: edgeID},
			})
		}
	} else {
		if j := slices.Index(next.IncomingLinks, sourceID); j >= 0 {
			next.IncomingLinks = slices.Delete(slices.Clone(next.IncomingLinks), j, j+1)
		}
		s.edges = slices.DeleteFunc(slices.Clone(s.edges), func(e graph.Edge) bool { return e.ID == edgeID })
	}
	s.nodes[i].Data.Task = next

	revert := func() {
		if j := s.nodeIndex(targetID); j >= 0 {
			s.nodes[j].Data.Task = prevTask
		}
		s.edges = prevEdges
	}
	return revert, nil
}

// confirm performs the document rewrite backing an optimistic change.
// A failed rewrite, or one that left the text unchanged, runs the revert;
// unchanged text without an error is still a success (the operation was
// already reflected in the document).
func (s *Session) confirm(ctx context.Context, docPath string, op document.Operation, revert func()) error {
	changed, err := s.rewrite(ctx, docPath, op)
	if err != nil || !changed {
		s.mu.Lock()
		revert()
		s.mu.Unlock()
		return err
	}
	s.scheduleSave()
	return nil
}

// rewrite routes one operation through the document mutator under the
// vault's per-path serialization, with mutation hooks around it.
func (s *Session) rewrite(ctx context.Context, docPath string, op document.Operation) (bool, error) {
	start := time.Now()
	observability.Engine().OnMutateStart(ctx, string(op.Kind), docPath)
	changed, err := s.vault.RewriteDocument(ctx, docPath, func(text string) (string, error) {
		return document.Apply(text, op), nil
	})
	observability.Engine().OnMutateComplete(ctx, string(op.Kind), docPath, changed, time.Since(start), err)
	return changed, err
}

// docTitle derives a document title from its vault path.
func docTitle(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}
