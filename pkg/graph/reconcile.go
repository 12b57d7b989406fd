package graph

import "github.com/taskweave/taskweave/pkg/task"

// Restore rebuilds live nodes and edges from a saved snapshot. Every saved
// node comes back verbatim, position and retained task payload alike,
// whether or not it still matches a freshly parsed task. Nodes persisted
// without task data reconstruct a minimal payload from the task id so the
// node remains addressable.
func Restore(saved GraphData, display DisplayConfig) ([]Node, []Edge) {
	nodes := make([]Node, len(saved.Nodes))
	for i, sn := range saved.Nodes {
		data := NodeData{Display: display}
		if sn.TaskData != nil {
			data.Task = *sn.TaskData
		} else {
			data.Task = task.Task{ID: sn.TaskID}
		}
		nodes[i] = Node{ID: sn.ID, Position: sn.Position, Data: data}
	}

	edges := make([]Edge, len(saved.Edges))
	for i, se := range saved.Edges {
		edges[i] = Edge{
			ID:     se.ID,
			Source: se.Source,
			Target: se.Target,
			Data:   EdgeData{Marker: se.ID},
		}
	}
	return nodes, edges
}

// Refresh reconciles live nodes with freshly scanned tasks. Matching is by
// identifier only: a match swaps the node's task payload in place while the
// position is preserved; a node whose task is gone stays as-is. Refresh
// never adds or removes nodes and never touches edges; between explicit
// rebuilds the saved edge list is authoritative.
func Refresh(nodes []Node, fresh []task.Task) []Node {
	byID := make(map[string]task.Task, len(fresh))
	for _, t := range fresh {
		byID[t.ID] = t
	}

	out := make([]Node, len(nodes))
	for i, n := range nodes {
		if t, ok := byID[n.ID]; ok {
			n.Data.Task = t
		}
		out[i] = n
	}
	return out
}

// Snapshot serializes the complete current node/edge/viewport state into
// the persisted form, replacing whatever was saved before.
func Snapshot(nodes []Node, edges []Edge, viewport Viewport) GraphData {
	saved := GraphData{
		Nodes:    make([]SnapshotNode, len(nodes)),
		Edges:    make([]SnapshotEdge, len(edges)),
		Viewport: viewport,
	}
	for i, n := range nodes {
		t := n.Data.Task
		saved.Nodes[i] = SnapshotNode{
			ID:       n.ID,
			Position: n.Position,
			TaskID:   n.Data.Task.ID,
			TaskData: &t,
		}
	}
	for i, e := range edges {
		saved.Edges[i] = SnapshotEdge{ID: e.ID, Source: e.Source, Target: e.Target}
	}
	return saved
}
