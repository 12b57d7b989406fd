package graph

import "github.com/taskweave/taskweave/pkg/task"

// DefaultNodeSpacing is the vertical distance between stacked default
// positions, used before a layout pass assigns real geometry.
const DefaultNodeSpacing = 100.0

// BuildNodes converts a task collection into graph nodes. Each node carries
// the full task plus the display configuration; default positions stack the
// nodes vertically at a fixed spacing pending layout.
func BuildNodes(tasks []task.Task, display DisplayConfig) []Node {
	nodes := make([]Node, len(tasks))
	for i, t := range tasks {
		nodes[i] = Node{
			ID:       t.ID,
			Position: Position{X: 0, Y: float64(i) * DefaultNodeSpacing},
			Data:     NodeData{Task: t, Display: display},
		}
	}
	return nodes
}

// BuildEdges emits one edge per entry of every task's incoming link list:
// the entry must complete before the task, so the entry is the source and
// the task the target. Edge id and marker are both "source-target".
//
// Dangling sources (identifiers with no matching node) are emitted
// anyway; pruning invisible edges is a rendering concern, and a dangling
// reference must never break graph construction.
func BuildEdges(tasks []task.Task) []Edge {
	var edges []Edge
	for _, t := range tasks {
		for _, source := range t.IncomingLinks {
			id := EdgeID(source, t.ID)
			edges = append(edges, Edge{
				ID:     id,
				Source: source,
				Target: t.ID,
				Data:   EdgeData{Marker: id},
			})
		}
	}
	return edges
}

// FilterEmpty drops tasks that carry no content of their own (template
// placeholders and similar structural noise).
func FilterEmpty(tasks []task.Task) []task.Task {
	kept := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsEmpty() {
			kept = append(kept, t)
		}
	}
	return kept
}
