// Package graph builds and persists the task dependency graph.
//
// The package owns three concerns:
//
//   - converting a parsed task collection into node and edge records with
//     default positions ([BuildNodes], [BuildEdges])
//   - the persisted snapshot format ([GraphData]), a versionless JSON object
//     holding nodes, edges, and the viewport
//   - reconciling a saved snapshot with freshly parsed tasks without losing
//     user-chosen layout work ([Restore], [Refresh])
//
// The format is designed for round-trip fidelity: save → load → save
// produces identical results. Node IDs always equal the owning task's ID,
// and edge IDs are a pure function of their endpoints.
package graph

import (
	"encoding/json"

	"github.com/taskweave/taskweave/pkg/task"
)

// Direction is the rank direction of the laid-out graph.
type Direction string

// Layout directions. Horizontal ranks run left-to-right, vertical ranks
// top-to-bottom.
const (
	DirectionHorizontal Direction = "horizontal"
	DirectionVertical   Direction = "vertical"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionHorizontal || d == DirectionVertical
}

// Position is a node position in layout coordinates, referring to the node
// center.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// DisplayConfig carries rendering options that travel with each node but
// are interpreted only by the excluded rendering layer.
type DisplayConfig struct {
	Direction    Direction `json:"direction" bson:"direction"`
	ShowTags     bool      `json:"showTags" bson:"showTags"`
	ShowPriority bool      `json:"showPriority" bson:"showPriority"`
	ShowStar     bool      `json:"showStar" bson:"showStar"`
	TagColoring  string    `json:"tagColoring,omitempty" bson:"tagColoring,omitempty"`
}

// NodeData is the payload of a graph node.
type NodeData struct {
	Task    task.Task     `json:"task" bson:"task"`
	Display DisplayConfig `json:"displayConfig" bson:"displayConfig"`
}

// Node is one task in the graph. ID always equals the owning task's ID.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Position Position `json:"position" bson:"position"`
	Data     NodeData `json:"data" bson:"data"`
}

// EdgeData is the payload of a graph edge.
type EdgeData struct {
	Marker string `json:"marker" bson:"marker"`
}

// Edge is one dependency: Source must complete before Target.
// ID is always "source-target".
type Edge struct {
	ID     string   `json:"id" bson:"id"`
	Source string   `json:"source" bson:"source"`
	Target string   `json:"target" bson:"target"`
	Data   EdgeData `json:"data" bson:"data"`
}

// EdgeID derives the edge identifier for a dependency pair.
func EdgeID(source, target string) string {
	return source + "-" + target
}

// =============================================================================
// Persisted snapshot
// =============================================================================

// SnapshotNode is one node as persisted. TaskData retains the task payload
// so a node survives its task disappearing from a rescan: a node is a
// durable visual placement, not merely a view over live data.
type SnapshotNode struct {
	ID       string     `json:"id" bson:"id"`
	Position Position   `json:"position" bson:"position"`
	TaskID   string     `json:"taskId" bson:"taskId"`
	TaskData *task.Task `json:"taskData,omitempty" bson:"taskData,omitempty"`
}

// SnapshotEdge is one edge as persisted.
type SnapshotEdge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
}

// Viewport is the saved pan/zoom state.
type Viewport struct {
	X    float64 `json:"x" bson:"x"`
	Y    float64 `json:"y" bson:"y"`
	Zoom float64 `json:"zoom" bson:"zoom"`
}

// GraphData is the persisted node/edge/viewport snapshot. It is created
// empty on first use, replaced wholesale on every save, and loaded once per
// session.
type GraphData struct {
	Nodes    []SnapshotNode `json:"nodes" bson:"nodes"`
	Edges    []SnapshotEdge `json:"edges" bson:"edges"`
	Viewport Viewport       `json:"viewport" bson:"viewport"`
}

// Marshal serializes the snapshot to indented JSON.
func (g GraphData) Marshal() ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// UnmarshalGraphData deserializes JSON bytes into a snapshot.
func UnmarshalGraphData(data []byte) (GraphData, error) {
	var g GraphData
	if err := json.Unmarshal(data, &g); err != nil {
		return GraphData{}, err
	}
	return g, nil
}
