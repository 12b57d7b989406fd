// Package layout positions graph nodes by delegating to an external
// hierarchical layout algorithm.
//
// The adapter hands the algorithm a skeleton of the graph (node ids with
// fixed dimensions plus the edge list and a rank direction) and maps the
// returned geometry back onto the nodes. Nodes the algorithm could not
// place fall back to the origin, and every placed position is re-centered
// by half a node so coordinates refer to node centers rather than top-left
// corners.
//
// The default [Engine] runs Graphviz's dot layout via goccy/go-graphviz;
// tests substitute a stub.
package layout

import (
	"context"

	"github.com/taskweave/taskweave/pkg/errors"
	"github.com/taskweave/taskweave/pkg/graph"
)

// Fixed node dimensions handed to the layout algorithm, in pixels.
const (
	NodeWidth  = 180.0
	NodeHeight = 40.0
)

// NodeSize is the layout algorithm's view of a node.
type NodeSize struct {
	ID     string
	Width  float64
	Height float64
}

// EdgeRef is the layout algorithm's view of an edge.
type EdgeRef struct {
	Source string
	Target string
}

// Engine is the external layout collaborator. Place returns a position for
// every node it could place; missing ids are legitimate and handled by the
// adapter.
type Engine interface {
	Place(ctx context.Context, nodes []NodeSize, edges []EdgeRef, rankDir string) (map[string]graph.Position, error)
}

// rankDirFor maps a layout direction to the algorithm's rank direction:
// horizontal ranks run left-to-right, vertical ranks top-to-bottom.
func rankDirFor(d graph.Direction) string {
	if d == graph.DirectionHorizontal {
		return "LR"
	}
	return "TB"
}

// Apply lays out nodes using engine and returns them repositioned. Nodes
// absent from the algorithm's output (isolated nodes, or nodes added since
// the last pass) are placed at the origin. Edge endpoints that match no
// node are passed through to the algorithm untouched; dot tolerates them.
func Apply(ctx context.Context, engine Engine, nodes []graph.Node, edges []graph.Edge, dir graph.Direction) ([]graph.Node, error) {
	sizes := make([]NodeSize, len(nodes))
	for i, n := range nodes {
		sizes[i] = NodeSize{ID: n.ID, Width: NodeWidth, Height: NodeHeight}
	}
	refs := make([]EdgeRef, len(edges))
	for i, e := range edges {
		refs[i] = EdgeRef{Source: e.Source, Target: e.Target}
	}

	placed, err := engine.Place(ctx, sizes, refs, rankDirFor(dir))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayout, err, "layout %d nodes", len(nodes))
	}

	out := make([]graph.Node, len(nodes))
	for i, n := range nodes {
		if p, ok := placed[n.ID]; ok {
			n.Position = graph.Position{X: p.X - NodeWidth/2, Y: p.Y - NodeHeight/2}
		} else {
			n.Position = graph.Position{}
		}
		out[i] = n
	}
	return out, nil
}
