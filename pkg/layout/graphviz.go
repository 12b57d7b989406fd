package layout

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/taskweave/taskweave/pkg/graph"
)

// formatDOT asks Graphviz for attributed DOT output, which carries the
// computed pos attribute for every placed node.
const formatDOT = graphviz.Format("dot")

// Graphviz runs the dot hierarchical layout. The zero value is ready to use.
type Graphviz struct{}

// NewGraphviz returns a dot-backed layout engine.
func NewGraphviz() *Graphviz { return &Graphviz{} }

// Place implements [Engine] by rendering the skeleton graph through dot and
// extracting the node positions from the attributed output. Graphviz's
// coordinate system grows upward, so y values are flipped to the usual
// screen orientation before returning.
func (g *Graphviz) Place(ctx context.Context, nodes []NodeSize, edges []EdgeRef, rankDir string) (map[string]graph.Position, error) {
	if len(nodes) == 0 {
		return map[string]graph.Position{}, nil
	}

	dot := buildDOT(nodes, edges, rankDir)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, formatDOT, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	return parsePositions(buf.String()), nil
}

// buildDOT renders the layout skeleton as a DOT digraph. Node dimensions
// are fixed; dot expects inches, so pixel sizes are divided by 72.
func buildDOT(nodes []NodeSize, edges []EdgeRef, rankDir string) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankDir)
	buf.WriteString("  node [shape=box, fixedsize=true];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n\n")

	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %s [width=%.4f, height=%.4f];\n", quoteID(n.ID), n.Width/72, n.Height/72)
	}
	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %s -> %s;\n", quoteID(e.Source), quoteID(e.Target))
	}
	buf.WriteString("}\n")
	return buf.String()
}

// quoteID quotes a node id for DOT, escaping embedded quotes and
// backslashes. Task ids routinely contain path separators and colons, so
// everything is quoted unconditionally.
func quoteID(id string) string {
	id = strings.ReplaceAll(id, `\`, `\\`)
	id = strings.ReplaceAll(id, `"`, `\"`)
	return `"` + id + `"`
}

// nodeStmtRe matches a node statement in attributed DOT output, capturing
// the (possibly quoted) name and the attribute list. Attribute lists may
// span lines.
var nodeStmtRe = regexp.MustCompile(`(?ms)^\s*("(?:[^"\\]|\\.)*"|[^\s\[=]+)\s*\[([^\]]*)\]`)

var posAttrRe = regexp.MustCompile(`pos="(-?[0-9.]+),(-?[0-9.]+)"`)

// parsePositions extracts node centers from attributed DOT output.
func parsePositions(out string) map[string]graph.Position {
	positions := make(map[string]graph.Position)
	maxY := 0.0

	for _, m := range nodeStmtRe.FindAllStringSubmatch(out, -1) {
		name := unquoteID(m[1])
		if name == "graph" || name == "node" || name == "edge" {
			continue
		}
		pm := posAttrRe.FindStringSubmatch(m[2])
		if pm == nil {
			continue
		}
		x, errX := strconv.ParseFloat(pm[1], 64)
		y, errY := strconv.ParseFloat(pm[2], 64)
		if errX != nil || errY != nil {
			continue
		}
		positions[name] = graph.Position{X: x, Y: y}
		if y > maxY {
			maxY = y
		}
	}

	// Flip to screen orientation.
	for id, p := range positions {
		positions[id] = graph.Position{X: p.X, Y: maxY - p.Y}
	}
	return positions
}

func unquoteID(name string) string {
	if len(name) >= 2 && name[0] == '"' && name[len(name)-1] == '"' {
		name = name[1 : len(name)-1]
		name = strings.ReplaceAll(name, `\"`, `"`)
		name = strings.ReplaceAll(name, `\\`, `\`)
	}
	return name
}

var _ Engine = (*Graphviz)(nil)
