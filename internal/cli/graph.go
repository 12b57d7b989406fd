package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/spf13/cobra"

	"github.com/taskweave/taskweave/pkg/errors"
	"github.com/taskweave/taskweave/pkg/graph"
)

// Export formats supported by the graph command.
const (
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

// graphCommand creates the graph command for building and exporting the
// dependency graph.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format  string
		output  string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Build the dependency graph and export it",
		Long: `Build the dependency graph and export it.

By default the vault is rescanned, edges are recomputed from task
dependency markers, and a fresh layout pass positions the nodes. With
--refresh the saved snapshot is loaded first and only task payloads are
reconciled, preserving node positions and the saved edge list.

Formats: json (snapshot format), dot (Graphviz source), svg (rendered).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case formatJSON, formatDOT, formatSVG:
			default:
				return errors.New(errors.ErrCodeInvalidInput, "unknown format: %s", format)
			}
			return c.runGraph(cmd.Context(), format, output, refresh)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json, dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reconcile into the saved snapshot instead of rebuilding")
	return cmd
}

func (c *CLI) runGraph(ctx context.Context, format, output string, refresh bool) error {
	logger := loggerFromContext(ctx)

	session, cleanup, err := c.newSession(ctx, !refresh)
	if err != nil {
		return err
	}
	defer cleanup()

	spinner := newSpinnerWithContext(ctx, "Building graph...")
	spinner.Start()
	prog := newProgress(logger)

	if refresh {
		ok, err := session.Load(ctx)
		if err != nil {
			spinner.StopWithError("Loading snapshot failed")
			return err
		}
		if !ok {
			spinner.StopWithError("No snapshot to refresh")
			return errors.New(errors.ErrCodeNotFound, "no saved snapshot; run without --refresh first")
		}
		err = session.Refresh(ctx)
		if err != nil {
			spinner.StopWithError("Refresh failed")
			return err
		}
	} else if err := session.Rebuild(ctx); err != nil {
		spinner.StopWithError("Rebuild failed")
		return err
	}
	spinner.Stop()

	nodes, edges := session.Nodes(), session.Edges()
	prog.done(fmt.Sprintf("Built graph with %d nodes", len(nodes)))

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch format {
	case formatJSON:
		raw, err := session.SnapshotData().Marshal()
		if err != nil {
			return err
		}
		if _, err := out.Write(append(raw, '\n')); err != nil {
			return err
		}
	case formatDOT:
		if _, err := io.WriteString(out, exportDOT(nodes, edges, c.Config.Direction)); err != nil {
			return err
		}
	case formatSVG:
		if err := renderSVG(ctx, exportDOT(nodes, edges, c.Config.Direction), out); err != nil {
			return err
		}
	}

	if output != "" {
		printSuccess("Exported %s graph", format)
		printFile(output)
	}
	printStats(len(nodes), len(edges))
	return nil
}

// exportDOT renders the graph as Graphviz source with task summaries as
// node labels.
func exportDOT(nodes []graph.Node, edges []graph.Edge, direction string) string {
	rankDir := "TB"
	if direction == string(graph.DirectionHorizontal) {
		rankDir = "LR"
	}

	var b bytes.Buffer
	b.WriteString("digraph taskweave {\n")
	fmt.Fprintf(&b, "  rankdir=%s;\n", rankDir)
	b.WriteString("  node [shape=box, style=rounded];\n\n")

	for _, n := range nodes {
		label := n.Data.Task.Summary
		if label == "" {
			label = n.ID
		}
		fmt.Fprintf(&b, "  %s [label=%s];\n", quoteDOT(n.ID), quoteDOT(label))
	}
	b.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&b, "  %s -> %s;\n", quoteDOT(e.Source), quoteDOT(e.Target))
	}
	b.WriteString("}\n")
	return b.String()
}

// quoteDOT quotes an identifier or label for DOT source.
func quoteDOT(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// renderSVG runs the DOT source through Graphviz and writes SVG to w.
func renderSVG(ctx context.Context, dot string, w io.Writer) error {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	if err := gv.Render(ctx, parsed, graphviz.SVG, w); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
