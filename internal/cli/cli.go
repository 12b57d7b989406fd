// Package cli implements the taskweave command-line interface.
//
// This package provides commands for scanning a vault of task documents,
// building and exporting the dependency graph, mutating tasks (status,
// tags, stars, dependency links), and serving the graph over HTTP. The CLI
// is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - scan: Parse the vault and list every task
//   - graph: Build the dependency graph and export it as JSON, DOT, or SVG
//   - status/tag/star/unstar: Rewrite task attributes in their documents
//   - link/unlink: Add or remove dependency edges
//   - serve: Expose the graph and refresh operations over HTTP
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/taskweave/taskweave/pkg/engine"
	"github.com/taskweave/taskweave/pkg/graph"
	"github.com/taskweave/taskweave/pkg/layout"
	"github.com/taskweave/taskweave/pkg/marker"
	"github.com/taskweave/taskweave/pkg/vault"
)

// appName is the application name used for directories and display.
const appName = "taskweave"

var (
	version = "dev" // semantic version (e.g., "v1.2.3")
	commit  string  // git commit SHA
	date    string  // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package with values injected via
// ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var (
		verbose    bool
		configPath string
		vaultRoot  string
		dialect    string
		direction  string
	)

	root := &cobra.Command{
		Use:          appName,
		Short:        "Taskweave synchronizes task documents with a dependency graph",
		Long:         `Taskweave scans a vault of markdown task documents, builds the dependency graph encoded in their markers, and keeps both sides in sync: graph mutations are written back into the documents as surgical text edits, and document changes flow back into the graph on refresh.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if vaultRoot != "" {
				cfg.Vault = vaultRoot
			}
			if dialect != "" {
				cfg.Dialect = dialect
			}
			if direction != "" {
				cfg.Direction = direction
			}
			c.Config = cfg

			if verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", appName, version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/taskweave/config.toml)")
	root.PersistentFlags().StringVar(&vaultRoot, "vault", "", "vault root directory (overrides config)")
	root.PersistentFlags().StringVar(&dialect, "dialect", "", "dependency marker dialect: individual, csv, dataview")
	root.PersistentFlags().StringVar(&direction, "direction", "", "layout direction: horizontal, vertical")

	root.AddCommand(c.scanCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.statusCommand())
	root.AddCommand(c.tagCommand())
	root.AddCommand(c.starCommand())
	root.AddCommand(c.unstarCommand())
	root.AddCommand(c.linkCommand())
	root.AddCommand(c.unlinkCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Session Factory
// =============================================================================

// newSession opens an engine session over the configured vault.
// withLayout controls whether a Graphviz layout pass runs on rebuilds;
// mutation commands skip it. The returned cleanup flushes pending snapshot
// state and must run on every exit path.
func (c *CLI) newSession(ctx context.Context, withLayout bool) (*engine.Session, func(), error) {
	store, err := vault.NewFS(c.Config.Vault)
	if err != nil {
		return nil, nil, err
	}

	snaps, err := c.Config.SnapshotStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts := engine.Options{
		Vault:     store,
		Snapshots: snaps,
		Dialect:   marker.Dialect(c.Config.Dialect),
		Display: graph.DisplayConfig{
			Direction:    graph.Direction(c.Config.Direction),
			ShowTags:     true,
			ShowPriority: true,
			ShowStar:     true,
		},
		Debounce: time.Duration(c.Config.DebounceMS) * time.Millisecond,
	}
	if withLayout {
		opts.Layout = layout.NewGraphviz()
	}

	session, err := engine.New(opts)
	if err != nil {
		snaps.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := session.Close(context.Background()); err != nil {
			c.Logger.Error("closing session", "err", err)
		}
	}
	return session, cleanup, nil
}
