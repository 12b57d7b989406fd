package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/taskweave/taskweave/pkg/engine"
	"github.com/taskweave/taskweave/pkg/errors"
	"github.com/taskweave/taskweave/pkg/task"
)

// serveCommand creates the serve command exposing the graph over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dependency graph over HTTP",
		Long: `Serve the dependency graph over HTTP.

Endpoints:
  GET  /graph                 the current snapshot (nodes, edges, viewport)
  GET  /tasks                 every task in the graph
  POST /refresh               rescan and reconcile task payloads by id
  POST /rebuild               full rescan, edge recompute, and layout pass
  POST /tasks/{id}/status     set a task's status ({"status": "done"})

The session loads the saved snapshot on startup, or builds the graph from
scratch when none exists. Pending snapshot state is flushed on shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8087", "listen address")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session, cleanup, err := c.newSession(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	ok, err := session.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		if err := session.Rebuild(ctx); err != nil {
			return err
		}
	}

	logger := loggerFromContext(ctx)
	server := &http.Server{
		Addr:              addr,
		Handler:           c.newRouter(session),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		printInfo("serving graph on %s", StyleHighlight.Render(addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newRouter builds the HTTP API over one engine session.
func (c *CLI) newRouter(session *engine.Session) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(c.logRequests)

	r.Get("/graph", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, session.SnapshotData())
	})

	r.Get("/tasks", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, session.Tasks())
	})

	r.Post("/refresh", func(w http.ResponseWriter, req *http.Request) {
		if err := session.Refresh(req.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, session.SnapshotData())
	})

	r.Post("/rebuild", func(w http.ResponseWriter, req *http.Request) {
		if err := session.Rebuild(req.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, session.SnapshotData())
	})

	r.Post("/tasks/{id}/status", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
			return
		}
		status, ok := task.StatusFromName(body.Status)
		if !ok {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown status: %s", body.Status))
			return
		}
		if err := session.SetStatus(req.Context(), chi.URLParam(req, "id"), status); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

// logRequests logs each request with method, path, and duration.
func (c *CLI) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, req)
		c.Logger.Debug("request",
			"method", req.Method,
			"path", req.URL.Path,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDialect, errors.ErrCodeInvalidDirection,
		errors.ErrCodeInvalidTaskID, errors.ErrCodeInvalidPath:
		code = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeDocumentNotFound, errors.ErrCodeTaskNotFound:
		code = http.StatusNotFound
	}
	writeJSON(w, code, map[string]string{"error": errors.UserMessage(err)})
}
