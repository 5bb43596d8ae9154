// Package server exposes the sighting dataset over HTTP: the map.json
// document and summary APIs for the latest (or a chosen) classification run,
// plus the static viewer that renders them.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/mapdata"
	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/store"
)

//go:embed ui
var embeddedUI embed.FS

// Options configures the server.
type Options struct {
	// UIDir overrides the embedded viewer with a directory of static files.
	UIDir string

	// Version is reported by the health endpoint.
	Version string
}

// Server serves the dataset API and the static viewer.
type Server struct {
	store *store.Store
	log   *slog.Logger
	opts  Options
}

// New creates a server over an open store. logger must not be nil.
func New(st *store.Store, logger *slog.Logger, opts Options) *Server {
	return &Server{store: st, log: logger, opts: opts}
}

// Handler builds the full route table wrapped in access logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/map.json", s.handleMap)
	mux.HandleFunc("GET /api/species", s.handleSpecies)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("/", s.uiHandler())
	return accessLog(s.log)(mux)
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("server shutdown error", "error", err)
		}
	}()

	s.log.Info("listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// resolveRun returns the requested run (?run=<id>) or the latest one.
func (s *Server) resolveRun(r *http.Request) (store.Run, error) {
	if id := r.URL.Query().Get("run"); id != "" {
		return s.store.GetRun(r.Context(), id)
	}
	return s.store.LatestRun(r.Context())
}

// handleMap serves the map.json document for a run, built live from the
// store. generated_at is pinned to the run's creation time so repeated
// requests for the same run serve identical bytes.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	run, err := s.resolveRun(r)
	if err != nil {
		s.runError(w, err)
		return
	}

	features, err := s.store.RunFeatures(r.Context(), run.ID)
	if err != nil {
		s.internalError(w, err)
		return
	}

	doc := mapdata.New(features, mapdata.Options{
		RunID: run.ID,
		Now:   func() time.Time { return run.CreatedAt },
	})

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := doc.Encode(w); err != nil {
		s.log.Error("encode map document", "error", err)
	}
}

// handleSpecies serves per-species counts for a run.
func (s *Server) handleSpecies(w http.ResponseWriter, r *http.Request) {
	run, err := s.resolveRun(r)
	if err != nil {
		s.runError(w, err)
		return
	}

	counts, err := s.store.SpeciesSummary(r.Context(), run.ID)
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id":  run.ID,
		"species": counts,
	})
}

// handleRuns lists recorded runs, newest first.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleHealth reports liveness and basic dataset stats.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}

	n, err := s.store.CountSightings(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	body := map[string]any{"status": "ok", "sightings": n}
	if s.opts.Version != "" {
		body["version"] = s.opts.Version
	}
	s.writeJSON(w, http.StatusOK, body)
}

// uiHandler serves the static viewer: a directory when configured,
// otherwise the embedded single-page viewer.
func (s *Server) uiHandler() http.Handler {
	if s.opts.UIDir != "" {
		return http.FileServer(http.Dir(s.opts.UIDir))
	}
	ui, err := fs.Sub(embeddedUI, "ui")
	if err != nil {
		// embed layout is fixed at compile time; this cannot fail at runtime.
		panic(err)
	}
	return http.FileServer(http.FS(ui))
}

// runError maps store run-lookup errors to API responses.
func (s *Server) runError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNoRuns):
		s.writeError(w, http.StatusNotFound, "no classification runs recorded; run `avesmap classify` first")
	case errors.Is(err, store.ErrRunNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		s.internalError(w, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.log.Error("request failed", "error", err)
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{"error": message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		s.log.Error("encode response", "error", err)
	}
}
