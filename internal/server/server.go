package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/petergeorge7/optisym/internal/engine"
	"github.com/petergeorge7/optisym/internal/store"
)

// Server represents the HTTP server
type Server struct {
	runManager *RunManager
	runStore   *store.FSStore
	addr       string
	server     *http.Server
	workers    sync.WaitGroup
}

// NewServer creates a new HTTP server. The store may be nil, in which
// case runs live only in memory and traces are not recorded.
func NewServer(addr string, runStore *store.FSStore) *Server {
	return &Server{
		runManager: NewRunManager(),
		runStore:   runStore,
		addr:       addr,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Handler builds the route table with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/runs", s.handleRuns)
	mux.HandleFunc("/api/v1/runs/", s.handleRunsWithID)

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Shutdown gracefully shuts down the server and waits for in-flight
// optimization workers to finish persisting their runs.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}
	s.workers.Wait()
	return err
}

// handleRuns handles /api/v1/runs
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateRun(w, r)
	case http.MethodGet:
		s.handleListRuns(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleRunsWithID handles /api/v1/runs/:id/*
func (s *Server) handleRunsWithID(w http.ResponseWriter, r *http.Request) {
	// Parse run ID from path
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/runs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Run ID required", http.StatusBadRequest)
		return
	}

	runID := parts[0]

	// Route based on subpath
	if len(parts) == 1 || parts[1] == "status" {
		switch r.Method {
		case http.MethodGet:
			s.handleGetRunStatus(w, r, runID)
		case http.MethodDelete:
			s.handleDeleteRun(w, r, runID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	} else if parts[1] == "trace" {
		s.handleGetRunTrace(w, r, runID)
	} else if parts[1] == "events" {
		s.handleRunStream(w, r, runID)
	} else {
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleCreateRun handles POST /api/v1/runs
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var config RunConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	if err := config.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := engine.ParseMethod(config.Method); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Create run
	run := s.runManager.CreateRun(config)

	// Start worker in background; Shutdown waits for it
	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		runOptimization(context.Background(), s.runManager, s.runStore, run.ID)
	}()

	// Return run
	writeJSON(w, http.StatusCreated, run)
}

// handleListRuns handles GET /api/v1/runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs := s.runManager.ListRuns()
	writeJSON(w, http.StatusOK, runs)
}

// handleGetRunStatus handles GET /api/v1/runs/:id/status
func (s *Server) handleGetRunStatus(w http.ResponseWriter, r *http.Request, runID string) {
	run, exists := s.runManager.GetRun(runID)
	if !exists {
		// Fall back to the persisted record for runs from earlier sessions
		if s.runStore != nil {
			record, err := s.runStore.LoadRun(runID)
			if err == nil {
				writeJSON(w, http.StatusOK, record)
				return
			}
		}
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	var elapsed time.Duration
	if run.EndTime != nil {
		elapsed = run.EndTime.Sub(run.StartTime)
	} else {
		elapsed = time.Since(run.StartTime)
	}

	response := map[string]interface{}{
		"id":         run.ID,
		"state":      run.State,
		"config":     run.Config,
		"found":      run.Found,
		"point":      run.Point,
		"value":      run.Value,
		"gradNorm":   run.GradNorm,
		"iterations": run.Iterations,
		"elapsed":    elapsed.Seconds(),
		"startTime":  run.StartTime,
		"endTime":    run.EndTime,
		"error":      run.Error,
	}

	writeJSON(w, http.StatusOK, response)
}

// handleGetRunTrace handles GET /api/v1/runs/:id/trace
func (s *Server) handleGetRunTrace(w http.ResponseWriter, r *http.Request, runID string) {
	if s.runStore == nil {
		http.Error(w, "Tracing disabled", http.StatusNotFound)
		return
	}

	reader, err := store.NewTraceReader(s.runStore.BaseDir(), runID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Trace not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to open trace: %v", err), http.StatusInternalServerError)
		return
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read trace: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// handleDeleteRun handles DELETE /api/v1/runs/:id
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request, runID string) {
	run, exists := s.runManager.GetRun(runID)
	if exists && (run.State == StatePending || run.State == StateRunning) {
		http.Error(w, "Run still active", http.StatusConflict)
		return
	}

	found := exists
	if s.runStore != nil {
		err := s.runStore.DeleteRun(runID)
		if err == nil {
			found = true
		} else if !errors.Is(err, store.ErrNotFound) {
			http.Error(w, fmt.Sprintf("Failed to delete run: %v", err), http.StatusInternalServerError)
			return
		}
	}

	if !found {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	s.runManager.RemoveRun(runID)
	s.runManager.broadcaster.CleanupRun(runID)
	w.WriteHeader(http.StatusNoContent)
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
