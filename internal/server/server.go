// Package server serves the published feed, the last run status and the
// crawler metrics over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aendu/latin-events/internal/logger"
	"github.com/aendu/latin-events/internal/metrics"
	"github.com/aendu/latin-events/internal/pipeline"
)

// RunStatus is the state reported on /healthz.
type RunStatus struct {
	Running     bool       `json:"running"`
	LastRunID   string     `json:"last_run_id,omitempty"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	LastSuccess *time.Time `json:"last_success_at,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	Published   int        `json:"published"`
}

// Status tracks the scheduled runs. The zero value is ready to use.
type Status struct {
	mu sync.RWMutex
	s  RunStatus
}

// Begin marks a run as started. It returns false if another run is still
// in progress.
func (st *Status) Begin() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.Running {
		return false
	}
	st.s.Running = true
	return true
}

// End records the outcome of the run started by Begin.
func (st *Status) End(res *pipeline.Result, err error, at time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Running = false
	st.s.LastRunAt = &at
	if res != nil {
		st.s.LastRunID = res.RunID
	}
	if err != nil {
		st.s.LastError = err.Error()
		return
	}
	st.s.LastError = ""
	st.s.LastSuccess = &at
	if res != nil {
		st.s.Published = len(res.Events)
	}
}

// Snapshot returns a copy of the current state.
func (st *Status) Snapshot() RunStatus {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s
}

// Healthy reports whether the last finished run succeeded. Before the first
// run finishes the service counts as healthy.
func (s RunStatus) Healthy() bool {
	return s.LastError == ""
}

// Server exposes the public directory and operational endpoints.
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewRouter builds the routes:
//
//	GET /healthz   last run status as JSON (503 after a failed run)
//	GET /metrics   Prometheus metrics
//	GET /*         files of the public directory, e.g. /events.csv
func NewRouter(publicDir string, status *Status, rec *metrics.Recorder, log *logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		snap := status.Snapshot()
		code := http.StatusOK
		if !snap.Healthy() {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(snap)
	})
	r.Method(http.MethodGet, "/metrics", rec.Handler())

	files := http.FileServer(http.Dir(publicDir))
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		files.ServeHTTP(w, req)
	})
	return r
}

// requestLogger writes one line per request. Wire it after RequestID.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Debug("request", logger.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  chimiddleware.GetReqID(r.Context()),
			})
		})
	}
}

// New creates a server listening on addr.
func New(addr string, handler http.Handler, log *logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		log: log,
	}
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", logger.Fields{"addr": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown waits for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("server stopping", nil)
	return s.httpServer.Shutdown(ctx)
}
