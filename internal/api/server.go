// Package api exposes the HTTP status interface for the watcher.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/frontierlabs/itemwatch/internal/item"
	"github.com/frontierlabs/itemwatch/internal/metrics"
)

// FrontierFunc reports the current frontier; it must be safe for concurrent
// use since the watch loop advances it while handlers read it.
type FrontierFunc func() item.ID

// Server wires the status and metrics handlers.
type Server struct {
	router   chi.Router
	frontier FrontierFunc
	runID    string
	target   item.ID
	started  time.Time
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(frontier FrontierFunc, runID string, target item.ID, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		frontier: frontier,
		runID:    runID,
		target:   target,
		started:  time.Now().UTC(),
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)

	r.Get("/healthz", s.healthz)
	r.Get("/status", s.status)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	RunID    string `json:"run_id"`
	Frontier uint64 `json:"frontier"`
	Target   uint64 `json:"target,omitempty"`
	Left     uint64 `json:"left_to_target,omitempty"`
	UptimeS  int64  `json:"uptime_seconds"`
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	frontier := s.frontier()
	resp := statusResponse{
		RunID:    s.runID,
		Frontier: uint64(frontier),
		Target:   uint64(s.target),
		UptimeS:  int64(time.Since(s.started).Seconds()),
	}
	if s.target > frontier {
		resp.Left = uint64(s.target - frontier)
	}
	writeJSON(w, http.StatusOK, resp)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("handler panic", zap.Any("panic", rec))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
