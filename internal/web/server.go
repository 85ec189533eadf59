// Package web provides an HTTP status server for the breath-pacer daemon.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sweeney/breath-pacer/internal/logging"
	"github.com/sweeney/breath-pacer/internal/sessionlog"
	"github.com/sweeney/breath-pacer/internal/status"
)

// defaultSessionLimit caps /sessions.json when no limit is given.
const defaultSessionLimit = 50

// LogLister lists stored session logs, newest last.
type LogLister interface {
	List(ctx context.Context, limit int) ([]sessionlog.Log, error)
}

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	logs       LogLister
	log        zerolog.Logger
}

// New creates a Server that reads state from the given tracker. logs may be
// nil, in which case /sessions.json is not routed.
func New(addr string, tracker *status.Tracker, logs LogLister) *Server {
	s := &Server{
		tracker: tracker,
		logs:    logs,
		log:     logging.WithComponent("web"),
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleIndex)
	r.Get("/index.html", s.handleIndex)
	r.Get("/index.json", s.handleJSON)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	if s.logs != nil {
		r.Get("/sessions.json", s.handleSessions)
	}
	return r
}

// Handler returns the routed handler. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down,
// returning nil after a graceful Shutdown.
func (s *Server) ListenAndServe() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderHTML(w, snap); err != nil {
		s.log.Warn().Err(err).Msg("render status page")
	}
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	limit := defaultSessionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	logs, err := s.logs.List(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("list session logs")
		http.Error(w, "session logs unavailable", http.StatusInternalServerError)
		return
	}

	data, err := formatSessions(logs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
