// Package httpapi serves a read-only status API next to the terminal game
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/whack/round"
)

const (
	handlerTimeout  = 5 * time.Second
	shutdownTimeout = 3 * time.Second
)

// StatusSource returns the current round state, safe to call from any goroutine
type StatusSource interface {
	Snapshot(ctx context.Context) (round.Snapshot, error)
}

// LeaderboardSource returns stored high scores, descending
type LeaderboardSource interface {
	Entries() []int
}

// Server wires routes for /health, /round, /leaderboard and /metrics
type Server struct {
	r       *chi.Mux
	status  StatusSource
	scores  LeaderboardSource
	metrics http.Handler
	log     zerolog.Logger
}

// New builds the router, a nil metrics handler leaves /metrics unmounted
func New(status StatusSource, scores LeaderboardSource, metrics http.Handler, log zerolog.Logger) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		status:  status,
		scores:  scores,
		metrics: metrics,
		log:     log.With().Str("component", "http").Logger(),
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(handlerTimeout))
	s.r.Use(s.requestLog)

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/round", s.handleRound)
	s.r.Get("/leaderboard", s.handleLeaderboard)
	if metrics != nil {
		s.r.Method(http.MethodGet, "/metrics", metrics)
	}

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the router for tests
func (s *Server) Router() chi.Router { return s.r }

// Serve listens on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.r,
		ReadHeaderTimeout: handlerTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("status server listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	snap, err := s.status.Snapshot(r.Context())
	if err != nil {
		s.log.Warn().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg("round snapshot")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]int{"entries": s.scores.Entries()})
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
