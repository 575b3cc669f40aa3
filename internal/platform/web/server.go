// Package web exposes sessions over HTTP and WebSocket.
package web

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/blockfall/internal/session"
	"github.com/vovakirdan/blockfall/internal/storage"
)

// ScoreLister provides the leaderboard and per-session history.
type ScoreLister interface {
	TopScores(limit int) ([]storage.ScoreEntry, error)
	SessionHistory(sessionID string, limit int) ([]storage.ScoreEntry, error)
}

// Options configures optional server features.
type Options struct {
	Scores       ScoreLister   // Nil disables /api/scores and /api/history
	PushInterval time.Duration // WebSocket keepalive period
}

// Server serves the game API.
type Server struct {
	manager  *session.Manager
	scores   ScoreLister
	logger   *log.Logger
	upgrader websocket.Upgrader
	push     time.Duration

	closing   chan struct{}
	closeOnce sync.Once
}

// NewServer creates a server over the given session manager.
func NewServer(manager *session.Manager, logger *log.Logger, opts Options) *Server {
	if opts.PushInterval <= 0 {
		opts.PushInterval = time.Second
	}
	return &Server{
		manager: manager,
		scores:  opts.Scores,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		push:    opts.PushInterval,
		closing: make(chan struct{}),
	}
}

// Handler returns the routed handler with logging and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	wrap := func(handler http.HandlerFunc) http.HandlerFunc {
		return s.recoverer(s.requestLogger(handler))
	}

	mux.HandleFunc("GET /{$}", wrap(s.index))
	mux.HandleFunc("GET /game_state", wrap(s.gameState))
	mux.HandleFunc("POST /action", wrap(s.action))
	mux.HandleFunc("POST /restart_game", wrap(s.restartGame))
	mux.HandleFunc("DELETE /session", wrap(s.deleteSession))
	mux.HandleFunc("GET /api/scores", wrap(s.topScores))
	mux.HandleFunc("GET /api/history", wrap(s.sessionHistory))
	mux.HandleFunc("GET /health", wrap(s.health))
	mux.HandleFunc("GET /ws", wrap(s.serveWS))

	return mux
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server...")
	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// Close ends open WebSocket connections. Safe to call multiple times.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.closing)
	})
}
