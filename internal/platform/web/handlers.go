package web

import (
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/tetris"
	"github.com/vovakirdan/blockfall/internal/session"
	"github.com/vovakirdan/blockfall/internal/storage"
)

const (
	// CookieName carries the session ID for browser clients.
	CookieName = "blockfall_session"
	// HeaderName overrides the cookie for scripted clients.
	HeaderName = "X-Session-ID"

	maxScoresLimit = 100
)

//go:embed static/index.html
var indexPage []byte

// Response statuses understood by the browser client.
const (
	statusOK          = "ok"
	statusRestarted   = "restarted"
	statusInitialized = "game initialized"
	statusNotPlayable = "game over or not initialized"
	statusGameReset   = "game restarted"
)

type statusResponse struct {
	Status string `json:"status"`
}

type actionRequest struct {
	Action string `json:"action"`
}

type scoreView struct {
	SessionID  string    `json:"session_id"`
	Score      int       `json:"score"`
	Level      int       `json:"level"`
	Lines      int       `json:"lines"`
	Pieces     int       `json:"pieces"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// sessionID resolves the caller's session: header first, then cookie.
// A new ID is issued as a cookie when neither is present.
func sessionID(w http.ResponseWriter, r *http.Request) session.ID {
	if id := r.Header.Get(HeaderName); id != "" {
		return session.ID(id)
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return session.ID(c.Value)
	}

	id := uuid.NewString()
	http.SetCookie(w, sessionCookie(id))
	return session.ID(id)
}

func sessionCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// index serves the browser client. A missing or finished game is
// reinitialized so the page always opens on a live board.
func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)

	snap, err := s.manager.Get(id)
	if errors.Is(err, session.ErrNotFound) || (err == nil && snap.GameOver) {
		err = s.manager.Restart(id, time.Now())
	}
	if err != nil {
		s.sessionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexPage)
}

func (s *Server) gameState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.manager.Snapshot(sessionID(w, r), time.Now())
	if err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) action(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "invalid request"})
		return
	}

	out, err := s.manager.Apply(id, core.ParseAction(req.Action), time.Now())
	if err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: outcomeStatus(out)})
}

func outcomeStatus(out tetris.Outcome) string {
	switch out {
	case tetris.OutcomeStarted:
		return statusRestarted
	case tetris.OutcomeInitialized:
		return statusInitialized
	default:
		return statusOK
	}
}

func (s *Server) restartGame(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Restart(sessionID(w, r), time.Now()); err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: statusGameReset})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.manager.Destroy(sessionID(w, r)) {
		writeJSON(w, http.StatusNotFound, statusResponse{Status: "no such session"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) topScores(w http.ResponseWriter, r *http.Request) {
	if s.scores == nil {
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "scores unavailable"})
		return
	}

	limit, ok := parseLimit(w, r, 10)
	if !ok {
		return
	}
	entries, err := s.scores.TopScores(limit)
	s.writeScores(w, entries, err)
}

// sessionHistory lists the caller's own finished games, newest first.
func (s *Server) sessionHistory(w http.ResponseWriter, r *http.Request) {
	if s.scores == nil {
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "scores unavailable"})
		return
	}

	id := sessionID(w, r)
	limit, ok := parseLimit(w, r, 20)
	if !ok {
		return
	}
	entries, err := s.scores.SessionHistory(string(id), limit)
	s.writeScores(w, entries, err)
}

// parseLimit reads ?limit=, clamped to [1, maxScoresLimit]. It writes the
// error response itself when the value is malformed.
func parseLimit(w http.ResponseWriter, r *http.Request, fallback int) (int, bool) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "invalid limit"})
		return 0, false
	}
	return core.Clamp(n, 1, maxScoresLimit), true
}

func (s *Server) writeScores(w http.ResponseWriter, entries []storage.ScoreEntry, err error) {
	if err != nil {
		s.logger.Error("could not load scores", "error", err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "scores unavailable"})
		return
	}

	views := make([]scoreView, 0, len(entries))
	for _, e := range entries {
		views = append(views, scoreView{
			SessionID:  e.SessionID,
			Score:      e.Score,
			Level:      e.Level,
			Lines:      e.Lines,
			Pieces:     e.Pieces,
			DurationMS: e.Duration.Milliseconds(),
			CreatedAt:  e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   statusOK,
		"sessions": s.manager.Count(),
		"gravity":  s.manager.Config().Gravity,
	})
}

// sessionError maps manager errors to responses.
func (s *Server) sessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotPlayable):
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: statusNotPlayable})
	case errors.Is(err, session.ErrTooManySessions):
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "too many sessions"})
	default:
		s.logger.Error("session error", "error", err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
