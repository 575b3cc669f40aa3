package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/tetris"
	"github.com/vovakirdan/blockfall/internal/session"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
)

type wsMessage struct {
	Type    string           `json:"type"`
	State   *tetris.Snapshot `json:"state,omitempty"`
	Message string           `json:"message,omitempty"`
}

// serveWS streams the caller's session. Snapshots are pushed on every
// change; the client sends {"action": "..."} frames.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	var header http.Header
	id := r.Header.Get(HeaderName)
	if id == "" {
		if c, err := r.Cookie(CookieName); err == nil {
			id = c.Value
		}
	}
	if id == "" {
		id = r.URL.Query().Get("session")
	}
	if id == "" {
		// Upgrade writes its own headers, so the new cookie travels with it.
		rec := httpHeaderRecorder{}
		id = string(sessionID(rec, r))
		header = rec.Header()
	}

	watcher, err := s.manager.Watch(session.ID(id))
	if err != nil {
		s.sessionError(w, err)
		return
	}
	defer watcher.Close()

	conn, err := s.upgrader.Upgrade(w, r, header)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.logger.Info("websocket connected", "session", watcher.ID(), "remote", r.RemoteAddr)

	errs := make(chan string, 8)
	readDone := make(chan struct{})
	writeDone := make(chan struct{})
	go s.wsReadLoop(conn, session.ID(id), errs, readDone, writeDone)

	s.wsWriteLoop(conn, session.ID(id), watcher, errs, readDone)
	close(writeDone)
	s.logger.Info("websocket disconnected", "session", watcher.ID())
}

func (s *Server) wsReadLoop(conn *websocket.Conn, id session.ID, errs chan<- string, done chan<- struct{}, writeDone <-chan struct{}) {
	defer close(done)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	report := func(msg string) bool {
		select {
		case errs <- msg:
			return true
		case <-writeDone:
			return false
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", "session", id, "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		// A bad frame is answered, not fatal.
		var req actionRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if !report("invalid request") {
				return
			}
			continue
		}

		if _, err := s.manager.Apply(id, core.ParseAction(req.Action), time.Now()); err != nil {
			if !report(err.Error()) {
				return
			}
		}
	}
}

// wsWriteLoop is the only writer on conn.
func (s *Server) wsWriteLoop(conn *websocket.Conn, id session.ID, watcher *session.Watcher, errs <-chan string, readDone <-chan struct{}) {
	ticker := time.NewTicker(s.push)
	defer ticker.Stop()

	write := func(msg wsMessage) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(msg) == nil
	}

	for {
		select {
		case snap := <-watcher.Snapshots():
			if !write(wsMessage{Type: "snapshot", State: &snap}) {
				return
			}
		case msg := <-errs:
			if !write(wsMessage{Type: "error", Message: msg}) {
				return
			}
		case <-ticker.C:
			// In poll mode this also advances gravity; a step arrives
			// through the watcher. A destroyed session is never recreated.
			if _, err := s.manager.Poll(id, time.Now()); err != nil {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(writeWait))
				return
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-watcher.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
				time.Now().Add(writeWait))
			return
		case <-s.closing:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case <-readDone:
			return
		}
	}
}

// httpHeaderRecorder collects headers written by sessionID before an upgrade.
type httpHeaderRecorder http.Header

func (h httpHeaderRecorder) Header() http.Header        { return http.Header(h) }
func (h httpHeaderRecorder) Write(b []byte) (int, error) { return len(b), nil }
func (h httpHeaderRecorder) WriteHeader(int)             {}
