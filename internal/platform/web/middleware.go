package web

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"
)

// requestLogger logs each request. Successful requests log at debug level
// since clients poll /game_state continuously.
func (s *Server) requestLogger(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next(rec, r)

		keyvals := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.statusCode,
			"duration", time.Since(start),
		}
		switch {
		case rec.statusCode >= 500:
			s.logger.Error("request", keyvals...)
		default:
			s.logger.Debug("request", keyvals...)
		}
	}
}

// recoverer turns a handler panic into a 500 response.
func (s *Server) recoverer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic while handling request",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path)
				writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "internal server error"})
			}
		}()

		next(w, r)
	}
}

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection.
func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("web: response writer does not support hijacking")
	}
	w.statusCode = http.StatusSwitchingProtocols
	return h.Hijack()
}
