// Package middleware provides HTTP middleware for the grid server.
package middleware

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/gridcheck/internal/logging"

	"github.com/go-chi/chi/v5"
)

// Logger logs one structured line per request.
//
// Log fields:
//   - method, path, status, bytes
//   - duration_ms: request processing time
//   - ip: client address after TrustedRealIP
//   - grid: the {gridKey} route parameter, when present
//   - session: the SessionHeader value, when present
//
// 5xx responses log at Error, 4xx at Warn, everything else at Info.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"bytes", ww.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", r.RemoteAddr,
		}
		if grid := chi.URLParam(r, "gridKey"); grid != "" {
			args = append(args, "grid", grid)
		}
		if session := r.Header.Get(SessionHeader); session != "" {
			args = append(args, "session", session)
		}

		logger := logging.FromContext(r.Context())
		switch {
		case ww.status >= http.StatusInternalServerError:
			logger.Error("request", args...)
		case ww.status >= http.StatusBadRequest:
			logger.Warn("request", args...)
		default:
			logger.Info("request", args...)
		}
	})
}

// responseWriter captures the status code and body size.
type responseWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
