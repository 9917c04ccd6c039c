package middleware

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/gridcheck/internal/core"
	"github.com/JonMunkholm/gridcheck/internal/logging"
)

// SessionHeader names the editing session a request belongs to. Each
// session has its own run generation, so a newer validation from the same
// editor makes older in-flight results stale.
const SessionHeader = "X-Grid-Session"

const maxSessionLen = 128

// Session reads the grid session from SessionHeader (or the "session" query
// parameter for HTMX links) and attaches it, together with a request
// logger, to the context used by the engine. Requests without a session
// share the anonymous session "".
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := strings.TrimSpace(r.Header.Get(SessionHeader))
		if session == "" {
			session = strings.TrimSpace(r.URL.Query().Get("session"))
		}
		if len(session) > maxSessionLen {
			session = session[:maxSessionLen]
		}

		ctx := core.ContextWithSession(r.Context(), session)
		if session != "" {
			ctx = logging.EngineContext(ctx, "session", session)
		} else {
			ctx = logging.EngineContext(ctx)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
