package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/wolfman30/reserva-portal/internal/session"
	"github.com/wolfman30/reserva-portal/pkg/logging"
)

const (
	// SessionCookie is the cookie holding the session ID.
	SessionCookie = "reserva_session"
	// SessionHeader is accepted instead of the cookie by non-browser clients.
	SessionHeader = "X-Session-Id"
)

const sessionKey contextKey = "session"

// SessionID extracts the session ID from the header or the cookie.
func SessionID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

// RequireSession rejects requests without a live session with 401 and stores
// the resolved session on the context.
func RequireSession(sessions *session.Manager, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.Resolve(r.Context(), SessionID(r))
			if err != nil {
				if !errors.Is(err, session.ErrNotFound) {
					logger.Error("session lookup failed", "error", err)
				}
				writeError(w, r, http.StatusUnauthorized, "Please log in again")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
		})
	}
}

// SessionFromContext returns the session stored by RequireSession.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*session.Session)
	return sess, ok
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": msg})
}
