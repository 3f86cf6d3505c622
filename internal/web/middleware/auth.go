package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jules-12/card-creator-pro/internal/auth"
	"github.com/jules-12/card-creator-pro/internal/core"
	"github.com/jules-12/card-creator-pro/internal/logging"
)

// SessionCookie is the cookie holding the session token for browsers.
const SessionCookie = "session"

// SessionLookup resolves session tokens.
type SessionLookup interface {
	Lookup(token string) (auth.User, bool)
}

// RequireSession rejects requests without a live session. The token comes
// from an "Authorization: Bearer" header or the session cookie. The user is
// placed on the request context for core, and the context logger gains a
// user_id attribute.
func RequireSession(sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				slog.Warn("auth: missing session",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				unauthorized(w)
				return
			}

			user, ok := sessions.Lookup(token)
			if !ok {
				slog.Warn("auth: unknown or expired session",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				unauthorized(w)
				return
			}

			ctx := core.ContextWithUser(r.Context(), user)
			ctx = logging.NewContext(ctx, slog.Default().With("user_id", user.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionToken extracts the session token of r, or "".
func SessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	msg := core.MapError(auth.ErrUnauthenticated)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="card-creator-pro"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg.Message + `","message":"` + msg.Message +
		`","action":"` + msg.Action + `","code":"` + msg.Code + `"}`))
}
