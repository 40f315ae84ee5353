package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	userEmailKey contextKey = "user_email"
)

const sessionCookie = "lc_session"

// SessionMiddleware assigns each visitor a stable cart session id. The id
// comes from a cookie when present and is minted otherwise.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
			if _, parseErr := uuid.Parse(c.Value); parseErr == nil {
				sessionID = c.Value
			}
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityMiddleware records the authenticated email forwarded by the auth
// proxy in front of this service. Absence just means an anonymous visitor.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimSpace(strings.ToLower(r.Header.Get("X-Auth-Email")))
		if email != "" {
			ctx := context.WithValue(r.Context(), userEmailKey, email)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// AdminGate wraps handlers that expose non-public catalog state. 401
// without an identity, 403 when the identity is not allowlisted.
type AdminGate struct {
	allow map[string]struct{}
}

// NewAdminGate takes the comma-separated allowlist from configuration.
func NewAdminGate(adminEmails string) *AdminGate {
	allow := make(map[string]struct{})
	for _, e := range strings.Split(adminEmails, ",") {
		e = strings.TrimSpace(strings.ToLower(e))
		if e != "" {
			allow[e] = struct{}{}
		}
	}
	return &AdminGate{allow: allow}
}

func (g *AdminGate) Allowed(ctx context.Context) (string, bool, bool) {
	email := getUserEmail(ctx)
	if email == "" {
		return "", false, false
	}
	_, ok := g.allow[email]
	return email, true, ok
}

func getSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

func getUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(userEmailKey).(string); ok {
		return email
	}
	return ""
}
