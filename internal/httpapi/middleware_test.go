package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ctxWithEmail(email string) context.Context {
	return context.WithValue(context.Background(), userEmailKey, email)
}

func TestSessionMiddleware_MintsAndReuses(t *testing.T) {
	var seen []string
	handler := SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, getSessionID(r.Context()))
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/", nil))

	require.Len(t, seen, 1)
	_, err := uuid.Parse(seen[0])
	require.NoError(t, err, "minted session id is a UUID")

	cookie := sessionCookieFrom(t, recorder)
	assert.Equal(t, seen[0], cookie.Value)

	request := httptest.NewRequest("GET", "/", nil)
	request.AddCookie(cookie)
	handler.ServeHTTP(httptest.NewRecorder(), request)

	require.Len(t, seen, 2)
	assert.Equal(t, seen[0], seen[1], "cookie carries the session across requests")
}

func TestSessionMiddleware_RejectsMalformedCookie(t *testing.T) {
	var got string
	handler := SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = getSessionID(r.Context())
	}))

	request := httptest.NewRequest("GET", "/", nil)
	request.AddCookie(&http.Cookie{Name: sessionCookie, Value: "garbage"})
	handler.ServeHTTP(httptest.NewRecorder(), request)

	_, err := uuid.Parse(got)
	assert.NoError(t, err, "malformed cookie is replaced with a fresh id")
	assert.NotEqual(t, "garbage", got)
}

func TestIdentityMiddleware_NormalizesEmail(t *testing.T) {
	var got string
	handler := IdentityMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = getUserEmail(r.Context())
	}))

	request := httptest.NewRequest("GET", "/", nil)
	request.Header.Set("X-Auth-Email", "  Admin@Example.COM ")
	handler.ServeHTTP(httptest.NewRecorder(), request)

	assert.Equal(t, "admin@example.com", got)
}

func TestAdminGate(t *testing.T) {
	gate := NewAdminGate("admin@example.com, second@example.com,")

	_, authed, _ := gate.Allowed(httptest.NewRequest("GET", "/", nil).Context())
	assert.False(t, authed)

	email, authed, allowed := gate.Allowed(ctxWithEmail("admin@example.com"))
	assert.True(t, authed)
	assert.True(t, allowed)
	assert.Equal(t, "admin@example.com", email)

	_, authed, allowed = gate.Allowed(ctxWithEmail("intruder@example.com"))
	assert.True(t, authed)
	assert.False(t, allowed)
}
