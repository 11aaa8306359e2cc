package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workspace-admin/apiserver/internal/metrics"
	"github.com/workspace-admin/apiserver/types"
)

func TestLogin_SetsSessionCookie(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.do(t, http.MethodPost, "/api/admin/login", LoginRequest{Email: "admin@x.com", Password: adminPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody[SessionResponse](t, rec)
	assert.Equal(t, "Login successful", body.Message)
	assert.Equal(t, env.admin.Principal(), body.User)
	assert.NotContains(t, rec.Body.String(), "password")

	cookie := sessionCookieFrom(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 3600, cookie.MaxAge)

	principal, ok := env.tokens.Verify(cookie.Value)
	require.True(t, ok)
	assert.Equal(t, types.Principal{ID: env.admin.ID, Email: "admin@x.com", Role: types.RoleAdmin}, principal)
	assert.Equal(t, 1.0, counterValue(env.metrics.Logins, metrics.LoginSuccess))
}

func TestLogin_Failures(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	tests := []struct {
		name    string
		body    any
		status  int
		message string
	}{
		{"wrong password", LoginRequest{Email: "admin@x.com", Password: "nope"}, http.StatusUnauthorized, "Invalid email or password"},
		{"unknown email", LoginRequest{Email: "ghost@x.com", Password: adminPassword}, http.StatusUnauthorized, "Invalid email or password"},
		{"viewer right password", LoginRequest{Email: "viewer@x.com", Password: viewerPassword}, http.StatusForbidden, "Access denied. Admins only."},
		{"viewer wrong password", LoginRequest{Email: "viewer@x.com", Password: "nope"}, http.StatusForbidden, "Access denied. Admins only."},
		{"missing password", LoginRequest{Email: "admin@x.com"}, http.StatusBadRequest, "Email and password are required"},
		{"missing email", LoginRequest{Password: adminPassword}, http.StatusBadRequest, "Email and password are required"},
		{"malformed body", "{", http.StatusBadRequest, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/admin/login", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decodeBody[ErrorResponse](t, rec).Message)
			assert.Empty(t, rec.Header().Values("Set-Cookie"))
		})
	}

	assert.Equal(t, 2.0, counterValue(env.metrics.Logins, metrics.LoginInvalid))
	assert.Equal(t, 2.0, counterValue(env.metrics.Logins, metrics.LoginForbidden))
}

func TestLogout_Idempotent(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodPost, "/api/admin/logout", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Logout successful", decodeBody[MessageResponse](t, rec).Message)

		header := rec.Header().Get("Set-Cookie")
		assert.True(t, strings.HasPrefix(header, "token=;"), header)
		assert.Contains(t, header, "Max-Age=0")
		assert.Contains(t, header, "HttpOnly")

		cookie := sessionCookieFrom(rec)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.Less(t, cookie.MaxAge, 0)
	}
}

func TestVerify(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.do(t, http.MethodPost, "/api/admin/verify", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized: No token provided", decodeBody[ErrorResponse](t, rec).Message)

	rec = env.do(t, http.MethodPost, "/api/admin/verify", nil, withCookie("not-a-token"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized: Invalid or expired token", decodeBody[ErrorResponse](t, rec).Message)

	rec = env.do(t, http.MethodPost, "/api/admin/verify", nil, withCookie(env.sessionToken(t, env.viewer)))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[SessionResponse](t, rec)
	assert.Equal(t, "Authorized", body.Message)
	assert.Equal(t, env.viewer.Principal(), body.User)

	assert.Equal(t, 1.0, counterValue(env.metrics.AuthRejections, rejectMissing))
	assert.Equal(t, 1.0, counterValue(env.metrics.AuthRejections, rejectInvalid))
}

func TestLoginCookieAuthorizesVerify(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	login := env.do(t, http.MethodPost, "/api/admin/login", LoginRequest{Email: "admin@x.com", Password: adminPassword})
	cookie := sessionCookieFrom(login)
	require.NotNil(t, cookie)

	rec := env.do(t, http.MethodPost, "/api/admin/verify", nil, withCookie(cookie.Value))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, env.admin.Principal(), decodeBody[SessionResponse](t, rec).User)
}

func TestIssueToken(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.do(t, http.MethodPost, "/api/admin/token", nil, withCookie(env.sessionToken(t, env.viewer)))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/token", nil, withCookie(env.sessionToken(t, env.admin)))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[TokenResponse](t, rec)
	assert.Equal(t, 900, body.ExpiresIn)

	principal, ok := env.tokens.Verify(body.Token)
	require.True(t, ok)
	assert.Equal(t, env.admin.Principal(), principal)

	rec = env.do(t, http.MethodGet, "/api/admin/users/"+env.viewer.ID, nil, withBearer(body.Token))
	assert.Equal(t, http.StatusOK, rec.Code)
}
