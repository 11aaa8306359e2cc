package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirectUnlessAdmin(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	tests := []struct {
		name string
		path string
		opts []requestOption
	}{
		{name: "no cookie", path: "/admin/dashboard"},
		{name: "invalid cookie", path: "/admin/dashboard", opts: []requestOption{withCookie("forged")}},
		{name: "viewer", path: "/admin", opts: []requestOption{withCookie(env.sessionToken(t, env.viewer))}},
		{name: "unknown admin page", path: "/admin/settings"},
		{name: "bearer is ignored", path: "/admin/dashboard", opts: []requestOption{withBearer(env.sessionToken(t, env.admin))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.path, nil, tt.opts...)
			assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
			assert.Equal(t, LoginPath, rec.Header().Get("Location"))
		})
	}
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	adminTok := env.sessionToken(t, env.admin)

	for _, path := range []string{"/admin", "/admin/dashboard"} {
		rec := env.do(t, http.MethodGet, path, nil, withCookie(adminTok))
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "Signed in as admin@x.com")
		assert.Contains(t, rec.Body.String(), "viewer@x.com")
	}

	rec := env.do(t, http.MethodGet, "/admin/settings", nil, withCookie(adminTok))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginPage(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.do(t, http.MethodGet, LoginPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Admin Login</h1>")
	assert.Contains(t, rec.Body.String(), `type="password"`)
}
