package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
	"github.com/workspace-admin/apiserver/config"
	"github.com/workspace-admin/apiserver/internal/auth"
	"github.com/workspace-admin/apiserver/internal/metrics"
	"github.com/workspace-admin/apiserver/internal/services"
	"github.com/workspace-admin/apiserver/internal/store"
	"github.com/workspace-admin/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// memUsers is an in-memory services.UserRepository with a unique email index.
type memUsers struct {
	mu    sync.Mutex
	users []types.User
}

func (m *memUsers) List(ctx context.Context) ([]types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.User, len(m.users))
	copy(out, m.users)
	return out, nil
}

func (m *memUsers) GetByID(ctx context.Context, id string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUsers) Create(ctx context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	m.users = append(m.users, user)
	return user, nil
}

func (m *memUsers) UpdateRole(ctx context.Context, id string, role types.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].Role = role
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memUsers) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type memWorkspaces struct {
	mu      sync.Mutex
	created []types.Workspace
}

func (m *memWorkspaces) Create(ctx context.Context, ws types.Workspace) (types.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws.ID = uuid.NewString()
	ws.CreatedAt = time.Now().UTC()
	m.created = append(m.created, ws)
	return ws, nil
}

type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memObjects) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = body
	return nil
}

type testEnv struct {
	router     chi.Router
	users      *memUsers
	workspaces *memWorkspaces
	tokens     *auth.TokenService
	metrics    *metrics.Metrics
	admin      types.User
	viewer     types.User
}

type envOptions struct {
	objects           services.ObjectStore
	guardedWorkspaces bool
}

const (
	adminPassword  = "admin-pass"
	viewerPassword = "viewer-pass"
)

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	tokens, err := auth.NewTokenService(config.AuthConfig{
		JWTSecret:     "handlers-test-secret",
		TokenTTL:      time.Hour,
		ShortTokenTTL: 15 * time.Minute,
	})
	require.NoError(t, err)

	users := &memUsers{}
	hasher := auth.BcryptHasher{Cost: bcrypt.MinCost}
	userService := services.NewUserService(users, hasher)
	admin, err := userService.Create(context.Background(), "admin@x.com", adminPassword, types.RoleAdmin)
	require.NoError(t, err)
	viewer, err := userService.Create(context.Background(), "viewer@x.com", viewerPassword, types.RoleViewer)
	require.NoError(t, err)

	m := metrics.New()
	gate := auth.NewGate(tokens, nil)
	workspaces := &memWorkspaces{}

	exportService := services.NewExportService(users, opts.objects)

	var workspaceGuard func(http.Handler) http.Handler
	if opts.guardedWorkspaces {
		workspaceGuard = RequirePrincipal(gate, auth.SourceCookie, m)
	}

	r := chi.NewRouter()
	r.Route("/api/admin", func(r chi.Router) {
		AuthRouter(r, NewAuthHandler(userService, tokens, false, m, nil), gate)
		r.Route("/users", func(r chi.Router) {
			UsersRouter(r, NewUsersHandler(userService, exportService, nil), gate, m)
		})
	})
	r.Route("/api/workspaces", func(r chi.Router) {
		WorkspaceRouter(r, NewWorkspaceHandler(services.NewWorkspaceService(workspaces, nil, nil), nil), workspaceGuard)
	})
	PagesRouter(r, NewPagesHandler(userService, nil), gate)

	return &testEnv{
		router:     r,
		users:      users,
		workspaces: workspaces,
		tokens:     tokens,
		metrics:    m,
		admin:      admin,
		viewer:     viewer,
	}
}

func (e *testEnv) sessionToken(t *testing.T, user types.User) string {
	t.Helper()
	tok, err := e.tokens.IssueSession(user.Principal())
	require.NoError(t, err)
	return tok
}

type requestOption func(*http.Request)

func withCookie(token string) requestOption {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
}

func withBearer(token string) requestOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func sessionCookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

func counterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	m := &dto.Metric{}
	if err := cv.WithLabelValues(labels...).Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
