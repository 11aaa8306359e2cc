package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/workspace-admin/apiserver/config"
	"github.com/workspace-admin/apiserver/internal/auth"
	"github.com/workspace-admin/apiserver/internal/db"
	"github.com/workspace-admin/apiserver/internal/handlers"
	"github.com/workspace-admin/apiserver/internal/logging"
	"github.com/workspace-admin/apiserver/internal/metrics"
	"github.com/workspace-admin/apiserver/internal/mq"
	"github.com/workspace-admin/apiserver/internal/services"
	"github.com/workspace-admin/apiserver/internal/storage"
	"github.com/workspace-admin/apiserver/internal/store"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	mq         *mq.MQ
	logger     *zap.Logger
}

// Deps are the collaborators the router is assembled from. Publisher and
// Objects may be nil.
type Deps struct {
	Config     config.Config
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	Tokens     *auth.TokenService
	Users      services.UserRepository
	Workspaces services.WorkspaceRepository
	Hasher     auth.Hasher
	Publisher  services.Publisher
	Objects    services.ObjectStore
}

// New validates cfg, connects to the database and optional backends, and
// builds the server.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	queue, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	objects, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		if queue != nil {
			_ = queue.Close()
		}
		return nil, err
	}

	deps := Deps{
		Config:     cfg,
		Logger:     logger,
		Metrics:    metrics.New(),
		Tokens:     tokens,
		Users:      store.NewUserRepository(dbConn),
		Workspaces: store.NewWorkspaceRepository(dbConn),
		Hasher:     auth.NewBcryptHasher(),
	}
	// Assigned only when set so the interfaces stay nil otherwise.
	if queue != nil {
		deps.Publisher = queue
	}
	if objects != nil {
		deps.Objects = objects
	}

	logger.Info("backends ready",
		zap.String("mq", backendName(cfg.MQ.Backend)),
		zap.String("storage", backendName(cfg.Storage.Backend)),
	)

	router := NewRouter(deps)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		mq:         queue,
		logger:     logger,
	}, nil
}

// NewRouter assembles middleware and routes.
func NewRouter(deps Deps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := deps.Metrics

	gate := auth.NewGate(deps.Tokens, logger)
	userService := services.NewUserService(deps.Users, deps.Hasher)
	workspaceService := services.NewWorkspaceService(deps.Workspaces, deps.Publisher, logger)
	exportService := services.NewExportService(deps.Users, deps.Objects)

	var workspaceGuard func(http.Handler) http.Handler
	if deps.Config.Workspaces.RequireAuth {
		workspaceGuard = handlers.RequirePrincipal(gate, auth.SourceCookie, m)
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logging.Middleware(logger),
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)
	if m != nil {
		router.Use(m.Middleware)
		router.Method(http.MethodGet, "/metrics", m.Handler())
	}

	router.Get("/healthz", handlers.Healthz)
	router.Route("/api/admin", func(r chi.Router) {
		handlers.AuthRouter(r, handlers.NewAuthHandler(userService, deps.Tokens, deps.Config.Auth.CookieSecure, m, logger), gate)
		r.Route("/users", func(r chi.Router) {
			handlers.UsersRouter(r, handlers.NewUsersHandler(userService, exportService, logger), gate, m)
		})
	})
	router.Route("/api/workspaces", func(r chi.Router) {
		handlers.WorkspaceRouter(r, handlers.NewWorkspaceHandler(workspaceService, logger), workspaceGuard)
	})
	handlers.PagesRouter(router, handlers.NewPagesHandler(userService, logger), gate)

	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx is
// done, and releases the backends.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.mq != nil {
		if cerr := s.mq.Close(); cerr != nil {
			s.logger.Warn("close mq", zap.Error(cerr))
		}
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}

func backendName(name string) string {
	if name == "" {
		return "none"
	}
	return name
}
