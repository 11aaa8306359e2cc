package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/workspace-admin/apiserver/internal/auth"
	"github.com/workspace-admin/apiserver/internal/services"
	"github.com/workspace-admin/apiserver/types"
	"go.uber.org/zap"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/admin/dashboard"
	loginAPIPath  = "/api/admin/login"
	logoutAPIPath = "/api/admin/logout"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// PagesHandler renders the browser pages of the panel.
type PagesHandler struct {
	userService *services.UserService
	logger      *zap.Logger
}

func NewPagesHandler(userService *services.UserService, logger *zap.Logger) *PagesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PagesHandler{userService: userService, logger: logger}
}

// PagesRouter registers the login page and the admin pages. Everything under
// /admin goes through the redirect interceptor.
func PagesRouter(r chi.Router, handler *PagesHandler, gate *auth.Gate) {
	r.Get(LoginPath, handler.Login)
	r.Route("/admin", func(r chi.Router) {
		r.Use(RedirectUnlessAdmin(gate, LoginPath))
		r.Get("/", handler.Dashboard)
		r.Get("/dashboard", handler.Dashboard)
	})
}

type loginPage struct {
	LoginAPI      string
	DashboardPath string
}

type dashboardPage struct {
	Principal types.Principal
	Users     []types.User
	Error     string
	LogoutAPI string
	LoginPath string
}

// Login renders the sign-in form.
func (h *PagesHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login.html", loginPage{
		LoginAPI:      loginAPIPath,
		DashboardPath: DashboardPath,
	})
}

// Dashboard renders the user list for the signed-in admin.
func (h *PagesHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())
	page := dashboardPage{
		Principal: principal,
		LogoutAPI: logoutAPIPath,
		LoginPath: LoginPath,
	}

	users, err := h.userService.List(r.Context())
	if err != nil {
		h.logger.Error("list users for dashboard", zap.Error(err))
		page.Error = "Error fetching users"
	}
	page.Users = users

	h.render(w, "dashboard.html", page)
}

func (h *PagesHandler) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("render page", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
