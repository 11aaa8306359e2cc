package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/workspace-admin/apiserver/internal/auth"
	"github.com/workspace-admin/apiserver/internal/metrics"
	"github.com/workspace-admin/apiserver/internal/services"
	"github.com/workspace-admin/apiserver/internal/store"
	"github.com/workspace-admin/apiserver/types"
	"go.uber.org/zap"
)

// UsersHandler provides the user-management endpoints.
type UsersHandler struct {
	userService   *services.UserService
	exportService *services.ExportService
	logger        *zap.Logger
}

// NewUsersHandler constructs a UsersHandler. logger may be nil.
func NewUsersHandler(userService *services.UserService, exportService *services.ExportService, logger *zap.Logger) *UsersHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UsersHandler{
		userService:   userService,
		exportService: exportService,
		logger:        logger,
	}
}

// UsersRouter registers user routes on the given router. The listing is read
// by the dashboard with its session cookie; everything else expects a bearer
// token.
func UsersRouter(r chi.Router, handler *UsersHandler, gate *auth.Gate, m *metrics.Metrics) {
	cookieAdmin := RequirePrincipal(gate, auth.SourceCookie, m, types.RoleAdmin)
	bearerAdmin := RequirePrincipal(gate, auth.SourceBearer, m, types.RoleAdmin)

	r.With(cookieAdmin).Get("/", handler.ListUsers)
	r.Group(func(r chi.Router) {
		r.Use(bearerAdmin)
		r.Get("/{userID}", handler.GetUser)
		r.Post("/create", handler.CreateUser)
		r.Post("/update", handler.UpdateUser)
		r.Post("/delete", handler.DeleteUser)
		r.Post("/export", handler.ExportUsers)
	})
}

// ListUsers returns every user.
func (h *UsersHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		h.logger.Error("list users", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching users")
		return
	}
	writeJSON(w, http.StatusOK, UsersResponse{Users: users})
}

// GetUser returns a single user by id.
func (h *UsersHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(chi.URLParam(r, "userID"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("get user", zap.String("user_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching user")
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{User: user})
}

// CreateUser adds a user with the given role.
func (h *UsersHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.Create(r.Context(), req.Email, req.Password, types.Role(strings.TrimSpace(req.Role)))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "Email, password, and role are required")
		case errors.Is(err, services.ErrInvalidRole):
			writeError(w, http.StatusBadRequest, invalidRoleMessage())
		case errors.Is(err, services.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, "A user with this email already exists")
		default:
			h.logger.Error("create user", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Error creating user")
		}
		return
	}
	writeJSON(w, http.StatusOK, CreateUserResponse{Message: "User created successfully", User: user})
}

// UpdateUser changes a user's role.
func (h *UsersHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.ID = strings.TrimSpace(req.ID)
	role := types.Role(strings.TrimSpace(req.Role))
	if req.ID == "" || role == "" {
		writeError(w, http.StatusBadRequest, "User ID and role are required")
		return
	}
	id, ok := parseUserID(req.ID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.userService.UpdateRole(r.Context(), id, role); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRole):
			writeError(w, http.StatusBadRequest, invalidRoleMessage())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		default:
			h.logger.Error("update user role", zap.String("user_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Error updating user role")
		}
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "User role updated successfully"})
}

// DeleteUser removes a user.
func (h *UsersHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req DeleteUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.ID) == "" {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}
	id, ok := parseUserID(req.ID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("delete user", zap.String("user_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error deleting user")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}

// ExportUsers writes a snapshot of all users to object storage.
func (h *UsersHandler) ExportUsers(w http.ResponseWriter, r *http.Request) {
	key, count, err := h.exportService.Export(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrExportUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "User export is not configured")
			return
		}
		h.logger.Error("export users", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error exporting users")
		return
	}
	writeJSON(w, http.StatusOK, ExportResponse{Message: "Users exported successfully", Key: key, Count: count})
}

// parseUserID returns the canonical form of a UUID user id.
func parseUserID(raw string) (string, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func invalidRoleMessage() string {
	return "Invalid role. Valid roles are: " + types.RoleNames()
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type DeleteUserRequest struct {
	ID string `json:"id"`
}

type UsersResponse struct {
	Users []types.User `json:"users"`
}

type UserResponse struct {
	User types.User `json:"user"`
}

type CreateUserResponse struct {
	Message string     `json:"message"`
	User    types.User `json:"user"`
}

type ExportResponse struct {
	Message string `json:"message"`
	Key     string `json:"key"`
	Count   int    `json:"count"`
}
