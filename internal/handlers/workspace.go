package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/workspace-admin/apiserver/internal/services"
	"github.com/workspace-admin/apiserver/types"
	"go.uber.org/zap"
)

// WorkspaceHandler provides workspace endpoints.
type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
	logger           *zap.Logger
}

func NewWorkspaceHandler(workspaceService *services.WorkspaceService, logger *zap.Logger) *WorkspaceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkspaceHandler{workspaceService: workspaceService, logger: logger}
}

// WorkspaceRouter registers workspace routes. guard is optional; when nil the
// create endpoint is open.
func WorkspaceRouter(r chi.Router, handler *WorkspaceHandler, guard func(http.Handler) http.Handler) {
	if guard != nil {
		r.With(guard).Post("/create", handler.CreateWorkspace)
		return
	}
	r.Post("/create", handler.CreateWorkspace)
}

// CreateWorkspace stores a workspace. When the route is guarded and the
// client names no creator, the signed-in user is recorded.
func (h *WorkspaceHandler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkspaceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	createdBy := strings.TrimSpace(req.CreatedBy)
	if principal, ok := principalFromContext(r.Context()); ok && createdBy == "" {
		createdBy = principal.ID
	}

	ws, err := h.workspaceService.Create(r.Context(), req.Name, createdBy)
	if err != nil {
		if errors.Is(err, services.ErrMissingFields) {
			writeError(w, http.StatusBadRequest, "Workspace name is required")
			return
		}
		h.logger.Error("create workspace", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error creating workspace")
		return
	}
	writeJSON(w, http.StatusCreated, WorkspaceResponse{Workspace: ws})
}

type CreateWorkspaceRequest struct {
	Name      string `json:"name"`
	CreatedBy string `json:"createdBy"`
}

type WorkspaceResponse struct {
	Workspace types.Workspace `json:"workspace"`
}
