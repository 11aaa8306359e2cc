package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/workspace-admin/apiserver/types"
)

type contextKey string

const contextPrincipalKey contextKey = "principal"

func withPrincipal(ctx context.Context, p types.Principal) context.Context {
	return context.WithValue(ctx, contextPrincipalKey, p)
}

func principalFromContext(ctx context.Context) (types.Principal, bool) {
	p, ok := ctx.Value(contextPrincipalKey).(types.Principal)
	return p, ok
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse is the body of calls that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
