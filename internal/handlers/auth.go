package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/workspace-admin/apiserver/internal/auth"
	"github.com/workspace-admin/apiserver/internal/metrics"
	"github.com/workspace-admin/apiserver/internal/services"
	"github.com/workspace-admin/apiserver/types"
	"go.uber.org/zap"
)

// AuthHandler provides the admin session endpoints.
type AuthHandler struct {
	userService  *services.UserService
	tokens       *auth.TokenService
	cookieSecure bool
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewAuthHandler constructs an AuthHandler. m and logger may be nil.
func NewAuthHandler(
	userService *services.UserService,
	tokens *auth.TokenService,
	cookieSecure bool,
	m *metrics.Metrics,
	logger *zap.Logger,
) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		userService:  userService,
		tokens:       tokens,
		cookieSecure: cookieSecure,
		metrics:      m,
		logger:       logger,
	}
}

// AuthRouter registers the session routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler, gate *auth.Gate) {
	r.Post("/login", handler.Login)
	r.Post("/logout", handler.Logout)
	r.With(RequirePrincipal(gate, auth.SourceCookie, handler.metrics)).Post("/verify", handler.Verify)
	r.With(RequirePrincipal(gate, auth.SourceCookie, handler.metrics, types.RoleAdmin)).Post("/token", handler.IssueToken)
}

// Login checks admin credentials and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, services.ErrInvalidCredentials):
			h.metrics.RecordLogin(metrics.LoginInvalid)
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, services.ErrNotAdmin):
			h.metrics.RecordLogin(metrics.LoginForbidden)
			writeError(w, http.StatusForbidden, "Access denied. Admins only.")
		default:
			h.metrics.RecordLogin(metrics.LoginError)
			h.logger.Error("login failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	principal := user.Principal()
	token, err := h.tokens.IssueSession(principal)
	if err != nil {
		h.metrics.RecordLogin(metrics.LoginError)
		h.logger.Error("issue session token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.metrics.RecordLogin(metrics.LoginSuccess)
	http.SetCookie(w, h.sessionCookie(token, int(h.tokens.SessionTTL().Seconds())))
	writeJSON(w, http.StatusOK, SessionResponse{Message: "Login successful", User: principal})
}

// Logout clears the session cookie. It always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logout successful"})
}

// Verify echoes the principal of a valid session.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Message: "Authorized", User: principal})
}

// IssueToken trades an admin session for a short-lived bearer token usable
// on the user-management endpoints.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	token, err := h.tokens.IssueShortLived(principal)
	if err != nil {
		h.logger.Error("issue bearer token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresIn: int(h.tokens.ShortTTL().Seconds()),
	})
}

// sessionCookie builds the token cookie. A negative maxAge deletes it.
func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Message string          `json:"message"`
	User    types.Principal `json:"user"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
