package handlers

import (
	"errors"
	"net/http"

	"github.com/workspace-admin/apiserver/internal/auth"
	"github.com/workspace-admin/apiserver/internal/metrics"
	"github.com/workspace-admin/apiserver/types"
)

// Rejection reasons recorded in wsadmin_auth_rejections_total.
const (
	rejectMissing   = "missing"
	rejectInvalid   = "invalid"
	rejectForbidden = "forbidden"
)

// RequirePrincipal guards a route with gate. Rejected requests get a 401 or
// 403 JSON body; accepted ones carry the principal in their context.
// m may be nil.
func RequirePrincipal(gate *auth.Gate, source auth.Source, m *metrics.Metrics, roles ...types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := gate.Authenticate(r, source, roles...)
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
			case errors.Is(err, auth.ErrMissingCredential):
				m.RecordRejection(rejectMissing)
				writeError(w, http.StatusUnauthorized, missingCredentialMessage(source))
			case errors.Is(err, auth.ErrForbidden):
				m.RecordRejection(rejectForbidden)
				writeError(w, http.StatusForbidden, "Access denied: Admins only")
			default:
				m.RecordRejection(rejectInvalid)
				writeError(w, http.StatusUnauthorized, "Unauthorized: Invalid or expired token")
			}
		})
	}
}

func missingCredentialMessage(source auth.Source) string {
	if source == auth.SourceBearer {
		return "Unauthorized: No Authorization header provided"
	}
	return "Unauthorized: No token provided"
}

// RedirectUnlessAdmin sends every request without a valid admin session
// cookie to loginPath. No reason is given to the client.
func RedirectUnlessAdmin(gate *auth.Gate, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := gate.Authenticate(r, auth.SourceCookie, types.RoleAdmin)
			if err != nil {
				http.Redirect(w, r, loginPath, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
		})
	}
}
