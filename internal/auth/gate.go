package auth

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/workspace-admin/apiserver/types"
	"go.uber.org/zap"
)

// CookieName is the cookie carrying the session token.
const CookieName = "token"

var (
	// ErrMissingCredential means the request carried no token.
	ErrMissingCredential = errors.New("missing credential")
	// ErrInvalidCredential means the token failed verification.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrForbidden means the token is valid but its role is not allowed.
	ErrForbidden = errors.New("forbidden")
)

// Source selects where the gate looks for a token.
//
// Browser-origin endpoints read the session cookie; the user-management
// endpoints used by programmatic clients read the Authorization header.
type Source int

const (
	SourceCookie Source = iota
	SourceBearer
)

func (s Source) String() string {
	switch s {
	case SourceCookie:
		return "cookie"
	case SourceBearer:
		return "bearer"
	default:
		return "unknown"
	}
}

// Verifier checks a token and returns the principal it asserts.
type Verifier interface {
	Verify(token string) (types.Principal, bool)
}

// Gate decides whether a request's credential permits an operation.
type Gate struct {
	verifier Verifier
	logger   *zap.Logger
}

func NewGate(verifier Verifier, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{verifier: verifier, logger: logger}
}

// Authenticate extracts the token from source, verifies it, and checks that
// the principal holds one of roles. With no roles any valid principal passes.
// The role is taken from the token; the store is not consulted.
func (g *Gate) Authenticate(r *http.Request, source Source, roles ...types.Role) (types.Principal, error) {
	token, ok := credential(r, source)
	if !ok {
		return types.Principal{}, ErrMissingCredential
	}

	principal, ok := g.verifier.Verify(token)
	if !ok {
		g.logger.Debug("token verification failed",
			zap.String("source", source.String()),
			zap.String("path", r.URL.Path),
		)
		return types.Principal{}, ErrInvalidCredential
	}

	if len(roles) > 0 && !slices.Contains(roles, principal.Role) {
		return principal, ErrForbidden
	}
	return principal, nil
}

func credential(r *http.Request, source Source) (string, bool) {
	switch source {
	case SourceCookie:
		cookie, err := r.Cookie(CookieName)
		if err != nil || strings.TrimSpace(cookie.Value) == "" {
			return "", false
		}
		return cookie.Value, true
	case SourceBearer:
		return bearerToken(r)
	default:
		return "", false
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
