// Package auth issues and verifies session tokens and decides whether a
// request's credential permits an operation.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/workspace-admin/apiserver/config"
	"github.com/workspace-admin/apiserver/types"
)

// Claims is the JWT payload carried by session and bearer tokens.
type Claims struct {
	UserID string     `json:"id"`
	Email  string     `json:"email"`
	Role   types.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 tokens with a single shared secret.
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	shortTTL time.Duration
	parser   *jwt.Parser
	now      func() time.Time
}

// NewTokenService builds a TokenService. An empty secret is rejected.
func NewTokenService(cfg config.AuthConfig) (*TokenService, error) {
	secret := strings.TrimSpace(cfg.JWTSecret)
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &TokenService{
		secret:   []byte(secret),
		ttl:      cfg.TokenTTL,
		shortTTL: cfg.ShortTokenTTL,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithStrictDecoding(),
		),
		now: time.Now,
	}, nil
}

// SessionTTL is the lifetime of tokens issued at login.
func (s *TokenService) SessionTTL() time.Duration {
	return s.ttl
}

// ShortTTL is the lifetime of tokens issued by IssueShortLived.
func (s *TokenService) ShortTTL() time.Duration {
	return s.shortTTL
}

// IssueSession issues the token handed out at login.
func (s *TokenService) IssueSession(p types.Principal) (string, error) {
	return s.Issue(p, s.ttl)
}

// IssueShortLived issues a bearer token for programmatic calls.
func (s *TokenService) IssueShortLived(p types.Principal) (string, error) {
	return s.Issue(p, s.shortTTL)
}

// Issue signs a token for p that expires after ttl.
func (s *TokenService) Issue(p types.Principal, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: p.ID,
		Email:  p.Email,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the principal the token
// asserts. Any failure is reported as ok == false.
func (s *TokenService) Verify(tokenString string) (types.Principal, bool) {
	if strings.TrimSpace(tokenString) == "" {
		return types.Principal{}, false
	}

	claims := Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return types.Principal{}, false
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return types.Principal{}, false
	}

	return types.Principal{ID: claims.UserID, Email: claims.Email, Role: claims.Role}, true
}
