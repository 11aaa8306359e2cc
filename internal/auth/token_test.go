package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workspace-admin/apiserver/config"
	"github.com/workspace-admin/apiserver/types"
)

func newTestTokenService(t *testing.T, secret string) *TokenService {
	t.Helper()
	svc, err := NewTokenService(config.AuthConfig{
		JWTSecret:     secret,
		TokenTTL:      time.Hour,
		ShortTokenTTL: 15 * time.Minute,
	})
	require.NoError(t, err)
	return svc
}

var adminPrincipal = types.Principal{ID: "3f0c6a8e-2d7b-4c1e-9a55-0b9f1d2e3c4a", Email: "root@x.com", Role: types.RoleAdmin}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService(config.AuthConfig{JWTSecret: "  "})
	require.Error(t, err)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService(t, "super-secret")

	for _, p := range []types.Principal{
		adminPrincipal,
		{ID: "u-2", Email: "ed@x.com", Role: types.RoleEditor},
		{ID: "u-3", Email: "", Role: types.RoleViewer},
	} {
		tok, err := svc.Issue(p, time.Minute)
		require.NoError(t, err)

		got, ok := svc.Verify(tok)
		require.True(t, ok)
		assert.Equal(t, p, got)
	}
}

func TestIssueSession_UsesConfiguredTTL(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService(t, "super-secret")
	issued := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	session, err := svc.IssueSession(adminPrincipal)
	require.NoError(t, err)
	short, err := svc.IssueShortLived(adminPrincipal)
	require.NoError(t, err)

	assert.Equal(t, issued.Add(time.Hour).Unix(), expiryOf(t, session))
	assert.Equal(t, issued.Add(15*time.Minute).Unix(), expiryOf(t, short))
}

func TestVerify_ZeroTTLIsExpired(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService(t, "super-secret")

	tok, err := svc.Issue(adminPrincipal, 0)
	require.NoError(t, err)

	_, ok := svc.Verify(tok)
	assert.False(t, ok)
}

func TestVerify_PastExpiry(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService(t, "super-secret")
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := svc.IssueSession(adminPrincipal)
	require.NoError(t, err)

	_, ok := svc.Verify(tok)
	assert.False(t, ok)
}

func TestVerify_TamperedSignature(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService(t, "super-secret")

	tok, err := svc.IssueSession(adminPrincipal)
	require.NoError(t, err)
	sigStart := strings.LastIndex(tok, ".") + 1

	for i := sigStart; i < len(tok); i++ {
		tampered := []byte(tok)
		tampered[i] = flipBase64URL(tampered[i])

		_, ok := svc.Verify(string(tampered))
		assert.False(t, ok, "tampered byte %d accepted", i)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()
	tok, err := newTestTokenService(t, "right-secret").IssueSession(adminPrincipal)
	require.NoError(t, err)

	_, ok := newTestTokenService(t, "wrong-secret").Verify(tok)
	assert.False(t, ok)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService(t, "k")

	for _, tok := range []string{"", "   ", "not.a.jwt", "a.b", "....."} {
		_, ok := svc.Verify(tok)
		assert.False(t, ok, "token %q", tok)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService(t, "k")

	claims := Claims{
		UserID: adminPrincipal.ID,
		Role:   types.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for _, tok := range []string{hs512, none} {
		_, ok := svc.Verify(tok)
		assert.False(t, ok)
	}
}

func TestVerify_RequiresExpiryAndSubject(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService(t, "k")

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u-1", Role: types.RoleAdmin}).
		SignedString([]byte("k"))
	require.NoError(t, err)
	_, ok := svc.Verify(noExp)
	assert.False(t, ok)

	noID, err := svc.Issue(types.Principal{Email: "a@x.com", Role: types.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	_, ok = svc.Verify(noID)
	assert.False(t, ok)
}

func expiryOf(t *testing.T, tok string) int64 {
	t.Helper()
	claims := Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(tok, &claims)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	return claims.ExpiresAt.Unix()
}

func flipBase64URL(c byte) byte {
	if c == 'A' {
		return 'B'
	}
	return 'A'
}
