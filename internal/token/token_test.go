package token

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testService returns a Service with fixed secrets and a controllable clock.
func testService(clock *time.Time) *Service {
	return &Service{
		accessSecret:  []byte("access-secret"),
		refreshSecret: []byte("refresh-secret"),
		accessTTL:     15 * time.Minute,
		refreshTTL:    7 * 24 * time.Hour,
		cookieName:    "refresh_token",
		cookieDomain:  "example.com",
		now:           func() time.Time { return *clock },
	}
}

func TestIssueAccess_RoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc := testService(&now)

	raw, err := svc.IssueAccess("user-1", "v1")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := svc.VerifyAccess(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "v1", claims.Version)
	require.True(t, claims.ExpiresAt.After(claims.IssuedAt.Time))
	require.Equal(t, 15*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestIssueRefresh_RoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc := testService(&now)

	raw, exp, err := svc.IssueRefresh("user-2", "v2")
	require.NoError(t, err)

	claims, err := svc.VerifyRefresh(raw)
	require.NoError(t, err)
	require.Equal(t, "user-2", claims.UserID)
	require.Equal(t, "v2", claims.Version)
	require.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
}

func TestVerify_Expiry(t *testing.T) {
	t.Parallel()

	clock := time.Now()
	svc := testService(&clock)

	raw, err := svc.IssueAccess("user-1", "v1")
	require.NoError(t, err)

	// Valid at issuance time.
	_, err = svc.VerifyAccess(raw)
	require.NoError(t, err)

	// Still valid just before expiry.
	clock = clock.Add(15*time.Minute - time.Second)
	_, err = svc.VerifyAccess(raw)
	require.NoError(t, err)

	// Invalid at expiry.
	clock = clock.Add(2 * time.Second)
	_, err = svc.VerifyAccess(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_KindSeparation(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc := testService(&now)

	access, err := svc.IssueAccess("user-1", "v1")
	require.NoError(t, err)
	refresh, _, err := svc.IssueRefresh("user-1", "v1")
	require.NoError(t, err)

	// Each kind only verifies against its own secret.
	_, err = svc.VerifyRefresh(access)
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.VerifyAccess(refresh)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_OpaqueFailures(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc := testService(&now)

	valid, err := svc.IssueAccess("user-1", "v1")
	require.NoError(t, err)
	repl := "A"
	if strings.HasSuffix(valid, "A") {
		repl = "B"
	}
	tampered := valid[:len(valid)-1] + repl

	// Structural, signature and expiry failures are indistinguishable.
	for _, raw := range []string{"", "garbage", "a.b.c", tampered} {
		_, err := svc.VerifyAccess(raw)
		require.ErrorIs(t, err, ErrInvalidToken, "input %q", raw)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc := testService(&now)
	other := testService(&now)
	other.accessSecret = []byte("a-different-secret")

	raw, err := svc.IssueAccess("user-1", "v1")
	require.NoError(t, err)

	_, err = other.VerifyAccess(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshCookie_Attributes(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc := testService(&now)

	cookie, err := svc.RefreshCookie("user-3", "v3")
	require.NoError(t, err)

	require.Equal(t, "refresh_token", cookie.Name)
	require.Equal(t, "example.com", cookie.Domain)
	require.Equal(t, "/", cookie.Path)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
	require.True(t, strings.Count(cookie.Value, ".") == 2)

	// The cookie expiry and the embedded token expiry come from the same
	// instant and duration.
	claims, err := svc.VerifyRefresh(cookie.Value)
	require.NoError(t, err)
	require.Equal(t, cookie.Expires.Unix(), claims.ExpiresAt.Unix())
	require.Equal(t, "user-3", claims.UserID)
	require.Equal(t, "v3", claims.Version)
}
