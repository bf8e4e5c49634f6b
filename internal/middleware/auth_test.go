package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"identity-service/internal/config"
	"identity-service/internal/httperr"
	"identity-service/internal/middleware"
	"identity-service/internal/token"
)

func testTokens() *token.Service {
	return token.NewService(config.Config{
		AccessSecret:      "access-secret",
		RefreshSecret:     "refresh-secret",
		AccessTTLMin:      15,
		RefreshTTLDays:    7,
		RefreshCookieName: "refresh_token",
		CookieDomain:      "example.com",
	})
}

// invoke runs a middleware-wrapped probe handler against a request carrying
// the given Authorization header and reports the extracted identity.
func invoke(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (id string, identified bool, err error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := mw(func(c echo.Context) error {
		id, identified = middleware.UserID(c)
		return c.NoContent(http.StatusOK)
	})
	err = h(c)
	return id, identified, err
}

func requireUnauthorized(t *testing.T, err error) {
	t.Helper()
	var he *httperr.Error
	require.ErrorAs(t, err, &he)
	require.Equal(t, httperr.KindUnauthorized, he.Kind)
}

func TestRequireUser(t *testing.T) {
	t.Parallel()

	tokens := testTokens()
	access, err := tokens.IssueAccess("user-1", "v1")
	require.NoError(t, err)
	refresh, _, err := tokens.IssueRefresh("user-1", "v1")
	require.NoError(t, err)

	mw := middleware.RequireUser(tokens)

	t.Run("valid token", func(t *testing.T) {
		id, identified, err := invoke(t, mw, "Bearer "+access)
		require.NoError(t, err)
		require.True(t, identified)
		require.Equal(t, "user-1", id)
	})

	t.Run("missing header", func(t *testing.T) {
		_, identified, err := invoke(t, mw, "")
		requireUnauthorized(t, err)
		require.False(t, identified)
	})

	t.Run("malformed scheme", func(t *testing.T) {
		_, _, err := invoke(t, mw, "Basic "+access)
		requireUnauthorized(t, err)
	})

	t.Run("empty bearer", func(t *testing.T) {
		_, _, err := invoke(t, mw, "Bearer ")
		requireUnauthorized(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, _, err := invoke(t, mw, "Bearer not-a-token")
		requireUnauthorized(t, err)
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		_, _, err := invoke(t, mw, "Bearer "+refresh)
		requireUnauthorized(t, err)
	})
}

func TestOptionalUser(t *testing.T) {
	t.Parallel()

	tokens := testTokens()
	access, err := tokens.IssueAccess("user-2", "v1")
	require.NoError(t, err)

	mw := middleware.OptionalUser(tokens)

	t.Run("valid token yields identity", func(t *testing.T) {
		id, identified, err := invoke(t, mw, "Bearer "+access)
		require.NoError(t, err)
		require.True(t, identified)
		require.Equal(t, "user-2", id)
	})

	// Absence and failure both degrade silently to an anonymous request.
	for name, header := range map[string]string{
		"missing header":   "",
		"malformed scheme": "Token " + access,
		"garbage token":    "Bearer nope",
	} {
		t.Run(name, func(t *testing.T) {
			_, identified, err := invoke(t, mw, header)
			require.NoError(t, err)
			require.False(t, identified)
		})
	}
}
