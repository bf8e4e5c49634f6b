package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"strings" // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"identity-service/internal/httperr"
	"identity-service/internal/token"
)

// userIDKey is the context key under which the authenticated user's id is
// stored. Handlers read it through UserID().
const userIDKey = "user_id"

const bearerPrefix = "Bearer "

// bearerToken extracts the raw token from the Authorization header. The
// second return value reports whether a well-formed `Bearer <token>` value
// was present at all.
func bearerToken(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, bearerPrefix) {
		return "", false
	}
	raw := strings.TrimPrefix(auth, bearerPrefix)
	if raw == "" {
		return "", false
	}
	return raw, true
}

// RequireUser returns an Echo middleware that admits only requests carrying
// a valid, unexpired access token in the Authorization header. A missing
// header, a malformed scheme, and a token failing verification are all
// rejected with the same Unauthorized outcome before any route logic runs.
// On success the token's user id is stored in the request context; the
// claims version is deliberately not consulted here.
func RequireUser(tokens *token.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return httperr.New(httperr.KindUnauthorized)
			}
			claims, err := tokens.VerifyAccess(raw)
			if err != nil {
				return httperr.New(httperr.KindUnauthorized)
			}
			c.Set(userIDKey, claims.UserID)
			return next(c)
		}
	}
}

// OptionalUser is the permissive variant of RequireUser: the same parsing
// and verification, but any absence or failure degrades silently to an
// anonymous request instead of an error. Endpoints that serve both guests
// and authenticated callers use this and branch on UserID().
func OptionalUser(tokens *token.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw, ok := bearerToken(c); ok {
				if claims, err := tokens.VerifyAccess(raw); err == nil {
					c.Set(userIDKey, claims.UserID)
				}
			}
			return next(c)
		}
	}
}

// UserID returns the authenticated user's id from the request context. The
// second return value is false for anonymous requests.
func UserID(c echo.Context) (string, bool) {
	id, ok := c.Get(userIDKey).(string)
	return id, ok && id != ""
}
