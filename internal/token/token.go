// Package token implements the stateless credential scheme: short-lived
// access tokens and longer-lived refresh tokens, both HS256 JWTs signed with
// kind-specific secrets. Tokens have no server-side record; validity is a
// pure function of signature, expiry and current time.
package token

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"identity-service/internal/config"
)

// ErrInvalidToken is the single failure every verification path collapses
// into. Callers cannot distinguish an expired token from a tampered one or
// from a token of the wrong kind.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload carried inside every token. UserID identifies the
// subject; Version is the user's token-invalidation identifier current at
// issuance. IssuedAt and ExpiresAt come from the embedded registered claims
// and are always derived from the server clock, never client-supplied.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"user_id"`
	Version string `json:"version"`
}

// Service issues and verifies both token kinds. The secrets and lifetimes
// are fixed at construction; access and refresh use independent secrets so a
// leaked token of one kind can never pass verification as the other.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	cookieName    string
	cookieDomain  string
	now           func() time.Time
}

// NewService builds a Service from the loaded configuration.
func NewService(cfg config.Config) *Service {
	return &Service{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     time.Duration(cfg.AccessTTLMin) * time.Minute,
		refreshTTL:    time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
		cookieName:    cfg.RefreshCookieName,
		cookieDomain:  cfg.CookieDomain,
		now:           time.Now,
	}
}

// CookieName returns the configured name of the refresh cookie so that the
// refresh endpoint reads the same cookie this service writes.
func (s *Service) CookieName() string { return s.cookieName }

// IssueAccess signs a new access token for the given user and version.
func (s *Service) IssueAccess(userID, version string) (string, error) {
	return s.signAt(s.accessSecret, userID, version, s.now().UTC(), s.accessTTL)
}

// IssueRefresh signs a new refresh token and returns it with its expiry.
func (s *Service) IssueRefresh(userID, version string) (string, time.Time, error) {
	now := s.now().UTC()
	exp := now.Add(s.refreshTTL)
	raw, err := s.signAt(s.refreshSecret, userID, version, now, s.refreshTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return raw, exp, nil
}

// RefreshCookie issues a refresh token wrapped for transport. The cookie is
// HTTP-only and secure, scoped to the configured domain at the root path,
// SameSite=None, and its Expires attribute matches the embedded token's
// expiry exactly: both are computed from the same instant and duration.
func (s *Service) RefreshCookie(userID, version string) (*http.Cookie, error) {
	raw, exp, err := s.IssueRefresh(userID, version)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     s.cookieName,
		Value:    raw,
		Domain:   s.cookieDomain,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}, nil
}

// VerifyAccess decodes an access token and returns its claims.
func (s *Service) VerifyAccess(raw string) (*Claims, error) {
	return s.verify(s.accessSecret, raw)
}

// VerifyRefresh decodes a refresh token and returns its claims.
func (s *Service) VerifyRefresh(raw string) (*Claims, error) {
	return s.verify(s.refreshSecret, raw)
}

func (s *Service) signAt(secret []byte, userID, version string, now time.Time, ttl time.Duration) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			// A unique jti keeps two tokens minted in the same second for
			// the same user distinguishable.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:  userID,
		Version: version,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// verify parses raw against the given secret. Structural, signature and
// expiry failures are indistinguishable to the caller: all return
// ErrInvalidToken.
func (s *Service) verify(secret []byte, raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
