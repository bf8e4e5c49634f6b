package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"identity-service/internal/config"
	"identity-service/internal/httperr"
	"identity-service/internal/middleware"
	"identity-service/internal/model"
	"identity-service/internal/queue"
	"identity-service/internal/repository"
	"identity-service/internal/token"
	"identity-service/internal/utils"
)

// UserStore is the storage collaborator the auth endpoints depend on. All
// lookups exclude inactive users; Create and UpdateCredentials are expected
// to assign id, version and timestamps. *repository.UserRepo implements it.
type UserStore interface {
	Create(ctx context.Context, draft model.UserDraft) (*model.User, error)
	FindActiveByCredential(ctx context.Context, credential string) (*model.User, error)
	FindActiveByEmailOrUsername(ctx context.Context, email, username string) (*model.User, error)
	FindActiveByID(ctx context.Context, id string) (*model.User, error)
	UpdateCredentials(ctx context.Context, id, email, passwordHash string) (*model.User, error)
}

// EventPublisher delivers a registration event to the broker. May be nil.
type EventPublisher func(ctx context.Context, event queue.UserRegisteredEvent) error

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg     config.Config
	Users   UserStore
	Tokens  *token.Service
	Publish EventPublisher
}

func NewAuthHandler(cfg config.Config, users UserStore, tokens *token.Service, publish EventPublisher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Tokens: tokens, Publish: publish}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Credential string `json:"credential"` // email or username
	Password   string `json:"password"`
}

type updateReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// profileResp is shared by register, login and profile fetch; Token is only
// present when a new access token was issued.
type profileResp struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Avatar   *string `json:"avatar"`
	Token    string  `json:"token,omitempty"`
}

type refreshResp struct {
	Token string `json:"token"`
}

func profileOf(u *model.User, accessToken string) profileResp {
	resp := profileResp{Username: u.Username, Email: u.Email, Token: accessToken}
	if u.Avatar != "" {
		resp.Avatar = &u.Avatar
	}
	return resp
}

const storeTimeout = 5 * time.Second

// issuePair mints an access token and sets the refresh cookie for u. Cookie
// lifetime and embedded expiry come from the same instant inside the token
// service.
func (h *AuthHandler) issuePair(c echo.Context, u *model.User) (string, error) {
	access, err := h.Tokens.IssueAccess(u.ID, u.Version)
	if err != nil {
		return "", httperr.Wrap(httperr.KindCode500, err)
	}
	cookie, err := h.Tokens.RefreshCookie(u.ID, u.Version)
	if err != nil {
		return "", httperr.Wrap(httperr.KindCode500, err)
	}
	c.SetCookie(cookie)
	return access, nil
}

// Register creates a user and returns tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return httperr.New(httperr.KindInvalidBody).WithMsg("invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return httperr.New(httperr.KindInvalidBody).WithMsg("username/email/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	// Conflict when any active user already holds the email or the username.
	if _, err := h.Users.FindActiveByEmailOrUsername(ctx, req.Email, req.Username); err == nil {
		return httperr.New(httperr.KindUserAlreadyExists)
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return httperr.Wrap(httperr.KindCode500, err)
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return httperr.Wrap(httperr.KindCode500, err)
	}

	u, err := h.Users.Create(ctx, model.UserDraft{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return httperr.New(httperr.KindUserAlreadyExists)
		}
		return httperr.Wrap(httperr.KindCode500, err)
	}

	access, err := h.issuePair(c, u)
	if err != nil {
		return err
	}

	if h.Publish != nil {
		ev := queue.UserRegisteredEvent{
			UserID:       u.ID,
			Username:     u.Username,
			Email:        u.Email,
			RegisteredAt: u.CreatedAt.Format(time.RFC3339),
		}
		// Broker delivery must not delay or fail the registration.
		go func() { _ = h.Publish(context.Background(), ev) }()
	}

	return c.JSON(http.StatusOK, profileOf(u, access))
}

// Login verifies a credential/password pair and returns a new token pair.
// An unknown credential and a wrong password are reported with different
// statuses (404 vs 401); see DESIGN.md for the hardening note on this.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return httperr.New(httperr.KindInvalidBody).WithMsg("invalid body")
	}
	req.Credential = strings.TrimSpace(req.Credential)
	if req.Credential == "" || req.Password == "" {
		return httperr.New(httperr.KindInvalidBody).WithMsg("credential/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	u, err := h.Users.FindActiveByCredential(ctx, req.Credential)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return httperr.New(httperr.KindNotFound)
		}
		return httperr.Wrap(httperr.KindCode500, err)
	}

	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return httperr.New(httperr.KindUnauthorized)
	}

	access, err := h.issuePair(c, u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileOf(u, access))
}

// Profile returns the authenticated user's profile, without a token.
func (h *AuthHandler) Profile(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return httperr.New(httperr.KindUnauthorized)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	u, err := h.Users.FindActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return httperr.New(httperr.KindNotFound)
		}
		return httperr.Wrap(httperr.KindCode500, err)
	}
	return c.JSON(http.StatusOK, profileOf(u, ""))
}

// UpdateProfile changes the authenticated user's email and/or password. The
// stored version is regenerated on any change, so outstanding refresh tokens
// stop being renewable once their version goes stale.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return httperr.New(httperr.KindUnauthorized)
	}

	var req updateReq
	if err := c.Bind(&req); err != nil {
		return httperr.New(httperr.KindInvalidBody).WithMsg("invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" && req.Password == "" {
		return httperr.New(httperr.KindInvalidBody).WithMsg("email or password required")
	}

	hash := ""
	if req.Password != "" {
		var err error
		hash, err = utils.HashPassword(req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return httperr.Wrap(httperr.KindCode500, err)
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	u, err := h.Users.UpdateCredentials(ctx, userID, req.Email, hash)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return httperr.New(httperr.KindNotFound)
		case errors.Is(err, repository.ErrUserExists):
			return httperr.New(httperr.KindUserAlreadyExists)
		default:
			return httperr.Wrap(httperr.KindCode500, err)
		}
	}
	return c.JSON(http.StatusOK, profileOf(u, ""))
}

// Refresh exchanges a valid refresh cookie for a new access token. The
// refresh token itself is not rotated. The token's version is compared
// against the user's current version so that credential changes cut off
// renewal; a missing, inactive or version-mismatched user is reported with
// the same Unauthorized outcome as a bad token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(h.Tokens.CookieName())
	if err != nil || cookie.Value == "" {
		return httperr.New(httperr.KindUnauthorized)
	}

	claims, err := h.Tokens.VerifyRefresh(cookie.Value)
	if err != nil {
		return httperr.New(httperr.KindUnauthorized)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	u, err := h.Users.FindActiveByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return httperr.New(httperr.KindUnauthorized)
		}
		return httperr.Wrap(httperr.KindCode500, err)
	}
	if u.Version != claims.Version {
		return httperr.New(httperr.KindUnauthorized)
	}

	access, err := h.Tokens.IssueAccess(u.ID, u.Version)
	if err != nil {
		return httperr.Wrap(httperr.KindCode500, err)
	}
	return c.JSON(http.StatusOK, refreshResp{Token: access})
}
