package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ozgekaya/student-info-api/internal/auth"
	"github.com/ozgekaya/student-info-api/internal/config"
	"github.com/ozgekaya/student-info-api/internal/model"
	"github.com/ozgekaya/student-info-api/internal/repository"
	"github.com/ozgekaya/student-info-api/internal/utils"
	"github.com/ozgekaya/student-info-api/internal/utils/response"
	"github.com/ozgekaya/student-info-api/internal/validate"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type registerReq struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required,min=1,max=50"`
	LastName  string `json:"lastName" validate:"required,min=1,max=50"`
	Role      string `json:"role" validate:"required,role"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User  model.User `json:"user"`
	Token tokenPart  `json:"token"`
}

// Register creates a user account and returns it with a fresh token, so
// the client is signed in immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "validation failed", err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Email, req.Password, req.FirstName, req.LastName, req.Role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return fail(c, h.Cfg, http.StatusConflict, "email already registered", err)
		}
		return serverError(c, h.Cfg, err)
	}

	token, err := auth.NewToken(h.Cfg.JWTSecret, auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}, h.Cfg.TokenTTLDays)
	if err != nil {
		return serverError(c, h.Cfg, err)
	}
	return response.OK(c, http.StatusCreated, "registered", authResp{
		User:  u,
		Token: tokenPart{Token: token.Token, Expires: token.Exp},
	})
}

// Login verifies credentials and returns a fresh token. A disabled
// account is rejected before the password is even checked.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "validation failed", err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, h.Cfg, http.StatusUnauthorized, "invalid credentials", nil)
		}
		return serverError(c, h.Cfg, err)
	}
	if !u.IsActive {
		return fail(c, h.Cfg, http.StatusUnauthorized, "account disabled", nil)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, h.Cfg, http.StatusUnauthorized, "invalid credentials", nil)
	}

	token, err := auth.NewToken(h.Cfg.JWTSecret, auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}, h.Cfg.TokenTTLDays)
	if err != nil {
		return serverError(c, h.Cfg, err)
	}
	return response.OK(c, http.StatusOK, "logged in", authResp{
		User:  u,
		Token: tokenPart{Token: token.Token, Expires: token.Exp},
	})
}

// Logout acknowledges the request. Tokens are stateless; the client
// simply discards theirs and waits out the expiry.
func (h *AuthHandler) Logout(c echo.Context) error {
	return response.OK(c, http.StatusOK, "logged out", nil)
}

// Me returns the caller's own user record. A 404 here means the account
// was deleted after the token was issued.
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return fail(c, h.Cfg, http.StatusUnauthorized, "unauthorized", err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, h.Cfg, http.StatusNotFound, "user no longer exists", err)
		}
		return serverError(c, h.Cfg, err)
	}
	return response.OK(c, http.StatusOK, "ok", u)
}
