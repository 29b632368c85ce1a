package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ozgekaya/student-info-api/internal/config"
	"github.com/ozgekaya/student-info-api/internal/policy"
	"github.com/ozgekaya/student-info-api/internal/repository"
	"github.com/ozgekaya/student-info-api/internal/utils/response"
	"github.com/ozgekaya/student-info-api/internal/validate"
)

// UserHandler serves the account management endpoints.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u}
}

type userUpdateReq struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=50"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=50"`
	IsActive  *bool   `json:"isActive"`
}

// List returns one page of accounts, newest first. Admin only, enforced
// by the route.
func (h *UserHandler) List(c echo.Context) error {
	page, limit, offset := pageParams(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	users, total, err := h.Users.List(ctx, limit, offset)
	if err != nil {
		return serverError(c, h.Cfg, err)
	}
	return response.Page(c, "users", users, response.NewPagination(page, limit, total))
}

// Get returns one account: your own, or anyone's as admin.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return fail(c, h.Cfg, http.StatusUnauthorized, "unauthorized", err)
	}
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid user id", err)
	}
	if !policy.CanAccessUser(id, userID) {
		return fail(c, h.Cfg, http.StatusForbidden, "forbidden", nil)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, h.Cfg, http.StatusNotFound, "user not found", err)
		}
		return serverError(c, h.Cfg, err)
	}
	return response.OK(c, http.StatusOK, "user", u)
}

// Update changes name fields, and activation when the caller is an
// admin. Non-admin isActive edits are dropped silently rather than
// rejected.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return fail(c, h.Cfg, http.StatusUnauthorized, "unauthorized", err)
	}
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid user id", err)
	}
	if !policy.CanAccessUser(id, userID) {
		return fail(c, h.Cfg, http.StatusForbidden, "forbidden", nil)
	}

	var req userUpdateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "validation failed", err)
	}

	upd := policy.StripUserUpdate(id, repository.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
	})

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.Update(ctx, userID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, h.Cfg, http.StatusNotFound, "user not found", err)
		}
		return serverError(c, h.Cfg, err)
	}
	return response.OK(c, http.StatusOK, "user updated", u)
}

// Delete removes an account. Admin only by route, and admins cannot
// delete themselves.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return fail(c, h.Cfg, http.StatusUnauthorized, "unauthorized", err)
	}
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid user id", err)
	}
	if !policy.CanDeleteUser(id, userID) {
		if id.UserID == userID {
			return fail(c, h.Cfg, http.StatusBadRequest, "cannot delete your own account", nil)
		}
		return fail(c, h.Cfg, http.StatusForbidden, "forbidden", nil)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, h.Cfg, http.StatusNotFound, "user not found", err)
		}
		return serverError(c, h.Cfg, err)
	}
	return response.OK(c, http.StatusOK, "user deleted", nil)
}
