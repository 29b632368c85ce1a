package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ozgekaya/student-info-api/internal/auth"
	"github.com/ozgekaya/student-info-api/internal/config"
	"github.com/ozgekaya/student-info-api/internal/middleware"
	"github.com/ozgekaya/student-info-api/internal/utils/response"
)

// Default page size and its upper bound for every listing endpoint.
const (
	defaultLimit = 10
	maxLimit     = 50
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

// dbCtx derives a bounded context for repository calls.
func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// identity returns the authenticated caller. Routes behind JWTAuth
// always have one; the error branch only fires on wiring mistakes.
func identity(c echo.Context) (auth.Identity, error) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return auth.Identity{}, errors.New("no identity in context")
	}
	return id, nil
}

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// pageParams reads ?page and ?limit. Page floors at 1, limit is
// clamped into [1,50]; junk values fall back to the defaults.
func pageParams(c echo.Context) (page, limit, offset int) {
	page = 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v >= 1 {
		page = v
	}
	limit = defaultLimit
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v >= 1 {
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, (page - 1) * limit
}

// fail writes a failure envelope. The underlying error text is exposed
// only in dev so internals never leak to production clients.
func fail(c echo.Context, cfg config.Config, status int, message string, err error) error {
	detail := ""
	if err != nil && cfg.IsDev() {
		detail = err.Error()
	}
	return response.Fail(c, status, message, detail)
}

// serverError is the catch-all for unexpected repository failures.
func serverError(c echo.Context, cfg config.Config, err error) error {
	return fail(c, cfg, http.StatusInternalServerError, "internal server error", err)
}
