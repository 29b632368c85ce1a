// Package response renders the JSON envelope every endpoint speaks:
// {success, message, data?, error?, pagination?}.
package response

import (
	"github.com/labstack/echo/v4"
)

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes totalPages from the total count.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// Envelope is the uniform response body.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// OK writes a success envelope with data.
func OK(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// Page writes a success envelope for one page of a listing.
func Page(c echo.Context, message string, data interface{}, p Pagination) error {
	return c.JSON(200, Envelope{Success: true, Message: message, Data: data, Pagination: &p})
}

// Fail writes a failure envelope. detail is included only when the
// handler decides to expose it, which it does in dev mode alone so
// internals never leak to production clients.
func Fail(c echo.Context, status int, message, detail string) error {
	return c.JSON(status, Envelope{Success: false, Message: message, Error: detail})
}
