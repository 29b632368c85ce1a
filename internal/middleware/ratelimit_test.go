package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/courses/3/enroll", nil)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/courses/:id/enroll")

	key := rateKey("rl", c)
	assert.Equal(t, "rl:ip:203.0.113.7:route:POST /api/courses/:id/enroll", key)

	// The limiter runs before authentication; the key must not carry an
	// identity component that would always be empty.
	assert.NotContains(t, key, "anon")
	assert.NotContains(t, key, ":user:")
}

func TestRateKeyUnknownIP(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = ""
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/health")

	key := rateKey("rl", c)
	assert.Contains(t, key, "rl:ip:")
	assert.Contains(t, key, "route:GET /health")
}
