package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func ctxWithQuery(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestPageParams(t *testing.T) {
	cases := []struct {
		name   string
		query  string
		page   int
		limit  int
		offset int
	}{
		{"defaults", "", 1, 10, 0},
		{"explicit", "page=3&limit=20", 3, 20, 40},
		{"limit clamped to 50", "limit=500", 1, 50, 0},
		{"page floors at 1", "page=0", 1, 10, 0},
		{"negative page ignored", "page=-2&limit=-5", 1, 10, 0},
		{"junk ignored", "page=abc&limit=xyz", 1, 10, 0},
		{"limit of 1 accepted", "limit=1", 1, 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, limit, offset := pageParams(ctxWithQuery(tc.query))
			assert.Equal(t, tc.page, page)
			assert.Equal(t, tc.limit, limit)
			assert.Equal(t, tc.offset, offset)
		})
	}
}

func TestParamID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("42")

	id, err := paramID(c, "id")
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	c.SetParamValues("forty-two")
	_, err = paramID(c, "id")
	assert.Error(t, err)
}
