package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(1, 10, 0)
	assert.Equal(t, 0, p.TotalPages)

	p = NewPagination(1, 10, 10)
	assert.Equal(t, 1, p.TotalPages)

	p = NewPagination(2, 10, 11)
	assert.Equal(t, 2, p.TotalPages)
	assert.Equal(t, 2, p.Page)

	p = NewPagination(1, 50, 101)
	assert.Equal(t, 3, p.TotalPages)
}

func TestEnvelopeShape(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, Page(c, "items", []int{1, 2}, NewPagination(1, 10, 2)))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "success")
	assert.Contains(t, body, "message")
	assert.Contains(t, body, "data")
	assert.Contains(t, body, "pagination")
	assert.NotContains(t, body, "error", "error key is omitted on success")
}

func TestFailHidesEmptyDetail(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, Fail(c, http.StatusNotFound, "not found", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, body, "error")
	assert.NotContains(t, body, "data")
}
