package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterFromQuery(t *testing.T, rawQuery string) (page, limit int, search string, hasFrom, hasTo bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/news?"+rawQuery, nil)

	f := parseContentFilter(c)
	return f.Page, f.Limit, f.Search, f.DateFrom != nil, f.DateTo != nil
}

func TestParseContentFilterDefaults(t *testing.T) {
	page, limit, search, hasFrom, hasTo := filterFromQuery(t, "")
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)
	assert.Empty(t, search)
	assert.False(t, hasFrom)
	assert.False(t, hasTo)
}

func TestParseContentFilterClampsLimit(t *testing.T) {
	_, limit, _, _, _ := filterFromQuery(t, "limit=500")
	assert.Equal(t, 50, limit)

	_, limit, _, _, _ = filterFromQuery(t, "limit=-3")
	assert.Equal(t, 10, limit)
}

func TestParseContentFilterDates(t *testing.T) {
	_, _, _, hasFrom, hasTo := filterFromQuery(t, "dateFrom=2024-01-01&dateTo=2024-12-31T23:59:59Z")
	assert.True(t, hasFrom)
	assert.True(t, hasTo)

	_, _, _, hasFrom, _ = filterFromQuery(t, "dateFrom=not-a-date")
	assert.False(t, hasFrom)
}

func TestParseContentFilterSearchTrimmed(t *testing.T) {
	_, _, search, _, _ := filterFromQuery(t, "q=%20salud%20&page=3")
	require.Equal(t, "salud", search)
}
