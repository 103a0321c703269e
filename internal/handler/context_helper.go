package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/escalando-ong/cms-api/internal/middleware"
	"github.com/escalando-ong/cms-api/internal/models"
)

// actorID returns the authenticated user id, nil for anonymous requests.
func actorID(c *gin.Context) *string {
	return middleware.UserID(c)
}

// parseContentFilter reads the shared list query surface: page, limit, q and
// the date window. Dates accept RFC3339 or a plain calendar date.
func parseContentFilter(c *gin.Context) models.ContentFilter {
	var filter models.ContentFilter
	filter.Search = strings.TrimSpace(c.Query("q"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil {
		filter.Limit = limit
	}
	if from := parseDate(c.Query("dateFrom")); from != nil {
		filter.DateFrom = from
	}
	if to := parseDate(c.Query("dateTo")); to != nil {
		filter.DateTo = to
	}
	filter.Normalize()
	return filter
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	return nil
}
