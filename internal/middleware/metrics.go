package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/escalando-ong/cms-api/internal/service"
)

// Metrics records request duration and counts per route. Uses the route
// template rather than the raw path to keep label cardinality bounded.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
