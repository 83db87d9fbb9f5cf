package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"eassist/internal/observe"
)

// RequestMetrics counts handled requests by method, route, and status. Uses
// the route template (FullPath) rather than the raw URL so path parameters
// don't explode the label set.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		observe.RequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
