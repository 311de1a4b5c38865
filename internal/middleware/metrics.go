package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-journal-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics records request latency per route template. Event streams are counted by the
// stream gauge instead since their duration is the session length.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || isEventStream(c) {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			// unknown paths would otherwise explode label cardinality
			path = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

func isEventStream(c *gin.Context) bool {
	if strings.HasSuffix(c.FullPath(), "/events") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "text/event-stream")
}
