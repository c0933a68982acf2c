package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/druglike/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts and latencies labelled by route template,
// so /api/v1/screen/ro5 and /api/v1/screen/ro3 share one series per method.
// Unmatched routes are labelled "unmatched" to bound cardinality.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		method := c.Request.Method
		active := m.HTTPActiveRequests.WithLabelValues(method)
		active.Inc()
		start := time.Now()

		c.Next()

		active.Dec()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		prometheus.RecordHTTPRequest(m, method, route, c.Writer.Status(), time.Since(start), int64(c.Writer.Size()))
	}
}
