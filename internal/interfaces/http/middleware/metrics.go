package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cyclome/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts, latency, response size and in-flight
// requests.  Paths are labelled by route template ("/api/pdb/:pdb") so that
// identifiers never become label values.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		method := c.Request.Method
		m.HTTPActiveRequests.WithLabelValues(method).Inc()
		start := time.Now()

		c.Next()

		m.HTTPActiveRequests.WithLabelValues(method).Dec()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		prometheus.RecordHTTPRequest(m, method, path, c.Writer.Status(), time.Since(start), int64(c.Writer.Size()))
	}
}

//Personal.AI order the ending
