package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/formflow-backend/internal/observability"
)

// Metrics records request count, latency and in-flight gauge. The /metrics
// scrape itself is not counted.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		m.ApiInflightInc()
		start := time.Now()
		defer func() {
			m.ApiInflightDec()
			m.ObserveAPI(c.Request.Method, routeOf(c), c.Writer.Status(), time.Since(start))
		}()
		c.Next()
	}
}
