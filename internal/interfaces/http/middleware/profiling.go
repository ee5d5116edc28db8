package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/swas/backend/internal/infrastructure/telemetry"
)

// Profiling tags CPU and allocation samples with the matched route so
// Pyroscope can break profiles down per endpoint. It is a pass-through when
// the profiler is off.
func Profiling(profiler *telemetry.Profiler) gin.HandlerFunc {
	if profiler == nil || !profiler.Enabled() {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}
		telemetry.WithProfilingLabels(c.Request.Context(), route, c.Request.Method, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
