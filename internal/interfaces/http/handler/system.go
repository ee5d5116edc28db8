package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/swas/backend/internal/interfaces/http/dto"
)

// HealthCheck checks one dependency
type HealthCheck func(ctx context.Context) error

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	database  HealthCheck
	redis     HealthCheck
	hub       NotificationHub
}

// NewSystemHandler creates a new SystemHandler. Nil checks are reported as disabled.
func NewSystemHandler(database, redis HealthCheck, hub NotificationHub) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		database:  database,
		redis:     redis,
		hub:       hub,
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"SWAS Backend API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Returns basic system information including version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      "SWAS Backend API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Health godoc
// @ID           getSystemHealth
// @Summary      Health check
// @Description  Pings the database and Redis; 503 when a configured dependency is down
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthData]
// @Failure      503 {object} APIResponse[HealthData]
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	data := HealthData{Status: "ok"}
	healthy := true
	data.Database, healthy = runCheck(ctx, h.database, healthy)
	data.Redis, healthy = runCheck(ctx, h.redis, healthy)
	if h.hub != nil {
		data.Clients = h.hub.Count()
	}

	if !healthy {
		data.Status = "degraded"
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: data})
		return
	}
	h.Success(c, data)
}

func runCheck(ctx context.Context, check HealthCheck, healthy bool) (string, bool) {
	if check == nil {
		return "disabled", healthy
	}
	if err := check(ctx); err != nil {
		return "down", false
	}
	return "ok", healthy
}
