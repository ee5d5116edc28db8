package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/interfaces/http/middleware"
)

// NotificationHub upgrades a request to a websocket subscription
type NotificationHub interface {
	Serve(w http.ResponseWriter, r *http.Request, scope shared.Scope)
	Count() int
}

// RealtimeHandler exposes the notification stream
type RealtimeHandler struct {
	BaseHandler
	hub NotificationHub
}

// NewRealtimeHandler creates a new RealtimeHandler
func NewRealtimeHandler(hub NotificationHub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Subscribe godoc
// @ID           subscribeRealtime
// @Summary      Live updates
// @Description  WebSocket stream of {event, data, occurred_at}. Pass the access token in the token query parameter.
// @Tags         realtime
// @Param        token query string true "Access token"
// @Success      101
// @Failure      401 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /ws [get]
func (h *RealtimeHandler) Subscribe(c *gin.Context) {
	if h.hub == nil {
		h.Error(c, http.StatusServiceUnavailable, "ERR_SERVICE_UNAVAILABLE", "Live updates are disabled")
		return
	}
	h.hub.Serve(c.Writer, c.Request, middleware.GetScope(c))
}
