package handlers

import (
	"log/slog"

	"github.com/ArowuTest/sequence-draw-backend/internal/services"
	"github.com/ArowuTest/sequence-draw-backend/pkg/broadcast"
	"github.com/gin-gonic/gin"
)

// WebSocketHandler upgrades clients onto the broadcast hub
type WebSocketHandler struct {
	hub         *broadcast.Hub
	drawService services.DrawService
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *broadcast.Hub, drawService services.DrawService) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, drawService: drawService}
}

// Serve handles GET /ws. The client first receives the snapshot taken as it
// joins, then every event published after that.
func (h *WebSocketHandler) Serve(c *gin.Context) {
	if err := h.hub.Serve(c.Writer, c.Request, func() interface{} { return h.drawService.Snapshot() }); err != nil {
		slog.Warn("Websocket upgrade failed", "error", err)
	}
}
