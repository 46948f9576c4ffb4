package handlers

import (
	"net/http"
	"strings"

	"github.com/ArowuTest/sequence-draw-backend/internal/middleware"
	"github.com/ArowuTest/sequence-draw-backend/internal/models"
	"github.com/ArowuTest/sequence-draw-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// ConfigHandler handles draw configuration and reset requests
type ConfigHandler struct {
	drawService services.DrawService
}

// NewConfigHandler creates a new ConfigHandler
func NewConfigHandler(drawService services.DrawService) *ConfigHandler {
	return &ConfigHandler{drawService: drawService}
}

// GetConfig handles GET /config
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.drawService.Config())
}

// UpdateConfig handles PUT /admin/config
func (h *ConfigHandler) UpdateConfig(c *gin.Context) {
	var req models.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	cfg, err := h.drawService.UpdateConfig(c.Request.Context(), middleware.IsPrivileged(c), *req.CapacityLimit, *req.WinnerCount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// SetTarget handles PUT /admin/config/target
func (h *ConfigHandler) SetTarget(c *gin.Context) {
	var req models.SetTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	cfg, err := h.drawService.SetTargetValue(c.Request.Context(), middleware.IsPrivileged(c), strings.TrimSpace(req.TargetValue))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// Reset handles POST /admin/reset
func (h *ConfigHandler) Reset(c *gin.Context) {
	snap, err := h.drawService.Reset(c.Request.Context(), middleware.IsPrivileged(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
