package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ArowuTest/sequence-draw-backend/internal/engine"
	"github.com/ArowuTest/sequence-draw-backend/internal/middleware"
	"github.com/ArowuTest/sequence-draw-backend/internal/models"
	"github.com/ArowuTest/sequence-draw-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// DrawHandler handles draw-related HTTP requests
type DrawHandler struct {
	drawService services.DrawService
}

// NewDrawHandler creates a new DrawHandler
func NewDrawHandler(drawService services.DrawService) *DrawHandler {
	return &DrawHandler{drawService: drawService}
}

// Draw handles POST /admin/draws/:kind, where kind is primary, supplementary
// or filtered. A filtered draw takes {"excludeIds": [...]}; an empty body
// excludes nobody.
func (h *DrawHandler) Draw(c *gin.Context) {
	kind, err := models.ParseDrawKind(c.Param("kind"))
	if err != nil {
		respondError(c, fmt.Errorf("%w: %w", engine.ErrInvalidValue, err))
		return
	}

	var req models.FilteredDrawRequest
	if kind == models.DrawKindFiltered {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondBindError(c, err)
			return
		}
	}

	result, err := h.drawService.Draw(c.Request.Context(), middleware.IsPrivileged(c), kind, req.ExcludeIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetHistory handles GET /history
func (h *DrawHandler) GetHistory(c *gin.Context) {
	c.JSON(http.StatusOK, h.drawService.History())
}

// GetSnapshot handles GET /snapshot
func (h *DrawHandler) GetSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.drawService.Snapshot())
}
