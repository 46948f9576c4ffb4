package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/ArowuTest/sequence-draw-backend/internal/middleware"
	"github.com/ArowuTest/sequence-draw-backend/internal/models"
	"github.com/ArowuTest/sequence-draw-backend/internal/services"
	"github.com/ArowuTest/sequence-draw-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// maxImportSize bounds CSV uploads
const maxImportSize = 5 << 20

// ParticipantHandler handles participant HTTP requests
type ParticipantHandler struct {
	drawService services.DrawService
}

// NewParticipantHandler creates a new ParticipantHandler
func NewParticipantHandler(drawService services.DrawService) *ParticipantHandler {
	return &ParticipantHandler{drawService: drawService}
}

// Register handles POST /participants
func (h *ParticipantHandler) Register(c *gin.Context) {
	var req models.RegisterParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	p, err := h.drawService.Register(c.Request.Context(), req.DisplayName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// RegisterManual handles POST /admin/participants
func (h *ParticipantHandler) RegisterManual(c *gin.Context) {
	var req models.ManualParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	p, err := h.drawService.RegisterManual(c.Request.Context(), middleware.IsPrivileged(c), req.DisplayName, strings.TrimSpace(req.Token))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// BulkRegister handles POST /admin/participants/bulk
func (h *ParticipantHandler) BulkRegister(c *gin.Context) {
	var req models.BulkRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.drawService.BulkRegister(c.Request.Context(), middleware.IsPrivileged(c), req.Entries)
	if err != nil {
		respondPartial(c, err, result.Added, len(result.Skipped), result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ImportCSV handles POST /admin/participants/import. The CSV comes either as
// a multipart "file" field or as the raw request body.
func (h *ParticipantHandler) ImportCSV(c *gin.Context) {
	var body io.Reader
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("file")
		if err != nil {
			respondBindError(c, err)
			return
		}
		f, err := file.Open()
		if err != nil {
			respondBindError(c, err)
			return
		}
		defer f.Close()
		body = f
	} else {
		body = c.Request.Body
	}

	result, err := h.drawService.ImportCSV(c.Request.Context(), middleware.IsPrivileged(c), io.LimitReader(body, maxImportSize))
	if err != nil {
		respondPartial(c, err, result.Added, len(result.Skipped), result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// respondPartial reports a batch that stopped part way together with the
// entries that were already registered or skipped.
func respondPartial(c *gin.Context, err error, added, skipped int, result interface{}) {
	if added == 0 && skipped == 0 {
		respondError(c, err)
		return
	}
	respondErrorWithResult(c, err, result)
}

// ListParticipants handles GET /participants
func (h *ParticipantHandler) ListParticipants(c *gin.Context) {
	c.JSON(http.StatusOK, h.drawService.Participants())
}

// ListEligible handles GET /participants/eligible?exclude=id1,id2
func (h *ParticipantHandler) ListEligible(c *gin.Context) {
	c.JSON(http.StatusOK, h.drawService.Eligible(utils.SplitList(c.Query("exclude"))))
}
