package handler

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"regintel/internal/export"
	"regintel/internal/middleware"
	"regintel/internal/service"
)

// StateHandler handles SFDR state endpoints.
type StateHandler struct {
	extractionService service.ExtractionService
}

// NewStateHandler creates a new StateHandler.
func NewStateHandler(extractionService service.ExtractionService) *StateHandler {
	return &StateHandler{extractionService: extractionService}
}

// GetByID handles GET /api/v1/states/:id
func (h *StateHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "id must be a UUID")
		return
	}

	state, err := h.extractionService.GetState(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, state)
}

// ListByISIN handles GET /api/v1/states?isin=...
func (h *StateHandler) ListByISIN(c *gin.Context) {
	isin := c.Query("isin")
	if isin == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "isin query parameter is required")
		return
	}

	states, err := h.extractionService.ListStatesByISIN(c.Request.Context(), isin)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, states)
}

// ExportXLSX handles GET /api/v1/states/export?isin=...
func (h *StateHandler) ExportXLSX(c *gin.Context) {
	isin := c.Query("isin")
	if isin == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "isin query parameter is required")
		return
	}

	states, err := h.extractionService.ListStatesByISIN(c.Request.Context(), isin)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("sfdr_states_%s.xlsx", isin)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)

	if err := export.WriteSummaryXLSX(c.Writer, states); err != nil {
		// Headers are already out; all we can do is log.
		log.Printf("handler: xlsx export failed: %v request_id=%s", err, middleware.RequestIDFrom(c))
	}
}
