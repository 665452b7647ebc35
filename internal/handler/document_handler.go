package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"regintel/internal/service"
)

// DocumentHandler handles document ingestion and extraction endpoints.
type DocumentHandler struct {
	extractionService service.ExtractionService
	archiveService    service.ArchiveService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(extractionService service.ExtractionService, archiveService service.ArchiveService) *DocumentHandler {
	return &DocumentHandler{
		extractionService: extractionService,
		archiveService:    archiveService,
	}
}

// Ingest handles POST /api/v1/documents
func (h *DocumentHandler) Ingest(c *gin.Context) {
	var req service.IngestDocumentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "malformed ingestion payload")
		return
	}
	if req.ISIN == "" || req.Version == "" || req.Checksum == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "isin, version, and checksum are required")
		return
	}

	doc, err := h.extractionService.IngestDocument(c.Request.Context(), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, doc)
}

// GetByID handles GET /api/v1/documents/:id
func (h *DocumentHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "id must be a UUID")
		return
	}

	doc, err := h.extractionService.GetDocument(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, doc)
}

// ListByISIN handles GET /api/v1/documents?isin=...
func (h *DocumentHandler) ListByISIN(c *gin.Context) {
	isin := c.Query("isin")
	if isin == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "isin query parameter is required")
		return
	}

	docs, err := h.extractionService.ListDocumentsByISIN(c.Request.Context(), isin)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, docs)
}

// ListSections handles GET /api/v1/documents/:id/sections
func (h *DocumentHandler) ListSections(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "id must be a UUID")
		return
	}

	sections, err := h.extractionService.ListSections(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, sections)
}

// Extract handles POST /api/v1/documents/:id/extract
func (h *DocumentHandler) Extract(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "id must be a UUID")
		return
	}

	record, err := h.extractionService.ExtractDocument(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, record)
}

// ArchiveSource handles POST /api/v1/documents/:id/source
func (h *DocumentHandler) ArchiveSource(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "id must be a UUID")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "multipart file field 'file' is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc, err := h.archiveService.ArchiveSource(c.Request.Context(), id, file, header.Filename, contentType)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, doc)
}

// GetSourceURL handles GET /api/v1/documents/:id/source
func (h *DocumentHandler) GetSourceURL(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "id must be a UUID")
		return
	}

	url, err := h.archiveService.GetSourceURL(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"url": url})
}

// DeleteSource handles DELETE /api/v1/documents/:id/source
func (h *DocumentHandler) DeleteSource(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "id must be a UUID")
		return
	}

	if err := h.archiveService.DeleteSource(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
