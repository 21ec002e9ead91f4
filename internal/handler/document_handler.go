package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shipstream/internal/service"
)

// DocumentHandler handles document read, delete, and export endpoints.
type DocumentHandler struct {
	docSvc service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(docSvc service.DocumentService) *DocumentHandler {
	return &DocumentHandler{docSvc: docSvc}
}

// List handles GET /api/v1/documents
func (h *DocumentHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	docs, total, err := h.docSvc.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/documents/:id
func (h *DocumentHandler) GetByID(c *gin.Context) {
	docID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.docSvc.GetByID(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, doc)
}

// Delete handles DELETE /api/v1/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	docID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.docSvc.Delete(c.Request.Context(), docID); err != nil {
		HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportCSV handles GET /api/v1/documents/:id/export
func (h *DocumentHandler) ExportCSV(c *gin.Context) {
	docID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var buf bytes.Buffer
	filename, err := h.docSvc.ExportCSV(c.Request.Context(), docID, &buf)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// parseUUIDParam reads a UUID path parameter, writing a 400 response on failure.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+name+" parameter")
		return uuid.Nil, false
	}
	return id, true
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return offset, limit
}
