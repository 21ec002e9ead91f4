package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shipstream/internal/domain"
	"shipstream/internal/service"
)

// IngestHandler handles document upload and processing requests.
type IngestHandler struct {
	ingestSvc service.IngestService
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(ingestSvc service.IngestService) *IngestHandler {
	return &IngestHandler{ingestSvc: ingestSvc}
}

// Ingest handles POST /api/v1/documents
//
// Multipart form fields:
//
//	file                 the document (required)
//	document_type        free-form tag, e.g. "load_sheet" (default "load_sheet")
//	has_header_row       default true
//	sheet_index          optional explicit sheet selection
//	ai_mapping           default true
//	confidence_threshold optional per-request review threshold override
func (h *IngestHandler) Ingest(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "multipart field 'file' is required")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "uploaded file could not be read")
		return
	}
	defer f.Close()

	fileBytes, err := io.ReadAll(f)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "uploaded file could not be read")
		return
	}

	input := &service.IngestInput{
		DocumentType:     c.DefaultPostForm("document_type", "load_sheet"),
		FileName:         fileHeader.Filename,
		FileBytes:        fileBytes,
		HasHeaderRow:     parseBoolDefault(c.PostForm("has_header_row"), true),
		AIMappingEnabled: parseBoolDefault(c.PostForm("ai_mapping"), true),
	}
	if raw := c.PostForm("sheet_index"); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_SHEET_INDEX", "sheet_index must be an integer")
			return
		}
		input.SheetIndex = &idx
	}
	if raw := c.PostForm("confidence_threshold"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil || threshold <= 0 || threshold > 1 {
			RespondError(c, http.StatusBadRequest, "INVALID_THRESHOLD", "confidence_threshold must be in (0, 1]")
			return
		}
		input.ConfidenceThreshold = threshold
	}

	result, err := h.ingestSvc.Ingest(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	if result.Status == domain.DocumentStatusError {
		c.JSON(http.StatusUnprocessableEntity, APIResponse{
			Success: false,
			Data:    result,
			Error:   &APIError{Code: "PROCESSING_FAILED", Message: result.Message},
		})
		return
	}
	RespondCreated(c, result)
}

func parseBoolDefault(raw string, def bool) bool {
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}
