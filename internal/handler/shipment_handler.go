package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shipstream/internal/service"
)

// ShipmentHandler handles shipment read and correction endpoints.
type ShipmentHandler struct {
	shipSvc service.ShipmentService
}

// NewShipmentHandler creates a new ShipmentHandler.
func NewShipmentHandler(shipSvc service.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{shipSvc: shipSvc}
}

// ListByDocument handles GET /api/v1/documents/:id/shipments
// Optional query param needs_review filters by review flag.
func (h *ShipmentHandler) ListByDocument(c *gin.Context) {
	docID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var needsReview *bool
	if raw := c.Query("needs_review"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_FILTER", "needs_review must be a boolean")
			return
		}
		needsReview = &v
	}

	offset, limit := parsePagination(c)
	bundles, total, err := h.shipSvc.ListByDocument(c.Request.Context(), docID, needsReview, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, bundles, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/shipments/:id
func (h *ShipmentHandler) GetByID(c *gin.Context) {
	shipmentID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.shipSvc.GetByID(c.Request.Context(), shipmentID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Correct handles PUT /api/v1/shipments/:id
func (h *ShipmentHandler) Correct(c *gin.Context) {
	shipmentID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var input service.CorrectShipmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}

	result, err := h.shipSvc.Correct(c.Request.Context(), shipmentID, &input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}
