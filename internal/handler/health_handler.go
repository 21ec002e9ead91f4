package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	db *sqlx.DB
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Liveness handles GET /healthz. It reports only that the process is up;
// readiness covers the dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "shipstream"})
}

// Readiness handles GET /readyz. The service cannot ingest or serve documents
// without its database, so readiness is gated on a ping.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := gin.H{"database": "ok"}
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		checks["database"] = "unreachable"
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}
