package router

import (
	"github.com/gin-gonic/gin"

	"shipstream/internal/config"
	"shipstream/internal/handler"
	"shipstream/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	ingestH *handler.IngestHandler,
	docH *handler.DocumentHandler,
	shipH *handler.ShipmentHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Document routes
	docs := v1.Group("/documents")
	docs.POST("", ingestH.Ingest)
	docs.GET("", docH.List)
	docs.GET("/:id", docH.GetByID)
	docs.DELETE("/:id", docH.Delete)
	docs.GET("/:id/export", docH.ExportCSV)
	docs.GET("/:id/shipments", shipH.ListByDocument)

	// Shipment routes
	shipments := v1.Group("/shipments")
	shipments.GET("/:id", shipH.GetByID)
	shipments.PUT("/:id", shipH.Correct)

	return r
}
