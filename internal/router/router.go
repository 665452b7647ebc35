package router

import (
	"github.com/gin-gonic/gin"

	"regintel/internal/config"
	"regintel/internal/handler"
	"regintel/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	documentH *handler.DocumentHandler,
	stateH *handler.StateHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
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
	documents := v1.Group("/documents")
	documents.POST("", documentH.Ingest)
	documents.GET("", documentH.ListByISIN)
	documents.GET("/:id", documentH.GetByID)
	documents.GET("/:id/sections", documentH.ListSections)
	documents.POST("/:id/extract", documentH.Extract)
	documents.POST("/:id/source", documentH.ArchiveSource)
	documents.GET("/:id/source", documentH.GetSourceURL)
	documents.DELETE("/:id/source", documentH.DeleteSource)

	// State routes
	states := v1.Group("/states")
	states.GET("", stateH.ListByISIN)
	states.GET("/export", stateH.ExportXLSX)
	states.GET("/:id", stateH.GetByID)

	return r
}
