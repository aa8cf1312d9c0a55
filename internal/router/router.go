package router

import (
	"github.com/gin-gonic/gin"

	"billsage/internal/config"
	"billsage/internal/handler"
	"billsage/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.CORSConfig,
	analyzeH *handler.AnalyzeHandler,
	pricingH *handler.PricingHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.POST("/analyze", analyzeH.Analyze)
	v1.GET("/pricing", pricingH.List)

	return r
}
