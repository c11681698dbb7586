package api

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/consilium-ai/consilium-go/internal/api/handlers"
	"github.com/consilium-ai/consilium-go/internal/middleware"
)

// Handlers bundles the HTTP handlers the router mounts.
type Handlers struct {
	Analysis *handlers.AnalysisHandler
	Health   *handlers.HealthHandler
}

// SetupRoutes mounts all endpoints. When jwtSecret is non-empty the analysis
// group requires a bearer token; health stays open either way.
func SetupRoutes(router *gin.Engine, h Handlers, jwtSecret string) {
	router.Use(otelgin.Middleware("consilium"))

	router.GET("/health", h.Health.Health)

	v1 := router.Group("/api/v1")
	if jwtSecret != "" {
		auth := middleware.NewAuthMiddleware(jwtSecret)
		v1.Use(auth.RequireAuth())
	}

	analysis := v1.Group("/analysis")
	{
		analysis.POST("/run", h.Analysis.RunAnalysis)
		analysis.GET("/latest", h.Analysis.LatestAnalysis)
		analysis.GET("/history", h.Analysis.AnalysisHistory)
	}
}
