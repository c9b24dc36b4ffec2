package http

import (
	"github.com/gin-gonic/gin"

	"github.com/estatelens/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		items := v1.Group("/items")
		{
			items.POST("/parse", handler.ParseVisionResponse)
			items.POST("/deduplicate", handler.DeduplicateItems)
			items.POST("/price", handler.PriceItems)
			items.GET("/:itemId/pricing", handler.GetItemPricing)
		}

		pricing := v1.Group("/pricing")
		{
			pricing.POST("/search", handler.SearchPricing)
		}

		sales := v1.Group("/sales")
		{
			sales.POST("/:saleId/reprice", handler.RepriceSale)
		}
	}

	return router
}
