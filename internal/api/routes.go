package api

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/footy-cards/backend/internal/api/handlers"
	"github.com/codyseavey/footy-cards/backend/internal/services"
	"github.com/codyseavey/footy-cards/backend/internal/store"
)

func SetupRouter(scoutService *services.ScoutService, collection *store.Collection, valueTracker *services.ValueTracker) *gin.Engine {
	router := gin.Default()
	router.Use(MetricsMiddleware())

	// CORS configuration - allow origins from environment or use defaults
	config := cors.DefaultConfig()
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		config.AllowOrigins = strings.Split(corsOrigins, ",")
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.AllowCredentials = false // Explicitly set
	router.Use(cors.New(config))

	// Initialize handlers
	scoutHandler := handlers.NewScoutHandler(scoutService, collection)
	collectionHandler := handlers.NewCollectionHandler(collection, valueTracker)

	// API routes
	api := router.Group("/api")
	{
		api.POST("/scout", scoutHandler.ScoutPlayer)

		collectionGroup := api.Group("/collection")
		{
			collectionGroup.GET("", collectionHandler.GetCollection)
			collectionGroup.DELETE("/:id", collectionHandler.DeleteCard)
			collectionGroup.PUT("/:id/image", collectionHandler.UpdateImage)
			collectionGroup.GET("/stats", collectionHandler.GetStats)
			collectionGroup.GET("/compare", collectionHandler.CompareCards)
			collectionGroup.GET("/value-history", collectionHandler.GetValueHistory)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
