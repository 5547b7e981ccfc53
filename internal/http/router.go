package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/UndeadFairy/MagneticModel/internal/config"
	"github.com/UndeadFairy/MagneticModel/internal/usecase"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(coefficientsUC *usecase.CoefficientsUseCase, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()

	// Default to allow all origins if not specified.
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(cors.New(corsConfig))

	// Create handler.
	handler := NewHandler(coefficientsUC)

	// API v1 routes.
	v1 := router.Group("/v1")

	// MIO coefficients.
	mio := v1.Group("/mio")
	mio.GET("/coefficients", handler.GetCoefficients)
	mio.POST("/coefficients", handler.PostCoefficients)
	mio.GET("/series", handler.GetSeries)
	mio.POST("/series", handler.PostSeries)

	// Stored models.
	v1.GET("/models", handler.ListModels)

	// Time arguments.
	v1.GET("/time/magnetic", handler.GetMagneticTime)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}
