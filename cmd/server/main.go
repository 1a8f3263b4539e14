package main

import (
	"net/http"

	"carlink/backend/internal/config"
	"carlink/backend/internal/database"
	"carlink/backend/internal/handler"
	"carlink/backend/internal/logging"
	"carlink/backend/internal/metrics"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "carlink/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
	logging.Init(config.AppConfig.LogLevel)
}

// @title           Carlink API
// @version         1.0
// @description     This is the API for the Carlink carpooling service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	router := gin.Default()
	router.Use(metrics.Middleware())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus scrape endpoint
	router.GET("/metrics", metrics.Handler())

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Uploaded images are served from the public file area
	router.Static("/public", "./public")

	// API v1 routes
	handler.RegisterRoutes(router.Group("/api/v1"))

	logging.Log.WithField("addr", config.AppConfig.ListenAddr).Info("Server is running")
	logging.Log.Fatal(router.Run(config.AppConfig.ListenAddr))
}
