package main

import (
	"context"
	"log"
	"os"

	"food-ordering/config"
	_ "food-ordering/docs"
	"food-ordering/middleware"
	"food-ordering/models"
	"food-ordering/realtime"
	"food-ordering/routes"

	"github.com/gin-gonic/gin"
)

// @title Food Ordering API
// @version 1.0
// @description Online food-ordering backend with realtime order tracking and scratch-card rewards.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	config.LoadConfig()

	if config.AppConfig.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	models.InitDB()
	defer models.CloseDB()

	models.InitRedis()
	defer models.CloseRedis()

	hub := realtime.NewHub()
	if models.RedisClient != nil {
		realtime.AttachRedisBridge(context.Background(), hub, models.RedisClient)
	}

	if err := os.MkdirAll(config.AppConfig.UploadDir, os.ModePerm); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	routes.SetupRoutes(router, hub)

	port := ":" + config.AppConfig.Port
	log.Printf("Server starting on port %s", port)
	log.Printf("Swagger UI: http://localhost:%s/swagger/index.html", config.AppConfig.Port)

	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
