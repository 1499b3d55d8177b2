package routes

import (
	"log"

	"food-ordering/config"
	"food-ordering/controllers"
	"food-ordering/middleware"
	"food-ordering/models"
	"food-ordering/realtime"
	"food-ordering/repositories"
	"food-ordering/services"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func SetupRoutes(router *gin.Engine, hub *realtime.Hub) {
	orderRepo := repositories.NewOrderRepository()
	menuRepo := repositories.NewMenuRepository()
	userRepo := repositories.NewUserRepository()
	cardRepo := repositories.NewScratchCardRepository()

	var mailer services.ConfirmationMailer
	if emailService, err := models.NewEmailService(); err != nil {
		log.Printf("Order confirmation emails disabled: %v", err)
	} else {
		mailer = emailService
	}

	orderService := services.NewOrderService(
		orderRepo, menuRepo, userRepo, hub, mailer, config.AppConfig.OrderDeleteDelay)

	authCtrl := controllers.NewAuthController(services.NewAuthService(userRepo))
	orderCtrl := controllers.NewOrderController(orderService)
	paymentCtrl := controllers.NewPaymentController(orderService)
	menuCtrl := controllers.NewMenuController(menuRepo)
	scratchCtrl := controllers.NewScratchCardController(services.NewScratchService(cardRepo))
	eventsCtrl := controllers.NewEventsController(hub)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	api := router.Group("/api")

	api.POST("/auth/register", authCtrl.Register)
	api.POST("/auth/login", authCtrl.Login)

	api.GET("/menu", menuCtrl.GetAll)
	api.GET("/orders/track/:orderNumber", orderCtrl.Track)
	api.GET("/orders/public", orderCtrl.GetPublic)
	api.GET("/payments/:orderId/status", paymentCtrl.Status)
	api.GET("/events", eventsCtrl.Stream)
	api.POST("/events/:clientId/join", eventsCtrl.Join)
	api.POST("/events/:clientId/leave", eventsCtrl.Leave)

	auth := api.Group("/")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.POST("/orders", orderCtrl.Create)
		auth.GET("/orders/user", orderCtrl.GetUserOrders)
		auth.POST("/payments/:orderId/process", paymentCtrl.Process)
		auth.POST("/scratch-cards", scratchCtrl.Create)
		auth.GET("/scratch-cards", scratchCtrl.List)
		auth.PUT("/scratch-cards/:id/scratch", scratchCtrl.Scratch)
	}

	admin := api.Group("/")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/orders", orderCtrl.GetAll)
		admin.PUT("/orders/:id/status", orderCtrl.UpdateStatus)
		admin.POST("/menu", menuCtrl.Create)
		admin.PUT("/menu/:id", menuCtrl.Update)
		admin.DELETE("/menu/:id", menuCtrl.Delete)
	}

	router.Static("/uploads", config.AppConfig.UploadDir)
}
