// File: /routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"

	"wavelink-api/config"
	"wavelink-api/controllers"
	"wavelink-api/middleware"
	"wavelink-api/realtime"
	"wavelink-api/repositories"
	"wavelink-api/services"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config, users *repositories.UserRepository,
	assets services.AssetStore, emailService *services.EmailService,
	messageService *services.MessageService, friendService *services.FriendService,
	wsHandler *realtime.Handler) {
	// Controllers
	authController := controllers.NewAuthController(users, assets, emailService, cfg.JWTSecret)
	friendController := controllers.NewFriendController(friendService)
	messageController := controllers.NewMessageController(messageService)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// WebSocket endpoint for presence and live event relay
	r.GET("/ws", wsHandler.Serve)

	// API version 1
	v1 := r.Group("/api/v1")

	// Auth routes (public)
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/register", authController.Register)
		auth.POST("/logout", authController.Logout)
	}

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		// User routes
		users := protected.Group("/users")
		{
			users.GET("/me", authController.Check)
			users.PUT("/profile", authController.UpdateProfile)
			users.GET("/search", friendController.SearchUsers)
			users.GET("/sidebar", messageController.GetSidebarUsers)
		}

		// Friend routes
		friends := protected.Group("/friends")
		{
			friends.GET("/", friendController.ListFriends)
			friends.GET("/requests", friendController.ListRequests)
			friends.POST("/request/:id", friendController.SendRequest)
			friends.POST("/accept/:id", friendController.AcceptRequest)
			friends.DELETE("/request/:id", friendController.CancelRequest)
			friends.DELETE("/reject/:id", friendController.RejectRequest)
			friends.DELETE("/:id", friendController.Unfriend)
		}

		// Message routes
		messages := protected.Group("/messages")
		{
			messages.POST("/send/:id", messageController.SendMessage)
			messages.GET("/thread/:id", messageController.GetMessages)
			messages.GET("/thread/:id/search", messageController.SearchMessages)
			messages.DELETE("/thread/:id", messageController.DeleteConversation)
			messages.DELETE("/:id", messageController.DeleteMessage)
		}
	}
}
