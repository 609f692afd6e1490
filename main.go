// File: /main.go
package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"wavelink-api/config"
	"wavelink-api/database"
	"wavelink-api/jobs"
	"wavelink-api/middleware"
	"wavelink-api/realtime"
	"wavelink-api/repositories"
	"wavelink-api/routes"
	"wavelink-api/services"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("Failed to migrate database")
	}

	// Seed database with test data (optional - for development)
	if err := database.SeedData(db); err != nil {
		logrus.WithError(err).Warn("Failed to seed database")
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	messageRepo := repositories.NewMessageRepository(db)

	// Realtime presence and event relay
	presence := realtime.NewPresence()
	relay := realtime.NewRelay(presence)
	wsHandler := realtime.NewHandler(relay)

	// Services
	assetService, err := services.NewAssetService(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize asset storage")
	}
	emailService := services.NewEmailService(cfg)
	messageService := services.NewMessageService(messageRepo, userRepo, assetService, relay)
	friendService := services.NewFriendService(userRepo, messageService, relay)

	// Set Gin mode based on environment
	if cfg.Port == "8080" { // Development
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimit(120, 30))

	// Setup routes
	routes.SetupRoutes(router, cfg, userRepo, assetService, emailService,
		messageService, friendService, wsHandler)

	// Background purge of messages deleted by both participants. Runs
	// for the life of the process; Run below never returns cleanly.
	purgeJob := jobs.NewMessagePurgeJob(messageService, time.Hour)
	purgeJob.Start()

	// Start server
	logrus.WithField("port", cfg.Port).Info("Starting WaveLink API server")

	if err := router.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("Failed to start server")
	}
}
