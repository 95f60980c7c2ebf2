package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"brokersure/internal/adapters/http/middleware"
	"brokersure/internal/adapters/http/routes"
	"brokersure/internal/adapters/payment"
	"brokersure/internal/adapters/persistence/models"
	"brokersure/internal/adapters/persistence/repositories"
	"brokersure/internal/adapters/storage"
	"brokersure/internal/config"
	"brokersure/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// @title BrokerSure API
// @version 1.0
// @description Insurance brokerage backend: offers, underwriting, policies and claims
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@brokersure.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host api.brokersure.io
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed default accounts
	if err := config.SeedUsers(db); err != nil {
		log.Printf("⚠️ Warning: Failed to seed users: %v", err)
	}

	// Document store (S3 presigned uploads)
	store, err := storage.NewS3Store(context.Background(), cfg.Storage.Region, cfg.Storage.Bucket, cfg.Storage.UploadTTL)
	if err != nil {
		log.Fatalf("❌ Failed to initialize document store: %v", err)
	}

	// Payment provider (sandbox; real gateway is an external collaborator)
	provider := payment.NewSandboxProvider(cfg.Payment.DeclineToken)

	// Start cron service for the nightly expiry sweep
	offerRepo := repositories.NewOfferRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	cronService := services.NewCronService(offerRepo, refreshTokenRepo)
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron service: %v", err)
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "BrokerSure API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg, store, provider)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
