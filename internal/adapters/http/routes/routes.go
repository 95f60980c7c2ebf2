package routes

import (
	"brokersure/internal/adapters/http/handlers"
	"brokersure/internal/adapters/http/middleware"
	"brokersure/internal/adapters/payment"
	"brokersure/internal/adapters/persistence/repositories"
	"brokersure/internal/adapters/storage"
	"brokersure/internal/config"
	"brokersure/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, store storage.DocumentStore, provider payment.Provider) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	offerRepo := repositories.NewOfferRepository(db)
	policyRepo := repositories.NewPolicyRepository(db)
	claimRepo := repositories.NewClaimRepository(db)
	documentRepo := repositories.NewDocumentRepository(db)

	// Initialize services
	notifyService := services.NewNotificationService(cfg.Notify.WebhookURL)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo, refreshTokenRepo)
	offerService := services.NewOfferService(offerRepo, documentRepo, userRepo, notifyService)
	policyService := services.NewPolicyService(db, policyRepo, provider, notifyService)
	claimService := services.NewClaimService(claimRepo, policyRepo, documentRepo, notifyService)
	documentService := services.NewDocumentService(documentRepo, store)
	queryService := services.NewQueryService(offerService, claimRepo, policyRepo, documentRepo, userRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	offerHandler := handlers.NewOfferHandler(offerService)
	policyHandler := handlers.NewPolicyHandler(policyService)
	claimHandler := handlers.NewClaimHandler(claimService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	queryHandler := handlers.NewQueryHandler(queryService)
	referenceHandler := handlers.NewReferenceHandler()

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// API Info
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public + protected)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Reference routes (public, code-level data)
	apiV1.Get("/coverage-types", referenceHandler.ListCoverageTypes)
	apiV1.Get("/coverage-types/:type/schema", referenceHandler.GetSchema)

	// User routes (authenticated; admin subset inside)
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	setupUserRoutes(userRoutes, userHandler)

	// Offer routes
	offerRoutes := apiV1.Group("/offers")
	offerRoutes.Use(middleware.AuthMiddleware(cfg))
	setupOfferRoutes(offerRoutes, offerHandler, policyHandler)

	// Policy routes
	policyRoutes := apiV1.Group("/policies")
	policyRoutes.Use(middleware.AuthMiddleware(cfg))
	setupPolicyRoutes(policyRoutes, policyHandler)

	// Claim routes
	claimRoutes := apiV1.Group("/claims")
	claimRoutes.Use(middleware.AuthMiddleware(cfg))
	setupClaimRoutes(claimRoutes, claimHandler)

	// Document routes
	documentRoutes := apiV1.Group("/documents")
	documentRoutes.Use(middleware.AuthMiddleware(cfg))
	setupDocumentRoutes(documentRoutes, documentHandler)

	// Query routes (all authenticated; customers are scoped per collection)
	queryRoutes := apiV1.Group("/query")
	queryRoutes.Use(middleware.AuthMiddleware(cfg))
	queryRoutes.Get("/:collection", queryHandler.List)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (rate limited against brute force)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures profile and admin account routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	// Any authenticated user
	router.Get("/profile", handler.GetProfile)
	router.Put("/profile", handler.UpdateProfile)
	router.Put("/change-password", handler.ChangePassword)

	// Admin only
	adminRoutes := router.Group("")
	adminRoutes.Use(middleware.AdminOnly())
	adminRoutes.Get("/", handler.List)
	adminRoutes.Post("/staff", handler.CreateStaff)
	adminRoutes.Put("/:id/active", handler.SetActive)
}

// setupOfferRoutes configures offer routes
func setupOfferRoutes(router fiber.Router, handler *handlers.OfferHandler, policyHandler *handlers.PolicyHandler) {
	// Customer routes
	router.Post("/", handler.Create)
	router.Get("/my", handler.GetMy)
	router.Post("/:id/pay", middleware.PaymentRateLimiter(), policyHandler.PayOffer)

	// Shared (ownership enforced in handler)
	router.Get("/:id", handler.GetByID)
	router.Delete("/:id", handler.Delete)

	// Agent/Admin routes
	agentRoutes := router.Group("")
	agentRoutes.Use(middleware.AgentOrAdmin())
	agentRoutes.Get("/", handler.List)
	agentRoutes.Put("/:id/price", handler.Price)
}

// setupPolicyRoutes configures policy routes
func setupPolicyRoutes(router fiber.Router, handler *handlers.PolicyHandler) {
	router.Get("/my", handler.GetMy)
	router.Get("/:id", handler.GetByID)

	agentRoutes := router.Group("")
	agentRoutes.Use(middleware.AgentOrAdmin())
	agentRoutes.Get("/", handler.List)
}

// setupClaimRoutes configures claim routes
func setupClaimRoutes(router fiber.Router, handler *handlers.ClaimHandler) {
	// Customer routes
	router.Post("/", handler.File)
	router.Get("/my", handler.GetMy)
	router.Get("/:id", handler.GetByID)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)

	// Agent/Admin routes
	agentRoutes := router.Group("")
	agentRoutes.Use(middleware.AgentOrAdmin())
	agentRoutes.Get("/", handler.List)
	agentRoutes.Put("/:id/resolve", handler.Resolve)
}

// setupDocumentRoutes configures document routes
func setupDocumentRoutes(router fiber.Router, handler *handlers.DocumentHandler) {
	router.Post("/presign", handler.Presign)
	router.Post("/:id/finalize", handler.Finalize)
	router.Get("/:id", handler.GetByID)
}
