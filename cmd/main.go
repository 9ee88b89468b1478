package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"risk-register-service/internal/cache"
	"risk-register-service/internal/config"
	"risk-register-service/internal/events"
	"risk-register-service/internal/handlers"
	"risk-register-service/internal/jobs"
	"risk-register-service/internal/middleware"
	"risk-register-service/internal/models"
	"risk-register-service/internal/repository"
	"risk-register-service/internal/seeders"
	"risk-register-service/internal/services"
	"risk-register-service/internal/workflow"
)

// @title Risk Register Workflow API
// @version 1.0.0
// @description Multi-stage approval workflow service for the risk register
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.example.com/support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8091
// @BasePath /api/v1

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.AutoMigrate(
		&models.Risk{},
		&models.RiskInherent{},
		&models.RiskMitigation{},
		&models.RiskRealization{},
		&models.LossEvent{},
		&models.ApprovalRecord{},
		&models.AuditLog{},
		&models.Employee{},
		&models.UserRole{},
		&models.SuperadminMember{},
	); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Database migrations completed")

	// Seed the demo directory in non-production environments when asked
	if cfg.SeedDemoData {
		if err := seeders.SeedDemoDirectory(db); err != nil {
			logger.Warnf("Failed to seed demo directory: %v", err)
		}
	}

	// Initialize Redis-backed caches (optional - service works without Redis)
	orgCache, err := cache.NewOrgPrefixCache(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTLSeconds)
	if err != nil {
		logger.Warnf("Failed to initialize org cache: %v. Falling back to direct lookups.", err)
		orgCache = cache.NewOrgPrefixCacheWithClient(nil, time.Duration(cfg.RedisTTLSeconds)*time.Second)
	}
	if orgCache.IsAvailable() {
		logger.Info("Org prefix cache initialized")
	} else {
		logger.Info("Redis unavailable, org prefix lookups go straight to the database")
	}
	simulationStore := cache.NewRedisSimulationStore(orgCache.Client(), 12*time.Hour)

	// Initialize repositories
	riskRepo := repository.NewRiskRepository(db)
	lossEventRepo := repository.NewLossEventRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db, orgCache)

	// Initialize event publisher (optional - service works without NATS)
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			logger.Warnf("Failed to initialize event publisher: %v. Events will not be published.", err)
			publisher = nil
		} else {
			logger.Info("Event publisher initialized")
		}
	} else {
		logger.Info("NATS_URL not configured, event publishing disabled")
	}

	// Initialize the workflow context resolver
	resolver := workflow.NewResolver(cfg.SuperadminUserID, directoryRepo, directoryRepo, directoryRepo, simulationStore, logger)

	// Initialize services
	riskService := services.NewRiskWorkflowService(riskRepo, publisher, logger)
	lossEventService := services.NewLossEventWorkflowService(lossEventRepo, publisher, logger)
	simulationService := services.NewSimulationService(simulationStore, logger)

	// Initialize handlers
	riskHandler := handlers.NewRiskHandler(riskService, resolver)
	lossEventHandler := handlers.NewLossEventHandler(lossEventService, resolver)
	simulationHandler := handlers.NewSimulationHandler(simulationService, resolver)
	healthHandler := handlers.NewHealthHandler(db, orgCache)

	// Start org cache refresh job
	cacheJob := jobs.NewCacheRefreshJob(directoryRepo, orgCache, logger)
	jobCtx, jobCancel := context.WithCancel(context.Background())
	go cacheJob.Start(jobCtx)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Protected API routes
	api := router.Group("/api/v1")
	api.Use(middleware.JWTAuth(cfg.JWTSecret))

	// Risk register endpoints
	{
		api.POST("/risks", riskHandler.Create)
		api.GET("/risks", riskHandler.List)
		api.GET("/risks/approvals", riskHandler.ListForApproval)
		api.GET("/risks/:id", riskHandler.Get)
		api.POST("/risks/:id/approve", riskHandler.Approve)
		api.POST("/risks/:id/reject", riskHandler.Reject)
		api.POST("/risks/:id/request-delete", riskHandler.RequestDelete)
		api.POST("/risks/:id/number", riskHandler.AssignNumber)
	}

	// Loss event endpoints
	{
		api.POST("/loss-events", lossEventHandler.Create)
		api.GET("/loss-events", lossEventHandler.List)
		api.GET("/loss-events/approvals", lossEventHandler.ListForApproval)
		api.GET("/loss-events/:id", lossEventHandler.Get)
		api.POST("/loss-events/:id/approve", lossEventHandler.Approve)
		api.POST("/loss-events/:id/reject", lossEventHandler.Reject)
		api.POST("/loss-events/:id/request-delete", lossEventHandler.RequestDelete)
	}

	// Superadmin simulation endpoints
	{
		api.GET("/simulation", simulationHandler.Current)
		api.PUT("/simulation", simulationHandler.Apply)
		api.DELETE("/simulation", simulationHandler.Reset)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8091"
	}

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Infof("Risk register service starting on port %s", port)
		if err := router.Run(":" + port); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	logger.Info("Shutting down server...")

	// Stop background job and drain the event publisher
	jobCancel()
	cacheJob.Stop()
	publisher.Close()
	orgCache.Close()

	logger.Info("Server shutdown complete")
}
