package main

import (
	"log"

	_ "backend/api/swagger" // swagger docs
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/logger"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"
	"backend/pkg/cache"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Commission Reconciliation API
// @version         1.0
// @description     Imports partner commission reports, reconciles commission facts and serves dashboard insights.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg := config.Load()

	zlog, err := logger.New()
	if err != nil {
		log.Fatalf("Logger initialization failed: %v", err)
	}
	defer zlog.Sync()

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		zlog.Fatal("Database connection failed", zap.Error(err))
	}
	zlog.Info("Connected to PostgreSQL successfully")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(zlog)
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	commissionRepo := repository.NewCommissionRepository(db)
	contractRepo := repository.NewContractRepository(db)
	importRepo := repository.NewImportRepository(db)
	logRepo := repository.NewIntegrationLogRepository(db)

	insightsCache := cache.New(cfg.CacheTTL)

	analysisService := service.NewAnalysisService(service.AnalysisConfig{
		URL:     cfg.AnalysisURL,
		APIKey:  cfg.AnalysisAPIKey,
		Timeout: cfg.AnalysisTimeout,
	}, logRepo, zlog)
	commissionService := service.NewCommissionService(commissionRepo, txManager, wsHub)
	importService := service.NewImportService(importRepo, contractRepo, logRepo, txManager, analysisService, wsHub, zlog)
	dashboardService := service.NewDashboardService(contractRepo, commissionRepo, importRepo, insightsCache)

	// Initialize Handlers
	commissionHandler := handler.NewCommissionHandler(commissionService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	importHandler := handler.NewImportHandler(importService)
	analysisHandler := handler.NewAnalysisHandler(analysisService)
	integrationLogHandler := handler.NewIntegrationLogHandler(logRepo)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	commissionHandler.RegisterRoutes(router.Group(""))
	dashboardHandler.RegisterRoutes(router.Group(""))
	importHandler.RegisterRoutes(router.Group(""))
	analysisHandler.RegisterRoutes(router.Group(""))
	integrationLogHandler.RegisterRoutes(router.Group(""))

	zlog.Info("Server listening", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("Server failed", zap.Error(err))
	}
}
