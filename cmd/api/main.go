package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"stockpulse/internal/cache"
	"stockpulse/internal/config"
	"stockpulse/internal/database"
	"stockpulse/internal/handlers"
	"stockpulse/internal/logger"
	"stockpulse/internal/middleware"
	"stockpulse/internal/providers"
	"stockpulse/internal/services"
	"stockpulse/internal/validator"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	store, err := cache.NewStore(appConfig.RedisURL, appConfig.StockCacheTTL)
	if err != nil {
		return fmt.Errorf("failed to connect to cache: %w", err)
	}
	defer func() { _ = store.Close() }()

	// Providers share one outbound client with a request deadline; neither
	// upstream defines a tighter timeout contract.
	httpClient := &http.Client{Timeout: 30 * time.Second}
	quotes := providers.NewPolygonProviderWithBaseURL(httpClient, appConfig.PolygonAPIKey, appConfig.PolygonBaseURL)
	profiles := providers.NewMarketWatchProviderWithBaseURL(httpClient, appConfig.MarketWatchBaseURL)

	stockService := services.NewStockService(dbManager.DB(), quotes, profiles)
	stockHandler := handlers.NewStockHandler(stockService, store)

	validator.Register()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Stock routes
	stock := router.Group("/stock")
	stock.GET("", stockHandler.ListStocks)
	stock.GET("/:symbol", stockHandler.GetStock)
	stock.POST("/:symbol", stockHandler.UpdateStock)

	log.Infof("Starting stockpulse server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
