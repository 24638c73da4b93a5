package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parkwatch/internal/config"
	handlers "parkwatch/internal/handlers/shared"
	"parkwatch/internal/middleware"
	"parkwatch/internal/queue"
	mongorepo "parkwatch/internal/repositories/mongodb"
	"parkwatch/internal/services"
	"parkwatch/pkg/cache"
	"parkwatch/pkg/database"
	"parkwatch/pkg/logger"
	"parkwatch/pkg/websocket"
	"parkwatch/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: logFormat(),
		Output: "stdout",
		Caller: cfg.App.Debug,
		Colors: !config.IsProduction(),
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// MongoDB
	mongoDB, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer mongoDB.Close()

	if err := mongoDB.EnsureIndexes(context.Background()); err != nil {
		appLogger.WithError(err).Fatal("Failed to ensure indexes")
	}

	// Redis
	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisCache.Close()

	// Event fan-out: websocket hub plus the RabbitMQ publisher
	wsHandler := websocket.NewHandler()
	publisher, err := queue.NewPublisher(cfg.Queue, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to RabbitMQ")
	}
	defer publisher.Close()

	// Repositories
	spotRepo := mongorepo.NewSpotRepository(mongoDB.Database, redisCache, cfg.Parking.SpotCacheTTL)
	vehicleRepo := mongorepo.NewVehicleRepository(mongoDB.Database)

	// Services. One lock set keeps same-spot operations serialized no matter
	// which service handles them.
	notifier := services.NewNotificationService(wsHandler, publisher, appLogger)
	spotLocks := services.NewSpotLocks()
	spotService := services.NewSpotService(spotRepo, vehicleRepo, notifier, spotLocks)
	reservationService := services.NewReservationService(spotRepo, notifier, spotLocks)
	violationService := services.NewViolationService(spotRepo, vehicleRepo, notifier, appLogger, spotLocks)

	// Handlers
	spotHandler := handlers.NewSpotHandler(spotService, cfg.Parking)
	reservationHandler := handlers.NewReservationHandler(reservationService)
	violationHandler := handlers.NewViolationHandler(violationService)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))

	// API routes
	v1 := router.Group("/api/v1")
	{
		routes.SetupSpotRoutes(v1, cfg.Security.JWTSecret,
			spotHandler, reservationHandler, violationHandler)

		ws := v1.Group("/ws")
		ws.Use(middleware.AuthRequired(cfg.Security.JWTSecret))
		ws.GET("", wsHandler.HandleWebSocket)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if err := mongoDB.Ping(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"name":    cfg.App.Name,
			"version": cfg.App.Version,
		})
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithField("addr", srv.Addr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Error("Forced shutdown")
	}
	appLogger.Info("Server stopped")
}

func logFormat() string {
	if config.IsProduction() {
		return "json"
	}
	return "text"
}
