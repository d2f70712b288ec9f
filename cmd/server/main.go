package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fplpredict/optimizer-service/internal/api/handlers"
	"github.com/fplpredict/optimizer-service/internal/websocket"
	"github.com/fplpredict/optimizer-service/pkg/cache"
	"github.com/fplpredict/optimizer-service/pkg/config"
	"github.com/fplpredict/optimizer-service/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	structuredLogger := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	logger.WithService("optimizer-service").WithFields(logrus.Fields{
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("Starting optimizer service")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Redis backs the result cache only; the solver runs fine without it.
	var redisClient *redis.Client
	var resultCache *cache.ResultCache
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.WithService("optimizer-service").Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient = redis.NewClient(opt)
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithService("optimizer-service").WithError(err).Warn("Redis unavailable, result caching disabled")
		redisClient.Close()
		redisClient = nil
	} else {
		defer redisClient.Close()
		resultCache = cache.NewResultCache(redisClient, structuredLogger)
	}

	// WebSocket hub for solver progress updates
	wsHub := websocket.NewHub(structuredLogger)
	go wsHub.Run()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	optimizationHandler := handlers.NewOptimizationHandler(resultCache, wsHub, cfg, structuredLogger)
	healthHandler := handlers.NewHealthHandler(redisClient, resultCache, structuredLogger)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/pick-team", optimizationHandler.PickTeam)
		apiV1.POST("/pick-team/validate", optimizationHandler.Validate)
		apiV1.POST("/transfers", optimizationHandler.Transfers)
	}

	// WebSocket endpoint for solver progress
	router.GET("/ws/progress/:request_id", wsHub.HandleWebSocket)

	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)
	router.GET("/metrics", healthHandler.GetMetrics)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		logger.WithService("optimizer-service").WithField("port", cfg.Port).Info("Optimizer service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithService("optimizer-service").Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.WithService("optimizer-service").Info("Shutting down optimizer service...")

	// The server has 5 seconds to finish the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithService("optimizer-service").Fatalf("Optimizer service forced to shutdown: %v", err)
	}

	logger.WithService("optimizer-service").Info("Optimizer service exited")
}
