package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fplpredict/optimizer-service/pkg/cache"
)

// HealthHandler handles health check endpoints for the optimizer service.
type HealthHandler struct {
	redis  *redis.Client
	cache  *cache.ResultCache
	logger *logrus.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(redisClient *redis.Client, resultCache *cache.ResultCache, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		redis:  redisClient,
		cache:  resultCache,
		logger: logger,
	}
}

// GetHealth returns the basic health status
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := HealthStatus{
		Status:    "ok",
		Service:   "optimizer-service",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	// Redis only affects the result cache; the solver itself has no
	// dependencies, so a redis outage degrades rather than kills us.
	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			response.Status = "degraded"
			response.Checks["redis"] = "failed: " + err.Error()
		} else {
			response.Checks["redis"] = "ok"
		}
	} else {
		response.Checks["redis"] = "not_configured"
	}

	statusCode := http.StatusOK
	if response.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}
	c.JSON(statusCode, response)
}

// GetReady returns the readiness status
func (h *HealthHandler) GetReady(c *gin.Context) {
	response := HealthStatus{
		Status:    "ready",
		Service:   "optimizer-service",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			response.Checks["redis"] = "failed: " + err.Error()
		} else {
			response.Checks["redis"] = "ok"
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetMetrics returns optimizer service metrics
func (h *HealthHandler) GetMetrics(c *gin.Context) {
	metrics := map[string]interface{}{
		"service":   "optimizer-service",
		"timestamp": time.Now(),
	}

	if h.cache != nil {
		metrics["cache"] = h.cache.GetStatus(c.Request.Context())
	}

	c.JSON(http.StatusOK, metrics)
}
