package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wonderpark/storefront/pkg/redis"
	"github.com/wonderpark/storefront/pkg/response"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	redis   *redis.Client
	version string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(redisClient *redis.Client, version string) *HealthHandler {
	return &HealthHandler{redis: redisClient, version: version}
}

// Health handles GET /health. It answers as long as the process is up.
func (h *HealthHandler) Health(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}

// Ready handles GET /ready. Readiness requires the session vault backend.
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.redis.HealthCheck(c.Request.Context()); err != nil {
		response.Error(c, http.StatusServiceUnavailable, "NOT_READY", "Redis unavailable", err.Error())
		return
	}
	response.Success(c, gin.H{"status": "ready"})
}
