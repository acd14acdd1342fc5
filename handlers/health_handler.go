package handlers

import (
	"context"
	"time"

	"github.com/fenilmodi00/farcaster-gateway/services"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	Cache   *services.CacheService
	Timeout time.Duration
}

func NewHealthHandler(cache *services.CacheService, timeout time.Duration) *HealthHandler {
	return &HealthHandler{Cache: cache, Timeout: timeout}
}

// GetHealth reports process and cache status. It always answers 200.
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.Timeout)
	defer cancel()

	cacheStatus := h.Cache.Status(ctx)
	status := "ok"
	if cacheStatus == services.CacheStatusUnavailable {
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":    status,
		"cache":     cacheStatus,
		"timestamp": time.Now().Unix(),
	})
}
