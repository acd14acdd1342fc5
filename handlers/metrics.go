package handlers

import (
	"errors"
	"time"

	"github.com/fenilmodi00/farcaster-gateway/shared"
	"github.com/gofiber/fiber/v2"
)

// RecordMetrics tracks latency and outcome per route. 5xx responses count as failures.
func RecordMetrics(registry *shared.MetricsRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		name := c.Method() + " " + c.Route().Path
		registry.Service(name).RecordRequest(status < fiber.StatusInternalServerError, time.Since(start))
		return err
	}
}
