package handlers

import (
	"crypto/subtle"

	"github.com/fenilmodi00/farcaster-gateway/shared"
	"github.com/gofiber/fiber/v2"
)

// APIKeyHeader carries the caller secret on every API request
const APIKeyHeader = "x-me-api-key"

// CodeUnauthorized tags rejected API key checks in logs
const CodeUnauthorized = "UNAUTHORIZED"

// RequireAPIKey rejects requests whose x-me-api-key header does not exactly
// match apiKey. Preflight requests pass through untouched.
func RequireAPIKey(apiKey string) fiber.Handler {
	expected := []byte(apiKey)

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		provided := []byte(c.Get(APIKeyHeader))
		if len(expected) == 0 || len(provided) == 0 || subtle.ConstantTimeCompare(provided, expected) != 1 {
			err := shared.NewServiceError(shared.ErrorCategoryAuthentication, CodeUnauthorized, "missing or invalid API key", "Auth", "RequireAPIKey", nil).
				WithDetails(map[string]interface{}{"key_present": len(provided) > 0})
			requestLogger(c, "Auth").WithFields(err.Fields()).Warn("Rejected request")
			return respondError(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		return c.Next()
	}
}
