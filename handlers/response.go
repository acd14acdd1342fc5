package handlers

import (
	"errors"

	"github.com/fenilmodi00/farcaster-gateway/services"
	"github.com/fenilmodi00/farcaster-gateway/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func respondData(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"data": data,
	})
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// requestLogger returns a log entry tagged with the component and request id
func requestLogger(c *fiber.Ctx, component string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"component":  component,
		"request_id": c.Locals("requestid"),
		"path":       c.Path(),
	})
}

// respondServiceError maps a service error onto the public error contract
func respondServiceError(c *fiber.Ctx, err error, component string) error {
	switch {
	case errors.Is(err, services.ErrInvalidParameters):
		return respondError(c, fiber.StatusBadRequest, "Invalid parameters")
	case errors.Is(err, services.ErrCastNotFound):
		return respondError(c, fiber.StatusNotFound, "Cast not found")
	case errors.Is(err, services.ErrUserNotFound):
		return respondError(c, fiber.StatusNotFound, "User not found")
	}

	logger := requestLogger(c, component)

	var serviceErr *shared.ServiceError
	if !errors.As(err, &serviceErr) {
		logger.WithError(err).Error("Request failed")
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	serviceErr.LogError(logger)
	if serviceErr.Code == services.CodeCastResolutionFailed {
		return respondError(c, fiber.StatusInternalServerError, "Failed to resolve cast: "+resolutionCause(serviceErr))
	}
	return respondError(c, fiber.StatusInternalServerError, "Internal server error")
}

// resolutionCause describes why a resolution failed without echoing upstream request details
func resolutionCause(err *shared.ServiceError) string {
	var upstreamErr *shared.ServiceError
	if errors.As(err.Cause, &upstreamErr) {
		return upstreamErr.Message
	}
	if err.Cause != nil {
		return err.Cause.Error()
	}
	return err.Message
}
