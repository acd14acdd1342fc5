package handlers

import (
	"github.com/fenilmodi00/farcaster-gateway/models"
	"github.com/fenilmodi00/farcaster-gateway/services"
	"github.com/gofiber/fiber/v2"
)

type CastHandler struct {
	Service *services.CastService
}

func NewCastHandler(service *services.CastService) *CastHandler {
	return &CastHandler{Service: service}
}

// parseCastQuery reads castHash, castUrl and type. Empty values count as absent.
func parseCastQuery(c *fiber.Ctx) (models.CastQuery, error) {
	castType, err := models.ParseCastType(c.Query("type"))
	if err != nil {
		return models.CastQuery{}, services.ErrInvalidParameters
	}

	return models.CastQuery{
		Type: castType,
		Hash: c.Query("castHash"),
		URL:  c.Query("castUrl"),
	}, nil
}

// GetCastEmbeds handles GET /casts/embeds
func (h *CastHandler) GetCastEmbeds(c *fiber.Ctx) error {
	query, err := parseCastQuery(c)
	if err != nil {
		return respondServiceError(c, err, "CastHandler")
	}

	embeds, err := h.Service.CastEmbeds(c.UserContext(), query)
	if err != nil {
		return respondServiceError(c, err, "CastHandler")
	}

	return respondData(c, embeds)
}

// GetCastEarnings handles GET /casts/earnings and the legacy /earnings
func (h *CastHandler) GetCastEarnings(c *fiber.Ctx) error {
	query, err := parseCastQuery(c)
	if err != nil {
		return respondServiceError(c, err, "CastHandler")
	}

	earnings, err := h.Service.CastEarnings(c.UserContext(), query)
	if err != nil {
		return respondServiceError(c, err, "CastHandler")
	}

	return respondData(c, earnings)
}
