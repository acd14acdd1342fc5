package handlers

import (
	"strconv"

	"github.com/fenilmodi00/farcaster-gateway/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	Service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{Service: service}
}

// GetUserEarnings handles GET /users/:fid/earnings
func (h *UserHandler) GetUserEarnings(c *fiber.Ctx) error {
	rawFid := c.Params("fid")
	fid, err := strconv.ParseUint(rawFid, 10, 64)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid user identifier: "+rawFid)
	}

	earnings, err := h.Service.UserEarnings(c.UserContext(), fid)
	if err != nil {
		return respondServiceError(c, err, "UserHandler")
	}

	return respondData(c, earnings)
}

// GetFid handles GET /fids?handle=
func (h *UserHandler) GetFid(c *fiber.Ctx) error {
	handle := c.Query("handle")
	if handle == "" {
		return respondError(c, fiber.StatusBadRequest, "Handle is required")
	}

	result, err := h.Service.FidByHandle(c.UserContext(), handle)
	if err != nil {
		return respondServiceError(c, err, "UserHandler")
	}

	return respondData(c, result)
}

// GetFarScores handles GET /far-scores?handle=
func (h *UserHandler) GetFarScores(c *fiber.Ctx) error {
	handle := c.Query("handle")
	if handle == "" {
		return respondError(c, fiber.StatusBadRequest, "Handle is required")
	}

	score, err := h.Service.FarScore(c.UserContext(), handle)
	if err != nil {
		return respondServiceError(c, err, "UserHandler")
	}

	return respondData(c, score)
}
