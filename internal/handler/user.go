package handler

import (
	"github.com/ebetcoin/backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// GetMe registers the caller on first sight and returns the stored user
func (h *Handler) GetMe(c *fiber.Ctx) error {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return failure(c, fiber.StatusUnauthorized, "unauthorized")
	}

	user, err := h.userSvc.GetOrCreateUser(c.UserContext(), claims.UserID, claims.Username)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, user, "")
}
