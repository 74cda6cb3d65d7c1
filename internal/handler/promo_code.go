package handler

import (
	"github.com/ebetcoin/backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

type ApplyPromoCodeRequest struct {
	Code string `json:"code"`
}

// ApplyWelcomeCode redeems a welcome code for the current user
func (h *Handler) ApplyWelcomeCode(c *fiber.Ctx) error {
	var req ApplyPromoCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid request body")
	}

	res, err := h.promoCodeSvc.ApplyWelcomeCode(c.UserContext(), middleware.GetUserID(c), req.Code)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, res, res.Message)
}

// ValidatePromoCode checks if a promo code is valid (without applying it)
func (h *Handler) ValidatePromoCode(c *fiber.Ctx) error {
	promo, err := h.promoCodeSvc.ValidatePromoCode(c.UserContext(), c.Query("code"))
	if err != nil {
		return fail(c, err)
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"code":                           promo.Code,
		"is_welcome_code":                promo.IsWelcomeCode,
		"welcome_bonus":                  promo.WelcomeBonus,
		"first_deposit_bonus_percentage": promo.FirstDepositBonusPercentage,
		"premium_days":                   promo.PremiumDays,
	}, "")
}

// GetBonuses lists the caller's bonuses
func (h *Handler) GetBonuses(c *fiber.Ctx) error {
	summary, err := h.bonusSvc.GetSummary(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, summary, "")
}
