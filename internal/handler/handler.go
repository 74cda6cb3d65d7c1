package handler

import (
	"github.com/ebetcoin/backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	userSvc       *service.UserService
	walletSvc     *service.WalletService
	depositSvc    *service.DepositService
	withdrawalSvc *service.WithdrawalService
	bonusSvc      *service.BonusService
	promoCodeSvc  *service.PromoCodeService
}

func New(
	userSvc *service.UserService,
	walletSvc *service.WalletService,
	depositSvc *service.DepositService,
	withdrawalSvc *service.WithdrawalService,
	bonusSvc *service.BonusService,
	promoCodeSvc *service.PromoCodeService,
) *Handler {
	return &Handler{
		userSvc:       userSvc,
		walletSvc:     walletSvc,
		depositSvc:    depositSvc,
		withdrawalSvc: withdrawalSvc,
		bonusSvc:      bonusSvc,
		promoCodeSvc:  promoCodeSvc,
	}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
