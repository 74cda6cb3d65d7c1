package handler

import (
	"github.com/ebetcoin/backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// GetWallet returns the caller's balance
func (h *Handler) GetWallet(c *fiber.Ctx) error {
	wallet, err := h.walletSvc.GetWallet(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, wallet, "")
}

// GetTransactions returns ledger history, newest first
func (h *Handler) GetTransactions(c *fiber.Ctx) error {
	limit, offset := page(c)
	txs, err := h.walletSvc.GetTransactions(c.UserContext(), middleware.GetUserID(c), limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, txs, "")
}
