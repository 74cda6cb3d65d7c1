package handler

import (
	"github.com/ebetcoin/backend/internal/middleware"
	"github.com/ebetcoin/backend/internal/model"
	"github.com/gofiber/fiber/v2"
)

// SubmitWithdrawal records a pending withdrawal for admin review
func (h *Handler) SubmitWithdrawal(c *fiber.Ctx) error {
	var req model.WithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid request body")
	}

	w, err := h.withdrawalSvc.Submit(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, w, "Withdrawal submitted and awaiting approval")
}

func (h *Handler) ListWithdrawals(c *fiber.Ctx) error {
	limit, offset := page(c)
	ws, err := h.withdrawalSvc.List(c.UserContext(), middleware.GetUserID(c), limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, ws, "")
}

func (h *Handler) GetWithdrawal(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid withdrawal id")
	}

	w, err := h.withdrawalSvc.Get(c.UserContext(), middleware.GetUserID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, w, "")
}
