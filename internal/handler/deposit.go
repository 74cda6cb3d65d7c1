package handler

import (
	"github.com/ebetcoin/backend/internal/middleware"
	"github.com/ebetcoin/backend/internal/model"
	"github.com/gofiber/fiber/v2"
)

// SubmitDeposit records a pending deposit for admin review
func (h *Handler) SubmitDeposit(c *fiber.Ctx) error {
	var req model.DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid request body")
	}

	res, err := h.depositSvc.Submit(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, res, "Deposit submitted and awaiting approval")
}

func (h *Handler) ListDeposits(c *fiber.Ctx) error {
	limit, offset := page(c)
	deposits, err := h.depositSvc.List(c.UserContext(), middleware.GetUserID(c), limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, deposits, "")
}

func (h *Handler) GetDeposit(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid deposit id")
	}

	d, err := h.depositSvc.Get(c.UserContext(), middleware.GetUserID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, d, "")
}
