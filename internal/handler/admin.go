package handler

import (
	"strconv"
	"time"

	"github.com/ebetcoin/backend/internal/middleware"
	"github.com/ebetcoin/backend/internal/model"
	"github.com/ebetcoin/backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles admin panel requests
type AdminHandler struct {
	adminSvc     *service.AdminService
	promoCodeSvc *service.PromoCodeService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminSvc *service.AdminService, promoCodeSvc *service.PromoCodeService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, promoCodeSvc: promoCodeSvc}
}

type ReviewRequest struct {
	Note string `json:"note"`
}

func reviewNote(c *fiber.Ctx) (string, error) {
	var req ReviewRequest
	if len(c.Body()) == 0 {
		return "", nil
	}
	if err := c.BodyParser(&req); err != nil {
		return "", err
	}
	return req.Note, nil
}

// --- Deposits ---

func (h *AdminHandler) ListPendingDeposits(c *fiber.Ctx) error {
	limit, offset := page(c)
	deposits, err := h.adminSvc.ListPendingDeposits(c.UserContext(), limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, deposits, "")
}

func (h *AdminHandler) ApproveDeposit(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid deposit id")
	}
	note, err := reviewNote(c)
	if err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid request body")
	}

	res, err := h.adminSvc.ApproveDeposit(c.UserContext(), middleware.GetAdminID(c), id, note)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"deposit":           res.Deposit,
		"transaction":       res.Transaction,
		"bonus_transaction": res.BonusTransaction,
	}, "Deposit approved")
}

func (h *AdminHandler) RejectDeposit(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid deposit id")
	}
	note, err := reviewNote(c)
	if err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid request body")
	}

	d, err := h.adminSvc.RejectDeposit(c.UserContext(), middleware.GetAdminID(c), id, note)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, d, "Deposit rejected")
}

// --- Withdrawals ---

func (h *AdminHandler) ListOpenWithdrawals(c *fiber.Ctx) error {
	limit, offset := page(c)
	ws, err := h.adminSvc.ListOpenWithdrawals(c.UserContext(), limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, ws, "")
}

func (h *AdminHandler) ProcessWithdrawal(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid withdrawal id")
	}

	w, err := h.adminSvc.ProcessWithdrawal(c.UserContext(), middleware.GetAdminID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, w, "Withdrawal is being processed")
}

func (h *AdminHandler) CompleteWithdrawal(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid withdrawal id")
	}
	note, err := reviewNote(c)
	if err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid request body")
	}

	res, err := h.adminSvc.CompleteWithdrawal(c.UserContext(), middleware.GetAdminID(c), id, note)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"withdrawal":  res.Withdrawal,
		"transaction": res.Transaction,
	}, "Withdrawal completed")
}

func (h *AdminHandler) RejectWithdrawal(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid withdrawal id")
	}
	note, err := reviewNote(c)
	if err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid request body")
	}

	res, err := h.adminSvc.RejectWithdrawal(c.UserContext(), middleware.GetAdminID(c), id, note)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"withdrawal":  res.Withdrawal,
		"transaction": res.Transaction,
	}, "Withdrawal rejected")
}

// --- Balance Management ---

type CreditRequest struct {
	Credits     []model.Credit `json:"credits"`
	Description string         `json:"description"`
}

// CreditUsers credits a batch of users atomically
func (h *AdminHandler) CreditUsers(c *fiber.Ctx) error {
	var req CreditRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid request body")
	}

	txs, err := h.adminSvc.CreditUsers(c.UserContext(), middleware.GetAdminID(c), req.Credits, req.Description)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, txs, "Credits applied")
}

// --- Promo Codes ---

func (h *AdminHandler) CreatePromoCode(c *fiber.Ctx) error {
	var req model.CreatePromoCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid request body")
	}

	promo, err := h.promoCodeSvc.CreatePromoCode(c.UserContext(), middleware.GetAdminID(c), req)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, promo, "Promo code created")
}

func (h *AdminHandler) ListPromoCodes(c *fiber.Ctx) error {
	limit, offset := page(c)
	promos, err := h.promoCodeSvc.ListPromoCodes(c.UserContext(), limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, promos, "")
}

type DeactivatePromoCodeRequest struct {
	Code string `json:"code"`
}

func (h *AdminHandler) DeactivatePromoCode(c *fiber.Ctx) error {
	var req DeactivatePromoCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.promoCodeSvc.DeactivatePromoCode(c.UserContext(), middleware.GetAdminID(c), req.Code); err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, nil, "Promo code deactivated")
}

// --- Logs ---

func (h *AdminHandler) GetLogs(c *fiber.Ctx) error {
	limit, offset := page(c)
	logs, err := h.adminSvc.GetAdminLogs(c.UserContext(), limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, logs, "")
}

func (h *AdminHandler) GetUserLogs(c *fiber.Ctx) error {
	userID, ok := userParam(c)
	if !ok {
		return failure(c, fiber.StatusBadRequest, "invalid user id")
	}
	limit, offset := page(c)
	logs, err := h.adminSvc.GetUserLogs(c.UserContext(), userID, limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, logs, "")
}

func (h *AdminHandler) ListAdmins(c *fiber.Ctx) error {
	admins, err := h.adminSvc.ListAdmins(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, admins, "")
}

// --- Bans ---

type BanUserRequest struct {
	Reason    string     `json:"reason"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func userParam(c *fiber.Ctx) (int64, bool) {
	userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return userID, err == nil && userID > 0
}

func (h *AdminHandler) BanUser(c *fiber.Ctx) error {
	userID, ok := userParam(c)
	if !ok {
		return failure(c, fiber.StatusBadRequest, "invalid user id")
	}

	var req BanUserRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return failure(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	ban, err := h.adminSvc.BanUser(c.UserContext(), middleware.GetAdminID(c), userID, req.Reason, req.ExpiresAt)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, ban, "User banned")
}

func (h *AdminHandler) UnbanUser(c *fiber.Ctx) error {
	userID, ok := userParam(c)
	if !ok {
		return failure(c, fiber.StatusBadRequest, "invalid user id")
	}
	if err := h.adminSvc.UnbanUser(c.UserContext(), middleware.GetAdminID(c), userID); err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, nil, "User unbanned")
}

func (h *AdminHandler) ListBans(c *fiber.Ctx) error {
	limit, offset := page(c)
	bans, err := h.adminSvc.ListBans(c.UserContext(), limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, bans, "")
}
