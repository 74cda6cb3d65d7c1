package handler

import (
	"github.com/gofiber/fiber/v2"
)

// Register mounts every route. auth authenticates the caller, adminOnly
// additionally requires an admin, notBanned guards money intake.
func Register(app *fiber.App, h *Handler, admin *AdminHandler, auth, adminOnly, notBanned fiber.Handler) {
	app.Get("/health", h.Health)

	api := app.Group("/api", auth)

	api.Get("/me", h.GetMe)

	// Wallet
	api.Get("/wallet", h.GetWallet)
	api.Get("/wallet/transactions", h.GetTransactions)

	// Deposits
	api.Post("/deposits", notBanned, h.SubmitDeposit)
	api.Get("/deposits", h.ListDeposits)
	api.Get("/deposits/:id", h.GetDeposit)

	// Withdrawals
	api.Post("/withdrawals", notBanned, h.SubmitWithdrawal)
	api.Get("/withdrawals", h.ListWithdrawals)
	api.Get("/withdrawals/:id", h.GetWithdrawal)

	// Bonuses and promo codes
	api.Get("/bonuses", h.GetBonuses)
	api.Post("/promo/welcome", notBanned, h.ApplyWelcomeCode)
	api.Get("/promo/validate", h.ValidatePromoCode)

	// Admin panel routes (auth + admin check)
	adm := api.Group("/admin", adminOnly)

	adm.Get("/deposits/pending", admin.ListPendingDeposits)
	adm.Post("/deposits/:id/approve", admin.ApproveDeposit)
	adm.Post("/deposits/:id/reject", admin.RejectDeposit)

	adm.Get("/withdrawals/open", admin.ListOpenWithdrawals)
	adm.Post("/withdrawals/:id/process", admin.ProcessWithdrawal)
	adm.Post("/withdrawals/:id/complete", admin.CompleteWithdrawal)
	adm.Post("/withdrawals/:id/reject", admin.RejectWithdrawal)

	adm.Post("/credits", admin.CreditUsers)

	adm.Get("/promo", admin.ListPromoCodes)
	adm.Post("/promo", admin.CreatePromoCode)
	adm.Post("/promo/deactivate", admin.DeactivatePromoCode)

	adm.Get("/logs", admin.GetLogs)
	adm.Get("/users/:id/logs", admin.GetUserLogs)
	adm.Get("/admins", admin.ListAdmins)

	adm.Get("/bans", admin.ListBans)
	adm.Post("/users/:id/ban", admin.BanUser)
	adm.Post("/users/:id/unban", admin.UnbanUser)
}
