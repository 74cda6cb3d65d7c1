package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ebetcoin/backend/internal/config"
	"github.com/ebetcoin/backend/internal/events"
	"github.com/ebetcoin/backend/internal/ledger"
	"github.com/ebetcoin/backend/internal/model"
	"github.com/ebetcoin/backend/internal/repository"
	"github.com/ebetcoin/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotAdmin         = errors.New("user is not an admin")
	ErrEmptyCreditBatch = errors.New("credit batch is empty")
)

type AdminService struct {
	repo      AdminStore
	cfg       config.LedgerConfig
	publisher events.Publisher
}

func NewAdminService(repo AdminStore, cfg config.LedgerConfig) *AdminService {
	return &AdminService{repo: repo, cfg: cfg, publisher: events.NopPublisher{}}
}

func (s *AdminService) SetPublisher(p events.Publisher) {
	s.publisher = p
}

// IsAdmin checks if user is an admin
func (s *AdminService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	return s.repo.IsAdmin(ctx, userID)
}

// GrantAdmin makes userID an admin with the given role
func (s *AdminService) GrantAdmin(ctx context.Context, userID int64, role model.AdminRole) error {
	if role == "" {
		role = model.AdminRoleAdmin
	}
	if role != model.AdminRoleAdmin && role != model.AdminRoleSuperAdmin {
		return &ValidationError{Fields: map[string]string{"role": "role must be admin or superadmin"}}
	}
	return s.repo.CreateAdmin(ctx, &model.Admin{UserID: userID, Role: role})
}

func (s *AdminService) audit(ctx context.Context, adminID int64, action string, target int64, details map[string]interface{}) {
	if err := s.repo.LogAdminAction(ctx, adminID, action, &target, details); err != nil {
		logger.Warn(ctx).Err(err).Str("action", action).Msg("failed to write admin log")
	}
}

// --- Deposits ---

func (s *AdminService) ListPendingDeposits(ctx context.Context, limit, offset int) ([]model.Deposit, error) {
	limit, offset = normalizePage(limit, offset)
	deposits, err := s.repo.ListPendingDeposits(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if deposits == nil {
		deposits = []model.Deposit{}
	}
	return deposits, nil
}

// ApproveDeposit credits the deposit at the configured rate, plus the pending
// first-deposit bonus if there is one.
func (s *AdminService) ApproveDeposit(ctx context.Context, adminID int64, id uuid.UUID, note string) (*repository.DepositSettlement, error) {
	res, err := s.repo.ApproveDeposit(ctx, id, adminID, note, s.cfg.EBTPerUSD)
	if err != nil {
		return nil, err
	}

	d := res.Deposit
	details := map[string]interface{}{
		"deposit_id":      d.ID,
		"amount":          d.Amount,
		"credited_amount": res.Transaction.Amount,
		"rate":            s.cfg.EBTPerUSD,
	}
	if res.BonusTransaction != nil {
		details["bonus_amount"] = res.BonusTransaction.Amount
	}
	s.audit(ctx, adminID, model.AdminActionApproveDeposit, d.UserID, details)

	logger.Info(ctx).
		Int64("admin_id", adminID).
		Int64("user_id", d.UserID).
		Str("deposit_id", d.ID.String()).
		Str("credited", res.Transaction.Amount.String()).
		Bool("bonus", res.BonusTransaction != nil).
		Msg("deposit approved")

	data := map[string]any{"usd_amount": d.Amount}
	if res.BonusTransaction != nil {
		data["bonus_amount"] = res.BonusTransaction.Amount
	}
	events.Emit(ctx, s.publisher, events.Event{
		Type:        events.DepositApproved,
		UserID:      d.UserID,
		ReferenceID: d.ID.String(),
		Amount:      res.Transaction.Amount,
		Currency:    res.Transaction.Currency,
		Data:        data,
	})

	return res, nil
}

func (s *AdminService) RejectDeposit(ctx context.Context, adminID int64, id uuid.UUID, note string) (*model.Deposit, error) {
	d, err := s.repo.RejectDeposit(ctx, id, adminID, note)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, adminID, model.AdminActionRejectDeposit, d.UserID, map[string]interface{}{
		"deposit_id": d.ID,
		"note":       note,
	})
	logger.Info(ctx).
		Int64("admin_id", adminID).
		Int64("user_id", d.UserID).
		Str("deposit_id", d.ID.String()).
		Msg("deposit rejected")

	events.Emit(ctx, s.publisher, events.Event{
		Type:        events.DepositRejected,
		UserID:      d.UserID,
		ReferenceID: d.ID.String(),
		Amount:      d.Amount,
		Currency:    model.CurrencyUSD,
	})
	return d, nil
}

// --- Withdrawals ---

func (s *AdminService) ListOpenWithdrawals(ctx context.Context, limit, offset int) ([]model.Withdrawal, error) {
	limit, offset = normalizePage(limit, offset)
	ws, err := s.repo.ListOpenWithdrawals(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		ws = []model.Withdrawal{}
	}
	return ws, nil
}

func (s *AdminService) ProcessWithdrawal(ctx context.Context, adminID int64, id uuid.UUID) (*model.Withdrawal, error) {
	w, err := s.repo.MarkWithdrawalProcessing(ctx, id, adminID)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, adminID, model.AdminActionProcessWithdrawal, w.UserID, map[string]interface{}{
		"withdrawal_id": w.ID,
	})
	return w, nil
}

// CompleteWithdrawal pays out a withdrawal. Held funds leave locked_balance;
// otherwise the balance is debited now and must still cover the amount.
func (s *AdminService) CompleteWithdrawal(ctx context.Context, adminID int64, id uuid.UUID, note string) (*repository.WithdrawalSettlement, error) {
	res, err := s.repo.CompleteWithdrawal(ctx, id, adminID, note)
	if err != nil {
		return nil, err
	}

	w := res.Withdrawal
	s.audit(ctx, adminID, model.AdminActionCompleteWithdrawal, w.UserID, map[string]interface{}{
		"withdrawal_id": w.ID,
		"amount":        w.Amount,
		"funds_held":    w.FundsHeld,
	})
	logger.Info(ctx).
		Int64("admin_id", adminID).
		Int64("user_id", w.UserID).
		Str("withdrawal_id", w.ID.String()).
		Str("amount", w.Amount.String()).
		Msg("withdrawal completed")

	events.Emit(ctx, s.publisher, events.Event{
		Type:        events.WithdrawalCompleted,
		UserID:      w.UserID,
		ReferenceID: w.ID.String(),
		Amount:      w.Amount,
		Currency:    w.Currency,
	})
	return res, nil
}

// RejectWithdrawal closes a withdrawal without paying it; held funds return
// to the balance.
func (s *AdminService) RejectWithdrawal(ctx context.Context, adminID int64, id uuid.UUID, note string) (*repository.WithdrawalSettlement, error) {
	res, err := s.repo.RejectWithdrawal(ctx, id, adminID, note)
	if err != nil {
		return nil, err
	}

	w := res.Withdrawal
	s.audit(ctx, adminID, model.AdminActionRejectWithdrawal, w.UserID, map[string]interface{}{
		"withdrawal_id": w.ID,
		"note":          note,
		"released":      res.Transaction != nil,
	})
	logger.Info(ctx).
		Int64("admin_id", adminID).
		Int64("user_id", w.UserID).
		Str("withdrawal_id", w.ID.String()).
		Msg("withdrawal rejected")

	events.Emit(ctx, s.publisher, events.Event{
		Type:        events.WithdrawalRejected,
		UserID:      w.UserID,
		ReferenceID: w.ID.String(),
		Amount:      w.Amount,
		Currency:    w.Currency,
	})
	return res, nil
}

// --- Balance management ---

// ParseCredits validates a credit batch. Amounts must be positive with at most
// two decimals and each user may appear once.
func ParseCredits(credits []model.Credit) ([]repository.CreditLine, error) {
	if len(credits) == 0 {
		return nil, ErrEmptyCreditBatch
	}

	ve := &ValidationError{}
	seen := make(map[int64]bool, len(credits))
	lines := make([]repository.CreditLine, 0, len(credits))

	for i, c := range credits {
		field := fmt.Sprintf("credits[%d]", i)
		if c.UserID <= 0 {
			ve.Add(field+".user_id", "user_id must be positive")
			continue
		}
		if seen[c.UserID] {
			ve.Add(field+".user_id", fmt.Sprintf("user %d appears more than once", c.UserID))
			continue
		}
		seen[c.UserID] = true

		amount, err := decimal.NewFromString(c.Amount)
		switch {
		case err != nil:
			ve.Add(field+".amount", fmt.Sprintf("invalid amount %q", c.Amount))
			continue
		case !amount.IsPositive():
			ve.Add(field+".amount", "amount must be positive")
			continue
		case !amount.Equal(ledger.Round(amount)):
			ve.Add(field+".amount", "amount must have at most 2 decimal places")
			continue
		}
		lines = append(lines, repository.CreditLine{UserID: c.UserID, Amount: amount})
	}

	if err := ve.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// CreditUsers credits every listed user in one transaction. Nothing is
// credited when any line fails.
func (s *AdminService) CreditUsers(ctx context.Context, adminID int64, credits []model.Credit, description string) ([]model.Transaction, error) {
	lines, err := ParseCredits(credits)
	if err != nil {
		return nil, err
	}
	if description == "" {
		description = fmt.Sprintf("Admin credit by %d", adminID)
	}

	txs, err := s.repo.CreditUsers(ctx, lines, description)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Amount)
		s.audit(ctx, adminID, model.AdminActionCredit, line.UserID, map[string]interface{}{
			"amount":      line.Amount,
			"description": description,
		})
	}

	logger.Info(ctx).
		Int64("admin_id", adminID).
		Int("users", len(lines)).
		Str("total", total.String()).
		Msg("credit batch applied")

	events.Emit(ctx, s.publisher, events.Event{
		Type:     events.CreditBatch,
		Amount:   total,
		Currency: model.CurrencyEBT,
		Data:     map[string]any{"admin_id": adminID, "users": len(lines), "description": description},
	})
	return txs, nil
}

// --- Audit ---

func (s *AdminService) GetAdminLogs(ctx context.Context, limit, offset int) ([]model.AdminLog, error) {
	limit, offset = normalizePage(limit, offset)
	logs, err := s.repo.GetAdminLogs(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []model.AdminLog{}
	}
	return logs, nil
}

// GetUserLogs returns the audit entries that targeted userID
func (s *AdminService) GetUserLogs(ctx context.Context, userID int64, limit, offset int) ([]model.AdminLog, error) {
	limit, offset = normalizePage(limit, offset)
	logs, err := s.repo.GetAdminLogsByTarget(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []model.AdminLog{}
	}
	return logs, nil
}

func (s *AdminService) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	admins, err := s.repo.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}
	if admins == nil {
		admins = []model.Admin{}
	}
	return admins, nil
}

// --- Bans ---

// BanUser suspends intake for userID until expiresAt, or indefinitely when nil
func (s *AdminService) BanUser(ctx context.Context, adminID, userID int64, reason string, expiresAt *time.Time) (*model.BannedUser, error) {
	if userID == adminID {
		return nil, &ValidationError{Fields: map[string]string{"user_id": "admins cannot ban themselves"}}
	}
	if expiresAt != nil && !expiresAt.After(time.Now()) {
		return nil, &ValidationError{Fields: map[string]string{"expires_at": "expires_at must be in the future"}}
	}

	ban := &model.BannedUser{UserID: userID, BannedBy: adminID, ExpiresAt: expiresAt}
	if reason != "" {
		ban.Reason = &reason
	}
	if err := s.repo.BanUser(ctx, ban); err != nil {
		return nil, err
	}

	s.audit(ctx, adminID, model.AdminActionBanUser, userID, map[string]interface{}{
		"reason":     reason,
		"expires_at": expiresAt,
	})
	logger.Info(ctx).Int64("admin_id", adminID).Int64("user_id", userID).Msg("user banned")
	return ban, nil
}

func (s *AdminService) UnbanUser(ctx context.Context, adminID, userID int64) error {
	if err := s.repo.UnbanUser(ctx, userID); err != nil {
		return err
	}
	s.audit(ctx, adminID, model.AdminActionUnbanUser, userID, nil)
	logger.Info(ctx).Int64("admin_id", adminID).Int64("user_id", userID).Msg("user unbanned")
	return nil
}

func (s *AdminService) IsUserBanned(ctx context.Context, userID int64) (bool, error) {
	return s.repo.IsUserBanned(ctx, userID)
}

func (s *AdminService) ListBans(ctx context.Context, limit, offset int) ([]model.BannedUser, error) {
	limit, offset = normalizePage(limit, offset)
	bans, err := s.repo.ListBannedUsers(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if bans == nil {
		bans = []model.BannedUser{}
	}
	return bans, nil
}
