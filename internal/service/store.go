package service

import (
	"context"
	"time"

	"github.com/ebetcoin/backend/internal/ledger"
	"github.com/ebetcoin/backend/internal/model"
	"github.com/ebetcoin/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The stores below are the slices of *repository.Repository each service uses.

type UserStore interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
	UpsertUser(ctx context.Context, user *model.User) error
}

type WalletStore interface {
	GetWallet(ctx context.Context, userID int64) (*model.Wallet, error)
	GetOrCreateWallet(ctx context.Context, userID int64) (*model.Wallet, error)
	ListTransactions(ctx context.Context, userID int64, limit, offset int) ([]model.Transaction, error)
}

type DepositStore interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetPromoCodeByCode(ctx context.Context, code string) (*model.PromoCode, error)
	CreateDeposit(ctx context.Context, d *model.Deposit, bonus *model.FirstDepositBonus) (bool, error)
	GetDeposit(ctx context.Context, id uuid.UUID) (*model.Deposit, error)
	ListUserDeposits(ctx context.Context, userID int64, limit, offset int) ([]model.Deposit, error)
}

type WithdrawalStore interface {
	GetWallet(ctx context.Context, userID int64) (*model.Wallet, error)
	CreateWithdrawal(ctx context.Context, w *model.Withdrawal, hold bool) (*model.Transaction, error)
	GetWithdrawal(ctx context.Context, id uuid.UUID) (*model.Withdrawal, error)
	ListUserWithdrawals(ctx context.Context, userID int64, limit, offset int) ([]model.Withdrawal, error)
}

type PromoCodeStore interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetPromoCodeByCode(ctx context.Context, code string) (*model.PromoCode, error)
	ApplyWelcomeCode(ctx context.Context, userID int64, promo *model.PromoCode) (*repository.WelcomeResult, error)
	CreatePromoCode(ctx context.Context, promo *model.PromoCode) error
	ListPromoCodes(ctx context.Context, limit, offset int) ([]model.PromoCode, error)
	DeactivatePromoCode(ctx context.Context, id uuid.UUID) error
	LogAdminAction(ctx context.Context, adminID int64, action string, targetUserID *int64, details interface{}) error
}

type BonusStore interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetPromoCodeByCode(ctx context.Context, code string) (*model.PromoCode, error)
	GetWelcomeBonus(ctx context.Context, userID int64) (*model.WelcomeBonus, error)
	GetFirstDepositBonus(ctx context.Context, userID int64) (*model.FirstDepositBonus, error)
}

type AdminStore interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	CreateAdmin(ctx context.Context, admin *model.Admin) error
	ListAdmins(ctx context.Context) ([]model.Admin, error)
	LogAdminAction(ctx context.Context, adminID int64, action string, targetUserID *int64, details interface{}) error
	GetAdminLogs(ctx context.Context, limit, offset int) ([]model.AdminLog, error)
	GetAdminLogsByTarget(ctx context.Context, targetUserID int64, limit, offset int) ([]model.AdminLog, error)

	ListPendingDeposits(ctx context.Context, limit, offset int) ([]model.Deposit, error)
	ApproveDeposit(ctx context.Context, id uuid.UUID, adminID int64, note string, rate decimal.Decimal) (*repository.DepositSettlement, error)
	RejectDeposit(ctx context.Context, id uuid.UUID, adminID int64, note string) (*model.Deposit, error)

	ListOpenWithdrawals(ctx context.Context, limit, offset int) ([]model.Withdrawal, error)
	MarkWithdrawalProcessing(ctx context.Context, id uuid.UUID, adminID int64) (*model.Withdrawal, error)
	CompleteWithdrawal(ctx context.Context, id uuid.UUID, adminID int64, note string) (*repository.WithdrawalSettlement, error)
	RejectWithdrawal(ctx context.Context, id uuid.UUID, adminID int64, note string) (*repository.WithdrawalSettlement, error)

	CreditUsers(ctx context.Context, lines []repository.CreditLine, description string) ([]model.Transaction, error)

	BanUser(ctx context.Context, ban *model.BannedUser) error
	UnbanUser(ctx context.Context, userID int64) error
	IsUserBanned(ctx context.Context, userID int64) (bool, error)
	ListBannedUsers(ctx context.Context, limit, offset int) ([]model.BannedUser, error)
}

type MaintenanceStore interface {
	GetMarker(ctx context.Context, name string) (*time.Time, error)
	ConvertCurrency(ctx context.Context, rate decimal.Decimal) (*repository.ConversionReport, error)
	RevertCurrency(ctx context.Context, rate decimal.Decimal) (*repository.ConversionReport, error)
	DeduplicateWallets(ctx context.Context) ([]ledger.Merge, error)
}

var (
	_ UserStore        = (*repository.Repository)(nil)
	_ WalletStore      = (*repository.Repository)(nil)
	_ DepositStore     = (*repository.Repository)(nil)
	_ WithdrawalStore  = (*repository.Repository)(nil)
	_ PromoCodeStore   = (*repository.Repository)(nil)
	_ BonusStore       = (*repository.Repository)(nil)
	_ AdminStore       = (*repository.Repository)(nil)
	_ MaintenanceStore = (*repository.Repository)(nil)
)
