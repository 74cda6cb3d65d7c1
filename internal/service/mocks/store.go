// Package mocks holds testify mocks of the service stores.
package mocks

import (
	"context"
	"time"

	"github.com/ebetcoin/backend/internal/events"
	"github.com/ebetcoin/backend/internal/ledger"
	"github.com/ebetcoin/backend/internal/model"
	"github.com/ebetcoin/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// Store implements every store interface of the service package
type Store struct {
	mock.Mock
}

func get[T any](args mock.Arguments, i int) T {
	v, _ := args.Get(i).(T)
	return v
}

func (m *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	return get[*model.User](args, 0), args.Error(1)
}

func (m *Store) UpsertUser(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *Store) GetWallet(ctx context.Context, userID int64) (*model.Wallet, error) {
	args := m.Called(ctx, userID)
	return get[*model.Wallet](args, 0), args.Error(1)
}

func (m *Store) GetOrCreateWallet(ctx context.Context, userID int64) (*model.Wallet, error) {
	args := m.Called(ctx, userID)
	return get[*model.Wallet](args, 0), args.Error(1)
}

func (m *Store) ListTransactions(ctx context.Context, userID int64, limit, offset int) ([]model.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	return get[[]model.Transaction](args, 0), args.Error(1)
}

func (m *Store) GetPromoCodeByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	args := m.Called(ctx, code)
	return get[*model.PromoCode](args, 0), args.Error(1)
}

func (m *Store) CreateDeposit(ctx context.Context, d *model.Deposit, bonus *model.FirstDepositBonus) (bool, error) {
	args := m.Called(ctx, d, bonus)
	return args.Bool(0), args.Error(1)
}

func (m *Store) GetDeposit(ctx context.Context, id uuid.UUID) (*model.Deposit, error) {
	args := m.Called(ctx, id)
	return get[*model.Deposit](args, 0), args.Error(1)
}

func (m *Store) ListUserDeposits(ctx context.Context, userID int64, limit, offset int) ([]model.Deposit, error) {
	args := m.Called(ctx, userID, limit, offset)
	return get[[]model.Deposit](args, 0), args.Error(1)
}

func (m *Store) CreateWithdrawal(ctx context.Context, w *model.Withdrawal, hold bool) (*model.Transaction, error) {
	args := m.Called(ctx, w, hold)
	return get[*model.Transaction](args, 0), args.Error(1)
}

func (m *Store) GetWithdrawal(ctx context.Context, id uuid.UUID) (*model.Withdrawal, error) {
	args := m.Called(ctx, id)
	return get[*model.Withdrawal](args, 0), args.Error(1)
}

func (m *Store) ListUserWithdrawals(ctx context.Context, userID int64, limit, offset int) ([]model.Withdrawal, error) {
	args := m.Called(ctx, userID, limit, offset)
	return get[[]model.Withdrawal](args, 0), args.Error(1)
}

func (m *Store) ApplyWelcomeCode(ctx context.Context, userID int64, promo *model.PromoCode) (*repository.WelcomeResult, error) {
	args := m.Called(ctx, userID, promo)
	return get[*repository.WelcomeResult](args, 0), args.Error(1)
}

func (m *Store) CreatePromoCode(ctx context.Context, promo *model.PromoCode) error {
	return m.Called(ctx, promo).Error(0)
}

func (m *Store) ListPromoCodes(ctx context.Context, limit, offset int) ([]model.PromoCode, error) {
	args := m.Called(ctx, limit, offset)
	return get[[]model.PromoCode](args, 0), args.Error(1)
}

func (m *Store) DeactivatePromoCode(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *Store) LogAdminAction(ctx context.Context, adminID int64, action string, targetUserID *int64, details interface{}) error {
	return m.Called(ctx, adminID, action, targetUserID, details).Error(0)
}

func (m *Store) GetWelcomeBonus(ctx context.Context, userID int64) (*model.WelcomeBonus, error) {
	args := m.Called(ctx, userID)
	return get[*model.WelcomeBonus](args, 0), args.Error(1)
}

func (m *Store) GetFirstDepositBonus(ctx context.Context, userID int64) (*model.FirstDepositBonus, error) {
	args := m.Called(ctx, userID)
	return get[*model.FirstDepositBonus](args, 0), args.Error(1)
}

func (m *Store) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *Store) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	return m.Called(ctx, admin).Error(0)
}

func (m *Store) BanUser(ctx context.Context, ban *model.BannedUser) error {
	return m.Called(ctx, ban).Error(0)
}

func (m *Store) UnbanUser(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *Store) IsUserBanned(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *Store) ListBannedUsers(ctx context.Context, limit, offset int) ([]model.BannedUser, error) {
	args := m.Called(ctx, limit, offset)
	return get[[]model.BannedUser](args, 0), args.Error(1)
}

func (m *Store) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	args := m.Called(ctx)
	return get[[]model.Admin](args, 0), args.Error(1)
}

func (m *Store) GetAdminLogs(ctx context.Context, limit, offset int) ([]model.AdminLog, error) {
	args := m.Called(ctx, limit, offset)
	return get[[]model.AdminLog](args, 0), args.Error(1)
}

func (m *Store) GetAdminLogsByTarget(ctx context.Context, targetUserID int64, limit, offset int) ([]model.AdminLog, error) {
	args := m.Called(ctx, targetUserID, limit, offset)
	return get[[]model.AdminLog](args, 0), args.Error(1)
}

func (m *Store) ListPendingDeposits(ctx context.Context, limit, offset int) ([]model.Deposit, error) {
	args := m.Called(ctx, limit, offset)
	return get[[]model.Deposit](args, 0), args.Error(1)
}

func (m *Store) ApproveDeposit(ctx context.Context, id uuid.UUID, adminID int64, note string, rate decimal.Decimal) (*repository.DepositSettlement, error) {
	args := m.Called(ctx, id, adminID, note, rate)
	return get[*repository.DepositSettlement](args, 0), args.Error(1)
}

func (m *Store) RejectDeposit(ctx context.Context, id uuid.UUID, adminID int64, note string) (*model.Deposit, error) {
	args := m.Called(ctx, id, adminID, note)
	return get[*model.Deposit](args, 0), args.Error(1)
}

func (m *Store) ListOpenWithdrawals(ctx context.Context, limit, offset int) ([]model.Withdrawal, error) {
	args := m.Called(ctx, limit, offset)
	return get[[]model.Withdrawal](args, 0), args.Error(1)
}

func (m *Store) MarkWithdrawalProcessing(ctx context.Context, id uuid.UUID, adminID int64) (*model.Withdrawal, error) {
	args := m.Called(ctx, id, adminID)
	return get[*model.Withdrawal](args, 0), args.Error(1)
}

func (m *Store) CompleteWithdrawal(ctx context.Context, id uuid.UUID, adminID int64, note string) (*repository.WithdrawalSettlement, error) {
	args := m.Called(ctx, id, adminID, note)
	return get[*repository.WithdrawalSettlement](args, 0), args.Error(1)
}

func (m *Store) RejectWithdrawal(ctx context.Context, id uuid.UUID, adminID int64, note string) (*repository.WithdrawalSettlement, error) {
	args := m.Called(ctx, id, adminID, note)
	return get[*repository.WithdrawalSettlement](args, 0), args.Error(1)
}

func (m *Store) CreditUsers(ctx context.Context, lines []repository.CreditLine, description string) ([]model.Transaction, error) {
	args := m.Called(ctx, lines, description)
	return get[[]model.Transaction](args, 0), args.Error(1)
}

func (m *Store) GetMarker(ctx context.Context, name string) (*time.Time, error) {
	args := m.Called(ctx, name)
	return get[*time.Time](args, 0), args.Error(1)
}

func (m *Store) ConvertCurrency(ctx context.Context, rate decimal.Decimal) (*repository.ConversionReport, error) {
	args := m.Called(ctx, rate)
	return get[*repository.ConversionReport](args, 0), args.Error(1)
}

func (m *Store) RevertCurrency(ctx context.Context, rate decimal.Decimal) (*repository.ConversionReport, error) {
	args := m.Called(ctx, rate)
	return get[*repository.ConversionReport](args, 0), args.Error(1)
}

func (m *Store) DeduplicateWallets(ctx context.Context) ([]ledger.Merge, error) {
	args := m.Called(ctx)
	return get[[]ledger.Merge](args, 0), args.Error(1)
}

// Recorder collects the types of published events
type Recorder struct {
	Events []string
}

func (r *Recorder) Publish(_ context.Context, ev events.Event) error {
	r.Events = append(r.Events, ev.Type)
	return nil
}

func (r *Recorder) Close() error { return nil }
