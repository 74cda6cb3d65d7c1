package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ebetcoin/backend/internal/config"
	"github.com/ebetcoin/backend/internal/events"
	"github.com/ebetcoin/backend/internal/model"
	"github.com/ebetcoin/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestApproveDeposit_CreditsAtRate(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	rec := &recorder{}
	cfg := config.DefaultLedger()
	svc := NewAdminService(store, cfg)
	svc.SetPublisher(rec)
	id := uuid.New()

	store.On("ApproveDeposit", ctx, id, int64(99), "ok", cfg.EBTPerUSD).Return(&repository.DepositSettlement{
		Deposit:          &model.Deposit{ID: id, UserID: 1, Amount: dec("100"), Status: model.DepositStatusApproved},
		Transaction:      &model.Transaction{Amount: dec("10000"), Currency: model.CurrencyEBT},
		BonusTransaction: &model.Transaction{Amount: dec("1000"), Currency: model.CurrencyEBT},
	}, nil)
	store.On("LogAdminAction", ctx, int64(99), model.AdminActionApproveDeposit, mock.Anything,
		mock.MatchedBy(func(d map[string]interface{}) bool { return d["bonus_amount"] != nil })).Return(nil)

	res, err := svc.ApproveDeposit(ctx, 99, id, "ok")
	require.NoError(t, err)
	assert.Equal(t, model.DepositStatusApproved, res.Deposit.Status)
	assert.Equal(t, []string{events.DepositApproved}, rec.Events)
	store.AssertExpectations(t)
}

func TestApproveDeposit_NotPending(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	rec := &recorder{}
	svc := NewAdminService(store, config.DefaultLedger())
	svc.SetPublisher(rec)
	id := uuid.New()

	store.On("ApproveDeposit", ctx, id, int64(99), "", mock.Anything).Return(nil, ErrDepositNotPending)

	_, err := svc.ApproveDeposit(ctx, 99, id, "")
	assert.ErrorIs(t, err, ErrDepositNotPending)
	assert.Empty(t, rec.Events)
	store.AssertNotCalled(t, "LogAdminAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuditFailureDoesNotFailSettlement(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	svc := NewAdminService(store, config.DefaultLedger())
	id := uuid.New()

	store.On("RejectDeposit", ctx, id, int64(99), "fake receipt").
		Return(&model.Deposit{ID: id, UserID: 1, Status: model.DepositStatusRejected}, nil)
	store.On("LogAdminAction", ctx, int64(99), model.AdminActionRejectDeposit, mock.Anything, mock.Anything).
		Return(errors.New("connection reset"))

	d, err := svc.RejectDeposit(ctx, 99, id, "fake receipt")
	require.NoError(t, err)
	assert.Equal(t, model.DepositStatusRejected, d.Status)
}

func TestWithdrawalSettlement(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	rec := &recorder{}
	svc := NewAdminService(store, config.DefaultLedger())
	svc.SetPublisher(rec)
	id := uuid.New()
	w := &model.Withdrawal{ID: id, UserID: 1, Amount: dec("50"), Currency: model.CurrencyEBT, FundsHeld: true}

	store.On("MarkWithdrawalProcessing", ctx, id, int64(99)).Return(w, nil)
	store.On("CompleteWithdrawal", ctx, id, int64(99), "paid").
		Return(&repository.WithdrawalSettlement{Withdrawal: w}, nil)
	store.On("LogAdminAction", ctx, int64(99), mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.ProcessWithdrawal(ctx, 99, id)
	require.NoError(t, err)
	_, err = svc.CompleteWithdrawal(ctx, 99, id, "paid")
	require.NoError(t, err)

	assert.Equal(t, []string{events.WithdrawalCompleted}, rec.Events)
	store.AssertNumberOfCalls(t, "LogAdminAction", 2)
}

func TestRejectWithdrawal_NotOpen(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	svc := NewAdminService(store, config.DefaultLedger())
	id := uuid.New()

	store.On("RejectWithdrawal", ctx, id, int64(99), "").Return(nil, ErrWithdrawalNotOpen)

	_, err := svc.RejectWithdrawal(ctx, 99, id, "")
	assert.ErrorIs(t, err, ErrWithdrawalNotOpen)
}

func TestParseCredits(t *testing.T) {
	lines, err := ParseCredits([]model.Credit{
		{UserID: 1, Amount: "100"},
		{UserID: 2, Amount: "0.5"},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.True(t, lines[1].Amount.Equal(dec("0.5")))

	_, err = ParseCredits(nil)
	assert.ErrorIs(t, err, ErrEmptyCreditBatch)

	_, err = ParseCredits([]model.Credit{
		{UserID: 1, Amount: "abc"},
		{UserID: 2, Amount: "-5"},
		{UserID: 3, Amount: "1.234"},
		{UserID: 3, Amount: "1"},
		{UserID: 0, Amount: "1"},
	})
	ve, ok := IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"credits[0].amount":  `invalid amount "abc"`,
		"credits[1].amount":  "amount must be positive",
		"credits[2].amount":  "amount must have at most 2 decimal places",
		"credits[3].user_id": "user 3 appears more than once",
		"credits[4].user_id": "user_id must be positive",
	}, ve.Fields)
}

func TestCreditUsers(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	rec := &recorder{}
	svc := NewAdminService(store, config.DefaultLedger())
	svc.SetPublisher(rec)

	store.On("CreditUsers", ctx, mock.MatchedBy(func(lines []repository.CreditLine) bool {
		return len(lines) == 2 && lines[0].UserID == 1 && lines[1].Amount.Equal(dec("25"))
	}), "tournament prize").Return([]model.Transaction{{UserID: 1}, {UserID: 2}}, nil)
	store.On("LogAdminAction", ctx, int64(99), model.AdminActionCredit, mock.Anything, mock.Anything).Return(nil)

	txs, err := svc.CreditUsers(ctx, 99, []model.Credit{
		{UserID: 1, Amount: "100"},
		{UserID: 2, Amount: "25"},
	}, "tournament prize")
	require.NoError(t, err)
	assert.Len(t, txs, 2)
	assert.Equal(t, []string{events.CreditBatch}, rec.Events)
	store.AssertNumberOfCalls(t, "LogAdminAction", 2)
}

func TestCreditUsers_BatchFailure(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	rec := &recorder{}
	svc := NewAdminService(store, config.DefaultLedger())
	svc.SetPublisher(rec)

	store.On("CreditUsers", ctx, mock.Anything, mock.Anything).Return(nil, ErrUserNotFound)

	_, err := svc.CreditUsers(ctx, 99, []model.Credit{{UserID: 404, Amount: "1"}}, "")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, rec.Events)
	store.AssertNotCalled(t, "LogAdminAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGrantAdmin(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	svc := NewAdminService(store, config.DefaultLedger())

	store.On("CreateAdmin", ctx, &model.Admin{UserID: 5, Role: model.AdminRoleAdmin}).Return(nil)
	require.NoError(t, svc.GrantAdmin(ctx, 5, ""))

	err := svc.GrantAdmin(ctx, 5, "owner")
	_, ok := IsValidation(err)
	assert.True(t, ok)
}

func TestAdminLogs_PagedAndNonNil(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	svc := NewAdminService(store, config.DefaultLedger())

	store.On("GetAdminLogsByTarget", ctx, int64(7), 100, 0).Return(nil, nil)
	store.On("ListAdmins", ctx).Return([]model.Admin{{UserID: 1, Role: model.AdminRoleSuperAdmin}}, nil)

	logs, err := svc.GetUserLogs(ctx, 7, 1000, -5)
	require.NoError(t, err)
	assert.NotNil(t, logs)
	assert.Empty(t, logs)

	admins, err := svc.ListAdmins(ctx)
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

func TestBanUser(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	svc := NewAdminService(store, config.DefaultLedger())
	until := time.Now().Add(24 * time.Hour)

	store.On("BanUser", ctx, mock.MatchedBy(func(b *model.BannedUser) bool {
		return b.UserID == 7 && b.BannedBy == 99 && *b.Reason == "chargeback" && b.ExpiresAt.Equal(until)
	})).Return(nil)
	store.On("LogAdminAction", ctx, int64(99), model.AdminActionBanUser, mock.Anything, mock.Anything).Return(nil)

	ban, err := svc.BanUser(ctx, 99, 7, "chargeback", &until)
	require.NoError(t, err)
	assert.Equal(t, int64(7), ban.UserID)
	store.AssertExpectations(t)
}

func TestBanUser_Validation(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	svc := NewAdminService(store, config.DefaultLedger())
	past := time.Now().Add(-time.Minute)

	_, err := svc.BanUser(ctx, 99, 99, "", nil)
	ve, ok := IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "user_id")

	_, err = svc.BanUser(ctx, 99, 7, "", &past)
	ve, ok = IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "expires_at")

	store.AssertNotCalled(t, "BanUser", mock.Anything, mock.Anything)
}

func TestUnbanUser_NotBanned(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	svc := NewAdminService(store, config.DefaultLedger())

	store.On("UnbanUser", ctx, int64(7)).Return(ErrNotBanned)

	err := svc.UnbanUser(ctx, 99, 7)
	assert.ErrorIs(t, err, ErrNotBanned)
	store.AssertNotCalled(t, "LogAdminAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
