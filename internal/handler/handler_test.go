package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ebetcoin/backend/internal/config"
	"github.com/ebetcoin/backend/internal/middleware"
	"github.com/ebetcoin/backend/internal/model"
	"github.com/ebetcoin/backend/internal/repository"
	"github.com/ebetcoin/backend/internal/service"
	"github.com/ebetcoin/backend/internal/service/mocks"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testAuth = config.AuthConfig{JWTSecret: "test-secret", Issuer: "ebetcoin-test"}

const bannedUser int64 = 13

func newTestApp(t *testing.T) (*fiber.App, *mocks.Store) {
	t.Helper()

	store := new(mocks.Store)
	ledgerCfg := config.DefaultLedger()

	promoSvc := service.NewPromoCodeService(store)
	adminSvc := service.NewAdminService(store, ledgerCfg)
	h := New(
		service.NewUserService(store),
		service.NewWalletService(store),
		service.NewDepositService(store, ledgerCfg),
		service.NewWithdrawalService(store, ledgerCfg),
		service.NewBonusService(store),
		promoSvc,
	)

	store.On("IsUserBanned", mock.Anything, bannedUser).Return(true, nil).Maybe()
	store.On("IsUserBanned", mock.Anything, mock.MatchedBy(func(id int64) bool { return id != bannedUser })).
		Return(false, nil).Maybe()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(middleware.RequestLogger())
	Register(app, h, NewAdminHandler(adminSvc, promoSvc),
		middleware.JWTAuth(testAuth), middleware.AdminAuth(adminSvc), middleware.BanCheck(adminSvc))
	return app, store
}

func token(t *testing.T, userID int64) string {
	t.Helper()
	tok, err := middleware.NewToken(testAuth, userID, "player", time.Hour)
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, app *fiber.App, method, path string, userID int64, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+token(t, userID))
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var out map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := do(t, app, http.MethodGet, "/health", 0, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
}

func TestRequiresToken(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := do(t, app, http.MethodGet, "/api/wallet", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	req := httptest.NewRequest(http.MethodGet, "/api/wallet", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSubmitDeposit_CashWithoutCode(t *testing.T) {
	app, store := newTestApp(t)

	store.On("GetUser", mock.Anything, int64(1)).Return(&model.User{ID: 1}, nil)
	store.On("CreateDeposit", mock.Anything, mock.Anything, (*model.FirstDepositBonus)(nil)).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Deposit).Status = model.DepositStatusPending
		}).Return(false, nil)

	resp, body := do(t, app, http.MethodPost, "/api/deposits", 1, map[string]interface{}{
		"deposit_method": "cash",
		"amount":         50,
		"location":       "Agent X",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "Agent X", data["location"])
	assert.NotContains(t, data, "bonus_info")
}

func TestSubmitDeposit_ValidationErrors(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := do(t, app, http.MethodPost, "/api/deposits", 1, map[string]interface{}{
		"deposit_method": "cash",
		"amount":         0.01,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	errs := body["errors"].(map[string]interface{})
	assert.Contains(t, errs, "amount")
	assert.Contains(t, errs, "location")
}

func TestSubmitWithdrawal_InsufficientBalance(t *testing.T) {
	app, store := newTestApp(t)

	store.On("GetWallet", mock.Anything, int64(1)).
		Return(&model.Wallet{UserID: 1, Balance: decimal.NewFromInt(20), Currency: model.CurrencyEBT}, nil)

	resp, body := do(t, app, http.MethodPost, "/api/withdrawals", 1, map[string]interface{}{
		"withdrawal_method": "mobile_money",
		"amount":            "25.00",
		"mobile_provider":   "MTN",
		"phone_number":      "+2348000000000",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "insufficient balance", body["message"])
	store.AssertNotCalled(t, "CreateWithdrawal", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitWithdrawal_NoWallet(t *testing.T) {
	app, store := newTestApp(t)

	store.On("GetWallet", mock.Anything, int64(1)).Return(nil, repository.ErrWalletNotFound)

	resp, body := do(t, app, http.MethodPost, "/api/withdrawals", 1, map[string]interface{}{
		"withdrawal_method": "crypto",
		"amount":            15,
		"crypto_name":       "USDT",
		"wallet_address":    "TXyz",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "wallet not found", body["message"])
}

func TestGetDeposit_BadID(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := do(t, app, http.MethodGet, "/api/deposits/not-a-uuid", 1, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnexpectedErrorIsHidden(t *testing.T) {
	app, store := newTestApp(t)

	store.On("GetOrCreateWallet", mock.Anything, int64(1)).Return(nil, assert.AnError)

	resp, body := do(t, app, http.MethodGet, "/api/wallet", 1, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "internal server error", body["message"])
}

func TestAdminRoutes(t *testing.T) {
	t.Run("non admin is forbidden", func(t *testing.T) {
		app, store := newTestApp(t)
		store.On("IsAdmin", mock.Anything, int64(1)).Return(false, nil)

		resp, _ := do(t, app, http.MethodGet, "/api/admin/deposits/pending", 1, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("approve deposit", func(t *testing.T) {
		app, store := newTestApp(t)
		id := uuid.New()

		store.On("IsAdmin", mock.Anything, int64(99)).Return(true, nil)
		store.On("ApproveDeposit", mock.Anything, id, int64(99), "looks good", mock.Anything).Return(&repository.DepositSettlement{
			Deposit:     &model.Deposit{ID: id, UserID: 1, Amount: decimal.NewFromInt(100), Status: model.DepositStatusApproved},
			Transaction: &model.Transaction{Amount: decimal.NewFromInt(10000), Currency: model.CurrencyEBT},
		}, nil)
		store.On("LogAdminAction", mock.Anything, int64(99), model.AdminActionApproveDeposit, mock.Anything, mock.Anything).Return(nil)

		resp, body := do(t, app, http.MethodPost, "/api/admin/deposits/"+id.String()+"/approve", 99,
			map[string]string{"note": "looks good"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "approved", data["deposit"].(map[string]interface{})["status"])
	})

	t.Run("approve twice", func(t *testing.T) {
		app, store := newTestApp(t)
		id := uuid.New()

		store.On("IsAdmin", mock.Anything, int64(99)).Return(true, nil)
		store.On("ApproveDeposit", mock.Anything, id, int64(99), "", mock.Anything).Return(nil, repository.ErrDepositNotPending)

		resp, body := do(t, app, http.MethodPost, "/api/admin/deposits/"+id.String()+"/approve", 99, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "deposit is not pending", body["message"])
	})

	t.Run("duplicate promo code", func(t *testing.T) {
		app, store := newTestApp(t)

		store.On("IsAdmin", mock.Anything, int64(99)).Return(true, nil)
		store.On("CreatePromoCode", mock.Anything, mock.Anything).Return(repository.ErrPromoCodeExists)

		resp, _ := do(t, app, http.MethodPost, "/api/admin/promo", 99, map[string]interface{}{
			"code":            "WELCOME10",
			"is_welcome_code": true,
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&service.ValidationError{Fields: map[string]string{"amount": "bad"}}, fiber.StatusUnprocessableEntity},
		{service.ErrDepositNotFound, fiber.StatusNotFound},
		{service.ErrPromoCodeNotFound, fiber.StatusNotFound},
		{service.ErrInsufficientBalance, fiber.StatusBadRequest},
		{service.ErrWelcomeCodeUsed, fiber.StatusBadRequest},
		{service.ErrPromoCodeExists, fiber.StatusConflict},
		{fmt.Errorf("approve: %w", service.ErrCurrencyMismatch), fiber.StatusConflict},
		{service.ErrRequestInProgress, fiber.StatusTooManyRequests},
		{assert.AnError, fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusOf(tt.err), tt.err.Error())
	}
}

func TestAdminUserLogs(t *testing.T) {
	app, store := newTestApp(t)

	store.On("IsAdmin", mock.Anything, int64(99)).Return(true, nil)
	store.On("GetAdminLogsByTarget", mock.Anything, int64(5), 20, 0).Return([]model.AdminLog{
		{AdminID: 99, Action: model.AdminActionCredit},
	}, nil)

	resp, body := do(t, app, http.MethodGet, "/api/admin/users/5/logs", 99, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 1)

	resp, _ = do(t, app, http.MethodGet, "/api/admin/users/abc/logs", 99, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBannedUserCannotMoveMoney(t *testing.T) {
	app, store := newTestApp(t)

	resp, body := do(t, app, http.MethodPost, "/api/deposits", bannedUser, map[string]interface{}{
		"deposit_method": "cash",
		"amount":         50,
		"location":       "Agent X",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "account suspended", body["message"])

	resp, _ = do(t, app, http.MethodPost, "/api/promo/welcome", bannedUser, map[string]string{"code": "WELCOME"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	store.AssertNotCalled(t, "CreateDeposit", mock.Anything, mock.Anything, mock.Anything)

	// reads stay available
	store.On("GetOrCreateWallet", mock.Anything, bannedUser).
		Return(&model.Wallet{UserID: bannedUser, Currency: model.CurrencyEBT}, nil)
	resp, _ = do(t, app, http.MethodGet, "/api/wallet", bannedUser, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminBanUser(t *testing.T) {
	app, store := newTestApp(t)

	store.On("IsAdmin", mock.Anything, int64(99)).Return(true, nil)
	store.On("BanUser", mock.Anything, mock.MatchedBy(func(b *model.BannedUser) bool {
		return b.UserID == 7 && b.BannedBy == 99 && *b.Reason == "chargeback"
	})).Return(nil).Once()
	store.On("BanUser", mock.Anything, mock.Anything).Return(repository.ErrAlreadyBanned).Once()
	store.On("LogAdminAction", mock.Anything, int64(99), model.AdminActionBanUser, mock.Anything, mock.Anything).Return(nil)

	resp, _ := do(t, app, http.MethodPost, "/api/admin/users/7/ban", 99, map[string]string{"reason": "chargeback"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPost, "/api/admin/users/7/ban", 99, map[string]string{"reason": "chargeback"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
