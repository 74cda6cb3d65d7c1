package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ebetcoin/backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func welcomeCode() *model.PromoCode {
	return &model.PromoCode{
		ID:                          uuid.New(),
		Code:                        "WELCOME",
		WelcomeBonus:                decimal.NewFromInt(500),
		FirstDepositBonusPercentage: decimal.NewFromInt(10),
		PremiumDays:                 7,
		IsWelcomeCode:               true,
		IsActive:                    true,
	}
}

func TestGetPromoCodeByCode_Missing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(q("WHERE UPPER(code) = UPPER($1)")).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	promo, err := repo.GetPromoCodeByCode(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, promo)
}

func TestCreatePromoCode_Duplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(q("INSERT INTO promo_codes")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.CreatePromoCode(context.Background(), welcomeCode())
	assert.ErrorIs(t, err, ErrPromoCodeExists)
}

func TestApplyWelcomeCode_CreditsBonus(t *testing.T) {
	repo, mock := newMockRepo(t)
	promo := welcomeCode()
	until := time.Now().Add(7 * 24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(q("UPDATE users")).
		WithArgs(int64(5), "WELCOME", 7).
		WillReturnRows(sqlmock.NewRows([]string{"premium_until"}).AddRow(until))
	mock.ExpectExec(q("UPDATE promo_codes SET used_count = used_count + 1")).
		WithArgs(promo.ID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("INSERT INTO welcome_bonuses")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(q("INSERT INTO wallets")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("UPDATE wallets SET balance = balance + $1")).
		WithArgs(decimalArg("500"), int64(5)).
		WillReturnRows(walletRow(1, "500", "0"))
	mock.ExpectQuery(q("INSERT INTO transactions")).
		WithArgs(int64(5), int64(1), "deposit", decimalArg("500"), "EBT", "confirmed",
			model.ProviderWelcomeBonus, sqlmock.AnyArg(), sqlmock.AnyArg(), promo.ID.String(), decimalArg("500")).
		WillReturnRows(txRow(1, "500"))
	mock.ExpectCommit()

	res, err := repo.ApplyWelcomeCode(context.Background(), 5, promo)
	require.NoError(t, err)
	require.NotNil(t, res.Transaction)
	require.NotNil(t, res.PremiumUntil)
	assert.WithinDuration(t, until, *res.PremiumUntil, time.Second)
	assert.Equal(t, "WELCOME", res.Bonus.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyWelcomeCode_AlreadyUsed(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("UPDATE users")).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.ApplyWelcomeCode(context.Background(), 5, welcomeCode())
	assert.ErrorIs(t, err, ErrWelcomeCodeUsed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyWelcomeCode_ExhaustedRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("UPDATE users")).
		WillReturnRows(sqlmock.NewRows([]string{"premium_until"}).AddRow(nil))
	mock.ExpectExec(q("UPDATE promo_codes SET used_count")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.ApplyWelcomeCode(context.Background(), 5, welcomeCode())
	assert.ErrorIs(t, err, ErrPromoCodeExhausted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyWelcomeCode_NoWelcomeBonusSkipsCredit(t *testing.T) {
	repo, mock := newMockRepo(t)
	promo := welcomeCode()
	promo.WelcomeBonus = decimal.Zero

	mock.ExpectBegin()
	mock.ExpectQuery(q("UPDATE users")).
		WillReturnRows(sqlmock.NewRows([]string{"premium_until"}).AddRow(nil))
	mock.ExpectExec(q("UPDATE promo_codes SET used_count")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("INSERT INTO welcome_bonuses")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	res, err := repo.ApplyWelcomeCode(context.Background(), 5, promo)
	require.NoError(t, err)
	assert.Nil(t, res.Transaction)
	assert.NoError(t, mock.ExpectationsWereMet())
}
