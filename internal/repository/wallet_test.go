package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ebetcoin/backend/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWallet_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(q("SELECT * FROM wallets WHERE user_id = $1")).
		WithArgs(int64(5)).
		WillReturnError(sql.ErrNoRows)

	w, err := repo.GetWallet(context.Background(), 5)
	assert.Nil(t, w)
	assert.ErrorIs(t, err, ErrWalletNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateWallet(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(q("INSERT INTO wallets (user_id) VALUES ($1)")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("SELECT * FROM wallets WHERE user_id = $1")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance", "locked_balance", "currency", "created_at", "updated_at"}).
			AddRow(1, 5, "0.00", "0.00", "EBT", time.Now(), time.Now()))

	w, err := repo.GetOrCreateWallet(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), w.UserID)
	assert.True(t, w.Balance.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateWallet_UnknownUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(q("INSERT INTO wallets")).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := repo.GetOrCreateWallet(context.Background(), 5)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDebit_InsufficientBalance(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(q("UPDATE wallets SET balance = balance - $1")).
		WithArgs(decimalArg("150"), int64(5)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := repo.debit(ctx, tx, 5, decimal.NewFromInt(150), Entry{Type: model.TransactionTypeWithdraw})
		return err
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredit_RecordsSignedTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO wallets (user_id) VALUES ($1)")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q("UPDATE wallets SET balance = balance + $1")).
		WithArgs(decimalArg("25"), int64(5)).
		WillReturnRows(walletRow(3, "125", "0"))
	mock.ExpectQuery(q("INSERT INTO transactions")).
		WithArgs(int64(5), int64(3), model.TransactionTypeDeposit, decimalArg("25"), "EBT",
			model.TransactionStatusConfirmed, "admin", sqlmock.AnyArg(), nil, nil, decimalArg("125")).
		WillReturnRows(txRow(10, "25"))
	mock.ExpectCommit()

	var got *model.Transaction
	err := repo.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		got, err = repo.credit(ctx, tx, 5, decimal.NewFromInt(25), Entry{
			Type:     model.TransactionTypeDeposit,
			Provider: model.ProviderAdmin,
		})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTransactions(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(q("SELECT * FROM transactions")).
		WithArgs(int64(5), 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "type", "amount", "status"}).
			AddRow(2, 5, "withdraw", "-10.00", "locked").
			AddRow(1, 5, "deposit", "100.00", "confirmed"))

	txs, err := repo.ListTransactions(context.Background(), 5, 20, 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.False(t, txs[0].IsCredit())
	assert.True(t, txs[1].IsCredit())
}
