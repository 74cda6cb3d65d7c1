package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ebetcoin/backend/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Entry describes the transaction row written next to a balance change.
// Currency is the unit of the amount; empty means EBT.
type Entry struct {
	Type        model.TransactionType
	Status      model.TransactionStatus
	Currency    string
	Provider    string
	Description string
	ReferenceID *uuid.UUID
}

func (e Entry) currency() string {
	if e.Currency == "" {
		return model.CurrencyEBT
	}
	return e.Currency
}

// checkCurrency refuses a balance change whose unit differs from the wallet's,
// e.g. an EBT credit to a wallet that has not been converted yet. The update
// has already run, so callers must be inside a transaction that rolls back.
func checkCurrency(st walletState, e Entry) error {
	if st.Currency != e.currency() {
		return fmt.Errorf("%w: wallet %d is %s, amount is %s", ErrCurrencyMismatch, st.ID, st.Currency, e.currency())
	}
	return nil
}

// walletState is what a conditional wallet update returns.
type walletState struct {
	ID            int64           `db:"id"`
	Balance       decimal.Decimal `db:"balance"`
	LockedBalance decimal.Decimal `db:"locked_balance"`
	Currency      string          `db:"currency"`
}

// GetWallet returns the wallet of a user
func (r *Repository) GetWallet(ctx context.Context, userID int64) (*model.Wallet, error) {
	var w model.Wallet
	err := r.db.GetContext(ctx, &w, `SELECT * FROM wallets WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &w, nil
}

// GetOrCreateWallet lazily creates the wallet on first access
func (r *Repository) GetOrCreateWallet(ctx context.Context, userID int64) (*model.Wallet, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallets (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	return r.GetWallet(ctx, userID)
}

// ListTransactions returns ledger history for a user, newest first
func (r *Repository) ListTransactions(ctx context.Context, userID int64, limit, offset int) ([]model.Transaction, error) {
	var txs []model.Transaction
	err := r.db.SelectContext(ctx, &txs, `
		SELECT * FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	return txs, err
}

// ensureWallet creates the wallet inside tx when it does not exist yet.
func ensureWallet(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// credit adds amount to the balance and records the transaction.
func (r *Repository) credit(ctx context.Context, tx *sqlx.Tx, userID int64, amount decimal.Decimal, e Entry) (*model.Transaction, error) {
	if err := ensureWallet(ctx, tx, userID); err != nil {
		return nil, err
	}

	var st walletState
	err := tx.GetContext(ctx, &st, `
		UPDATE wallets SET balance = balance + $1, updated_at = NOW()
		WHERE user_id = $2
		RETURNING id, balance, locked_balance, currency`,
		amount, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}
	if err := checkCurrency(st, e); err != nil {
		return nil, err
	}

	return r.insertTransaction(ctx, tx, userID, st, amount, e)
}

// debit subtracts amount only when the balance covers it.
func (r *Repository) debit(ctx context.Context, tx *sqlx.Tx, userID int64, amount decimal.Decimal, e Entry) (*model.Transaction, error) {
	var st walletState
	err := tx.GetContext(ctx, &st, `
		UPDATE wallets SET balance = balance - $1, updated_at = NOW()
		WHERE user_id = $2 AND balance >= $1
		RETURNING id, balance, locked_balance, currency`,
		amount, userID)
	if errors.Is(err, sql.ErrNoRows) || isCheckViolation(err) {
		return nil, ErrInsufficientBalance
	}
	if err != nil {
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}
	if err := checkCurrency(st, e); err != nil {
		return nil, err
	}

	return r.insertTransaction(ctx, tx, userID, st, amount.Neg(), e)
}

// hold moves amount from balance to locked_balance.
func (r *Repository) hold(ctx context.Context, tx *sqlx.Tx, userID int64, amount decimal.Decimal, e Entry) (*model.Transaction, error) {
	var st walletState
	err := tx.GetContext(ctx, &st, `
		UPDATE wallets
		SET balance = balance - $1, locked_balance = locked_balance + $1, updated_at = NOW()
		WHERE user_id = $2 AND balance >= $1
		RETURNING id, balance, locked_balance, currency`,
		amount, userID)
	if errors.Is(err, sql.ErrNoRows) || isCheckViolation(err) {
		return nil, ErrInsufficientBalance
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hold funds: %w", err)
	}
	if err := checkCurrency(st, e); err != nil {
		return nil, err
	}

	return r.insertTransaction(ctx, tx, userID, st, amount.Neg(), e)
}

// release returns held funds to the balance.
func (r *Repository) release(ctx context.Context, tx *sqlx.Tx, userID int64, amount decimal.Decimal, e Entry) (*model.Transaction, error) {
	var st walletState
	err := tx.GetContext(ctx, &st, `
		UPDATE wallets
		SET balance = balance + $1, locked_balance = locked_balance - $1, updated_at = NOW()
		WHERE user_id = $2 AND locked_balance >= $1
		RETURNING id, balance, locked_balance, currency`,
		amount, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInsufficientBalance
	}
	if err != nil {
		return nil, fmt.Errorf("failed to release funds: %w", err)
	}
	if err := checkCurrency(st, e); err != nil {
		return nil, err
	}

	return r.insertTransaction(ctx, tx, userID, st, amount, e)
}

// settleHold drops held funds that have left the platform. No transaction row
// is written; the hold transaction is confirmed instead.
func settleHold(ctx context.Context, tx *sqlx.Tx, userID int64, amount decimal.Decimal, referenceID uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE wallets SET locked_balance = locked_balance - $1, updated_at = NOW()
		WHERE user_id = $2 AND locked_balance >= $1`,
		amount, userID)
	if err != nil {
		return fmt.Errorf("failed to settle held funds: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInsufficientBalance
	}
	return confirmHold(ctx, tx, referenceID)
}

func confirmHold(ctx context.Context, tx *sqlx.Tx, referenceID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE transactions SET status = 'confirmed', updated_at = NOW()
		WHERE reference_id = $1 AND type = 'withdraw' AND status = 'locked'`,
		referenceID)
	if err != nil {
		return fmt.Errorf("failed to confirm hold transaction: %w", err)
	}
	return nil
}

func (r *Repository) insertTransaction(ctx context.Context, tx *sqlx.Tx, userID int64, st walletState, amount decimal.Decimal, e Entry) (*model.Transaction, error) {
	status := e.Status
	if status == "" {
		status = model.TransactionStatusConfirmed
	}

	var provider, desc *string
	if e.Provider != "" {
		provider = &e.Provider
	}
	if e.Description != "" {
		desc = &e.Description
	}

	var t model.Transaction
	err := tx.GetContext(ctx, &t, `
		INSERT INTO transactions (user_id, wallet_id, type, amount, currency, status, provider, txid, description, reference_id, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING *`,
		userID, st.ID, e.Type, amount, st.Currency, status, provider, r.nextTxID(), desc, e.ReferenceID, st.Balance)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction record: %w", err)
	}
	return &t, nil
}
