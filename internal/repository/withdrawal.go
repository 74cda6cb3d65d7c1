package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ebetcoin/backend/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// WithdrawalSettlement is the outcome of completing or rejecting a withdrawal.
type WithdrawalSettlement struct {
	Withdrawal  *model.Withdrawal
	Transaction *model.Transaction // nil when a held withdrawal completes
}

// CreateWithdrawal inserts a pending withdrawal. With hold set, the amount moves
// from balance to locked_balance in the same transaction and a locked withdraw
// transaction is recorded; ErrInsufficientBalance means nothing was written.
func (r *Repository) CreateWithdrawal(ctx context.Context, w *model.Withdrawal, hold bool) (*model.Transaction, error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	w.Status = model.WithdrawalStatusPending
	w.FundsHeld = hold
	if w.Currency == "" {
		w.Currency = model.CurrencyEBT
	}

	var holdTx *model.Transaction
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, w, `
			INSERT INTO withdrawals (id, user_id, method, amount, currency, funds_held, crypto_name, wallet_address,
				bank_name, account_number, account_name, mobile_provider, phone_number, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING *`,
			w.ID, w.UserID, w.Method, w.Amount, w.Currency, w.FundsHeld, w.CryptoName, w.WalletAddress,
			w.BankName, w.AccountNumber, w.AccountName, w.MobileProvider, w.PhoneNumber, w.Status)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to create withdrawal: %w", err)
		}

		if !hold {
			return nil
		}

		holdTx, err = r.hold(ctx, tx, w.UserID, w.Amount, Entry{
			Type:        model.TransactionTypeWithdraw,
			Status:      model.TransactionStatusLocked,
			Currency:    w.Currency,
			Provider:    string(w.Method),
			Description: "Withdrawal requested",
			ReferenceID: &w.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return holdTx, nil
}

// GetWithdrawal retrieves a withdrawal by ID
func (r *Repository) GetWithdrawal(ctx context.Context, id uuid.UUID) (*model.Withdrawal, error) {
	var w model.Withdrawal
	err := r.db.GetContext(ctx, &w, `SELECT * FROM withdrawals WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWithdrawalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal: %w", err)
	}
	return &w, nil
}

// ListUserWithdrawals returns the withdrawals of a user, newest first
func (r *Repository) ListUserWithdrawals(ctx context.Context, userID int64, limit, offset int) ([]model.Withdrawal, error) {
	var ws []model.Withdrawal
	err := r.db.SelectContext(ctx, &ws, `
		SELECT * FROM withdrawals
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	return ws, err
}

// ListOpenWithdrawals returns pending and processing withdrawals, oldest first
func (r *Repository) ListOpenWithdrawals(ctx context.Context, limit, offset int) ([]model.Withdrawal, error) {
	var ws []model.Withdrawal
	err := r.db.SelectContext(ctx, &ws, `
		SELECT * FROM withdrawals
		WHERE status IN ('pending', 'processing')
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	return ws, err
}

// MarkWithdrawalProcessing moves a pending withdrawal to processing
func (r *Repository) MarkWithdrawalProcessing(ctx context.Context, id uuid.UUID, adminID int64) (*model.Withdrawal, error) {
	var w model.Withdrawal
	err := r.db.GetContext(ctx, &w, `
		UPDATE withdrawals SET status = 'processing', reviewed_by = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING *`, id, adminID)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetWithdrawal(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrWithdrawalNotOpen
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark withdrawal processing: %w", err)
	}
	return &w, nil
}

func lockWithdrawal(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*model.Withdrawal, error) {
	var w model.Withdrawal
	err := tx.GetContext(ctx, &w, `SELECT * FROM withdrawals WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWithdrawalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock withdrawal: %w", err)
	}
	if !w.IsOpen() {
		return nil, ErrWithdrawalNotOpen
	}
	return &w, nil
}

// CompleteWithdrawal settles a withdrawal. Held funds leave locked_balance;
// otherwise the balance is debited conditionally.
func (r *Repository) CompleteWithdrawal(ctx context.Context, id uuid.UUID, adminID int64, note string) (*WithdrawalSettlement, error) {
	var out WithdrawalSettlement

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		w, err := lockWithdrawal(ctx, tx, id)
		if err != nil {
			return err
		}

		if w.FundsHeld {
			if err := settleHold(ctx, tx, w.UserID, w.Amount, w.ID); err != nil {
				return err
			}
		} else {
			out.Transaction, err = r.debit(ctx, tx, w.UserID, w.Amount, Entry{
				Type:        model.TransactionTypeWithdraw,
				Currency:    w.Currency,
				Provider:    string(w.Method),
				Description: "Withdrawal completed",
				ReferenceID: &w.ID,
			})
			if err != nil {
				return err
			}
		}

		if err := finishWithdrawal(ctx, tx, w, model.WithdrawalStatusCompleted, adminID, note); err != nil {
			return err
		}
		out.Withdrawal = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RejectWithdrawal closes a withdrawal and refunds held funds.
func (r *Repository) RejectWithdrawal(ctx context.Context, id uuid.UUID, adminID int64, note string) (*WithdrawalSettlement, error) {
	var out WithdrawalSettlement

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		w, err := lockWithdrawal(ctx, tx, id)
		if err != nil {
			return err
		}

		if w.FundsHeld {
			out.Transaction, err = r.release(ctx, tx, w.UserID, w.Amount, Entry{
				Type:        model.TransactionTypeRefund,
				Currency:    w.Currency,
				Provider:    string(w.Method),
				Description: "Withdrawal rejected",
				ReferenceID: &w.ID,
			})
			if err != nil {
				return err
			}
			if err := confirmHold(ctx, tx, w.ID); err != nil {
				return err
			}
		}

		if err := finishWithdrawal(ctx, tx, w, model.WithdrawalStatusRejected, adminID, note); err != nil {
			return err
		}
		out.Withdrawal = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func finishWithdrawal(ctx context.Context, tx *sqlx.Tx, w *model.Withdrawal, status model.WithdrawalStatus, adminID int64, note string) error {
	var reviewNote *string
	if note != "" {
		reviewNote = &note
	}

	err := tx.GetContext(ctx, w, `
		UPDATE withdrawals
		SET status = $2, reviewed_by = $3, review_note = $4, updated_at = NOW(),
			completed_at = CASE WHEN $2 = 'completed' THEN NOW() ELSE completed_at END
		WHERE id = $1
		RETURNING *`,
		w.ID, status, adminID, reviewNote)
	if err != nil {
		return fmt.Errorf("failed to update withdrawal: %w", err)
	}
	return nil
}
