package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ebetcoin/backend/internal/ledger"
	"github.com/ebetcoin/backend/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// DepositSettlement is the outcome of an approval.
type DepositSettlement struct {
	Deposit          *model.Deposit
	Transaction      *model.Transaction
	BonusTransaction *model.Transaction
}

// CreateDeposit inserts a pending deposit. When bonus is set the first-deposit
// bonus claim is attempted in the same transaction; claimed reports whether it
// won. A user whose bonus was already claimed keeps the deposit without bonus.
func (r *Repository) CreateDeposit(ctx context.Context, d *model.Deposit, bonus *model.FirstDepositBonus) (claimed bool, err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.Status = model.DepositStatusPending

	err = r.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &d.CreatedAt, `
			INSERT INTO deposits (id, user_id, method, amount, crypto_name, transaction_hash, location, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at`,
			d.ID, d.UserID, d.Method, d.Amount, d.CryptoName, d.TransactionHash, d.Location, d.Status)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to create deposit: %w", err)
		}

		if bonus == nil {
			return nil
		}

		claimed, err = claimFirstDepositBonus(ctx, tx, d, bonus)
		return err
	})
	if err != nil {
		return false, err
	}
	if claimed {
		d.BonusAmount = decimal.NewNullDecimal(bonus.Amount)
	}
	return claimed, nil
}

// claimFirstDepositBonus flips the user flag and inserts the bonus row. Both are
// conditional, so concurrent deposits of one user yield a single claim.
func claimFirstDepositBonus(ctx context.Context, tx *sqlx.Tx, d *model.Deposit, bonus *model.FirstDepositBonus) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE users SET first_deposit_bonus_applied = TRUE, updated_at = NOW()
		WHERE id = $1 AND first_deposit_bonus_applied = FALSE`, d.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to flag first deposit bonus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}

	bonus.UserID = d.UserID
	bonus.DepositID = d.ID
	bonus.Status = model.BonusStatusPending

	res, err = tx.ExecContext(ctx, `
		INSERT INTO first_deposit_bonuses (user_id, promo_code_id, deposit_id, percentage, bonus_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO NOTHING`,
		bonus.UserID, bonus.PromoCodeID, bonus.DepositID, bonus.Percentage, bonus.Amount, bonus.Status)
	if err != nil {
		return false, fmt.Errorf("failed to claim first deposit bonus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `UPDATE deposits SET bonus_amount = $1 WHERE id = $2`, bonus.Amount, d.ID)
	if err != nil {
		return false, fmt.Errorf("failed to attach bonus to deposit: %w", err)
	}
	return true, nil
}

// GetDeposit retrieves a deposit by ID
func (r *Repository) GetDeposit(ctx context.Context, id uuid.UUID) (*model.Deposit, error) {
	var d model.Deposit
	err := r.db.GetContext(ctx, &d, `SELECT * FROM deposits WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDepositNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deposit: %w", err)
	}
	return &d, nil
}

// ListUserDeposits returns the deposits of a user, newest first
func (r *Repository) ListUserDeposits(ctx context.Context, userID int64, limit, offset int) ([]model.Deposit, error) {
	var deposits []model.Deposit
	err := r.db.SelectContext(ctx, &deposits, `
		SELECT * FROM deposits
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	return deposits, err
}

// ListPendingDeposits returns deposits waiting for review, oldest first
func (r *Repository) ListPendingDeposits(ctx context.Context, limit, offset int) ([]model.Deposit, error) {
	var deposits []model.Deposit
	err := r.db.SelectContext(ctx, &deposits, `
		SELECT * FROM deposits
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	return deposits, err
}

func lockDeposit(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*model.Deposit, error) {
	var d model.Deposit
	err := tx.GetContext(ctx, &d, `SELECT * FROM deposits WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDepositNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock deposit: %w", err)
	}
	if !d.IsPending() {
		return nil, ErrDepositNotPending
	}
	return &d, nil
}

// ApproveDeposit credits amount*rate EBT and, when a pending first-deposit
// bonus belongs to this deposit, the bonus as well.
func (r *Repository) ApproveDeposit(ctx context.Context, id uuid.UUID, adminID int64, note string, rate decimal.Decimal) (*DepositSettlement, error) {
	var out DepositSettlement

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		d, err := lockDeposit(ctx, tx, id)
		if err != nil {
			return err
		}

		credited, err := ledger.ToEBT(d.Amount, rate)
		if err != nil {
			return err
		}

		out.Transaction, err = r.credit(ctx, tx, d.UserID, credited, Entry{
			Type:        model.TransactionTypeDeposit,
			Provider:    string(d.Method),
			Description: "Deposit approved",
			ReferenceID: &d.ID,
		})
		if err != nil {
			return err
		}

		var bonus model.FirstDepositBonus
		err = tx.GetContext(ctx, &bonus, `
			SELECT * FROM first_deposit_bonuses
			WHERE deposit_id = $1 AND status = 'pending'
			FOR UPDATE`, d.ID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("failed to load first deposit bonus: %w", err)
		default:
			bonusEBT, err := ledger.ToEBT(bonus.Amount, rate)
			if err != nil {
				return err
			}
			out.BonusTransaction, err = r.credit(ctx, tx, d.UserID, bonusEBT, Entry{
				Type:        model.TransactionTypeDeposit,
				Provider:    model.ProviderFirstDepositBonus,
				Description: "First deposit bonus",
				ReferenceID: &d.ID,
			})
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, `
				UPDATE first_deposit_bonuses SET status = 'credited', credited_at = NOW()
				WHERE user_id = $1`, bonus.UserID)
			if err != nil {
				return fmt.Errorf("failed to mark bonus credited: %w", err)
			}
		}

		var reviewNote *string
		if note != "" {
			reviewNote = &note
		}
		err = tx.GetContext(ctx, d, `
			UPDATE deposits
			SET status = 'approved', credited_amount = $2, reviewed_by = $3, review_note = $4, reviewed_at = NOW()
			WHERE id = $1
			RETURNING *`,
			d.ID, credited, adminID, reviewNote)
		if err != nil {
			return fmt.Errorf("failed to approve deposit: %w", err)
		}
		out.Deposit = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RejectDeposit closes a pending deposit without touching the wallet. A pending
// bonus tied to it is voided; the user flag stays set.
func (r *Repository) RejectDeposit(ctx context.Context, id uuid.UUID, adminID int64, note string) (*model.Deposit, error) {
	var d *model.Deposit

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		d, err = lockDeposit(ctx, tx, id)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE first_deposit_bonuses SET status = 'void'
			WHERE deposit_id = $1 AND status = 'pending'`, d.ID)
		if err != nil {
			return fmt.Errorf("failed to void bonus: %w", err)
		}

		var reviewNote *string
		if note != "" {
			reviewNote = &note
		}
		err = tx.GetContext(ctx, d, `
			UPDATE deposits
			SET status = 'rejected', reviewed_by = $2, review_note = $3, reviewed_at = NOW()
			WHERE id = $1
			RETURNING *`,
			d.ID, adminID, reviewNote)
		if err != nil {
			return fmt.Errorf("failed to reject deposit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}
