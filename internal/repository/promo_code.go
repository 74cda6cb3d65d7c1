package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ebetcoin/backend/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// WelcomeResult is what applying a welcome code wrote.
type WelcomeResult struct {
	Bonus        model.WelcomeBonus
	Transaction  *model.Transaction // nil when the code carries no welcome bonus
	PremiumUntil *time.Time
}

// GetPromoCodeByCode retrieves a promo code by its code string, case-insensitively
func (r *Repository) GetPromoCodeByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	var promo model.PromoCode
	err := r.db.GetContext(ctx, &promo, `
		SELECT * FROM promo_codes WHERE UPPER(code) = UPPER($1)`, code)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &promo, err
}

// CreatePromoCode creates a new promo code (for admin use)
func (r *Repository) CreatePromoCode(ctx context.Context, promo *model.PromoCode) error {
	if promo.ID == uuid.Nil {
		promo.ID = uuid.New()
	}
	err := r.db.GetContext(ctx, promo, `
		INSERT INTO promo_codes (id, code, welcome_bonus, first_deposit_bonus_percentage, premium_days,
			is_welcome_code, usage_limit, is_active, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING *`,
		promo.ID, promo.Code, promo.WelcomeBonus, promo.FirstDepositBonusPercentage, promo.PremiumDays,
		promo.IsWelcomeCode, promo.UsageLimit, promo.IsActive, promo.Description)
	if isUniqueViolation(err) {
		return ErrPromoCodeExists
	}
	return err
}

// ListPromoCodes lists all promo codes (for admin use)
func (r *Repository) ListPromoCodes(ctx context.Context, limit, offset int) ([]model.PromoCode, error) {
	var promos []model.PromoCode
	err := r.db.SelectContext(ctx, &promos, `
		SELECT * FROM promo_codes
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	return promos, err
}

// DeactivatePromoCode deactivates a promo code
func (r *Repository) DeactivatePromoCode(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE promo_codes SET is_active = false WHERE id = $1`, id)
	return err
}

// ApplyWelcomeCode redeems a welcome code for a user: it records the code on
// the user, extends premium, counts the use and credits the welcome bonus.
// Every step is conditional so a second redemption or an exhausted code
// rolls the whole thing back.
func (r *Repository) ApplyWelcomeCode(ctx context.Context, userID int64, promo *model.PromoCode) (*WelcomeResult, error) {
	out := WelcomeResult{
		Bonus: model.WelcomeBonus{
			UserID:      userID,
			PromoCodeID: promo.ID,
			Code:        promo.Code,
			Amount:      promo.WelcomeBonus,
			PremiumDays: promo.PremiumDays,
		},
	}

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &out.PremiumUntil, `
			UPDATE users
			SET used_welcome_code = $2,
				premium_until = CASE
					WHEN $3::int > 0 THEN GREATEST(COALESCE(premium_until, NOW()), NOW()) + make_interval(days => $3::int)
					ELSE premium_until
				END,
				updated_at = NOW()
			WHERE id = $1 AND used_welcome_code IS NULL
			RETURNING premium_until`,
			userID, promo.Code, promo.PremiumDays)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrWelcomeCodeUsed
		}
		if err != nil {
			return fmt.Errorf("failed to record welcome code: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE promo_codes SET used_count = used_count + 1
			WHERE id = $1 AND is_active AND (usage_limit IS NULL OR used_count < usage_limit)`,
			promo.ID)
		if err != nil {
			return fmt.Errorf("failed to increment used count: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrPromoCodeExhausted
		}

		err = tx.GetContext(ctx, &out.Bonus.CreatedAt, `
			INSERT INTO welcome_bonuses (user_id, promo_code_id, code, amount, premium_days)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at`,
			userID, promo.ID, promo.Code, promo.WelcomeBonus, promo.PremiumDays)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrWelcomeCodeUsed
			}
			return fmt.Errorf("failed to record welcome bonus: %w", err)
		}

		if !promo.WelcomeBonus.IsPositive() {
			return nil
		}

		out.Transaction, err = r.credit(ctx, tx, userID, promo.WelcomeBonus, Entry{
			Type:        model.TransactionTypeDeposit,
			Provider:    model.ProviderWelcomeBonus,
			Description: "Welcome bonus " + promo.Code,
			ReferenceID: &promo.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetWelcomeBonus returns the welcome bonus a user redeemed, or nil
func (r *Repository) GetWelcomeBonus(ctx context.Context, userID int64) (*model.WelcomeBonus, error) {
	var b model.WelcomeBonus
	err := r.db.GetContext(ctx, &b, `SELECT * FROM welcome_bonuses WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &b, err
}

// GetFirstDepositBonus returns the first-deposit bonus claim of a user, or nil
func (r *Repository) GetFirstDepositBonus(ctx context.Context, userID int64) (*model.FirstDepositBonus, error) {
	var b model.FirstDepositBonus
	err := r.db.GetContext(ctx, &b, `SELECT * FROM first_deposit_bonuses WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &b, err
}
