package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ebetcoin/backend/internal/model"
)

func (r *Repository) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpsertUser registers a user seen by the auth layer. Bonus columns are never
// overwritten here.
func (r *Repository) UpsertUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, username)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET
			username = COALESCE(EXCLUDED.username, users.username),
			updated_at = NOW()
		RETURNING used_welcome_code, first_deposit_bonus_applied, premium_until, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query, user.ID, user.Username).Scan(
		&user.UsedWelcomeCode,
		&user.FirstDepositBonusApplied,
		&user.PremiumUntil,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}
