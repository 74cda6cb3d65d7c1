package repository

import (
	"context"
	"fmt"

	"github.com/ebetcoin/backend/internal/model"
)

// BanUser records an active ban. A user has at most one active ban.
func (r *Repository) BanUser(ctx context.Context, ban *model.BannedUser) error {
	err := r.db.GetContext(ctx, ban, `
		INSERT INTO banned_users (user_id, reason, banned_by, expires_at, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING *`,
		ban.UserID, ban.Reason, ban.BannedBy, ban.ExpiresAt)
	switch {
	case isUniqueViolation(err):
		return ErrAlreadyBanned
	case isForeignKeyViolation(err):
		return ErrUserNotFound
	case err != nil:
		return fmt.Errorf("failed to ban user: %w", err)
	}
	return nil
}

// UnbanUser lifts the active ban of a user
func (r *Repository) UnbanUser(ctx context.Context, userID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE banned_users SET is_active = false
		WHERE user_id = $1 AND is_active = true`, userID)
	if err != nil {
		return fmt.Errorf("failed to unban user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotBanned
	}
	return nil
}

// IsUserBanned reports whether the user has an active, unexpired ban
func (r *Repository) IsUserBanned(ctx context.Context, userID int64) (bool, error) {
	var banned bool
	err := r.db.GetContext(ctx, &banned, `
		SELECT EXISTS (
			SELECT 1 FROM banned_users
			WHERE user_id = $1 AND is_active = true
			  AND (expires_at IS NULL OR expires_at > NOW())
		)`, userID)
	return banned, err
}

// ListBannedUsers lists active, unexpired bans
func (r *Repository) ListBannedUsers(ctx context.Context, limit, offset int) ([]model.BannedUser, error) {
	var bans []model.BannedUser
	err := r.db.SelectContext(ctx, &bans, `
		SELECT * FROM banned_users
		WHERE is_active = true AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY banned_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	return bans, err
}
