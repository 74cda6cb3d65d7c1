package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ebetcoin/backend/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// CreditLine is one validated line of a batch credit.
type CreditLine struct {
	UserID int64
	Amount decimal.Decimal
}

const adminLogColumns = `id, admin_id, action, target_user_id, COALESCE(details, '{}') AS details, created_at`

// IsAdmin checks if a user is an admin
func (r *Repository) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM admins WHERE user_id = $1`, userID)
	return count > 0, err
}

// CreateAdmin grants admin rights; granting twice updates the role
func (r *Repository) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admins (user_id, role)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role`,
		admin.UserID, admin.Role)
	if isForeignKeyViolation(err) {
		return ErrUserNotFound
	}
	return err
}

// ListAdmins lists all admins
func (r *Repository) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	err := r.db.SelectContext(ctx, &admins, `SELECT * FROM admins ORDER BY created_at DESC`)
	return admins, err
}

// CreateAdminLog creates an admin action log entry
func (r *Repository) CreateAdminLog(ctx context.Context, log *model.AdminLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_logs (admin_id, action, target_user_id, details)
		VALUES ($1, $2, $3, $4)`,
		log.AdminID, log.Action, log.TargetUserID, log.Details)
	return err
}

// LogAdminAction is a helper to create admin log with JSON details
func (r *Repository) LogAdminAction(ctx context.Context, adminID int64, action string, targetUserID *int64, details interface{}) error {
	var detailsJSON []byte
	if details != nil {
		var err error
		detailsJSON, err = json.Marshal(details)
		if err != nil {
			return err
		}
	}
	return r.CreateAdminLog(ctx, &model.AdminLog{
		AdminID:      adminID,
		Action:       action,
		TargetUserID: targetUserID,
		Details:      detailsJSON,
	})
}

// GetAdminLogs retrieves admin action logs
func (r *Repository) GetAdminLogs(ctx context.Context, limit, offset int) ([]model.AdminLog, error) {
	var logs []model.AdminLog
	err := r.db.SelectContext(ctx, &logs, `
		SELECT `+adminLogColumns+` FROM admin_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	return logs, err
}

// GetAdminLogsByTarget retrieves admin logs for a specific target user
func (r *Repository) GetAdminLogsByTarget(ctx context.Context, targetUserID int64, limit, offset int) ([]model.AdminLog, error) {
	var logs []model.AdminLog
	err := r.db.SelectContext(ctx, &logs, `
		SELECT `+adminLogColumns+` FROM admin_logs
		WHERE target_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, targetUserID, limit, offset)
	return logs, err
}

// CreditUsers applies every line in one transaction. Any failure rolls back
// the whole batch; the returned error names the failing user.
func (r *Repository) CreditUsers(ctx context.Context, lines []CreditLine, description string) ([]model.Transaction, error) {
	txs := make([]model.Transaction, 0, len(lines))

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, line := range lines {
			t, err := r.credit(ctx, tx, line.UserID, line.Amount, Entry{
				Type:        model.TransactionTypeDeposit,
				Provider:    model.ProviderAdmin,
				Description: description,
			})
			if err != nil {
				return fmt.Errorf("credit user %d: %w", line.UserID, err)
			}
			txs = append(txs, *t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txs, nil
}
