package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AdminRole string

const (
	AdminRoleAdmin      AdminRole = "admin"
	AdminRoleSuperAdmin AdminRole = "superadmin"
)

type Admin struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	Role      AdminRole `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type AdminLog struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	AdminID      int64           `json:"admin_id" db:"admin_id"`
	Action       string          `json:"action" db:"action"`
	TargetUserID *int64          `json:"target_user_id,omitempty" db:"target_user_id"`
	Details      json.RawMessage `json:"details,omitempty" db:"details"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// BannedUser suspends a user's deposits, withdrawals and promo redemptions.
// Balances stay untouched.
type BannedUser struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	Reason    *string    `json:"reason,omitempty" db:"reason"`
	BannedBy  int64      `json:"banned_by" db:"banned_by"`
	BannedAt  time.Time  `json:"banned_at" db:"banned_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	IsActive  bool       `json:"is_active" db:"is_active"`
}

// Admin action constants
const (
	AdminActionApproveDeposit      = "approve_deposit"
	AdminActionRejectDeposit       = "reject_deposit"
	AdminActionProcessWithdrawal   = "process_withdrawal"
	AdminActionCompleteWithdrawal  = "complete_withdrawal"
	AdminActionRejectWithdrawal    = "reject_withdrawal"
	AdminActionCredit              = "credit"
	AdminActionCreatePromoCode     = "create_promo_code"
	AdminActionDeactivatePromoCode = "deactivate_promo_code"
	AdminActionBanUser             = "ban_user"
	AdminActionUnbanUser           = "unban_user"
)

// Credit is one line of an admin batch credit.
type Credit struct {
	UserID int64  `json:"user_id"`
	Amount string `json:"amount"`
}
