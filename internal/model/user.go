package model

import (
	"time"
)

// User is owned by the auth layer; the ledger only reads and updates the bonus columns.
type User struct {
	ID                       int64      `json:"id" db:"id"`
	Username                 *string    `json:"username,omitempty" db:"username"`
	UsedWelcomeCode          *string    `json:"used_welcome_code,omitempty" db:"used_welcome_code"`
	FirstDepositBonusApplied bool       `json:"first_deposit_bonus_applied" db:"first_deposit_bonus_applied"`
	PremiumUntil             *time.Time `json:"premium_until,omitempty" db:"premium_until"`
	CreatedAt                time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at" db:"updated_at"`
}

func (u *User) IsPremium(now time.Time) bool {
	return u.PremiumUntil != nil && u.PremiumUntil.After(now)
}
