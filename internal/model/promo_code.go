package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PromoCode struct {
	ID                          uuid.UUID       `json:"id" db:"id"`
	Code                        string          `json:"code" db:"code"`
	WelcomeBonus                decimal.Decimal `json:"welcome_bonus" db:"welcome_bonus"` // EBT credited on apply
	FirstDepositBonusPercentage decimal.Decimal `json:"first_deposit_bonus_percentage" db:"first_deposit_bonus_percentage"`
	PremiumDays                 int             `json:"premium_days" db:"premium_days"`
	IsWelcomeCode               bool            `json:"is_welcome_code" db:"is_welcome_code"`
	UsageLimit                  *int            `json:"usage_limit,omitempty" db:"usage_limit"`
	UsedCount                   int             `json:"used_count" db:"used_count"`
	IsActive                    bool            `json:"is_active" db:"is_active"`
	Description                 *string         `json:"description,omitempty" db:"description"`
	CreatedAt                   time.Time       `json:"created_at" db:"created_at"`
}

// IsValid checks if the promo code can still be used
func (p *PromoCode) IsValid() bool {
	if !p.IsActive {
		return false
	}
	return !p.Exhausted()
}

// Exhausted reports whether the usage limit has been reached
func (p *PromoCode) Exhausted() bool {
	return p.UsageLimit != nil && p.UsedCount >= *p.UsageLimit
}

// HasFirstDepositBonus reports whether a first deposit earns a percentage bonus
func (p *PromoCode) HasFirstDepositBonus() bool {
	return p.FirstDepositBonusPercentage.IsPositive()
}

type CreatePromoCodeRequest struct {
	Code                        string          `json:"code"`
	WelcomeBonus                decimal.Decimal `json:"welcome_bonus"`
	FirstDepositBonusPercentage decimal.Decimal `json:"first_deposit_bonus_percentage"`
	PremiumDays                 int             `json:"premium_days"`
	IsWelcomeCode               bool            `json:"is_welcome_code"`
	UsageLimit                  *int            `json:"usage_limit,omitempty"`
	Description                 *string         `json:"description,omitempty"`
}
