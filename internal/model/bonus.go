package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrBonusAlreadyClaimed = errors.New("first deposit bonus already claimed")
	ErrBonusNotEligible    = errors.New("not eligible for a first deposit bonus")
)

type BonusStatus string

const (
	BonusStatusPending  BonusStatus = "pending"  // claimed on submission, waiting for deposit approval
	BonusStatusCredited BonusStatus = "credited" // paid into the wallet
	BonusStatusVoid     BonusStatus = "void"     // deposit was rejected
)

// FirstDepositBonus is the persisted claim. Its primary key is the user id, so
// a user can hold at most one.
type FirstDepositBonus struct {
	UserID      int64           `json:"user_id" db:"user_id"`
	PromoCodeID uuid.UUID       `json:"promo_code_id" db:"promo_code_id"`
	DepositID   uuid.UUID       `json:"deposit_id" db:"deposit_id"`
	Percentage  decimal.Decimal `json:"percentage" db:"percentage"`
	Amount      decimal.Decimal `json:"amount" db:"bonus_amount"` // USD
	Status      BonusStatus     `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	CreditedAt  *time.Time      `json:"credited_at,omitempty" db:"credited_at"`
}

func (b *FirstDepositBonus) IsPending() bool {
	return b.Status == BonusStatusPending
}

// WelcomeBonus records the welcome code a user redeemed.
type WelcomeBonus struct {
	UserID      int64           `json:"user_id" db:"user_id"`
	PromoCodeID uuid.UUID       `json:"promo_code_id" db:"promo_code_id"`
	Code        string          `json:"code" db:"code"`
	Amount      decimal.Decimal `json:"amount" db:"amount"` // EBT
	PremiumDays int             `json:"premium_days" db:"premium_days"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// BonusState is a user's first-deposit bonus eligibility. It has exactly one
// transition, unclaimed to claimed, made by Claim.
type BonusState struct {
	UserID      int64
	WelcomeCode *string
	Claimed     bool
}

func NewBonusState(u *User) BonusState {
	return BonusState{
		UserID:      u.ID,
		WelcomeCode: u.UsedWelcomeCode,
		Claimed:     u.FirstDepositBonusApplied,
	}
}

// Eligible reports whether a deposit made now would earn promo's first-deposit bonus.
func (s BonusState) Eligible(promo *PromoCode) bool {
	if s.Claimed || s.WelcomeCode == nil || promo == nil {
		return false
	}
	if !strings.EqualFold(promo.Code, *s.WelcomeCode) {
		return false
	}
	return promo.HasFirstDepositBonus()
}

// Claim moves the state to claimed and returns the bonus row to persist for depositID.
func (s BonusState) Claim(promo *PromoCode, depositID uuid.UUID, amount decimal.Decimal) (BonusState, *FirstDepositBonus, error) {
	if s.Claimed {
		return s, nil, ErrBonusAlreadyClaimed
	}
	if !s.Eligible(promo) || !amount.IsPositive() {
		return s, nil, ErrBonusNotEligible
	}

	next := s
	next.Claimed = true
	return next, &FirstDepositBonus{
		UserID:      s.UserID,
		PromoCodeID: promo.ID,
		DepositID:   depositID,
		Percentage:  promo.FirstDepositBonusPercentage,
		Amount:      amount,
		Status:      BonusStatusPending,
	}, nil
}
