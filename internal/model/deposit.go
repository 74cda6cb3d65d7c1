package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DepositMethod string

const (
	DepositMethodCrypto DepositMethod = "crypto"
	DepositMethodCash   DepositMethod = "cash"
)

type DepositStatus string

const (
	DepositStatusPending  DepositStatus = "pending"
	DepositStatusApproved DepositStatus = "approved"
	DepositStatusRejected DepositStatus = "rejected"
)

// Deposit is submitted in USD; CreditedAmount is the EBT credited on approval.
type Deposit struct {
	ID              uuid.UUID           `json:"id" db:"id"`
	UserID          int64               `json:"user_id" db:"user_id"`
	Method          DepositMethod       `json:"deposit_method" db:"method"`
	Amount          decimal.Decimal     `json:"amount" db:"amount"`
	CreditedAmount  decimal.NullDecimal `json:"credited_amount" db:"credited_amount"`
	BonusAmount     decimal.NullDecimal `json:"bonus_amount" db:"bonus_amount"`
	CryptoName      *string             `json:"crypto_name,omitempty" db:"crypto_name"`
	TransactionHash *string             `json:"transaction_hash,omitempty" db:"transaction_hash"`
	Location        *string             `json:"location,omitempty" db:"location"`
	Status          DepositStatus       `json:"status" db:"status"`
	ReviewedBy      *int64              `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewNote      *string             `json:"review_note,omitempty" db:"review_note"`
	CreatedAt       time.Time           `json:"created_at" db:"created_at"`
	ReviewedAt      *time.Time          `json:"reviewed_at,omitempty" db:"reviewed_at"`
}

func (d *Deposit) IsPending() bool {
	return d.Status == DepositStatusPending
}

type DepositRequest struct {
	DepositMethod   DepositMethod   `json:"deposit_method"`
	Amount          decimal.Decimal `json:"amount"`
	CryptoName      string          `json:"crypto_name,omitempty"`
	TransactionHash string          `json:"transaction_hash,omitempty"`
	Location        string          `json:"location,omitempty"`
}

// BonusInfo is reported to the depositor when the first-deposit bonus was claimed.
type BonusInfo struct {
	PromoCode  string          `json:"promo_code"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
	Message    string          `json:"message"`
}
