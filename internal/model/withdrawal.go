package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WithdrawalMethod string

const (
	WithdrawalMethodCrypto       WithdrawalMethod = "crypto"
	WithdrawalMethodBankTransfer WithdrawalMethod = "bank_transfer"
	WithdrawalMethodMobileMoney  WithdrawalMethod = "mobile_money"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending    WithdrawalStatus = "pending"
	WithdrawalStatusProcessing WithdrawalStatus = "processing"
	WithdrawalStatusCompleted  WithdrawalStatus = "completed"
	WithdrawalStatusRejected   WithdrawalStatus = "rejected"
)

// Withdrawal amounts are in the wallet currency. FundsHeld records whether the
// amount was moved to locked_balance at submission.
type Withdrawal struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	UserID         int64            `json:"user_id" db:"user_id"`
	Method         WithdrawalMethod `json:"withdrawal_method" db:"method"`
	Amount         decimal.Decimal  `json:"amount" db:"amount"`
	Currency       string           `json:"currency" db:"currency"`
	FundsHeld      bool             `json:"funds_held" db:"funds_held"`
	CryptoName     *string          `json:"crypto_name,omitempty" db:"crypto_name"`
	WalletAddress  *string          `json:"wallet_address,omitempty" db:"wallet_address"`
	BankName       *string          `json:"bank_name,omitempty" db:"bank_name"`
	AccountNumber  *string          `json:"account_number,omitempty" db:"account_number"`
	AccountName    *string          `json:"account_name,omitempty" db:"account_name"`
	MobileProvider *string          `json:"mobile_provider,omitempty" db:"mobile_provider"`
	PhoneNumber    *string          `json:"phone_number,omitempty" db:"phone_number"`
	Status         WithdrawalStatus `json:"status" db:"status"`
	ReviewedBy     *int64           `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewNote     *string          `json:"review_note,omitempty" db:"review_note"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
}

// IsOpen reports whether an admin can still complete or reject the withdrawal
func (w *Withdrawal) IsOpen() bool {
	return w.Status == WithdrawalStatusPending || w.Status == WithdrawalStatusProcessing
}

type WithdrawalRequest struct {
	WithdrawalMethod WithdrawalMethod `json:"withdrawal_method"`
	Amount           decimal.Decimal  `json:"amount"`
	CryptoName       string           `json:"crypto_name,omitempty"`
	WalletAddress    string           `json:"wallet_address,omitempty"`
	BankName         string           `json:"bank_name,omitempty"`
	AccountNumber    string           `json:"account_number,omitempty"`
	AccountName      string           `json:"account_name,omitempty"`
	MobileProvider   string           `json:"mobile_provider,omitempty"`
	PhoneNumber      string           `json:"phone_number,omitempty"`
}
