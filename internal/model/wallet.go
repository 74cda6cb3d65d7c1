package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CurrencyEBT = "EBT"
	CurrencyUSD = "USD"
)

type Wallet struct {
	ID            int64           `json:"id" db:"id"`
	UserID        int64           `json:"user_id" db:"user_id"`
	Balance       decimal.Decimal `json:"balance" db:"balance"`
	LockedBalance decimal.Decimal `json:"locked_balance" db:"locked_balance"`
	Currency      string          `json:"currency" db:"currency"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

type TransactionType string

const (
	TransactionTypeDeposit                  TransactionType = "deposit"
	TransactionTypeWithdraw                 TransactionType = "withdraw"
	TransactionTypeBet                      TransactionType = "bet"
	TransactionTypeWin                      TransactionType = "win"
	TransactionTypeRefund                   TransactionType = "refund"
	TransactionTypeChampionshipRegistration TransactionType = "championship_registration"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusLocked    TransactionStatus = "locked"
	TransactionStatusConfirmed TransactionStatus = "confirmed"
)

// Providers recorded on ledger transactions
const (
	ProviderAdmin             = "admin"
	ProviderWelcomeBonus      = "welcome_bonus"
	ProviderFirstDepositBonus = "first_deposit_bonus"
)

// Transaction is one balance-affecting event. Amount is positive for credits
// and negative for debits.
type Transaction struct {
	ID           int64             `json:"id" db:"id"`
	UserID       int64             `json:"user_id" db:"user_id"`
	WalletID     int64             `json:"wallet_id" db:"wallet_id"`
	Type         TransactionType   `json:"type" db:"type"`
	Amount       decimal.Decimal   `json:"amount" db:"amount"`
	Currency     string            `json:"currency" db:"currency"`
	Status       TransactionStatus `json:"status" db:"status"`
	Provider     *string           `json:"provider,omitempty" db:"provider"`
	TxID         string            `json:"txid" db:"txid"`
	Description  *string           `json:"description,omitempty" db:"description"`
	ReferenceID  *uuid.UUID        `json:"reference_id,omitempty" db:"reference_id"`
	BalanceAfter decimal.Decimal   `json:"balance_after" db:"balance_after"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" db:"updated_at"`
}

// IsCredit reports whether the transaction adds to the balance
func (t *Transaction) IsCredit() bool {
	return t.Amount.IsPositive()
}
