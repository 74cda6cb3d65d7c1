// Package ledger holds the arithmetic of the EBT ledger. Nothing here touches
// the database; the repository and services call into it.
package ledger

import (
	"errors"
	"sort"

	"github.com/ebetcoin/backend/internal/model"
	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places stored for every amount (NUMERIC(20,2)).
const Scale = 2

var (
	ErrNonPositiveRate = errors.New("conversion rate must be positive")
	ErrNoWallets       = errors.New("no wallets to merge")
	ErrMixedOwners     = errors.New("wallets belong to different users")
)

var hundred = decimal.NewFromInt(100)

// Round rounds an amount to the stored scale.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// ToEBT converts a USD amount to EBT at rate EBT per USD.
func ToEBT(usd, rate decimal.Decimal) (decimal.Decimal, error) {
	if !rate.IsPositive() {
		return decimal.Zero, ErrNonPositiveRate
	}
	return Round(usd.Mul(rate)), nil
}

// FromEBT is the inverse of ToEBT.
func FromEBT(ebt, rate decimal.Decimal) (decimal.Decimal, error) {
	if !rate.IsPositive() {
		return decimal.Zero, ErrNonPositiveRate
	}
	return Round(ebt.Div(rate)), nil
}

// FirstDepositBonus returns amount * pct / 100 rounded to cents. Percentages
// outside [0,100] yield zero.
func FirstDepositBonus(amount, pct decimal.Decimal) decimal.Decimal {
	if !pct.IsPositive() || pct.GreaterThan(hundred) || !amount.IsPositive() {
		return decimal.Zero
	}
	return Round(amount.Mul(pct).Div(hundred))
}

// CanDebit reports whether balance covers amount.
func CanDebit(balance, amount decimal.Decimal) bool {
	return amount.IsPositive() && balance.GreaterThanOrEqual(amount)
}

// Merge is the outcome of collapsing one user's wallets.
type Merge struct {
	Survivor      model.Wallet
	Removed       []int64
	TotalBalance  decimal.Decimal
	TotalLocked   decimal.Decimal
	OriginalCount int
}

// MergeWallets folds the wallets of a single user into the one with the lowest
// id. The survivor's balance and locked balance are the sums over all inputs.
func MergeWallets(wallets []model.Wallet) (Merge, error) {
	if len(wallets) == 0 {
		return Merge{}, ErrNoWallets
	}

	sorted := make([]model.Wallet, len(wallets))
	copy(sorted, wallets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	owner := sorted[0].UserID
	balance := decimal.Zero
	locked := decimal.Zero
	removed := make([]int64, 0, len(sorted)-1)
	for i, w := range sorted {
		if w.UserID != owner {
			return Merge{}, ErrMixedOwners
		}
		balance = balance.Add(w.Balance)
		locked = locked.Add(w.LockedBalance)
		if i > 0 {
			removed = append(removed, w.ID)
		}
	}

	survivor := sorted[0]
	survivor.Balance = balance
	survivor.LockedBalance = locked

	return Merge{
		Survivor:      survivor,
		Removed:       removed,
		TotalBalance:  balance,
		TotalLocked:   locked,
		OriginalCount: len(sorted),
	}, nil
}

// GroupByUser splits wallets by owner, keeping only users with more than one wallet.
func GroupByUser(wallets []model.Wallet) map[int64][]model.Wallet {
	all := make(map[int64][]model.Wallet)
	for _, w := range wallets {
		all[w.UserID] = append(all[w.UserID], w)
	}
	for userID, ws := range all {
		if len(ws) < 2 {
			delete(all, userID)
		}
	}
	return all
}
