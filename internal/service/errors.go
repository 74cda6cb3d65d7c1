package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/ebetcoin/backend/internal/lock"
	"github.com/ebetcoin/backend/internal/repository"
)

var (
	ErrUserNotFound        = repository.ErrUserNotFound
	ErrWalletNotFound      = repository.ErrWalletNotFound
	ErrInsufficientBalance = repository.ErrInsufficientBalance
	ErrDepositNotFound     = repository.ErrDepositNotFound
	ErrDepositNotPending   = repository.ErrDepositNotPending
	ErrWithdrawalNotFound  = repository.ErrWithdrawalNotFound
	ErrWithdrawalNotOpen   = repository.ErrWithdrawalNotOpen
	ErrPromoCodeExists     = repository.ErrPromoCodeExists
	ErrPromoCodeExhausted  = repository.ErrPromoCodeExhausted
	ErrWelcomeCodeUsed     = repository.ErrWelcomeCodeUsed
	ErrCurrencyMismatch    = repository.ErrCurrencyMismatch
	ErrAlreadyBanned       = repository.ErrAlreadyBanned
	ErrNotBanned           = repository.ErrNotBanned
	ErrRequestInProgress   = lock.ErrLocked

	ErrPromoCodeNotFound = errors.New("promo code not found")
	ErrPromoCodeInactive = errors.New("promo code is inactive")
	ErrNotWelcomeCode    = errors.New("promo code is not a welcome code")
	ErrAlreadyConverted  = errors.New("ledger is already converted to EBT")
	ErrNotConverted      = errors.New("ledger has not been converted to EBT")
)

// ValidationError carries one message per invalid request field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records the first message for field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Err returns e when any field failed, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// IsValidation reports whether err is a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
