package service

import (
	"context"
	"errors"
	"time"

	"github.com/ebetcoin/backend/internal/ledger"
	"github.com/ebetcoin/backend/internal/model"
	"github.com/ebetcoin/backend/internal/repository"
	"github.com/ebetcoin/backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// LedgerStatus reports the one-time maintenance markers.
type LedgerStatus struct {
	Currency    string          `json:"currency"`
	ConvertedAt *time.Time      `json:"converted_at,omitempty"`
	EBTPerUSD   decimal.Decimal `json:"ebt_per_usd"`
}

// MaintenanceService runs the operator-only ledger jobs behind ledgerctl.
type MaintenanceService struct {
	repo MaintenanceStore
	rate decimal.Decimal
}

func NewMaintenanceService(repo MaintenanceStore, rate decimal.Decimal) *MaintenanceService {
	return &MaintenanceService{repo: repo, rate: rate}
}

func (s *MaintenanceService) Status(ctx context.Context) (*LedgerStatus, error) {
	at, err := s.repo.GetMarker(ctx, repository.MarkerUSDToEBT)
	if err != nil {
		return nil, err
	}
	st := &LedgerStatus{Currency: model.CurrencyUSD, ConvertedAt: at, EBTPerUSD: s.rate}
	if at != nil {
		st.Currency = model.CurrencyEBT
	}
	return st, nil
}

// ConvertToEBT rescales all USD balances to EBT. It runs at most once.
func (s *MaintenanceService) ConvertToEBT(ctx context.Context) (*repository.ConversionReport, error) {
	rep, err := s.repo.ConvertCurrency(ctx, s.rate)
	if errors.Is(err, repository.ErrMarkerExists) {
		return nil, ErrAlreadyConverted
	}
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Str("rate", s.rate.String()).
		Int64("wallets", rep.Wallets).
		Int64("transactions", rep.Transactions).
		Int64("withdrawals", rep.Withdrawals).
		Msg("ledger converted to EBT")
	return rep, nil
}

// RevertEBT undoes ConvertToEBT with the same rate.
func (s *MaintenanceService) RevertEBT(ctx context.Context) (*repository.ConversionReport, error) {
	rep, err := s.repo.RevertCurrency(ctx, s.rate)
	if errors.Is(err, repository.ErrMarkerMissing) {
		return nil, ErrNotConverted
	}
	if err != nil {
		return nil, err
	}

	logger.Warn(ctx).
		Str("rate", s.rate.String()).
		Int64("wallets", rep.Wallets).
		Int64("transactions", rep.Transactions).
		Msg("ledger reverted to USD")
	return rep, nil
}

// DeduplicateWallets merges duplicate wallets so every user owns one.
func (s *MaintenanceService) DeduplicateWallets(ctx context.Context) ([]ledger.Merge, error) {
	merges, err := s.repo.DeduplicateWallets(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range merges {
		logger.Info(ctx).
			Int64("user_id", m.Survivor.UserID).
			Int64("wallet_id", m.Survivor.ID).
			Int("merged", m.OriginalCount).
			Str("balance", m.TotalBalance.String()).
			Msg("wallets merged")
	}
	if merges == nil {
		merges = []ledger.Merge{}
	}
	return merges, nil
}
