package service

import (
	"context"

	"github.com/ebetcoin/backend/internal/model"
)

type WalletService struct {
	repo WalletStore
}

func NewWalletService(repo WalletStore) *WalletService {
	return &WalletService{repo: repo}
}

// GetWallet returns the user's wallet, creating an empty one on first access
func (s *WalletService) GetWallet(ctx context.Context, userID int64) (*model.Wallet, error) {
	return s.repo.GetOrCreateWallet(ctx, userID)
}

// GetTransactions returns ledger history, newest first
func (s *WalletService) GetTransactions(ctx context.Context, userID int64, limit, offset int) ([]model.Transaction, error) {
	limit, offset = normalizePage(limit, offset)
	txs, err := s.repo.ListTransactions(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	return txs, nil
}
