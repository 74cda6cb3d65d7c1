package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ebetcoin/backend/internal/config"
	"github.com/ebetcoin/backend/internal/events"
	"github.com/ebetcoin/backend/internal/ledger"
	"github.com/ebetcoin/backend/internal/lock"
	"github.com/ebetcoin/backend/internal/model"
	"github.com/ebetcoin/backend/pkg/logger"
	"github.com/google/uuid"
)

type WithdrawalService struct {
	repo      WithdrawalStore
	cfg       config.LedgerConfig
	locker    lock.Locker
	publisher events.Publisher
}

func NewWithdrawalService(repo WithdrawalStore, cfg config.LedgerConfig) *WithdrawalService {
	return &WithdrawalService{
		repo:      repo,
		cfg:       cfg,
		locker:    lock.NopLocker{},
		publisher: events.NopPublisher{},
	}
}

func (s *WithdrawalService) SetLocker(l lock.Locker) {
	s.locker = l
}

func (s *WithdrawalService) SetPublisher(p events.Publisher) {
	s.publisher = p
}

func (s *WithdrawalService) validate(req *model.WithdrawalRequest) error {
	ve := &ValidationError{}
	required := func(field, value string, method model.WithdrawalMethod) {
		if strings.TrimSpace(value) == "" {
			ve.Add(field, fmt.Sprintf("%s is required for %s withdrawals", field, method))
		}
	}

	switch req.WithdrawalMethod {
	case model.WithdrawalMethodCrypto:
		required("crypto_name", req.CryptoName, req.WithdrawalMethod)
		required("wallet_address", req.WalletAddress, req.WithdrawalMethod)
	case model.WithdrawalMethodBankTransfer:
		required("bank_name", req.BankName, req.WithdrawalMethod)
		required("account_number", req.AccountNumber, req.WithdrawalMethod)
		required("account_name", req.AccountName, req.WithdrawalMethod)
	case model.WithdrawalMethodMobileMoney:
		required("mobile_provider", req.MobileProvider, req.WithdrawalMethod)
		required("phone_number", req.PhoneNumber, req.WithdrawalMethod)
	case "":
		ve.Add("withdrawal_method", "withdrawal_method is required")
	default:
		ve.Add("withdrawal_method", "withdrawal_method must be one of: crypto, bank_transfer, mobile_money")
	}

	switch {
	case req.Amount.LessThan(s.cfg.MinWithdrawal) || req.Amount.GreaterThan(s.cfg.MaxWithdrawal):
		ve.Add("amount", fmt.Sprintf("amount must be between %s and %s", s.cfg.MinWithdrawal, s.cfg.MaxWithdrawal))
	case !req.Amount.Equal(ledger.Round(req.Amount)):
		ve.Add("amount", "amount must have at most 2 decimal places")
	}

	return ve.Err()
}

// Submit records a pending withdrawal. The balance must cover the amount; with
// holding enabled the amount is moved to locked_balance in the same write.
func (s *WithdrawalService) Submit(ctx context.Context, userID int64, req model.WithdrawalRequest) (*model.Withdrawal, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx, lock.UserKey(userID))
	if err != nil {
		return nil, err
	}
	defer release()

	wallet, err := s.repo.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	// limits and amounts are EBT
	if wallet.Currency != model.CurrencyEBT {
		return nil, ErrCurrencyMismatch
	}
	if !ledger.CanDebit(wallet.Balance, req.Amount) {
		logger.Info(ctx).
			Int64("user_id", userID).
			Str("balance", wallet.Balance.String()).
			Str("amount", req.Amount.String()).
			Msg("withdrawal rejected: insufficient balance")
		return nil, ErrInsufficientBalance
	}

	w := &model.Withdrawal{
		ID:             uuid.New(),
		UserID:         userID,
		Method:         req.WithdrawalMethod,
		Amount:         req.Amount,
		Currency:       wallet.Currency,
		CryptoName:     optional(req.CryptoName),
		WalletAddress:  optional(req.WalletAddress),
		BankName:       optional(req.BankName),
		AccountNumber:  optional(req.AccountNumber),
		AccountName:    optional(req.AccountName),
		MobileProvider: optional(req.MobileProvider),
		PhoneNumber:    optional(req.PhoneNumber),
	}

	// the conditional hold in the repository is the authoritative balance check
	if _, err := s.repo.CreateWithdrawal(ctx, w, s.cfg.HoldWithdrawals); err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Int64("user_id", userID).
		Str("withdrawal_id", w.ID.String()).
		Str("method", string(w.Method)).
		Str("amount", w.Amount.String()).
		Bool("funds_held", w.FundsHeld).
		Msg("withdrawal submitted")

	events.Emit(ctx, s.publisher, events.Event{
		Type:        events.WithdrawalSubmitted,
		UserID:      userID,
		ReferenceID: w.ID.String(),
		Amount:      w.Amount,
		Currency:    w.Currency,
		Data:        map[string]any{"funds_held": w.FundsHeld},
	})

	return w, nil
}

// List returns the user's withdrawals, newest first
func (s *WithdrawalService) List(ctx context.Context, userID int64, limit, offset int) ([]model.Withdrawal, error) {
	limit, offset = normalizePage(limit, offset)
	ws, err := s.repo.ListUserWithdrawals(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		ws = []model.Withdrawal{}
	}
	return ws, nil
}

// Get returns one of the user's withdrawals
func (s *WithdrawalService) Get(ctx context.Context, userID int64, id uuid.UUID) (*model.Withdrawal, error) {
	w, err := s.repo.GetWithdrawal(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.UserID != userID {
		return nil, ErrWithdrawalNotFound
	}
	return w, nil
}
