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

// DepositResult is what a depositor sees after submission. BonusInfo is set
// only when this deposit won the first-deposit bonus claim.
type DepositResult struct {
	*model.Deposit
	BonusInfo *model.BonusInfo `json:"bonus_info,omitempty"`
}

type DepositService struct {
	repo      DepositStore
	cfg       config.LedgerConfig
	locker    lock.Locker
	publisher events.Publisher
}

func NewDepositService(repo DepositStore, cfg config.LedgerConfig) *DepositService {
	return &DepositService{
		repo:      repo,
		cfg:       cfg,
		locker:    lock.NopLocker{},
		publisher: events.NopPublisher{},
	}
}

func (s *DepositService) SetLocker(l lock.Locker) {
	s.locker = l
}

func (s *DepositService) SetPublisher(p events.Publisher) {
	s.publisher = p
}

func (s *DepositService) validate(req *model.DepositRequest) error {
	ve := &ValidationError{}

	switch req.DepositMethod {
	case model.DepositMethodCrypto:
		if strings.TrimSpace(req.CryptoName) == "" {
			ve.Add("crypto_name", "crypto_name is required for crypto deposits")
		}
		if strings.TrimSpace(req.TransactionHash) == "" {
			ve.Add("transaction_hash", "transaction_hash is required for crypto deposits")
		}
	case model.DepositMethodCash:
		if strings.TrimSpace(req.Location) == "" {
			ve.Add("location", "location is required for cash deposits")
		}
	case "":
		ve.Add("deposit_method", "deposit_method is required")
	default:
		ve.Add("deposit_method", "deposit_method must be one of: crypto, cash")
	}

	switch {
	case !req.Amount.GreaterThan(s.cfg.MinDeposit):
		ve.Add("amount", fmt.Sprintf("amount must be greater than %s", s.cfg.MinDeposit))
	case !req.Amount.Equal(ledger.Round(req.Amount)):
		ve.Add("amount", "amount must have at most 2 decimal places")
	}

	return ve.Err()
}

// Submit records a pending deposit. No wallet changes happen here; the amount
// and any first-deposit bonus are credited when an admin approves it.
func (s *DepositService) Submit(ctx context.Context, userID int64, req model.DepositRequest) (*DepositResult, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx, lock.UserKey(userID))
	if err != nil {
		return nil, err
	}
	defer release()

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := &model.Deposit{
		ID:              uuid.New(),
		UserID:          userID,
		Method:          req.DepositMethod,
		Amount:          req.Amount,
		CryptoName:      optional(req.CryptoName),
		TransactionHash: optional(req.TransactionHash),
		Location:        optional(req.Location),
	}

	promo, claim, err := s.prepareBonus(ctx, user, d)
	if err != nil {
		return nil, err
	}

	claimed, err := s.repo.CreateDeposit(ctx, d, claim)
	if err != nil {
		return nil, fmt.Errorf("failed to create deposit: %w", err)
	}

	result := &DepositResult{Deposit: d}
	if claimed {
		result.BonusInfo = &model.BonusInfo{
			PromoCode:  promo.Code,
			Percentage: promo.FirstDepositBonusPercentage,
			Amount:     claim.Amount,
			Message: fmt.Sprintf("A %s%% first deposit bonus of $%s will be credited when this deposit is approved",
				promo.FirstDepositBonusPercentage, claim.Amount.StringFixed(ledger.Scale)),
		}
	}

	log := logger.Info(ctx).
		Int64("user_id", userID).
		Str("deposit_id", d.ID.String()).
		Str("method", string(d.Method)).
		Str("amount", d.Amount.String())
	if claimed {
		log = log.Str("bonus", claim.Amount.String())
	}
	log.Msg("deposit submitted")

	ev := events.Event{
		Type:        events.DepositSubmitted,
		UserID:      userID,
		ReferenceID: d.ID.String(),
		Amount:      d.Amount,
		Currency:    model.CurrencyUSD,
	}
	if claimed {
		ev.Data = map[string]any{"bonus_amount": claim.Amount}
	}
	events.Emit(ctx, s.publisher, ev)

	return result, nil
}

// prepareBonus builds the first-deposit bonus claim when the user is eligible.
// Whether the claim wins is decided by the database.
func (s *DepositService) prepareBonus(ctx context.Context, user *model.User, d *model.Deposit) (*model.PromoCode, *model.FirstDepositBonus, error) {
	state := model.NewBonusState(user)
	if state.Claimed || state.WelcomeCode == nil {
		return nil, nil, nil
	}

	promo, err := s.repo.GetPromoCodeByCode(ctx, *state.WelcomeCode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load welcome code: %w", err)
	}
	if !state.Eligible(promo) {
		return nil, nil, nil
	}

	amount := ledger.FirstDepositBonus(d.Amount, promo.FirstDepositBonusPercentage)
	_, claim, err := state.Claim(promo, d.ID, amount)
	if err != nil {
		// bonus rounded down to nothing
		return nil, nil, nil
	}
	return promo, claim, nil
}

// List returns the user's deposits, newest first
func (s *DepositService) List(ctx context.Context, userID int64, limit, offset int) ([]model.Deposit, error) {
	limit, offset = normalizePage(limit, offset)
	deposits, err := s.repo.ListUserDeposits(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if deposits == nil {
		deposits = []model.Deposit{}
	}
	return deposits, nil
}

// Get returns one of the user's deposits. Deposits of other users are reported as missing.
func (s *DepositService) Get(ctx context.Context, userID int64, id uuid.UUID) (*model.Deposit, error) {
	d, err := s.repo.GetDeposit(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.UserID != userID {
		return nil, ErrDepositNotFound
	}
	return d, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
