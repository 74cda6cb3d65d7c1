package service

import (
	"context"

	"github.com/ebetcoin/backend/internal/model"
	"github.com/shopspring/decimal"
)

// BonusSummary lists a user's bonuses and whether the first-deposit bonus is
// still available.
type BonusSummary struct {
	WelcomeCode                 *string                  `json:"welcome_code,omitempty"`
	WelcomeBonus                *model.WelcomeBonus      `json:"welcome_bonus,omitempty"`
	FirstDepositBonus           *model.FirstDepositBonus `json:"first_deposit_bonus,omitempty"`
	FirstDepositBonusAvailable  bool                     `json:"first_deposit_bonus_available"`
	FirstDepositBonusPercentage decimal.Decimal          `json:"first_deposit_bonus_percentage"`
}

type BonusService struct {
	repo BonusStore
}

func NewBonusService(repo BonusStore) *BonusService {
	return &BonusService{repo: repo}
}

func (s *BonusService) GetSummary(ctx context.Context, userID int64) (*BonusSummary, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	welcome, err := s.repo.GetWelcomeBonus(ctx, userID)
	if err != nil {
		return nil, err
	}
	first, err := s.repo.GetFirstDepositBonus(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &BonusSummary{
		WelcomeCode:       user.UsedWelcomeCode,
		WelcomeBonus:      welcome,
		FirstDepositBonus: first,
	}

	state := model.NewBonusState(user)
	if state.Claimed || state.WelcomeCode == nil {
		return summary, nil
	}

	promo, err := s.repo.GetPromoCodeByCode(ctx, *state.WelcomeCode)
	if err != nil {
		return nil, err
	}
	if state.Eligible(promo) {
		summary.FirstDepositBonusAvailable = true
		summary.FirstDepositBonusPercentage = promo.FirstDepositBonusPercentage
	}
	return summary, nil
}
