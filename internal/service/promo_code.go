package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ebetcoin/backend/internal/events"
	"github.com/ebetcoin/backend/internal/ledger"
	"github.com/ebetcoin/backend/internal/model"
	"github.com/ebetcoin/backend/pkg/logger"
	"github.com/shopspring/decimal"
)

var promoCodePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,64}$`)

type PromoCodeService struct {
	repo      PromoCodeStore
	publisher events.Publisher
}

func NewPromoCodeService(repo PromoCodeStore) *PromoCodeService {
	return &PromoCodeService{repo: repo, publisher: events.NopPublisher{}}
}

func (s *PromoCodeService) SetPublisher(p events.Publisher) {
	s.publisher = p
}

// ValidatePromoCode checks that a code exists and can still be redeemed
func (s *PromoCodeService) ValidatePromoCode(ctx context.Context, code string) (*model.PromoCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, &ValidationError{Fields: map[string]string{"code": "code is required"}}
	}

	promo, err := s.repo.GetPromoCodeByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromoCodeNotFound
	}
	if !promo.IsActive {
		return nil, ErrPromoCodeInactive
	}
	if promo.Exhausted() {
		return nil, ErrPromoCodeExhausted
	}
	return promo, nil
}

// WelcomeResult holds the result of applying a welcome code
type WelcomeResult struct {
	Code                        string             `json:"code"`
	WelcomeBonus                decimal.Decimal    `json:"welcome_bonus"`
	FirstDepositBonusPercentage decimal.Decimal    `json:"first_deposit_bonus_percentage"`
	PremiumDays                 int                `json:"premium_days"`
	PremiumUntil                *time.Time         `json:"premium_until,omitempty"`
	Transaction                 *model.Transaction `json:"transaction,omitempty"`
	Message                     string             `json:"message"`
}

// ApplyWelcomeCode redeems a welcome code: the welcome bonus is credited now,
// the first-deposit percentage is remembered for the user's first deposit.
func (s *PromoCodeService) ApplyWelcomeCode(ctx context.Context, userID int64, code string) (*WelcomeResult, error) {
	promo, err := s.ValidatePromoCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !promo.IsWelcomeCode {
		return nil, ErrNotWelcomeCode
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.UsedWelcomeCode != nil {
		return nil, ErrWelcomeCodeUsed
	}

	res, err := s.repo.ApplyWelcomeCode(ctx, userID, promo)
	if err != nil {
		return nil, err
	}

	result := &WelcomeResult{
		Code:                        promo.Code,
		WelcomeBonus:                promo.WelcomeBonus,
		FirstDepositBonusPercentage: promo.FirstDepositBonusPercentage,
		PremiumDays:                 promo.PremiumDays,
		PremiumUntil:                res.PremiumUntil,
		Transaction:                 res.Transaction,
		Message:                     welcomeMessage(promo),
	}

	logger.Info(ctx).
		Int64("user_id", userID).
		Str("code", promo.Code).
		Str("welcome_bonus", promo.WelcomeBonus.String()).
		Int("premium_days", promo.PremiumDays).
		Msg("welcome code applied")

	events.Emit(ctx, s.publisher, events.Event{
		Type:        events.WelcomeApplied,
		UserID:      userID,
		ReferenceID: promo.ID.String(),
		Amount:      promo.WelcomeBonus,
		Currency:    model.CurrencyEBT,
		Data:        map[string]any{"code": promo.Code, "premium_days": promo.PremiumDays},
	})

	return result, nil
}

func welcomeMessage(p *model.PromoCode) string {
	var parts []string
	if p.WelcomeBonus.IsPositive() {
		parts = append(parts, fmt.Sprintf("%s EBT credited to your wallet", p.WelcomeBonus.StringFixed(ledger.Scale)))
	}
	if p.PremiumDays > 0 {
		parts = append(parts, fmt.Sprintf("%d premium days added", p.PremiumDays))
	}
	if p.HasFirstDepositBonus() {
		parts = append(parts, fmt.Sprintf("%s%% bonus on your first deposit", p.FirstDepositBonusPercentage))
	}
	if len(parts) == 0 {
		return "Welcome code applied"
	}
	return "Welcome code applied: " + strings.Join(parts, ", ")
}

func validatePromoCode(req *model.CreatePromoCodeRequest) error {
	ve := &ValidationError{}

	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if !promoCodePattern.MatchString(req.Code) {
		ve.Add("code", "code must be 3-64 characters of A-Z, 0-9, '_' or '-'")
	}
	if req.WelcomeBonus.IsNegative() {
		ve.Add("welcome_bonus", "welcome_bonus must not be negative")
	}
	if req.FirstDepositBonusPercentage.IsNegative() || req.FirstDepositBonusPercentage.GreaterThan(decimal.NewFromInt(100)) {
		ve.Add("first_deposit_bonus_percentage", "first_deposit_bonus_percentage must be between 0 and 100")
	}
	if req.PremiumDays < 0 {
		ve.Add("premium_days", "premium_days must not be negative")
	}
	if req.UsageLimit != nil && *req.UsageLimit < 0 {
		ve.Add("usage_limit", "usage_limit must not be negative")
	}
	return ve.Err()
}

// CreatePromoCode creates a new promo code (admin function)
func (s *PromoCodeService) CreatePromoCode(ctx context.Context, adminID int64, req model.CreatePromoCodeRequest) (*model.PromoCode, error) {
	if err := validatePromoCode(&req); err != nil {
		return nil, err
	}

	promo := &model.PromoCode{
		Code:                        req.Code,
		WelcomeBonus:                req.WelcomeBonus,
		FirstDepositBonusPercentage: req.FirstDepositBonusPercentage,
		PremiumDays:                 req.PremiumDays,
		IsWelcomeCode:               req.IsWelcomeCode,
		UsageLimit:                  req.UsageLimit,
		IsActive:                    true,
		Description:                 req.Description,
	}
	if err := s.repo.CreatePromoCode(ctx, promo); err != nil {
		return nil, err
	}

	if err := s.repo.LogAdminAction(ctx, adminID, model.AdminActionCreatePromoCode, nil, map[string]interface{}{
		"code":                           promo.Code,
		"welcome_bonus":                  promo.WelcomeBonus,
		"first_deposit_bonus_percentage": promo.FirstDepositBonusPercentage,
		"usage_limit":                    promo.UsageLimit,
	}); err != nil {
		logger.Warn(ctx).Err(err).Msg("failed to write admin log")
	}

	return promo, nil
}

// ListPromoCodes lists all promo codes (admin function)
func (s *PromoCodeService) ListPromoCodes(ctx context.Context, limit, offset int) ([]model.PromoCode, error) {
	limit, offset = normalizePage(limit, offset)
	promos, err := s.repo.ListPromoCodes(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if promos == nil {
		promos = []model.PromoCode{}
	}
	return promos, nil
}

// DeactivatePromoCode deactivates a promo code (admin function)
func (s *PromoCodeService) DeactivatePromoCode(ctx context.Context, adminID int64, code string) error {
	promo, err := s.repo.GetPromoCodeByCode(ctx, code)
	if err != nil {
		return err
	}
	if promo == nil {
		return ErrPromoCodeNotFound
	}
	if err := s.repo.DeactivatePromoCode(ctx, promo.ID); err != nil {
		return err
	}

	if err := s.repo.LogAdminAction(ctx, adminID, model.AdminActionDeactivatePromoCode, nil, map[string]interface{}{
		"code": promo.Code,
	}); err != nil {
		logger.Warn(ctx).Err(err).Msg("failed to write admin log")
	}
	return nil
}
