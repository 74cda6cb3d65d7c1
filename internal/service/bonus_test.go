package service

import (
	"context"
	"testing"

	"github.com/ebetcoin/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBonusSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("bonus still available", func(t *testing.T) {
		store := new(mockStore)
		svc := NewBonusService(store)

		store.On("GetUser", ctx, int64(1)).Return(&model.User{ID: 1, UsedWelcomeCode: strptr("WELCOME10")}, nil)
		store.On("GetWelcomeBonus", ctx, int64(1)).Return(&model.WelcomeBonus{UserID: 1, Code: "WELCOME10"}, nil)
		store.On("GetFirstDepositBonus", ctx, int64(1)).Return(nil, nil)
		store.On("GetPromoCodeByCode", ctx, "WELCOME10").Return(welcomePromo("15"), nil)

		s, err := svc.GetSummary(ctx, 1)
		require.NoError(t, err)
		assert.True(t, s.FirstDepositBonusAvailable)
		assert.True(t, s.FirstDepositBonusPercentage.Equal(dec("15")))
		assert.NotNil(t, s.WelcomeBonus)
	})

	t.Run("already claimed", func(t *testing.T) {
		store := new(mockStore)
		svc := NewBonusService(store)

		store.On("GetUser", ctx, int64(1)).Return(&model.User{ID: 1, UsedWelcomeCode: strptr("WELCOME10"), FirstDepositBonusApplied: true}, nil)
		store.On("GetWelcomeBonus", ctx, int64(1)).Return(nil, nil)
		store.On("GetFirstDepositBonus", ctx, int64(1)).Return(&model.FirstDepositBonus{UserID: 1, Status: model.BonusStatusCredited}, nil)

		s, err := svc.GetSummary(ctx, 1)
		require.NoError(t, err)
		assert.False(t, s.FirstDepositBonusAvailable)
		assert.Equal(t, model.BonusStatusCredited, s.FirstDepositBonus.Status)
		store.AssertNotCalled(t, "GetPromoCodeByCode", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		store := new(mockStore)
		svc := NewBonusService(store)

		store.On("GetUser", ctx, int64(7)).Return(nil, ErrUserNotFound)

		_, err := svc.GetSummary(ctx, 7)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
