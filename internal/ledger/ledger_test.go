package ledger

import (
	"testing"

	"github.com/ebetcoin/backend/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestToEBT(t *testing.T) {
	got, err := ToEBT(dec("12.34"), dec("100"))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("1234")), "got %s", got)

	_, err = ToEBT(dec("1"), decimal.Zero)
	assert.ErrorIs(t, err, ErrNonPositiveRate)
}

func TestFromEBT(t *testing.T) {
	got, err := FromEBT(dec("1234"), dec("100"))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("12.34")))

	_, err = FromEBT(dec("1"), dec("-1"))
	assert.ErrorIs(t, err, ErrNonPositiveRate)
}

func TestFirstDepositBonus(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		pct    string
		want   string
	}{
		{"ten percent of hundred", "100", "10", "10"},
		{"rounds to cents", "33.33", "15", "5"},
		{"full match", "50", "100", "50"},
		{"zero percent", "100", "0", "0"},
		{"over hundred percent", "100", "150", "0"},
		{"negative amount", "-5", "10", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FirstDepositBonus(dec(tt.amount), dec(tt.pct))
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestCanDebit(t *testing.T) {
	assert.True(t, CanDebit(dec("100"), dec("100")))
	assert.True(t, CanDebit(dec("100"), dec("10")))
	assert.False(t, CanDebit(dec("99.99"), dec("100")))
	assert.False(t, CanDebit(dec("100"), decimal.Zero))
}

func TestMergeWallets_SumsIntoLowestID(t *testing.T) {
	wallets := []model.Wallet{
		{ID: 7, UserID: 1, Balance: dec("10.50"), LockedBalance: dec("1")},
		{ID: 3, UserID: 1, Balance: dec("20"), LockedBalance: dec("0")},
		{ID: 9, UserID: 1, Balance: dec("0.25"), LockedBalance: dec("2.5")},
	}

	m, err := MergeWallets(wallets)
	require.NoError(t, err)

	assert.Equal(t, int64(3), m.Survivor.ID)
	assert.True(t, m.Survivor.Balance.Equal(dec("30.75")))
	assert.True(t, m.Survivor.LockedBalance.Equal(dec("3.5")))
	assert.ElementsMatch(t, []int64{7, 9}, m.Removed)
	assert.Equal(t, 3, m.OriginalCount)

	// input is left untouched
	assert.Equal(t, int64(7), wallets[0].ID)
	assert.True(t, wallets[0].Balance.Equal(dec("10.50")))
}

func TestMergeWallets_Errors(t *testing.T) {
	_, err := MergeWallets(nil)
	assert.ErrorIs(t, err, ErrNoWallets)

	_, err = MergeWallets([]model.Wallet{{ID: 1, UserID: 1}, {ID: 2, UserID: 2}})
	assert.ErrorIs(t, err, ErrMixedOwners)
}

func TestMergeWallets_Single(t *testing.T) {
	m, err := MergeWallets([]model.Wallet{{ID: 4, UserID: 1, Balance: dec("5")}})
	require.NoError(t, err)
	assert.Empty(t, m.Removed)
	assert.True(t, m.TotalBalance.Equal(dec("5")))
}

func TestGroupByUser(t *testing.T) {
	groups := GroupByUser([]model.Wallet{
		{ID: 1, UserID: 10},
		{ID: 2, UserID: 10},
		{ID: 3, UserID: 11},
	})

	require.Len(t, groups, 1)
	assert.Len(t, groups[10], 2)
}
