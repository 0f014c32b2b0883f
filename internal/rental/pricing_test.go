package rental_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pujcovna/internal/domain"
	"pujcovna/internal/rental"
)

func tiers(pairs ...[2]int64) []domain.PricingTier {
	out := make([]domain.PricingTier, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, domain.PricingTier{MinimumDays: int(p[0]), PricePerDay: p[1]})
	}
	return out
}

func TestPriceForDuration_TierTable(t *testing.T) {
	table := tiers([2]int64{1, 1000}, [2]int64{3, 800}, [2]int64{7, 500})
	cases := []struct {
		days int
		want int64
	}{
		{1, 1000},
		{2, 2000},
		{3, 2400},
		{6, 4800},
		{7, 3500},
		{10, 5000},
	}
	for _, tc := range cases {
		got, err := rental.PriceForDuration(table, tc.days)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "days=%d", tc.days)
	}
}

func TestPriceForDuration_OrderDoesNotMatter(t *testing.T) {
	shuffled := tiers([2]int64{7, 500}, [2]int64{1, 1000}, [2]int64{3, 800})
	got, err := rental.PriceForDuration(shuffled, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(4800), got)
	// input left untouched
	assert.Equal(t, 7, shuffled[0].MinimumDays)
}

func TestPriceForDuration_FallbackToSmallestMinimum(t *testing.T) {
	got, err := rental.PriceForDuration(tiers([2]int64{3, 800}), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(800), got)

	got, err = rental.PriceForDuration(tiers([2]int64{5, 600}, [2]int64{2, 900}), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(900), got)
}

func TestPriceForDuration_EmptyTiers(t *testing.T) {
	for _, d := range []int{1, 3, 30} {
		got, err := rental.PriceForDuration(nil, d)
		require.NoError(t, err)
		assert.Zero(t, got)
	}
}

func TestPriceForDuration_InvalidDuration(t *testing.T) {
	for _, d := range []int{0, -2} {
		_, err := rental.PriceForDuration(tiers([2]int64{1, 1000}), d)
		require.Error(t, err)
		assert.True(t, rental.IsInvalidDuration(err))
	}
}

func TestPriceForDuration_Idempotent(t *testing.T) {
	table := tiers([2]int64{1, 1000}, [2]int64{3, 800})
	a, err := rental.PriceForDuration(table, 4)
	require.NoError(t, err)
	b, err := rental.PriceForDuration(table, 4)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSelectTier(t *testing.T) {
	_, ok := rental.SelectTier(nil, 3)
	assert.False(t, ok)

	tier, ok := rental.SelectTier(tiers([2]int64{1, 1000}, [2]int64{3, 800}), 3)
	require.True(t, ok)
	assert.Equal(t, 3, tier.MinimumDays)
}
