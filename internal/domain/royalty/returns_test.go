package royalty

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imprint/internal/core/types"
)

func TestDeductReturns(t *testing.T) {
	rate := decimal.NewFromInt(100) // 100 minor units credited per sold unit

	tests := []struct {
		name     string
		gross    types.MinorUnits
		returned int64
		want     types.MinorUnits
	}{
		{name: "no returns", gross: 130_000, returned: 0, want: 0},
		{name: "ordinary deduction", gross: 130_000, returned: 100, want: 10_000},
		{name: "deduction equals gross", gross: 10_000, returned: 100, want: 10_000},
		{name: "over-return capped at gross", gross: 10_000, returned: 1_300, want: 10_000},
		{name: "zero gross", gross: 0, returned: 100, want: 0},
		{name: "negative returned units ignored", gross: 10_000, returned: -5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeductReturns(tt.gross, tt.returned, rate)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeductReturns_BlendedRateFromAllocation(t *testing.T) {
	// 1200 units allocated across two tiers at $10/unit gross:
	// blended rate = 130000 / 1200 ≈ 108.33 minor per unit.
	alloc, err := AllocateTiers(standardTiers(), 0, 1200, decimal.NewFromInt(1000))
	require.NoError(t, err)

	blended := blendedRoyaltyPerUnit(alloc)
	assert.True(t, blended.Round(2).Equal(decimal.NewFromFloat(108.33)),
		"blended rate = %s", blended)

	// 100 returns taxed at the blended rate, not the top or bottom tier rate.
	got := DeductReturns(alloc.Royalty, 100, blended)
	assert.Equal(t, types.MinorUnits(10_833), got)
}

func TestBlendedRoyaltyPerUnit_EmptyAllocation(t *testing.T) {
	assert.True(t, blendedRoyaltyPerUnit(TierAllocation{}).IsZero())
}
