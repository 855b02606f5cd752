package royalty

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imprint/internal/core/apperror"
	"imprint/internal/core/types"
)

func max1000() *int64 {
	v := int64(1000)
	return &v
}

func standardTiers() []RoyaltyTier {
	return []RoyaltyTier{
		{MinQuantity: 0, MaxQuantity: max1000(), Rate: decimal.NewFromFloat(0.10)},
		{MinQuantity: 1000, MaxQuantity: nil, Rate: decimal.NewFromFloat(0.15)},
	}
}

func TestValidateTierTable(t *testing.T) {
	bound := func(v int64) *int64 { return &v }

	tests := []struct {
		name    string
		tiers   []RoyaltyTier
		wantErr bool
	}{
		{
			name:  "valid two-tier table",
			tiers: standardTiers(),
		},
		{
			name: "single open-ended tier",
			tiers: []RoyaltyTier{
				{MinQuantity: 0, Rate: decimal.NewFromFloat(0.10)},
			},
		},
		{
			name:    "empty table",
			tiers:   nil,
			wantErr: true,
		},
		{
			name: "first tier does not start at zero",
			tiers: []RoyaltyTier{
				{MinQuantity: 100, Rate: decimal.NewFromFloat(0.10)},
			},
			wantErr: true,
		},
		{
			name: "gap between tiers",
			tiers: []RoyaltyTier{
				{MinQuantity: 0, MaxQuantity: bound(500), Rate: decimal.NewFromFloat(0.10)},
				{MinQuantity: 600, Rate: decimal.NewFromFloat(0.15)},
			},
			wantErr: true,
		},
		{
			name: "overlapping tiers",
			tiers: []RoyaltyTier{
				{MinQuantity: 0, MaxQuantity: bound(500), Rate: decimal.NewFromFloat(0.10)},
				{MinQuantity: 400, Rate: decimal.NewFromFloat(0.15)},
			},
			wantErr: true,
		},
		{
			name: "bounded tier after open-ended tier",
			tiers: []RoyaltyTier{
				{MinQuantity: 0, Rate: decimal.NewFromFloat(0.10)},
				{MinQuantity: 1000, MaxQuantity: bound(2000), Rate: decimal.NewFromFloat(0.15)},
			},
			wantErr: true,
		},
		{
			name: "last tier bounded",
			tiers: []RoyaltyTier{
				{MinQuantity: 0, MaxQuantity: bound(1000), Rate: decimal.NewFromFloat(0.10)},
			},
			wantErr: true,
		},
		{
			name: "inverted range",
			tiers: []RoyaltyTier{
				{MinQuantity: 0, MaxQuantity: bound(0), Rate: decimal.NewFromFloat(0.10)},
			},
			wantErr: true,
		},
		{
			name: "rate above one",
			tiers: []RoyaltyTier{
				{MinQuantity: 0, Rate: decimal.NewFromFloat(1.5)},
			},
			wantErr: true,
		},
		{
			name: "negative rate",
			tiers: []RoyaltyTier{
				{MinQuantity: 0, Rate: decimal.NewFromFloat(-0.1)},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTierTable(tt.tiers)
			if tt.wantErr {
				require.Error(t, err)
				var appErr *apperror.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, apperror.CodeMalformedTierTable, appErr.Code)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllocateTiers_CrossesBoundary(t *testing.T) {
	// 1200 units at $10/unit: 1000 @10% + 200 @15% = $1000 + $300.
	alloc, err := AllocateTiers(standardTiers(), 0, 1200, decimal.NewFromInt(1000))
	require.NoError(t, err)

	require.Len(t, alloc.Slices, 2)
	assert.Equal(t, int64(1000), alloc.Slices[0].Units)
	assert.Equal(t, types.MinorUnits(100_000), alloc.Slices[0].Royalty)
	assert.Equal(t, int64(200), alloc.Slices[1].Units)
	assert.Equal(t, types.MinorUnits(30_000), alloc.Slices[1].Royalty)
	assert.Equal(t, int64(1200), alloc.Units)
	assert.Equal(t, types.MinorUnits(130_000), alloc.Royalty)
}

func TestAllocateTiers_StartPosition(t *testing.T) {
	// Lifetime position 950: 50 units finish tier 1, the rest land in tier 2.
	alloc, err := AllocateTiers(standardTiers(), 950, 100, decimal.NewFromInt(1000))
	require.NoError(t, err)

	require.Len(t, alloc.Slices, 2)
	assert.Equal(t, int64(50), alloc.Slices[0].Units)
	assert.Equal(t, int64(50), alloc.Slices[1].Units)
	// 50×$10×10% + 50×$10×15% = $50 + $75
	assert.Equal(t, types.MinorUnits(12_500), alloc.Royalty)
}

func TestAllocateTiers_StartPositionBeyondAllBounds(t *testing.T) {
	alloc, err := AllocateTiers(standardTiers(), 5000, 10, decimal.NewFromInt(1000))
	require.NoError(t, err)

	require.Len(t, alloc.Slices, 1)
	assert.Equal(t, 1, alloc.Slices[0].TierIndex)
	assert.Equal(t, int64(10), alloc.Slices[0].Units)
}

func TestAllocateTiers_ZeroUnits(t *testing.T) {
	alloc, err := AllocateTiers(standardTiers(), 0, 0, decimal.NewFromInt(1000))
	require.NoError(t, err)

	assert.Empty(t, alloc.Slices)
	assert.Equal(t, int64(0), alloc.Units)
	assert.Equal(t, types.MinorUnits(0), alloc.Royalty)
}

func TestAllocateTiers_RoundsHalfUpPerSlice(t *testing.T) {
	tiers := []RoyaltyTier{
		{MinQuantity: 0, Rate: decimal.NewFromFloat(0.15)},
	}
	// 1 unit × 3 minor × 15% = 0.45 minor → rounds down to 0.
	alloc, err := AllocateTiers(tiers, 0, 1, decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, types.MinorUnits(0), alloc.Royalty)

	// 1 unit × 4 minor × 15% = 0.60 minor → rounds up to 1.
	alloc, err = AllocateTiers(tiers, 0, 1, decimal.NewFromInt(4))
	require.NoError(t, err)
	assert.Equal(t, types.MinorUnits(1), alloc.Royalty)

	// Half exactly: 1 unit × 10 minor × 5% = 0.50 minor → rounds up to 1.
	tiers[0].Rate = decimal.NewFromFloat(0.05)
	alloc, err = AllocateTiers(tiers, 0, 1, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Equal(t, types.MinorUnits(1), alloc.Royalty)
}

func TestAllocateTiers_UnitConservation(t *testing.T) {
	tiers := []RoyaltyTier{
		{MinQuantity: 0, MaxQuantity: func() *int64 { v := int64(100); return &v }(), Rate: decimal.NewFromFloat(0.05)},
		{MinQuantity: 100, MaxQuantity: max1000(), Rate: decimal.NewFromFloat(0.10)},
		{MinQuantity: 1000, Rate: decimal.NewFromFloat(0.15)},
	}

	for _, units := range []int64{1, 99, 100, 101, 999, 1000, 1001, 25_000} {
		alloc, err := AllocateTiers(tiers, 0, units, decimal.NewFromInt(500))
		require.NoError(t, err)

		var total int64
		for _, s := range alloc.Slices {
			total += s.Units
		}
		assert.Equal(t, units, total, "units=%d", units)
		assert.Equal(t, units, alloc.Units, "units=%d", units)
	}
}

func TestTierAt(t *testing.T) {
	tiers := standardTiers()

	tier, next := tierAt(tiers, 500)
	assert.True(t, tier.Rate.Equal(decimal.NewFromFloat(0.10)))
	require.NotNil(t, next)
	assert.Equal(t, int64(1000), *next)

	tier, next = tierAt(tiers, 1000)
	assert.True(t, tier.Rate.Equal(decimal.NewFromFloat(0.15)))
	assert.Nil(t, next)
}
