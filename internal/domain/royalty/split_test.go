package royalty

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"imprint/internal/core/types"
)

func TestApplySplit(t *testing.T) {
	tests := []struct {
		name    string
		total   types.MinorUnits
		percent decimal.Decimal
		want    types.MinorUnits
	}{
		{name: "even half", total: 130_000, percent: decimal.NewFromInt(50), want: 65_000},
		{name: "full ownership", total: 130_000, percent: decimal.NewFromInt(100), want: 130_000},
		{name: "sixty forty", total: 100_001, percent: decimal.NewFromInt(60), want: 60_000},
		{name: "fractional percent floors", total: 9_999, percent: decimal.NewFromFloat(33.33), want: 3_332},
		{name: "zero pool", total: 0, percent: decimal.NewFromInt(50), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			share, calc := ApplySplit(tt.total, tt.percent)
			assert.Equal(t, tt.want, share)
			assert.Equal(t, tt.total, calc.TitleTotalRoyalty)
			assert.True(t, calc.OwnershipPercentage.Equal(tt.percent))
		})
	}
}

// Co-owners whose percentages sum to 100 must never collectively receive
// more than the title total, and may lose at most N-1 minor units to
// flooring.
func TestApplySplit_Conservation(t *testing.T) {
	splits := []decimal.Decimal{
		decimal.NewFromFloat(33.33),
		decimal.NewFromFloat(33.33),
		decimal.NewFromFloat(33.34),
	}

	for _, total := range []types.MinorUnits{1, 2, 99, 100, 9_999, 130_000, 7_777_777} {
		var paid types.MinorUnits
		for _, pct := range splits {
			share, _ := ApplySplit(total, pct)
			paid += share
		}
		assert.LessOrEqual(t, paid, total, "total=%d", total)
		assert.GreaterOrEqual(t, paid, total-types.MinorUnits(len(splits)-1), "total=%d", total)
	}
}
