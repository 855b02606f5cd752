package royalty

import (
	"github.com/shopspring/decimal"

	"imprint/internal/core/types"
)

// DeductReturns nets approved returns against a format's gross royalty.
//
// averageRoyaltyPerUnit is the blended per-unit royalty that applied to the
// corresponding sold units (derived from the tier allocation, not a flat
// rate), so returns are taxed back at the rate they were credited at. The
// deduction is capped at grossRoyalty: this component alone can never drive
// the royalty negative. Over-returns are the composer's warning concern.
func DeductReturns(grossRoyalty types.MinorUnits, returnedUnits int64, averageRoyaltyPerUnit decimal.Decimal) types.MinorUnits {
	if returnedUnits <= 0 || grossRoyalty <= 0 {
		return 0
	}

	deduction := types.RoundHalfUpToMinor(
		decimal.NewFromInt(returnedUnits).Mul(averageRoyaltyPerUnit),
	)
	if deduction > grossRoyalty {
		return grossRoyalty
	}
	if deduction < 0 {
		return 0
	}
	return deduction
}

// blendedRoyaltyPerUnit derives the average per-unit royalty from a tier
// allocation. Zero when nothing was allocated.
func blendedRoyaltyPerUnit(alloc TierAllocation) decimal.Decimal {
	if alloc.Units == 0 {
		return decimal.Zero
	}
	return alloc.Royalty.Decimal().Div(decimal.NewFromInt(alloc.Units))
}
