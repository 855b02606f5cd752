package royalty

import (
	"github.com/shopspring/decimal"

	"imprint/internal/core/types"
)

var hundred = decimal.NewFromInt(100)

// ApplySplit scales a title-level royalty pool by an author's ownership
// percentage: authorShare = floor(titleTotalRoyalty × percentage / 100).
//
// Flooring guarantees co-owners collectively never receive more than the
// title total; for N owners summing to 100% at most N−1 minor units are lost
// to rounding. Split allocation always runs BEFORE advance recoupment —
// recoupment applies to the author's own share, never the title total.
func ApplySplit(titleTotalRoyalty types.MinorUnits, ownershipPercentage decimal.Decimal) (types.MinorUnits, SplitCalculation) {
	share := types.MinorUnits(
		titleTotalRoyalty.Decimal().
			Mul(ownershipPercentage).
			Div(hundred).
			Floor().
			IntPart(),
	)
	return share, SplitCalculation{
		TitleTotalRoyalty:   titleTotalRoyalty,
		OwnershipPercentage: ownershipPercentage,
	}
}
