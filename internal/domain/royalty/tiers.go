package royalty

import (
	"fmt"

	"github.com/shopspring/decimal"

	"imprint/internal/core/apperror"
	"imprint/internal/core/types"
)

// ValidateTierTable checks the structural invariants of a royalty tier table:
// sorted ascending by MinQuantity, starting at zero, contiguous,
// non-overlapping, with exactly one terminal open-ended tier in last
// position, and rates within [0, 1].
func ValidateTierTable(tiers []RoyaltyTier) error {
	if len(tiers) == 0 {
		return apperror.NewMalformedTierTable("tier table is empty")
	}

	if tiers[0].MinQuantity != 0 {
		return apperror.NewMalformedTierTable("first tier must start at quantity 0").
			WithDetail("minQuantity", tiers[0].MinQuantity)
	}

	one := decimal.NewFromInt(1)
	for i, t := range tiers {
		if t.Rate.IsNegative() || t.Rate.GreaterThan(one) {
			return apperror.NewMalformedTierTable("tier rate must be within [0, 1]").
				WithDetail("tier", i).
				WithDetail("rate", t.Rate.String())
		}

		terminal := t.MaxQuantity == nil
		last := i == len(tiers)-1

		if terminal && !last {
			return apperror.NewMalformedTierTable("only the last tier may be open-ended").
				WithDetail("tier", i)
		}
		if last && !terminal {
			return apperror.NewMalformedTierTable("last tier must be open-ended").
				WithDetail("tier", i)
		}

		if !terminal {
			if *t.MaxQuantity <= t.MinQuantity {
				return apperror.NewMalformedTierTable("tier range is empty or inverted").
					WithDetail("tier", i)
			}
			next := tiers[i+1]
			if next.MinQuantity != *t.MaxQuantity {
				msg := "gap between tiers"
				if next.MinQuantity < *t.MaxQuantity {
					msg = "overlapping tiers"
				}
				return apperror.NewMalformedTierTable(msg).
					WithDetail("tier", i).
					WithDetail("maxQuantity", *t.MaxQuantity).
					WithDetail("nextMinQuantity", next.MinQuantity)
			}
		}
	}

	return nil
}

// AllocateTiers walks the tier table and allocates unitsToAllocate units
// starting at absolute position startPosition, computing each intersecting
// tier's share of the royalty.
//
// startPosition is 0 in period mode or the lifetime units-before-period in
// lifetime mode: the resolver only ever allocates a quantity delta at an
// absolute position, which keeps tier selection mode-agnostic.
//
// unitRevenue is the per-unit gross revenue in minor currency units (may be
// fractional). Each tier slice's royalty is rounded half-up at the minor-unit
// boundary individually, so repeated statements for the same contract are
// reproducible tier-by-tier.
func AllocateTiers(tiers []RoyaltyTier, startPosition, unitsToAllocate int64, unitRevenue decimal.Decimal) (TierAllocation, error) {
	if err := ValidateTierTable(tiers); err != nil {
		return TierAllocation{}, err
	}
	if startPosition < 0 {
		return TierAllocation{}, fmt.Errorf("negative start position %d", startPosition)
	}
	if unitsToAllocate < 0 {
		return TierAllocation{}, fmt.Errorf("negative units to allocate %d", unitsToAllocate)
	}

	alloc := TierAllocation{Slices: []TierSlice{}}
	if unitsToAllocate == 0 {
		return alloc, nil
	}

	from := startPosition
	to := startPosition + unitsToAllocate

	for i, tier := range tiers {
		lo := tier.MinQuantity
		hi := to // terminal tier absorbs any remainder
		if tier.MaxQuantity != nil && *tier.MaxQuantity < hi {
			hi = *tier.MaxQuantity
		}

		if hi <= from || lo >= to {
			continue
		}
		if lo < from {
			lo = from
		}

		units := hi - lo
		royalty := types.RoundHalfUpToMinor(
			decimal.NewFromInt(units).Mul(unitRevenue).Mul(tier.Rate),
		)

		alloc.Slices = append(alloc.Slices, TierSlice{
			TierIndex: i,
			Rate:      tier.Rate,
			Units:     units,
			Royalty:   royalty,
		})
		alloc.Units += units
		alloc.Royalty += royalty
	}

	return alloc, nil
}

// tierAt returns the tier covering an absolute position, and the next
// tier's threshold if one exists. The table is assumed valid.
func tierAt(tiers []RoyaltyTier, position int64) (RoyaltyTier, *int64) {
	for _, t := range tiers {
		if position >= t.MinQuantity && (t.MaxQuantity == nil || position < *t.MaxQuantity) {
			return t, t.MaxQuantity
		}
	}
	// Position past every finite boundary: the terminal tier applies.
	return tiers[len(tiers)-1], nil
}
