package royalty

import "imprint/internal/core/types"

// ComputeRecoupment computes the advance position for one period.
//
// thisPeriodsRecoupment = min(grossRoyaltyThisPeriod, advance − previouslyRecouped),
// floored at zero. Once the remaining advance reaches zero it stays zero for
// all subsequent periods regardless of royalty: full recoupment is terminal
// within this engine (reversals are a contract-amendment concern).
func ComputeRecoupment(advanceAmount, previouslyRecouped, grossRoyaltyThisPeriod types.MinorUnits) StatementAdvanceRecoupment {
	remaining := advanceAmount - previouslyRecouped
	if remaining < 0 {
		remaining = 0
	}

	recoup := grossRoyaltyThisPeriod
	if recoup > remaining {
		recoup = remaining
	}
	if recoup < 0 {
		recoup = 0
	}

	return StatementAdvanceRecoupment{
		OriginalAdvance:       advanceAmount,
		PreviouslyRecouped:    previouslyRecouped,
		ThisPeriodsRecoupment: recoup,
		RemainingAdvance:      remaining - recoup,
	}
}
