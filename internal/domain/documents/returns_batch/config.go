package returns_batch

import "imprint/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Returns reduce royalties, so we use Strict strategy for a gapless trail.
	NumeratorStrategy = numerator.StrategyStrict
)
