package sales_batch

import "imprint/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Sales batches feed financial statements, so we use Strict strategy.
	NumeratorStrategy = numerator.StrategyStrict
)
