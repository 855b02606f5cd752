package royalty

import (
	"context"
	"time"

	"imprint/internal/core/id"
	"imprint/internal/core/types"
)

// LedgerRepository is the engine's read-only view of the sales ledger.
// Implementations live in infrastructure; the engine never owns the ledger.
type LedgerRepository interface {
	// GetPeriodTotals aggregates posted sale/return movements for one
	// author+contract+format within [period.Start, period.End).
	GetPeriodTotals(ctx context.Context, authorID, contractID id.ID, format Format, period PeriodBounds) (PeriodLedger, error)

	// GetLifetimeTotalsBefore sums all posted movements strictly before the
	// given instant. Complete=false signals known history gaps; a returned
	// error means the ledger could not answer at all.
	GetLifetimeTotalsBefore(ctx context.Context, authorID, contractID id.ID, format Format, before time.Time) (LifetimeTotals, error)
}

// ContractRepository resolves royalty terms for a contract.
type ContractRepository interface {
	GetTerms(ctx context.Context, contractID id.ID) (*ContractTerms, error)
}

// RecoupmentRepository resolves the advance amount already recouped by prior
// statements for an author+contract. The value is monotonically
// non-decreasing across a contract's lifetime.
type RecoupmentRepository interface {
	GetPreviouslyRecouped(ctx context.Context, authorID, contractID id.ID) (types.MinorUnits, error)
}
