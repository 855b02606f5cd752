package royalty

import (
	"context"
	"fmt"
	"time"

	"imprint/internal/core/id"
)

// LifetimeTracker resolves an author's cumulative sales position before a
// statement period. It is only consulted for lifetime-mode contracts and is
// independent of tier resolution: the tracker answers "where does this
// author start", the tier resolver allocates the delta from there.
type LifetimeTracker struct {
	ledger LedgerRepository
}

// NewLifetimeTracker creates a tracker over the given ledger.
func NewLifetimeTracker(ledger LedgerRepository) *LifetimeTracker {
	return &LifetimeTracker{ledger: ledger}
}

// ResolveLifetimePosition sums all prior-period ledger entries strictly
// before periodStart for the contract+format.
//
// A hard ledger failure is returned as an error (fatal: the statement is not
// composed). Incomplete history is NOT an error: the available totals come
// back with Complete=false and the composer attaches a
// lifetime_history_incomplete warning. A silent zero would restart the
// author at the bottom tier and misprice the whole period.
func (t *LifetimeTracker) ResolveLifetimePosition(ctx context.Context, authorID, contractID id.ID, format Format, periodStart time.Time) (LifetimeTotals, error) {
	totals, err := t.ledger.GetLifetimeTotalsBefore(ctx, authorID, contractID, format, periodStart)
	if err != nil {
		return LifetimeTotals{}, fmt.Errorf("resolve lifetime position for %s/%s: %w", contractID, format, err)
	}
	return totals, nil
}
