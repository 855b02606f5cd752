// Package royalty implements the royalty statement calculation engine.
//
// The engine is a pure function of its inputs: it consumes read-only
// contract terms, period ledger totals and recoupment history through the
// repository interfaces in repository.go, and produces an immutable
// StatementCalculations value. It never mutates sales data and only reports
// the recoupment delta for the caller to persist.
package royalty

import (
	"time"

	"github.com/shopspring/decimal"

	"imprint/internal/core/id"
	"imprint/internal/core/types"
)

// Format identifies a published edition format.
type Format string

const (
	FormatEbook     Format = "ebook"
	FormatPaperback Format = "paperback"
	FormatHardcover Format = "hardcover"
	FormatAudiobook Format = "audiobook"
)

// Formats lists all known formats in canonical order. Per-format breakdowns
// are always emitted in this order so statements are reproducible.
func Formats() []Format {
	return []Format{FormatEbook, FormatPaperback, FormatHardcover, FormatAudiobook}
}

// IsValidFormat reports whether f is a known format.
func IsValidFormat(f Format) bool {
	switch f {
	case FormatEbook, FormatPaperback, FormatHardcover, FormatAudiobook:
		return true
	}
	return false
}

// TierMode selects how the tier position is computed.
type TierMode string

const (
	// ModePeriod resets the tier position every statement period.
	ModePeriod TierMode = "period"

	// ModeLifetime carries the tier position across all periods of a contract.
	ModeLifetime TierMode = "lifetime"
)

// RoyaltyTier is a contiguous quantity range with an associated royalty rate.
// MaxQuantity == nil marks the terminal, open-ended tier.
type RoyaltyTier struct {
	MinQuantity int64           `json:"minQuantity"`
	MaxQuantity *int64          `json:"maxQuantity"`
	Rate        decimal.Decimal `json:"rate"`
}

// ContractTerms is the read-only royalty input owned by the contract layer.
// Co-owner split percentages summing to 100 is a contract-layer invariant;
// the engine assumes it.
type ContractTerms struct {
	ContractID id.ID
	AuthorID   id.ID
	TitleID    id.ID

	// Tiers holds the ordered tier table per format. Only formats present
	// here participate in the statement.
	Tiers map[Format][]RoyaltyTier

	AdvanceAmount types.MinorUnits
	Mode          TierMode

	// SplitPercent is set only on co-authored titles: this author's
	// ownership percentage in (0,100].
	SplitPercent *decimal.Decimal
}

// IsSplit reports whether the contract is a co-ownership split.
func (t *ContractTerms) IsSplit() bool {
	return t.SplitPercent != nil
}

// PeriodBounds delimits a statement period [Start, End).
type PeriodBounds struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// PeriodLedger holds aggregated sale/return totals for one
// author+contract+format within a period.
type PeriodLedger struct {
	Format           Format
	QuantitySold     int64
	QuantityReturned int64
	GrossRevenue     types.MinorUnits
}

// RawNetQuantity may be negative in pathological data (more returns than
// sales); the raw value is preserved for warning generation.
func (l PeriodLedger) RawNetQuantity() int64 {
	return l.QuantitySold - l.QuantityReturned
}

// NetQuantity is the quantity used for tier allocation, clamped to zero.
func (l PeriodLedger) NetQuantity() int64 {
	if n := l.RawNetQuantity(); n > 0 {
		return n
	}
	return 0
}

// LifetimeTotals is the cumulative position strictly before a period start.
// Complete is false when the ledger knows its history has gaps (e.g. a
// contract migrated into lifetime mode without backfill); the available
// totals are still returned.
type LifetimeTotals struct {
	Units    int64
	Revenue  types.MinorUnits
	Complete bool
}

// TierSlice is one tier's share of an allocation.
type TierSlice struct {
	TierIndex int              `json:"tierIndex"`
	Rate      decimal.Decimal  `json:"rate"`
	Units     int64            `json:"unitsInTier"`
	Royalty   types.MinorUnits `json:"royaltyForTier"`
}

// TierAllocation is the ordered, gap-free allocation of a quantity delta
// across a contract's tier table.
type TierAllocation struct {
	Slices  []TierSlice      `json:"slices"`
	Units   int64            `json:"units"`
	Royalty types.MinorUnits `json:"royalty"`
}

// FormatBreakdown is the per-format portion of a statement.
type FormatBreakdown struct {
	Format           Format           `json:"format"`
	QuantitySold     int64            `json:"quantitySold"`
	QuantityReturned int64            `json:"quantityReturned"`
	GrossRevenue     types.MinorUnits `json:"grossRevenue"`
	Allocation       TierAllocation   `json:"tierAllocation"`
	FormatRoyalty    types.MinorUnits `json:"formatRoyalty"`
}

// StatementAdvanceRecoupment reports the advance position for one period.
// The engine computes it; persisting the delta is the caller's concern.
type StatementAdvanceRecoupment struct {
	OriginalAdvance       types.MinorUnits `json:"originalAdvance"`
	PreviouslyRecouped    types.MinorUnits `json:"previouslyRecouped"`
	ThisPeriodsRecoupment types.MinorUnits `json:"thisPeriodsRecoupment"`
	RemainingAdvance      types.MinorUnits `json:"remainingAdvance"`
}

// SplitCalculation annotates a statement computed from a co-ownership share.
// Its presence is the discriminant: a nil pointer means a sole-author
// statement.
type SplitCalculation struct {
	TitleTotalRoyalty   types.MinorUnits `json:"titleTotalRoyalty"`
	OwnershipPercentage decimal.Decimal  `json:"ownershipPercentage"`
}

// LifetimeContext annotates a lifetime-mode statement with the author's
// cumulative sales position. Nil on period-mode statements.
type LifetimeContext struct {
	SalesBefore       int64           `json:"salesBefore"`
	SalesAfter        int64           `json:"salesAfter"`
	CurrentTierRate   decimal.Decimal `json:"currentTierRate"`
	NextTierThreshold *int64          `json:"nextTierThreshold,omitempty"`
	UnitsToNextTier   *int64          `json:"unitsToNextTier,omitempty"`
}

// StatementCalculations is the immutable result of composing one statement.
// Field names are a wire contract consumed by downstream renderers; do not
// change shape without a version bump.
type StatementCalculations struct {
	AuthorID   id.ID        `json:"authorId"`
	ContractID id.ID        `json:"contractId"`
	Period     PeriodBounds `json:"period"`

	FormatBreakdowns []FormatBreakdown `json:"formatBreakdowns"`

	ReturnsDeduction  types.MinorUnits           `json:"returnsDeduction"`
	GrossRoyalty      types.MinorUnits           `json:"grossRoyalty"`
	AdvanceRecoupment StatementAdvanceRecoupment `json:"advanceRecoupment"`
	NetPayable        types.MinorUnits           `json:"netPayable"`

	SplitCalculation *SplitCalculation `json:"splitCalculation,omitempty"`
	LifetimeContext  *LifetimeContext  `json:"lifetimeContext,omitempty"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// IsSplitStatement reports whether this statement was computed from a
// co-ownership share.
func (c *StatementCalculations) IsSplitStatement() bool {
	return c.SplitCalculation != nil
}

// IsLifetimeStatement reports whether lifetime tiering applied.
func (c *StatementCalculations) IsLifetimeStatement() bool {
	return c.LifetimeContext != nil
}

// PayeeIdentity is the single payee value the engine's callers use,
// resolved once at the repository boundary. Statements may historically
// reference either an author or a contact record; the calculation core never
// branches on that migration history.
type PayeeIdentity struct {
	ID      id.ID  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}
