package royalty

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"imprint/internal/core/apperror"
	"imprint/internal/core/id"
	"imprint/internal/core/types"
	"imprint/pkg/logger"
)

// ComposerState tracks the per-author pipeline stage, for logging and
// failure attribution. Terminal states are StateComposed and StateFailed.
type ComposerState string

const (
	StateAggregating    ComposerState = "aggregating"
	StateTierAllocating ComposerState = "tier_allocating"
	StateDeducting      ComposerState = "deducting"
	StateSplitting      ComposerState = "splitting"
	StateRecouping      ComposerState = "recouping"
	StateComposed       ComposerState = "composed"
	StateFailed         ComposerState = "failed"
)

// ComposeRequest identifies one author+contract+period composition.
type ComposeRequest struct {
	AuthorID   id.ID
	ContractID id.ID
	Period     PeriodBounds
}

// Composer turns a period's ledger totals and a contract's royalty terms
// into one immutable StatementCalculations result per author.
//
// Stage order within a request is a correctness invariant, not a performance
// choice: aggregate → allocate tiers → deduct returns → split → recoup.
// Recoupment always applies to the author's own share, never the title
// total, which is why splitting precedes recouping.
type Composer struct {
	contracts   ContractRepository
	ledger      LedgerRepository
	recoupments RecoupmentRepository
	lifetime    *LifetimeTracker
}

// NewComposer wires the engine's repository collaborators.
func NewComposer(contracts ContractRepository, ledger LedgerRepository, recoupments RecoupmentRepository) *Composer {
	return &Composer{
		contracts:   contracts,
		ledger:      ledger,
		recoupments: recoupments,
		lifetime:    NewLifetimeTracker(ledger),
	}
}

// formatInputs carries the aggregated per-format inputs gathered during the
// aggregating stage.
type formatInputs struct {
	format   Format
	tiers    []RoyaltyTier
	ledger   PeriodLedger
	lifetime LifetimeTotals
}

// Compose runs the full pipeline for one author. The result is never
// mutated after return; corrections require composing a new statement.
// Preview and final generation call this identical code path.
func (c *Composer) Compose(ctx context.Context, req ComposeRequest) (*StatementCalculations, error) {
	state := StateAggregating

	terms, err := c.contracts.GetTerms(ctx, req.ContractID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewContractNotFound(req.ContractID.String())
		}
		return nil, c.fail(ctx, req, state, err)
	}
	if terms == nil {
		return nil, apperror.NewContractNotFound(req.ContractID.String())
	}

	// Malformed tier tables are fatal before any ledger read.
	for _, f := range Formats() {
		if tiers, ok := terms.Tiers[f]; ok {
			if err := ValidateTierTable(tiers); err != nil {
				return nil, c.fail(ctx, req, state, err)
			}
		}
	}

	var warnings []Warning

	inputs, historyIncomplete, err := c.aggregate(ctx, req, terms)
	if err != nil {
		return nil, c.fail(ctx, req, state, err)
	}
	if historyIncomplete {
		warnings = append(warnings, Warning{
			Code:    WarningLifetimeHistoryIncomplete,
			Message: "lifetime sales history has gaps; tier position may under-count prior sales",
		})
	}

	state = StateTierAllocating
	breakdowns := make([]FormatBreakdown, 0, len(inputs))
	var grossRoyalty types.MinorUnits
	for _, in := range inputs {
		bd, err := allocateFormat(in)
		if err != nil {
			return nil, c.fail(ctx, req, state, err)
		}
		grossRoyalty += bd.FormatRoyalty
		breakdowns = append(breakdowns, bd)
	}

	state = StateDeducting
	var returnsDeduction types.MinorUnits
	overReturn := false
	for i, in := range inputs {
		d := DeductReturns(breakdowns[i].FormatRoyalty, in.ledger.QuantityReturned, blendedRoyaltyPerUnit(breakdowns[i].Allocation))
		returnsDeduction += d
		if in.ledger.RawNetQuantity() < 0 {
			overReturn = true
		}
	}
	if returnsDeduction > grossRoyalty {
		returnsDeduction = grossRoyalty
		overReturn = true
	}
	if overReturn {
		warnings = append(warnings, Warning{
			Code:    WarningNegativeNet,
			Message: "returns deduction exceeds gross royalty; deduction capped",
		})
	}

	pool := grossRoyalty - returnsDeduction

	state = StateSplitting
	authorShare := pool
	var splitCalc *SplitCalculation
	if terms.IsSplit() {
		share, sc := ApplySplit(pool, *terms.SplitPercent)
		authorShare = share
		splitCalc = &sc
	}

	state = StateRecouping
	previouslyRecouped, err := c.recoupments.GetPreviouslyRecouped(ctx, req.AuthorID, req.ContractID)
	if err != nil {
		return nil, c.fail(ctx, req, state, fmt.Errorf("previously recouped: %w", err))
	}
	recoupment := ComputeRecoupment(terms.AdvanceAmount, previouslyRecouped, authorShare)
	netPayable := authorShare - recoupment.ThisPeriodsRecoupment

	if recoupment.ThisPeriodsRecoupment > 0 && netPayable == 0 {
		warnings = append(warnings, Warning{
			Code:    WarningZeroNet,
			Message: "advance recoupment consumed the entire royalty for this period",
		})
	}
	if noActivity(inputs) && previouslyRecouped == 0 {
		warnings = append(warnings, Warning{
			Code:    WarningNoSales,
			Message: "no sales activity in this period and no prior activity on record",
		})
	}
	sortWarnings(warnings)

	calc := &StatementCalculations{
		AuthorID:          req.AuthorID,
		ContractID:        req.ContractID,
		Period:            req.Period,
		FormatBreakdowns:  breakdowns,
		ReturnsDeduction:  returnsDeduction,
		GrossRoyalty:      grossRoyalty,
		AdvanceRecoupment: recoupment,
		NetPayable:        netPayable,
		SplitCalculation:  splitCalc,
		Warnings:          warnings,
	}
	if terms.Mode == ModeLifetime {
		calc.LifetimeContext = lifetimeContextFor(terms, inputs)
	}

	state = StateComposed
	logger.Debug(ctx, "statement composed",
		"author_id", req.AuthorID,
		"contract_id", req.ContractID,
		"state", state,
		"gross_royalty", int64(grossRoyalty),
		"net_payable", int64(netPayable),
		"warnings", len(warnings),
	)
	return calc, nil
}

// aggregate gathers period ledger totals and, in lifetime mode, the
// cumulative position for every format the contract covers.
func (c *Composer) aggregate(ctx context.Context, req ComposeRequest, terms *ContractTerms) ([]formatInputs, bool, error) {
	inputs := make([]formatInputs, 0, len(terms.Tiers))
	historyIncomplete := false

	for _, f := range Formats() {
		tiers, ok := terms.Tiers[f]
		if !ok {
			continue
		}

		led, err := c.ledger.GetPeriodTotals(ctx, req.AuthorID, req.ContractID, f, req.Period)
		if err != nil {
			return nil, false, apperror.NewLedgerUnavailable(err).
				WithDetail("format", string(f))
		}
		led.Format = f

		in := formatInputs{format: f, tiers: tiers, ledger: led}
		if terms.Mode == ModeLifetime {
			pos, err := c.lifetime.ResolveLifetimePosition(ctx, req.AuthorID, req.ContractID, f, req.Period.Start)
			if err != nil {
				return nil, false, err
			}
			if !pos.Complete {
				historyIncomplete = true
			}
			in.lifetime = pos
		} else {
			in.lifetime = LifetimeTotals{Complete: true}
		}
		inputs = append(inputs, in)
	}

	return inputs, historyIncomplete, nil
}

// allocateFormat runs tier allocation for one format.
//
// Tiers allocate the sold quantity; returns are taxed back separately via
// the returns deduction at the blended rate, so they are not netted out of
// the allocation as well (that would deduct them twice). The clamped net
// quantity drives lifetime position advancement and warnings only.
func allocateFormat(in formatInputs) (FormatBreakdown, error) {
	var unitRevenue decimal.Decimal
	if in.ledger.QuantitySold > 0 {
		unitRevenue = in.ledger.GrossRevenue.Decimal().Div(decimal.NewFromInt(in.ledger.QuantitySold))
	}

	alloc, err := AllocateTiers(in.tiers, in.lifetime.Units, in.ledger.QuantitySold, unitRevenue)
	if err != nil {
		return FormatBreakdown{}, err
	}

	return FormatBreakdown{
		Format:           in.format,
		QuantitySold:     in.ledger.QuantitySold,
		QuantityReturned: in.ledger.QuantityReturned,
		GrossRevenue:     in.ledger.GrossRevenue,
		Allocation:       alloc,
		FormatRoyalty:    alloc.Royalty,
	}, nil
}

// lifetimeContextFor derives the statement-level lifetime annotation. The
// position is tracked per format; the context reports the format with the
// largest cumulative position (the author's primary format).
func lifetimeContextFor(terms *ContractTerms, inputs []formatInputs) *LifetimeContext {
	var best *formatInputs
	var bestAfter int64
	for i := range inputs {
		after := inputs[i].lifetime.Units + inputs[i].ledger.NetQuantity()
		if best == nil || after > bestAfter {
			best = &inputs[i]
			bestAfter = after
		}
	}
	if best == nil {
		return nil
	}

	tier, nextThreshold := tierAt(best.tiers, bestAfter)
	lc := &LifetimeContext{
		SalesBefore:     best.lifetime.Units,
		SalesAfter:      bestAfter,
		CurrentTierRate: tier.Rate,
	}
	if nextThreshold != nil {
		toNext := *nextThreshold - bestAfter
		lc.NextTierThreshold = nextThreshold
		lc.UnitsToNextTier = &toNext
	}
	return lc
}

// noActivity reports zero net quantity and zero prior-period position across
// all formats.
func noActivity(inputs []formatInputs) bool {
	for _, in := range inputs {
		if in.ledger.QuantitySold != 0 || in.ledger.QuantityReturned != 0 || in.lifetime.Units != 0 {
			return false
		}
	}
	return true
}

// fail logs a fatal composition error with its pipeline stage and returns it.
func (c *Composer) fail(ctx context.Context, req ComposeRequest, state ComposerState, err error) error {
	logger.Warn(ctx, "statement composition failed",
		"author_id", req.AuthorID,
		"contract_id", req.ContractID,
		"state", state,
		"error", err,
	)
	return err
}
