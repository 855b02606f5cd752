package royalty

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imprint/internal/core/apperror"
	"imprint/internal/core/id"
	"imprint/internal/core/types"
)

type fakeContracts struct {
	terms map[id.ID]*ContractTerms
}

func (f *fakeContracts) GetTerms(_ context.Context, contractID id.ID) (*ContractTerms, error) {
	t, ok := f.terms[contractID]
	if !ok {
		return nil, apperror.NewNotFound("contract", contractID.String())
	}
	return t, nil
}

type fakeLedger struct {
	period      map[Format]PeriodLedger
	lifetime    map[Format]LifetimeTotals
	periodErr   error
	lifetimeErr error
}

func (f *fakeLedger) GetPeriodTotals(_ context.Context, _, _ id.ID, format Format, _ PeriodBounds) (PeriodLedger, error) {
	if f.periodErr != nil {
		return PeriodLedger{}, f.periodErr
	}
	return f.period[format], nil
}

func (f *fakeLedger) GetLifetimeTotalsBefore(_ context.Context, _, _ id.ID, format Format, _ time.Time) (LifetimeTotals, error) {
	if f.lifetimeErr != nil {
		return LifetimeTotals{}, f.lifetimeErr
	}
	if t, ok := f.lifetime[format]; ok {
		return t, nil
	}
	return LifetimeTotals{Complete: true}, nil
}

type fakeRecoupments struct {
	prev types.MinorUnits
	err  error
}

func (f *fakeRecoupments) GetPreviouslyRecouped(_ context.Context, _, _ id.ID) (types.MinorUnits, error) {
	return f.prev, f.err
}

type composerFixture struct {
	contracts   *fakeContracts
	ledger      *fakeLedger
	recoupments *fakeRecoupments
	composer    *Composer
	req         ComposeRequest
}

func newComposerFixture(terms *ContractTerms) *composerFixture {
	authorID := id.New()
	contractID := id.New()
	terms.ContractID = contractID
	terms.AuthorID = authorID

	f := &composerFixture{
		contracts:   &fakeContracts{terms: map[id.ID]*ContractTerms{contractID: terms}},
		ledger:      &fakeLedger{period: map[Format]PeriodLedger{}, lifetime: map[Format]LifetimeTotals{}},
		recoupments: &fakeRecoupments{},
		req: ComposeRequest{
			AuthorID:   authorID,
			ContractID: contractID,
			Period: PeriodBounds{
				Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	f.composer = NewComposer(f.contracts, f.ledger, f.recoupments)
	return f
}

func periodTerms() *ContractTerms {
	return &ContractTerms{
		TitleID:       id.New(),
		Tiers:         map[Format][]RoyaltyTier{FormatEbook: standardTiers()},
		AdvanceAmount: 50_000,
		Mode:          ModePeriod,
	}
}

func warningCodes(ws []Warning) []WarningCode {
	codes := make([]WarningCode, 0, len(ws))
	for _, w := range ws {
		codes = append(codes, w.Code)
	}
	return codes
}

// Advance already depleted: 1200 units at $10/unit through [0-1000 @10%,
// 1000+ @15%] earn $1300, all payable.
func TestCompose_DepletedAdvance(t *testing.T) {
	f := newComposerFixture(periodTerms())
	f.ledger.period[FormatEbook] = PeriodLedger{QuantitySold: 1200, GrossRevenue: 1_200_000}
	f.recoupments.prev = 50_000

	calc, err := f.composer.Compose(context.Background(), f.req)
	require.NoError(t, err)

	assert.Equal(t, types.MinorUnits(130_000), calc.GrossRoyalty)
	assert.Equal(t, types.MinorUnits(0), calc.AdvanceRecoupment.ThisPeriodsRecoupment)
	assert.Equal(t, types.MinorUnits(0), calc.AdvanceRecoupment.RemainingAdvance)
	assert.Equal(t, types.MinorUnits(130_000), calc.NetPayable)
	assert.Empty(t, calc.Warnings)
	assert.False(t, calc.IsSplitStatement())
	assert.False(t, calc.IsLifetimeStatement())
}

// Same sales with an unrecouped $500 advance: $500 recouped, $800 payable.
func TestCompose_RecoupsAdvance(t *testing.T) {
	f := newComposerFixture(periodTerms())
	f.ledger.period[FormatEbook] = PeriodLedger{QuantitySold: 1200, GrossRevenue: 1_200_000}

	calc, err := f.composer.Compose(context.Background(), f.req)
	require.NoError(t, err)

	assert.Equal(t, types.MinorUnits(130_000), calc.GrossRoyalty)
	assert.Equal(t, types.MinorUnits(50_000), calc.AdvanceRecoupment.ThisPeriodsRecoupment)
	assert.Equal(t, types.MinorUnits(0), calc.AdvanceRecoupment.RemainingAdvance)
	assert.Equal(t, types.MinorUnits(80_000), calc.NetPayable)
	assert.Empty(t, calc.Warnings)
}

// Over-return: more returns than sales. The deduction is capped at gross and
// the statement still composes, flagged negative_net.
func TestCompose_OverReturnCapsDeduction(t *testing.T) {
	f := newComposerFixture(periodTerms())
	f.ledger.period[FormatEbook] = PeriodLedger{
		QuantitySold:     1200,
		QuantityReturned: 1300,
		GrossRevenue:     1_200_000,
	}
	f.recoupments.prev = 50_000

	calc, err := f.composer.Compose(context.Background(), f.req)
	require.NoError(t, err)

	assert.Equal(t, types.MinorUnits(130_000), calc.GrossRoyalty)
	assert.Equal(t, types.MinorUnits(130_000), calc.ReturnsDeduction)
	assert.Equal(t, types.MinorUnits(0), calc.NetPayable)
	assert.Contains(t, warningCodes(calc.Warnings), WarningNegativeNet)
}

func TestCompose_OrdinaryReturns(t *testing.T) {
	f := newComposerFixture(periodTerms())
	f.ledger.period[FormatEbook] = PeriodLedger{
		QuantitySold:     1200,
		QuantityReturned: 100,
		GrossRevenue:     1_200_000,
	}
	f.recoupments.prev = 50_000

	calc, err := f.composer.Compose(context.Background(), f.req)
	require.NoError(t, err)

	// 100 returns × blended 108.33 minor/unit.
	assert.Equal(t, types.MinorUnits(10_833), calc.ReturnsDeduction)
	assert.Equal(t, types.MinorUnits(130_000-10_833), calc.NetPayable)
	assert.Empty(t, calc.Warnings)
}

func TestCompose_SplitBeforeRecoupment(t *testing.T) {
	terms := periodTerms()
	pct := decimal.NewFromInt(50)
	terms.SplitPercent = &pct

	f := newComposerFixture(terms)
	f.ledger.period[FormatEbook] = PeriodLedger{QuantitySold: 1200, GrossRevenue: 1_200_000}

	calc, err := f.composer.Compose(context.Background(), f.req)
	require.NoError(t, err)

	require.True(t, calc.IsSplitStatement())
	assert.Equal(t, types.MinorUnits(130_000), calc.SplitCalculation.TitleTotalRoyalty)

	// Recoupment applies to the author's 50% share ($650), not the title
	// total: $500 recouped, $150 payable.
	assert.Equal(t, types.MinorUnits(50_000), calc.AdvanceRecoupment.ThisPeriodsRecoupment)
	assert.Equal(t, types.MinorUnits(15_000), calc.NetPayable)
}

func TestCompose_LifetimeModeCarriesPosition(t *testing.T) {
	terms := periodTerms()
	terms.Mode = ModeLifetime

	f := newComposerFixture(terms)
	f.ledger.period[FormatEbook] = PeriodLedger{QuantitySold: 100, GrossRevenue: 100_000}
	f.ledger.lifetime[FormatEbook] = LifetimeTotals{Units: 950, Complete: true}
	f.recoupments.prev = 50_000

	calc, err := f.composer.Compose(context.Background(), f.req)
	require.NoError(t, err)

	// 50 units finish the 10% tier, 50 land in the 15% tier.
	assert.Equal(t, types.MinorUnits(12_500), calc.GrossRoyalty)

	require.True(t, calc.IsLifetimeStatement())
	lc := calc.LifetimeContext
	assert.Equal(t, int64(950), lc.SalesBefore)
	assert.Equal(t, int64(1050), lc.SalesAfter)
	assert.True(t, lc.CurrentTierRate.Equal(decimal.NewFromFloat(0.15)))
	assert.Nil(t, lc.NextTierThreshold)
	assert.Empty(t, calc.Warnings)
}

// A lifetime contract with no prior history must compute exactly like a
// period contract.
func TestCompose_LifetimeWithEmptyHistoryMatchesPeriod(t *testing.T) {
	lifetime := periodTerms()
	lifetime.Mode = ModeLifetime

	fl := newComposerFixture(lifetime)
	fl.ledger.period[FormatEbook] = PeriodLedger{QuantitySold: 1200, GrossRevenue: 1_200_000}
	fl.recoupments.prev = 50_000

	fp := newComposerFixture(periodTerms())
	fp.ledger.period[FormatEbook] = PeriodLedger{QuantitySold: 1200, GrossRevenue: 1_200_000}
	fp.recoupments.prev = 50_000

	lc, err := fl.composer.Compose(context.Background(), fl.req)
	require.NoError(t, err)
	pc, err := fp.composer.Compose(context.Background(), fp.req)
	require.NoError(t, err)

	assert.Equal(t, pc.GrossRoyalty, lc.GrossRoyalty)
	assert.Equal(t, pc.NetPayable, lc.NetPayable)
	assert.Equal(t, pc.FormatBreakdowns[0].Allocation.Slices, lc.FormatBreakdowns[0].Allocation.Slices)
}

func TestCompose_LifetimeHistoryIncompleteWarns(t *testing.T) {
	terms := periodTerms()
	terms.Mode = ModeLifetime

	f := newComposerFixture(terms)
	f.ledger.period[FormatEbook] = PeriodLedger{QuantitySold: 100, GrossRevenue: 100_000}
	f.ledger.lifetime[FormatEbook] = LifetimeTotals{Units: 200, Complete: false}
	f.recoupments.prev = 50_000

	calc, err := f.composer.Compose(context.Background(), f.req)
	require.NoError(t, err)

	assert.Contains(t, warningCodes(calc.Warnings), WarningLifetimeHistoryIncomplete)
	// The available position is still used.
	assert.Equal(t, int64(200), calc.LifetimeContext.SalesBefore)
}

func TestCompose_NoSalesWarning(t *testing.T) {
	f := newComposerFixture(periodTerms())
	f.ledger.period[FormatEbook] = PeriodLedger{}

	calc, err := f.composer.Compose(context.Background(), f.req)
	require.NoError(t, err)

	assert.Equal(t, types.MinorUnits(0), calc.GrossRoyalty)
	assert.Equal(t, types.MinorUnits(0), calc.NetPayable)
	assert.Equal(t, []WarningCode{WarningNoSales}, warningCodes(calc.Warnings))
}

// Prior recoupment counts as activity: a quiet period on an active contract
// is not flagged no_sales.
func TestCompose_QuietPeriodOnActiveContract(t *testing.T) {
	f := newComposerFixture(periodTerms())
	f.ledger.period[FormatEbook] = PeriodLedger{}
	f.recoupments.prev = 10_000

	calc, err := f.composer.Compose(context.Background(), f.req)
	require.NoError(t, err)

	assert.NotContains(t, warningCodes(calc.Warnings), WarningNoSales)
}

func TestCompose_ZeroNetWarning(t *testing.T) {
	f := newComposerFixture(periodTerms())
	// $300 gross, $500 advance outstanding: recoupment consumes everything.
	f.ledger.period[FormatEbook] = PeriodLedger{QuantitySold: 300, GrossRevenue: 300_000}

	calc, err := f.composer.Compose(context.Background(), f.req)
	require.NoError(t, err)

	assert.Equal(t, types.MinorUnits(30_000), calc.GrossRoyalty)
	assert.Equal(t, types.MinorUnits(0), calc.NetPayable)
	assert.Equal(t, types.MinorUnits(20_000), calc.AdvanceRecoupment.RemainingAdvance)
	assert.Equal(t, []WarningCode{WarningZeroNet}, warningCodes(calc.Warnings))
}

// When several warning conditions hold at once, the emission order follows
// the fixed precedence list regardless of the order conditions were detected.
func TestCompose_WarningPrecedence(t *testing.T) {
	terms := periodTerms()
	terms.Mode = ModeLifetime

	f := newComposerFixture(terms)
	// Over-return plus incomplete history plus full recoupment of a tiny pool.
	f.ledger.period[FormatEbook] = PeriodLedger{
		QuantitySold:     100,
		QuantityReturned: 150,
		GrossRevenue:     100_000,
	}
	f.ledger.lifetime[FormatEbook] = LifetimeTotals{Units: 10, Complete: false}

	calc, err := f.composer.Compose(context.Background(), f.req)
	require.NoError(t, err)

	codes := warningCodes(calc.Warnings)
	require.Contains(t, codes, WarningLifetimeHistoryIncomplete)
	require.Contains(t, codes, WarningNegativeNet)
	assert.Equal(t, WarningLifetimeHistoryIncomplete, codes[0])
	for i := 1; i < len(codes); i++ {
		assert.Less(t, warningPrecedence[codes[i-1]], warningPrecedence[codes[i]])
	}
}

func TestCompose_MultiFormatCanonicalOrder(t *testing.T) {
	terms := periodTerms()
	terms.Tiers[FormatHardcover] = standardTiers()
	terms.Tiers[FormatAudiobook] = standardTiers()

	f := newComposerFixture(terms)
	f.ledger.period[FormatEbook] = PeriodLedger{QuantitySold: 100, GrossRevenue: 100_000}
	f.ledger.period[FormatHardcover] = PeriodLedger{QuantitySold: 50, GrossRevenue: 125_000}
	f.ledger.period[FormatAudiobook] = PeriodLedger{QuantitySold: 10, GrossRevenue: 25_000}
	f.recoupments.prev = 50_000

	calc, err := f.composer.Compose(context.Background(), f.req)
	require.NoError(t, err)

	require.Len(t, calc.FormatBreakdowns, 3)
	assert.Equal(t, FormatEbook, calc.FormatBreakdowns[0].Format)
	assert.Equal(t, FormatHardcover, calc.FormatBreakdowns[1].Format)
	assert.Equal(t, FormatAudiobook, calc.FormatBreakdowns[2].Format)

	var sum types.MinorUnits
	for _, bd := range calc.FormatBreakdowns {
		sum += bd.FormatRoyalty
	}
	assert.Equal(t, sum, calc.GrossRoyalty)
}

// Preview and final generation share this code path: composing twice over
// identical inputs must produce identical results.
func TestCompose_Deterministic(t *testing.T) {
	f := newComposerFixture(periodTerms())
	f.ledger.period[FormatEbook] = PeriodLedger{
		QuantitySold:     1200,
		QuantityReturned: 100,
		GrossRevenue:     1_200_000,
	}

	first, err := f.composer.Compose(context.Background(), f.req)
	require.NoError(t, err)
	second, err := f.composer.Compose(context.Background(), f.req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompose_ContractNotFound(t *testing.T) {
	f := newComposerFixture(periodTerms())

	_, err := f.composer.Compose(context.Background(), ComposeRequest{
		AuthorID:   f.req.AuthorID,
		ContractID: id.New(),
		Period:     f.req.Period,
	})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeContractNotFound, appErr.Code)
}

func TestCompose_MalformedTierTableFatal(t *testing.T) {
	terms := periodTerms()
	terms.Tiers[FormatEbook] = []RoyaltyTier{
		{MinQuantity: 100, Rate: decimal.NewFromFloat(0.10)},
	}

	f := newComposerFixture(terms)
	_, err := f.composer.Compose(context.Background(), f.req)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeMalformedTierTable, appErr.Code)
}

func TestCompose_LedgerUnavailableFatal(t *testing.T) {
	f := newComposerFixture(periodTerms())
	f.ledger.periodErr = errors.New("connection refused")

	_, err := f.composer.Compose(context.Background(), f.req)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeLedgerUnavailable, appErr.Code)
}
