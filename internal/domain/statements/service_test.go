package statements

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imprint/internal/core/apperror"
	"imprint/internal/core/id"
	"imprint/internal/core/numerator"
	"imprint/internal/core/security"
	"imprint/internal/core/types"
	"imprint/internal/domain"
	"imprint/internal/domain/royalty"
)

// --- Fakes ---

type fakeTx struct{}

func (fakeTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeNumerator struct{ n int }

func (f *fakeNumerator) GetNextNumber(ctx context.Context, cfg numerator.Config, opts *numerator.Options, period time.Time) (string, error) {
	f.n++
	return fmt.Sprintf("%s-2026-%05d", cfg.Prefix, f.n), nil
}

func (f *fakeNumerator) SetNextNumber(ctx context.Context, cfg numerator.Config, period time.Time, value int64) error {
	return nil
}

type fakeRepo struct {
	statements []*Statement
}

func (r *fakeRepo) Create(ctx context.Context, st *Statement) error {
	r.statements = append(r.statements, st)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, statementID id.ID) (*Statement, error) {
	for _, st := range r.statements {
		if st.ID == statementID {
			return st, nil
		}
	}
	return nil, apperror.NewNotFound("statement", statementID)
}

func (r *fakeRepo) GetByNumber(ctx context.Context, number string) (*Statement, error) {
	for _, st := range r.statements {
		if st.Number == number {
			return st, nil
		}
	}
	return nil, apperror.NewNotFound("statement", number)
}

func (r *fakeRepo) Update(ctx context.Context, st *Statement) error { return nil }

func (r *fakeRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Statement], error) {
	return domain.ListResult[*Statement]{Items: r.statements, TotalCount: int64(len(r.statements))}, nil
}

func (r *fakeRepo) ListByAuthor(ctx context.Context, authorID id.ID, filter domain.ListFilter) (domain.ListResult[*Statement], error) {
	var items []*Statement
	for _, st := range r.statements {
		if st.AuthorID == authorID {
			items = append(items, st)
		}
	}
	return domain.ListResult[*Statement]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *fakeRepo) ExistsForPeriod(ctx context.Context, authorID, contractID id.ID, period royalty.PeriodBounds) (bool, error) {
	for _, st := range r.statements {
		if st.IsVoid() {
			continue
		}
		if st.AuthorID == authorID && st.ContractID == contractID &&
			st.PeriodStart.Equal(period.Start) && st.PeriodEnd.Equal(period.End) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) SumRecouped(ctx context.Context, authorID, contractID id.ID) (types.MinorUnits, error) {
	var total types.MinorUnits
	for _, st := range r.statements {
		if st.IsVoid() {
			continue
		}
		if st.AuthorID == authorID && st.ContractID == contractID {
			total += st.Recouped
		}
	}
	return total, nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, statementID id.ID) (*Statement, error) {
	return r.GetByID(ctx, statementID)
}

type fakeContracts struct {
	terms map[id.ID]*royalty.ContractTerms
}

func (f *fakeContracts) GetTerms(ctx context.Context, contractID id.ID) (*royalty.ContractTerms, error) {
	t, ok := f.terms[contractID]
	if !ok {
		return nil, apperror.NewNotFound("contract", contractID)
	}
	return t, nil
}

func (f *fakeContracts) ListActiveTerms(ctx context.Context) ([]*royalty.ContractTerms, error) {
	out := make([]*royalty.ContractTerms, 0, len(f.terms))
	for _, t := range f.terms {
		out = append(out, t)
	}
	return out, nil
}

type ledgerKey struct {
	contract id.ID
	format   royalty.Format
}

type fakeLedger struct {
	period map[ledgerKey]royalty.PeriodLedger
}

func (f *fakeLedger) GetPeriodTotals(ctx context.Context, authorID, contractID id.ID, format royalty.Format, period royalty.PeriodBounds) (royalty.PeriodLedger, error) {
	l, ok := f.period[ledgerKey{contractID, format}]
	if !ok {
		return royalty.PeriodLedger{Format: format}, nil
	}
	return l, nil
}

func (f *fakeLedger) GetLifetimeTotalsBefore(ctx context.Context, authorID, contractID id.ID, format royalty.Format, before time.Time) (royalty.LifetimeTotals, error) {
	return royalty.LifetimeTotals{Complete: true}, nil
}

type publishedEvent struct {
	aggregateID id.ID
	eventType   string
}

type fakeEvents struct {
	published []publishedEvent
}

func (f *fakeEvents) Publish(ctx context.Context, aggregateID id.ID, eventType string, payload any) error {
	f.published = append(f.published, publishedEvent{aggregateID, eventType})
	return nil
}

type fakePayees struct {
	payees map[id.ID]royalty.PayeeIdentity
}

func (f *fakePayees) GetPayee(ctx context.Context, authorID id.ID) (royalty.PayeeIdentity, error) {
	p, ok := f.payees[authorID]
	if !ok {
		return royalty.PayeeIdentity{}, apperror.NewNotFound("author", authorID)
	}
	return p, nil
}

// --- Fixture ---

type serviceFixture struct {
	svc       *Service
	repo      *fakeRepo
	events    *fakeEvents
	contracts *fakeContracts
	ledger    *fakeLedger
	payees    *fakePayees

	authorID   id.ID
	contractID id.ID
	titleID    id.ID
	period     royalty.PeriodBounds
}

func mustRate(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func ebookTiers(t *testing.T) map[royalty.Format][]royalty.RoyaltyTier {
	t.Helper()
	cap := int64(1000)
	return map[royalty.Format][]royalty.RoyaltyTier{
		royalty.FormatEbook: {
			{MinQuantity: 0, MaxQuantity: &cap, Rate: mustRate(t, "0.10")},
			{MinQuantity: 1000, Rate: mustRate(t, "0.15")},
		},
	}
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		repo:       &fakeRepo{},
		events:     &fakeEvents{},
		payees:     &fakePayees{payees: map[id.ID]royalty.PayeeIdentity{}},
		authorID:   id.New(),
		contractID: id.New(),
		titleID:    id.New(),
		period: royalty.PeriodBounds{
			Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	f.contracts = &fakeContracts{terms: map[id.ID]*royalty.ContractTerms{
		f.contractID: {
			ContractID:    f.contractID,
			AuthorID:      f.authorID,
			TitleID:       f.titleID,
			Tiers:         ebookTiers(t),
			AdvanceAmount: 50_000,
			Mode:          royalty.ModePeriod,
		},
	}}

	// 1200 units at 1000 minor each: 100_000 in tier 0 plus 30_000 in tier 1.
	f.ledger = &fakeLedger{period: map[ledgerKey]royalty.PeriodLedger{
		{f.contractID, royalty.FormatEbook}: {
			Format:       royalty.FormatEbook,
			QuantitySold: 1200,
			GrossRevenue: 1_200_000,
		},
	}}

	f.payees.payees[f.authorID] = royalty.PayeeIdentity{
		ID:    f.authorID,
		Name:  "Iris Bell",
		Email: "iris@example.com",
	}

	composer := royalty.NewComposer(f.contracts, f.ledger, NewRecoupmentSource(f.repo))
	orchestrator := royalty.NewOrchestrator(composer, 2)
	rules, err := security.NewRuleEngine()
	require.NoError(t, err)

	f.svc = NewService(
		f.repo,
		composer,
		orchestrator,
		f.contracts,
		f.contracts,
		f.payees,
		&fakeNumerator{},
		f.events,
		rules,
		fakeTx{},
	)
	return f
}

func (f *serviceFixture) request() royalty.ComposeRequest {
	return royalty.ComposeRequest{AuthorID: f.authorID, ContractID: f.contractID, Period: f.period}
}

// --- Tests ---

func TestService_PreviewDoesNotPersist(t *testing.T) {
	f := newServiceFixture(t)

	calc, err := f.svc.Preview(context.Background(), f.request())
	require.NoError(t, err)

	assert.Equal(t, types.MinorUnits(130_000), calc.GrossRoyalty)
	assert.Equal(t, types.MinorUnits(80_000), calc.NetPayable)
	assert.Empty(t, f.repo.statements)
	assert.Empty(t, f.events.published)
}

func TestService_GenerateMatchesPreview(t *testing.T) {
	f := newServiceFixture(t)

	preview, err := f.svc.Preview(context.Background(), f.request())
	require.NoError(t, err)

	st, err := f.svc.Generate(context.Background(), f.request())
	require.NoError(t, err)

	assert.Equal(t, *preview, st.Calculations)
}

func TestService_Generate(t *testing.T) {
	f := newServiceFixture(t)

	st, err := f.svc.Generate(context.Background(), f.request())
	require.NoError(t, err)

	assert.Equal(t, "RS-2026-00001", st.Number)
	assert.Equal(t, StatusFinal, st.Status)
	assert.Equal(t, f.titleID, st.TitleID)
	assert.Equal(t, types.MinorUnits(130_000), st.GrossRoyalty)
	assert.Equal(t, types.MinorUnits(50_000), st.Recouped)
	assert.Equal(t, types.MinorUnits(80_000), st.NetPayable)
	assert.Equal(t, "Iris Bell", st.Payee.Name)

	require.Len(t, f.repo.statements, 1)
	require.Len(t, f.events.published, 1)
	assert.Equal(t, EventStatementGenerated, f.events.published[0].eventType)
	assert.Equal(t, st.ID, f.events.published[0].aggregateID)
}

func TestService_GenerateRejectsDuplicatePeriod(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Generate(context.Background(), f.request())
	require.NoError(t, err)

	_, err = f.svc.Generate(context.Background(), f.request())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
	assert.Len(t, f.repo.statements, 1)
}

func TestService_GenerateInvalidPeriod(t *testing.T) {
	f := newServiceFixture(t)

	req := f.request()
	req.Period.End = req.Period.Start

	_, err := f.svc.Generate(context.Background(), req)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestService_VoidReleasesRecoupment(t *testing.T) {
	f := newServiceFixture(t)

	first, err := f.svc.Generate(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, types.MinorUnits(50_000), first.Recouped)

	voided, err := f.svc.Void(context.Background(), first.ID, "wrong rate card imported")
	require.NoError(t, err)
	assert.Equal(t, StatusVoid, voided.Status)
	require.NotNil(t, voided.VoidReason)
	assert.Equal(t, "wrong rate card imported", *voided.VoidReason)

	// The period is free again and the advance is back to unrecouped.
	second, err := f.svc.Generate(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, types.MinorUnits(0), second.Calculations.AdvanceRecoupment.PreviouslyRecouped)
	assert.Equal(t, types.MinorUnits(50_000), second.Recouped)
	assert.Equal(t, "RS-2026-00002", second.Number)
}

func TestService_VoidRequiresReason(t *testing.T) {
	f := newServiceFixture(t)

	st, err := f.svc.Generate(context.Background(), f.request())
	require.NoError(t, err)

	_, err = f.svc.Void(context.Background(), st.ID, "")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestService_MarkSent(t *testing.T) {
	f := newServiceFixture(t)

	st, err := f.svc.Generate(context.Background(), f.request())
	require.NoError(t, err)

	sent, err := f.svc.MarkSent(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, sent.Status)
	require.NotNil(t, sent.SentAt)

	eventTypes := make([]string, 0, len(f.events.published))
	for _, e := range f.events.published {
		eventTypes = append(eventTypes, e.eventType)
	}
	assert.Equal(t, []string{EventStatementGenerated, EventStatementSent}, eventTypes)
}

func TestService_GenerateBatch(t *testing.T) {
	f := newServiceFixture(t)

	// Second author: contract with a malformed tier table so composition fails.
	badAuthor, badContract := id.New(), id.New()
	f.contracts.terms[badContract] = &royalty.ContractTerms{
		ContractID: badContract,
		AuthorID:   badAuthor,
		TitleID:    id.New(),
		Tiers:      map[royalty.Format][]royalty.RoyaltyTier{royalty.FormatEbook: {}},
		Mode:       royalty.ModePeriod,
	}
	f.payees.payees[badAuthor] = royalty.PayeeIdentity{ID: badAuthor, Name: "Bad Data"}

	// Third author: statement already generated for the period.
	doneAuthor, doneContract := id.New(), id.New()
	f.contracts.terms[doneContract] = &royalty.ContractTerms{
		ContractID: doneContract,
		AuthorID:   doneAuthor,
		TitleID:    id.New(),
		Tiers:      ebookTiers(t),
		Mode:       royalty.ModePeriod,
	}
	f.payees.payees[doneAuthor] = royalty.PayeeIdentity{ID: doneAuthor, Name: "Already Done"}
	_, err := f.svc.Generate(context.Background(), royalty.ComposeRequest{
		AuthorID: doneAuthor, ContractID: doneContract, Period: f.period,
	})
	require.NoError(t, err)

	report, err := f.svc.GenerateBatch(context.Background(), f.period)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Requested)
	assert.Equal(t, 1, report.Generated)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, report.Items, 3)

	// pre-existing + the one generated by the batch
	assert.Len(t, f.repo.statements, 2)
}

func TestService_PreviewBatchDoesNotPersist(t *testing.T) {
	f := newServiceFixture(t)

	result, err := f.svc.PreviewBatch(context.Background(), f.period)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, f.repo.statements)
}

func TestService_ShouldDispatch(t *testing.T) {
	f := newServiceFixture(t)

	st, err := f.svc.Generate(context.Background(), f.request())
	require.NoError(t, err)

	ok, err := f.svc.ShouldDispatch(context.Background(), st)
	require.NoError(t, err)
	assert.True(t, ok)

	noEmail := *st
	noEmail.Payee.Email = ""
	ok, err = f.svc.ShouldDispatch(context.Background(), &noEmail)
	require.NoError(t, err)
	assert.False(t, ok)

	flagged := *st
	flagged.Calculations.Warnings = []royalty.Warning{{Code: royalty.WarningNegativeNet}}
	ok, err = f.svc.ShouldDispatch(context.Background(), &flagged)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_ShouldDispatchWithoutRules(t *testing.T) {
	f := newServiceFixture(t)
	f.svc.rules = nil

	st, err := f.svc.Generate(context.Background(), f.request())
	require.NoError(t, err)

	ok, err := f.svc.ShouldDispatch(context.Background(), st)
	require.NoError(t, err)
	assert.False(t, ok)
}
