package royalty

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imprint/internal/core/id"
)

type batchFixture struct {
	contracts    *fakeContracts
	ledger       *fakeLedger
	recoupments  *fakeRecoupments
	orchestrator *Orchestrator
	reqs         []ComposeRequest
}

// newBatchFixture builds n authors, each with their own single-format period
// contract and identical sales.
func newBatchFixture(n, workers int) *batchFixture {
	f := &batchFixture{
		contracts:   &fakeContracts{terms: map[id.ID]*ContractTerms{}},
		ledger:      &fakeLedger{period: map[Format]PeriodLedger{}, lifetime: map[Format]LifetimeTotals{}},
		recoupments: &fakeRecoupments{prev: 50_000},
	}
	f.ledger.period[FormatEbook] = PeriodLedger{QuantitySold: 1200, GrossRevenue: 1_200_000}

	period := PeriodBounds{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	for i := 0; i < n; i++ {
		terms := periodTerms()
		terms.ContractID = id.New()
		terms.AuthorID = id.New()
		f.contracts.terms[terms.ContractID] = terms
		f.reqs = append(f.reqs, ComposeRequest{
			AuthorID:   terms.AuthorID,
			ContractID: terms.ContractID,
			Period:     period,
		})
	}

	composer := NewComposer(f.contracts, f.ledger, f.recoupments)
	f.orchestrator = NewOrchestrator(composer, workers)
	return f
}

func TestOrchestratorRun_AllSucceed(t *testing.T) {
	f := newBatchFixture(25, 4)

	result := f.orchestrator.Run(context.Background(), f.reqs)

	assert.Equal(t, 25, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, result.Outcomes, 25)
	for _, out := range result.Outcomes {
		require.NoError(t, out.Err)
		require.NotNil(t, out.Calculations)
		assert.Equal(t, out.AuthorID, out.Calculations.AuthorID)
	}
}

// One author's broken contract must not abort the batch: everyone else still
// gets a statement and the failure is attributed to its author.
func TestOrchestratorRun_FailureIsolation(t *testing.T) {
	f := newBatchFixture(10, 4)

	broken := f.reqs[3]
	f.contracts.terms[broken.ContractID].Tiers[FormatEbook] = nil

	result := f.orchestrator.Run(context.Background(), f.reqs)

	assert.Equal(t, 9, result.Succeeded)
	assert.Equal(t, 1, result.Failed)

	for _, out := range result.Outcomes {
		if out.AuthorID == broken.AuthorID {
			require.Error(t, out.Err)
			assert.Nil(t, out.Calculations)
		} else {
			require.NoError(t, out.Err)
			require.NotNil(t, out.Calculations)
		}
	}
}

func TestOrchestratorRun_OutcomesOrderedByAuthor(t *testing.T) {
	f := newBatchFixture(30, 8)

	result := f.orchestrator.Run(context.Background(), f.reqs)

	ids := make([]string, 0, len(result.Outcomes))
	for _, out := range result.Outcomes {
		ids = append(ids, out.AuthorID.String())
	}
	assert.True(t, sort.StringsAreSorted(ids))
}

// A cancelled context stops scheduling; requests never started are reported
// as failed with the context error rather than silently dropped.
func TestOrchestratorRun_Cancellation(t *testing.T) {
	f := newBatchFixture(20, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := f.orchestrator.Run(ctx, f.reqs)

	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 20, result.Failed)
	for _, out := range result.Outcomes {
		assert.ErrorIs(t, out.Err, context.Canceled)
	}
}

func TestNewOrchestrator_DefaultWorkers(t *testing.T) {
	o := NewOrchestrator(nil, 0)
	assert.Equal(t, defaultBatchWorkers, o.workers)

	o = NewOrchestrator(nil, -3)
	assert.Equal(t, defaultBatchWorkers, o.workers)

	o = NewOrchestrator(nil, 16)
	assert.Equal(t, 16, o.workers)
}
