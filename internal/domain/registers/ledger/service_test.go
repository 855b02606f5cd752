package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imprint/internal/core/entity"
	"imprint/internal/core/id"
	"imprint/internal/core/types"
	"imprint/internal/domain/royalty"
)

type fakeRepo struct {
	created   []entity.LedgerMovement
	createErr error

	deletedRecorder id.ID
	deletedBefore   int
	deleteErr       error

	periodTotals PeriodTotals
	totalsBefore CumulativeTotals
	totalsErr    error
}

func (f *fakeRepo) CreateMovements(_ context.Context, movements []entity.LedgerMovement) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, movements...)
	return nil
}

func (f *fakeRepo) DeleteMovementsByRecorder(_ context.Context, recorderID id.ID, beforeVersion int) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedRecorder = recorderID
	f.deletedBefore = beforeVersion
	return nil
}

func (f *fakeRepo) GetMovementsByRecorder(_ context.Context, _ id.ID) ([]entity.LedgerMovement, error) {
	return nil, nil
}

func (f *fakeRepo) GetPeriodTotals(_ context.Context, _, _ id.ID, _ string, _, _ time.Time) (PeriodTotals, error) {
	return f.periodTotals, f.totalsErr
}

func (f *fakeRepo) GetTotalsBefore(_ context.Context, _, _ id.ID, _ string, _ time.Time) (CumulativeTotals, error) {
	return f.totalsBefore, f.totalsErr
}

func (f *fakeRepo) GetBalance(_ context.Context, _, _ id.ID, _ string) (entity.LedgerBalance, error) {
	return entity.LedgerBalance{}, nil
}

func (f *fakeRepo) GetBalancesByAuthor(_ context.Context, _ id.ID) ([]entity.LedgerBalance, error) {
	return nil, nil
}

func (f *fakeRepo) GetMovementHistory(_ context.Context, _ id.ID, _ MovementFilter) ([]entity.LedgerMovement, error) {
	return nil, nil
}

func (f *fakeRepo) RecalculateBalances(_ context.Context, _, _ *id.ID) error {
	return nil
}

var _ Repository = (*fakeRepo)(nil)

func saleMovement(t *testing.T, quantity int64, revenue types.MinorUnits) entity.LedgerMovement {
	t.Helper()

	return entity.NewLedgerMovement(
		id.New(), "SalesBatch", 1,
		time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		entity.RecordTypeReceipt,
		id.New(), id.New(), id.New(),
		string(royalty.FormatEbook),
		quantity, revenue,
	)
}

func TestRecordMovements(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *entity.LedgerMovement)
		wantErr bool
	}{
		{
			name:   "valid movement",
			mutate: func(m *entity.LedgerMovement) {},
		},
		{
			name:    "zero quantity",
			mutate:  func(m *entity.LedgerMovement) { m.Quantity = 0 },
			wantErr: true,
		},
		{
			name:    "negative revenue",
			mutate:  func(m *entity.LedgerMovement) { m.Revenue = -100 },
			wantErr: true,
		},
		{
			name:    "missing recorder",
			mutate:  func(m *entity.LedgerMovement) { m.RecorderID = id.Nil() },
			wantErr: true,
		},
		{
			name:    "unknown format",
			mutate:  func(m *entity.LedgerMovement) { m.Format = "vinyl" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			svc := NewService(repo)

			m := saleMovement(t, 10, 25_000)
			tt.mutate(&m)

			err := svc.RecordMovements(context.Background(), []entity.LedgerMovement{m})
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, repo.created)
			} else {
				require.NoError(t, err)
				require.Len(t, repo.created, 1)
				assert.Equal(t, m.RecorderID, repo.created[0].RecorderID)
			}
		})
	}
}

func TestRecordMovements_EmptyIsNoop(t *testing.T) {
	repo := &fakeRepo{createErr: errors.New("must not be called")}
	svc := NewService(repo)

	err := svc.RecordMovements(context.Background(), nil)
	assert.NoError(t, err)
}

func TestReverseMovements(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	recorderID := id.New()

	err := svc.ReverseMovements(context.Background(), recorderID, 3)
	require.NoError(t, err)
	assert.Equal(t, recorderID, repo.deletedRecorder)
	assert.Equal(t, 3, repo.deletedBefore)
}

func TestReverseMovements_RepoError(t *testing.T) {
	repo := &fakeRepo{deleteErr: errors.New("boom")}
	svc := NewService(repo)

	err := svc.ReverseMovements(context.Background(), id.New(), 1)
	assert.Error(t, err)
}

func TestGetPeriodTotals_MapsToPeriodLedger(t *testing.T) {
	repo := &fakeRepo{periodTotals: PeriodTotals{
		QuantitySold:     120,
		QuantityReturned: 15,
		GrossRevenue:     360_000,
	}}
	svc := NewService(repo)

	period := royalty.PeriodBounds{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}

	got, err := svc.GetPeriodTotals(context.Background(), id.New(), id.New(), royalty.FormatPaperback, period)
	require.NoError(t, err)
	assert.Equal(t, royalty.FormatPaperback, got.Format)
	assert.Equal(t, int64(120), got.QuantitySold)
	assert.Equal(t, int64(15), got.QuantityReturned)
	assert.Equal(t, types.MinorUnits(360_000), got.GrossRevenue)
	assert.Equal(t, int64(105), got.NetQuantity())
}

func TestGetLifetimeTotalsBefore(t *testing.T) {
	tests := []struct {
		name         string
		totals       CumulativeTotals
		wantComplete bool
	}{
		{
			name:         "full history",
			totals:       CumulativeTotals{Units: 9_500, Revenue: 1_900_000},
			wantComplete: true,
		},
		{
			name:         "opening balance present",
			totals:       CumulativeTotals{Units: 9_500, Revenue: 1_900_000, HasOpening: true},
			wantComplete: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{totalsBefore: tt.totals}
			svc := NewService(repo)

			got, err := svc.GetLifetimeTotalsBefore(context.Background(), id.New(), id.New(),
				royalty.FormatEbook, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			assert.Equal(t, int64(9_500), got.Units)
			assert.Equal(t, types.MinorUnits(1_900_000), got.Revenue)
			assert.Equal(t, tt.wantComplete, got.Complete)
		})
	}
}

func TestGetLifetimeTotalsBefore_RepoError(t *testing.T) {
	repo := &fakeRepo{totalsErr: errors.New("boom")}
	svc := NewService(repo)

	_, err := svc.GetLifetimeTotalsBefore(context.Background(), id.New(), id.New(),
		royalty.FormatEbook, time.Now().UTC())
	assert.Error(t, err)
}
