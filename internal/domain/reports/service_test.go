package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReportRepo struct {
	salesFilter   SalesSummaryReportFilter
	journalFilter DocumentJournalFilter

	summary    *SalesSummaryReport
	liability  *RoyaltyLiabilityReport
	journal    *DocumentJournal
	summaryErr error
}

func (f *fakeReportRepo) GetSalesSummaryReport(_ context.Context, filter SalesSummaryReportFilter) (*SalesSummaryReport, error) {
	f.salesFilter = filter
	if f.summary == nil {
		return &SalesSummaryReport{}, nil
	}
	return f.summary, nil
}

func (f *fakeReportRepo) GetRoyaltyLiabilityReport(_ context.Context, filter RoyaltyLiabilityReportFilter) (*RoyaltyLiabilityReport, error) {
	if f.liability == nil {
		return &RoyaltyLiabilityReport{AsOfDate: *filter.AsOfDate}, nil
	}
	return f.liability, nil
}

func (f *fakeReportRepo) GetDocumentJournal(_ context.Context, filter DocumentJournalFilter) (*DocumentJournal, error) {
	f.journalFilter = filter
	if f.journal == nil {
		return &DocumentJournal{}, nil
	}
	return f.journal, nil
}

func (f *fakeReportRepo) GetDocumentTypeSummary(_ context.Context, _ DocumentJournalFilter) ([]DocumentTypeSummary, error) {
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	return []DocumentTypeSummary{{DocumentType: "sales_batch", Count: 2}}, nil
}

var _ Repository = (*fakeReportRepo)(nil)

func TestGetSalesSummary_Validation(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		filter  SalesSummaryReportFilter
		wantErr bool
	}{
		{name: "valid range", filter: SalesSummaryReportFilter{FromDate: from, ToDate: to}},
		{name: "missing from date", filter: SalesSummaryReportFilter{ToDate: to}, wantErr: true},
		{name: "missing to date", filter: SalesSummaryReportFilter{FromDate: from}, wantErr: true},
		{name: "inverted range", filter: SalesSummaryReportFilter{FromDate: to, ToDate: from}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&fakeReportRepo{})

			_, err := svc.GetSalesSummary(context.Background(), tt.filter)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetSalesSummary_PaginationDefaults(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := NewService(repo)

	filter := SalesSummaryReportFilter{
		FromDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ToDate:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}

	_, err := svc.GetSalesSummary(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 100, repo.salesFilter.Limit)

	filter.Limit = 5000
	_, err = svc.GetSalesSummary(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 1000, repo.salesFilter.Limit)
}

func TestGetRoyaltyLiability_DefaultsAsOfDate(t *testing.T) {
	svc := NewService(&fakeReportRepo{})

	report, err := svc.GetRoyaltyLiability(context.Background(), RoyaltyLiabilityReportFilter{})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), report.AsOfDate, time.Minute)
}

func TestGetDocumentJournal_Defaults(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := NewService(repo)

	journal, err := svc.GetDocumentJournal(context.Background(), DocumentJournalFilter{})
	require.NoError(t, err)

	assert.Equal(t, 50, repo.journalFilter.Limit)
	assert.Equal(t, "date", repo.journalFilter.SortBy)
	assert.Equal(t, "desc", repo.journalFilter.SortOrder)

	// First page carries the per-type summary.
	require.Len(t, journal.Summary, 1)
	assert.Equal(t, "sales_batch", journal.Summary[0].DocumentType)
}

func TestGetDocumentJournal_OffsetSkipsSummary(t *testing.T) {
	repo := &fakeReportRepo{summaryErr: errors.New("must not matter")}
	svc := NewService(repo)

	journal, err := svc.GetDocumentJournal(context.Background(), DocumentJournalFilter{Offset: 50})
	require.NoError(t, err)
	assert.Empty(t, journal.Summary)
}
