package reports

import (
	"context"
)

// Repository defines report data access interface.
type Repository interface {
	// Royalty reports
	GetSalesSummaryReport(ctx context.Context, filter SalesSummaryReportFilter) (*SalesSummaryReport, error)
	GetRoyaltyLiabilityReport(ctx context.Context, filter RoyaltyLiabilityReportFilter) (*RoyaltyLiabilityReport, error)

	// Document journal
	GetDocumentJournal(ctx context.Context, filter DocumentJournalFilter) (*DocumentJournal, error)
	GetDocumentTypeSummary(ctx context.Context, filter DocumentJournalFilter) ([]DocumentTypeSummary, error)
}
