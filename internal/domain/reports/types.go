// Package reports provides report generation services.
package reports

import (
	"time"

	"imprint/internal/core/id"
)

// --- Sales Summary Report ---

// SalesSummaryReportFilter defines filter for the sales summary report.
type SalesSummaryReportFilter struct {
	// Period (required)
	FromDate time.Time
	ToDate   time.Time

	// Filters
	AuthorIDs []id.ID
	TitleIDs  []id.ID
	Formats   []string

	// Exclude rows where nothing moved in the period
	ExcludeZero bool

	// Pagination
	Limit  int
	Offset int
}

// SalesSummaryReportItem represents a single title+format row.
type SalesSummaryReportItem struct {
	TitleID          id.ID  `json:"titleId"`
	TitleName        string `json:"titleName"`
	ISBN             string `json:"isbn,omitempty"`
	Format           string `json:"format"`
	QuantitySold     int64  `json:"quantitySold"`
	QuantityReturned int64  `json:"quantityReturned"`
	NetUnits         int64  `json:"netUnits"`
	// Amounts in minor units
	GrossRevenue    int64 `json:"grossRevenue"`
	RefundedRevenue int64 `json:"refundedRevenue"`
	NetRevenue      int64 `json:"netRevenue"`
}

// SalesSummaryReport represents the full sales summary report.
type SalesSummaryReport struct {
	FromDate   time.Time                `json:"fromDate"`
	ToDate     time.Time                `json:"toDate"`
	Items      []SalesSummaryReportItem `json:"items"`
	TotalItems int                      `json:"totalItems"`

	// Summary totals
	TotalNetUnits   int64 `json:"totalNetUnits"`
	TotalNetRevenue int64 `json:"totalNetRevenue"`
}

// --- Royalty Liability Report ---

// RoyaltyLiabilityReportFilter defines filter for the royalty liability report.
type RoyaltyLiabilityReportFilter struct {
	// AsOfDate - report date (defaults to now); statements whose period
	// ends later are left out
	AsOfDate *time.Time

	// Filters
	AuthorIDs []id.ID

	// Exclude authors with zero accrued liability
	ExcludeZero bool

	// Pagination
	Limit  int
	Offset int
}

// RoyaltyLiabilityReportItem represents a single author row.
type RoyaltyLiabilityReportItem struct {
	AuthorID       id.ID  `json:"authorId"`
	AuthorName     string `json:"authorName"`
	StatementCount int    `json:"statementCount"`
	SentCount      int    `json:"sentCount"`
	// Amounts in minor units
	GrossRoyalty      int64 `json:"grossRoyalty"`
	Recouped          int64 `json:"recouped"`
	NetPayable        int64 `json:"netPayable"`
	AdvanceTotal      int64 `json:"advanceTotal"`
	UnrecoupedAdvance int64 `json:"unrecoupedAdvance"`
}

// RoyaltyLiabilityReport represents the full liability report.
type RoyaltyLiabilityReport struct {
	AsOfDate   time.Time                    `json:"asOfDate"`
	Items      []RoyaltyLiabilityReportItem `json:"items"`
	TotalItems int                          `json:"totalItems"`

	// Summary
	TotalNetPayable int64 `json:"totalNetPayable"`
	TotalUnrecouped int64 `json:"totalUnrecouped"`
}

// --- Document Journal ---

// DocumentJournalFilter defines filter for document journal.
type DocumentJournalFilter struct {
	// Period
	FromDate *time.Time
	ToDate   *time.Time

	// Document types filter
	DocumentTypes []string

	// Status filter
	Posted *bool

	// Search by number
	NumberContains string

	// Sorting
	SortBy    string // "date", "number", "type", "amount"
	SortOrder string // "asc", "desc"

	// Pagination
	Limit  int
	Offset int
}

// DocumentJournalItem represents a document in the journal.
type DocumentJournalItem struct {
	ID           id.ID     `json:"id"`
	DocumentType string    `json:"documentType"`
	Number       string    `json:"number"`
	Date         time.Time `json:"date"`
	Posted       bool      `json:"posted"`

	// Author info (statements only; batches aggregate many authors)
	AuthorID   *id.ID `json:"authorId,omitempty"`
	AuthorName string `json:"authorName,omitempty"`

	// Channel info (batches only)
	Channel string `json:"channel,omitempty"`

	// Totals (amount in minor units)
	TotalQuantity int64 `json:"totalQuantity"`
	TotalAmount   int64 `json:"totalAmount"`

	Comment      string    `json:"comment,omitempty"`
	DeletionMark bool      `json:"deletionMark"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DocumentJournal represents the document journal result.
type DocumentJournal struct {
	Items      []DocumentJournalItem `json:"items"`
	TotalCount int                   `json:"totalCount"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`

	// Summary by document type
	Summary []DocumentTypeSummary `json:"summary,omitempty"`
}

// DocumentTypeSummary provides count and totals by document type.
type DocumentTypeSummary struct {
	DocumentType  string `json:"documentType"`
	Count         int    `json:"count"`
	PostedCount   int    `json:"postedCount"`
	TotalQuantity int64  `json:"totalQuantity"`
	TotalAmount   int64  `json:"totalAmount"`
}
