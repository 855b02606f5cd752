package dto

import (
	"time"

	"imprint/internal/domain/reports"
)

// --- Sales Summary Report ---

// SalesSummaryReportRequest represents request for the sales summary report.
type SalesSummaryReportRequest struct {
	FromDate    string   `form:"fromDate" binding:"required"`
	ToDate      string   `form:"toDate" binding:"required"`
	AuthorIDs   []string `form:"authorId"`
	TitleIDs    []string `form:"titleId"`
	Formats     []string `form:"format"`
	ExcludeZero *bool    `form:"excludeZero"`
	Limit       int      `form:"limit"`
	Offset      int      `form:"offset"`
}

// SalesSummaryReportResponse represents the sales summary report response.
type SalesSummaryReportResponse struct {
	FromDate        string                           `json:"fromDate"`
	ToDate          string                           `json:"toDate"`
	Items           []SalesSummaryReportItemResponse `json:"items"`
	TotalItems      int                              `json:"totalItems"`
	TotalNetUnits   int64                            `json:"totalNetUnits"`
	TotalNetRevenue int64                            `json:"totalNetRevenue"`
}

// SalesSummaryReportItemResponse represents a single title+format row.
type SalesSummaryReportItemResponse struct {
	TitleID          string `json:"titleId"`
	TitleName        string `json:"titleName"`
	ISBN             string `json:"isbn,omitempty"`
	Format           string `json:"format"`
	QuantitySold     int64  `json:"quantitySold"`
	QuantityReturned int64  `json:"quantityReturned"`
	NetUnits         int64  `json:"netUnits"`
	GrossRevenue     int64  `json:"grossRevenue"`
	RefundedRevenue  int64  `json:"refundedRevenue"`
	NetRevenue       int64  `json:"netRevenue"`
}

// FromSalesSummaryReport converts domain report to response DTO.
func FromSalesSummaryReport(r *reports.SalesSummaryReport) *SalesSummaryReportResponse {
	resp := &SalesSummaryReportResponse{
		FromDate:        r.FromDate.Format(time.RFC3339),
		ToDate:          r.ToDate.Format(time.RFC3339),
		Items:           make([]SalesSummaryReportItemResponse, len(r.Items)),
		TotalItems:      r.TotalItems,
		TotalNetUnits:   r.TotalNetUnits,
		TotalNetRevenue: r.TotalNetRevenue,
	}

	for i, item := range r.Items {
		resp.Items[i] = SalesSummaryReportItemResponse{
			TitleID:          item.TitleID.String(),
			TitleName:        item.TitleName,
			ISBN:             item.ISBN,
			Format:           item.Format,
			QuantitySold:     item.QuantitySold,
			QuantityReturned: item.QuantityReturned,
			NetUnits:         item.NetUnits,
			GrossRevenue:     item.GrossRevenue,
			RefundedRevenue:  item.RefundedRevenue,
			NetRevenue:       item.NetRevenue,
		}
	}

	return resp
}

// --- Royalty Liability Report ---

// RoyaltyLiabilityReportRequest represents request for the liability report.
type RoyaltyLiabilityReportRequest struct {
	AsOfDate    *time.Time `form:"asOfDate"`
	AuthorIDs   []string   `form:"authorId"`
	ExcludeZero *bool      `form:"excludeZero"`
	Limit       int        `form:"limit"`
	Offset      int        `form:"offset"`
}

// RoyaltyLiabilityReportResponse represents the liability report response.
type RoyaltyLiabilityReportResponse struct {
	AsOfDate        string                               `json:"asOfDate"`
	Items           []RoyaltyLiabilityReportItemResponse `json:"items"`
	TotalItems      int                                  `json:"totalItems"`
	TotalNetPayable int64                                `json:"totalNetPayable"`
	TotalUnrecouped int64                                `json:"totalUnrecouped"`
}

// RoyaltyLiabilityReportItemResponse represents a single author row.
type RoyaltyLiabilityReportItemResponse struct {
	AuthorID          string `json:"authorId"`
	AuthorName        string `json:"authorName"`
	StatementCount    int    `json:"statementCount"`
	SentCount         int    `json:"sentCount"`
	GrossRoyalty      int64  `json:"grossRoyalty"`
	Recouped          int64  `json:"recouped"`
	NetPayable        int64  `json:"netPayable"`
	AdvanceTotal      int64  `json:"advanceTotal"`
	UnrecoupedAdvance int64  `json:"unrecoupedAdvance"`
}

// FromRoyaltyLiabilityReport converts domain report to response DTO.
func FromRoyaltyLiabilityReport(r *reports.RoyaltyLiabilityReport) *RoyaltyLiabilityReportResponse {
	resp := &RoyaltyLiabilityReportResponse{
		AsOfDate:        r.AsOfDate.Format(time.RFC3339),
		Items:           make([]RoyaltyLiabilityReportItemResponse, len(r.Items)),
		TotalItems:      r.TotalItems,
		TotalNetPayable: r.TotalNetPayable,
		TotalUnrecouped: r.TotalUnrecouped,
	}

	for i, item := range r.Items {
		resp.Items[i] = RoyaltyLiabilityReportItemResponse{
			AuthorID:          item.AuthorID.String(),
			AuthorName:        item.AuthorName,
			StatementCount:    item.StatementCount,
			SentCount:         item.SentCount,
			GrossRoyalty:      item.GrossRoyalty,
			Recouped:          item.Recouped,
			NetPayable:        item.NetPayable,
			AdvanceTotal:      item.AdvanceTotal,
			UnrecoupedAdvance: item.UnrecoupedAdvance,
		}
	}

	return resp
}

// --- Document Journal ---

// DocumentJournalRequest represents request for document journal.
type DocumentJournalRequest struct {
	FromDate       *string  `form:"fromDate"`
	ToDate         *string  `form:"toDate"`
	DocumentTypes  []string `form:"documentType"`
	Posted         *bool    `form:"posted"`
	NumberContains string   `form:"number"`
	SortBy         string   `form:"sortBy"`
	SortOrder      string   `form:"sortOrder"`
	Limit          int      `form:"limit"`
	Offset         int      `form:"offset"`
}

// DocumentJournalResponse represents document journal response.
type DocumentJournalResponse struct {
	Items      []DocumentJournalItemResponse `json:"items"`
	TotalCount int                           `json:"totalCount"`
	Limit      int                           `json:"limit"`
	Offset     int                           `json:"offset"`
	Summary    []DocumentTypeSummaryResponse `json:"summary,omitempty"`
}

// DocumentJournalItemResponse represents a document in journal.
type DocumentJournalItemResponse struct {
	ID            string  `json:"id"`
	DocumentType  string  `json:"documentType"`
	Number        string  `json:"number"`
	Date          string  `json:"date"`
	Posted        bool    `json:"posted"`
	AuthorID      *string `json:"authorId,omitempty"`
	AuthorName    string  `json:"authorName,omitempty"`
	Channel       string  `json:"channel,omitempty"`
	TotalQuantity int64   `json:"totalQuantity"`
	TotalAmount   int64   `json:"totalAmount"`
	Comment       string  `json:"comment,omitempty"`
	DeletionMark  bool    `json:"deletionMark,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// DocumentTypeSummaryResponse represents summary by document type.
type DocumentTypeSummaryResponse struct {
	DocumentType  string `json:"documentType"`
	Count         int    `json:"count"`
	PostedCount   int    `json:"postedCount"`
	TotalQuantity int64  `json:"totalQuantity"`
	TotalAmount   int64  `json:"totalAmount"`
}

// FromDocumentJournal converts domain journal to response DTO.
func FromDocumentJournal(j *reports.DocumentJournal) *DocumentJournalResponse {
	resp := &DocumentJournalResponse{
		Items:      make([]DocumentJournalItemResponse, len(j.Items)),
		TotalCount: j.TotalCount,
		Limit:      j.Limit,
		Offset:     j.Offset,
	}

	for i, item := range j.Items {
		resp.Items[i] = DocumentJournalItemResponse{
			ID:            item.ID.String(),
			DocumentType:  item.DocumentType,
			Number:        item.Number,
			Date:          item.Date.Format(time.RFC3339),
			Posted:        item.Posted,
			AuthorName:    item.AuthorName,
			Channel:       item.Channel,
			TotalQuantity: item.TotalQuantity,
			TotalAmount:   item.TotalAmount,
			Comment:       item.Comment,
			DeletionMark:  item.DeletionMark,
			CreatedAt:     item.CreatedAt.Format(time.RFC3339),
			UpdatedAt:     item.UpdatedAt.Format(time.RFC3339),
		}

		if item.AuthorID != nil {
			s := item.AuthorID.String()
			resp.Items[i].AuthorID = &s
		}
	}

	if j.Summary != nil {
		resp.Summary = make([]DocumentTypeSummaryResponse, len(j.Summary))
		for i, s := range j.Summary {
			resp.Summary[i] = DocumentTypeSummaryResponse{
				DocumentType:  s.DocumentType,
				Count:         s.Count,
				PostedCount:   s.PostedCount,
				TotalQuantity: s.TotalQuantity,
				TotalAmount:   s.TotalAmount,
			}
		}
	}

	return resp
}
