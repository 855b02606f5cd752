package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"imprint/internal/core/apperror"
	"imprint/internal/core/id"
	"imprint/internal/domain/reports"
	"imprint/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetSalesSummary handles GET /reports/sales-summary
func (h *ReportsHandler) GetSalesSummary(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SalesSummaryReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}

	fromDate, err := time.Parse(time.RFC3339, req.FromDate)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid fromDate format, expected RFC3339"))
		return
	}

	toDate, err := time.Parse(time.RFC3339, req.ToDate)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid toDate format, expected RFC3339"))
		return
	}

	filter := reports.SalesSummaryReportFilter{
		FromDate:    fromDate,
		ToDate:      toDate,
		Formats:     req.Formats,
		ExcludeZero: req.ExcludeZero != nil && *req.ExcludeZero,
		Limit:       req.Limit,
		Offset:      req.Offset,
	}

	// Parse author IDs
	for _, aStr := range req.AuthorIDs {
		if aID, err := id.Parse(aStr); err == nil {
			filter.AuthorIDs = append(filter.AuthorIDs, aID)
		}
	}

	// Parse title IDs
	for _, tStr := range req.TitleIDs {
		if tID, err := id.Parse(tStr); err == nil {
			filter.TitleIDs = append(filter.TitleIDs, tID)
		}
	}

	report, err := h.service.GetSalesSummary(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromSalesSummaryReport(report))
}

// GetRoyaltyLiability handles GET /reports/royalty-liability
func (h *ReportsHandler) GetRoyaltyLiability(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RoyaltyLiabilityReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}

	filter := reports.RoyaltyLiabilityReportFilter{
		AsOfDate:    req.AsOfDate,
		ExcludeZero: req.ExcludeZero == nil || *req.ExcludeZero,
		Limit:       req.Limit,
		Offset:      req.Offset,
	}

	// Parse author IDs
	for _, aStr := range req.AuthorIDs {
		if aID, err := id.Parse(aStr); err == nil {
			filter.AuthorIDs = append(filter.AuthorIDs, aID)
		}
	}

	report, err := h.service.GetRoyaltyLiability(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromRoyaltyLiabilityReport(report))
}

// GetDocumentJournal handles GET /reports/document-journal
func (h *ReportsHandler) GetDocumentJournal(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.DocumentJournalRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}

	filter := reports.DocumentJournalFilter{
		DocumentTypes:  req.DocumentTypes,
		Posted:         req.Posted,
		NumberContains: req.NumberContains,
		SortBy:         req.SortBy,
		SortOrder:      req.SortOrder,
		Limit:          req.Limit,
		Offset:         req.Offset,
	}

	// Parse dates
	if req.FromDate != nil {
		if t, err := time.Parse(time.RFC3339, *req.FromDate); err == nil {
			filter.FromDate = &t
		}
	}
	if req.ToDate != nil {
		if t, err := time.Parse(time.RFC3339, *req.ToDate); err == nil {
			filter.ToDate = &t
		}
	}

	journal, err := h.service.GetDocumentJournal(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromDocumentJournal(journal))
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sales-summary", h.GetSalesSummary)
	rg.GET("/royalty-liability", h.GetRoyaltyLiability)
	rg.GET("/document-journal", h.GetDocumentJournal)
}
