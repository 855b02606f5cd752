// Package report_repo provides PostgreSQL implementations for report repositories.
// In Database-per-Tenant architecture, TxManager is obtained from context.
package report_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"imprint/internal/domain/reports"
	"imprint/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
// In Database-per-Tenant architecture, TxManager is obtained from context.
type ReportRepo struct {
	builder squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo() *ReportRepo {
	return &ReportRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// getTxManager retrieves TxManager from context.
func (r *ReportRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// GetSalesSummaryReport aggregates ledger movements per title and format.
func (r *ReportRepo) GetSalesSummaryReport(ctx context.Context, filter reports.SalesSummaryReportFilter) (*reports.SalesSummaryReport, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, fmt.Errorf("from_date and to_date are required")
	}

	query := `
		SELECT
			m.title_id,
			t.name as title_name,
			COALESCE(t.isbn, '') as isbn,
			m.format,
			SUM(CASE WHEN m.record_type = 'receipt' THEN m.quantity ELSE 0 END) as quantity_sold,
			SUM(CASE WHEN m.record_type = 'expense' THEN m.quantity ELSE 0 END) as quantity_returned,
			SUM(CASE WHEN m.record_type = 'receipt' THEN m.quantity ELSE -m.quantity END) as net_units,
			SUM(CASE WHEN m.record_type = 'receipt' THEN m.revenue ELSE 0 END) as gross_revenue,
			SUM(CASE WHEN m.record_type = 'expense' THEN m.revenue ELSE 0 END) as refunded_revenue,
			SUM(CASE WHEN m.record_type = 'receipt' THEN m.revenue ELSE -m.revenue END) as net_revenue
		FROM reg_ledger_movements m
		JOIN cat_titles t ON m.title_id = t.id
		WHERE m.period >= $1 AND m.period < $2
	`
	args := []any{filter.FromDate, filter.ToDate}
	argIndex := 3

	if len(filter.AuthorIDs) > 0 {
		placeholders := make([]string, len(filter.AuthorIDs))
		for i, aID := range filter.AuthorIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, aID)
			argIndex++
		}
		query += fmt.Sprintf(" AND m.author_id IN (%s)", strings.Join(placeholders, ","))
	}

	if len(filter.TitleIDs) > 0 {
		placeholders := make([]string, len(filter.TitleIDs))
		for i, tID := range filter.TitleIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, tID)
			argIndex++
		}
		query += fmt.Sprintf(" AND m.title_id IN (%s)", strings.Join(placeholders, ","))
	}

	if len(filter.Formats) > 0 {
		placeholders := make([]string, len(filter.Formats))
		for i, f := range filter.Formats {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, f)
			argIndex++
		}
		query += fmt.Sprintf(" AND m.format IN (%s)", strings.Join(placeholders, ","))
	}

	query += "\n\t\tGROUP BY m.title_id, t.name, t.isbn, m.format"

	if filter.ExcludeZero {
		query += "\n\t\tHAVING SUM(CASE WHEN m.record_type = 'receipt' THEN m.quantity ELSE -m.quantity END) != 0"
	}

	query += "\n\t\tORDER BY t.name, m.format"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var items []reports.SalesSummaryReportItem
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("sales summary report: %w", err)
	}

	// Calculate totals
	var totalUnits, totalRevenue int64
	for _, item := range items {
		totalUnits += item.NetUnits
		totalRevenue += item.NetRevenue
	}

	return &reports.SalesSummaryReport{
		FromDate:        filter.FromDate,
		ToDate:          filter.ToDate,
		Items:           items,
		TotalItems:      len(items),
		TotalNetUnits:   totalUnits,
		TotalNetRevenue: totalRevenue,
	}, nil
}

// GetRoyaltyLiabilityReport aggregates statement amounts per author. Void
// statements are excluded; the unrecouped advance is the active contracts'
// advance total minus everything recouped so far, floored at zero.
func (r *ReportRepo) GetRoyaltyLiabilityReport(ctx context.Context, filter reports.RoyaltyLiabilityReportFilter) (*reports.RoyaltyLiabilityReport, error) {
	asOfDate := time.Now()
	if filter.AsOfDate != nil {
		asOfDate = *filter.AsOfDate
	}

	query := `
		WITH statement_totals AS (
			SELECT
				s.author_id,
				COUNT(*) as statement_count,
				COUNT(*) FILTER (WHERE s.status = 'sent') as sent_count,
				SUM(s.gross_royalty) as gross_royalty,
				SUM(s.recouped) as recouped,
				SUM(s.net_payable) as net_payable
			FROM doc_statements s
			WHERE s.deletion_mark = false
			  AND s.status != 'void'
			  AND s.period_end <= $1
			GROUP BY s.author_id
		),
		advance_totals AS (
			SELECT c.author_id, SUM(c.advance_amount) as advance_total
			FROM cat_contracts c
			WHERE c.deletion_mark = false AND c.active = true
			GROUP BY c.author_id
		)
		SELECT
			a.id as author_id,
			a.name as author_name,
			COALESCE(st.statement_count, 0) as statement_count,
			COALESCE(st.sent_count, 0) as sent_count,
			COALESCE(st.gross_royalty, 0) as gross_royalty,
			COALESCE(st.recouped, 0) as recouped,
			COALESCE(st.net_payable, 0) as net_payable,
			COALESCE(adv.advance_total, 0) as advance_total,
			GREATEST(COALESCE(adv.advance_total, 0) - COALESCE(st.recouped, 0), 0) as unrecouped_advance
		FROM cat_authors a
		LEFT JOIN statement_totals st ON st.author_id = a.id
		LEFT JOIN advance_totals adv ON adv.author_id = a.id
		WHERE a.deletion_mark = false AND a.is_folder = false
	`
	args := []any{asOfDate}
	argIndex := 2

	if len(filter.AuthorIDs) > 0 {
		placeholders := make([]string, len(filter.AuthorIDs))
		for i, aID := range filter.AuthorIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, aID)
			argIndex++
		}
		query += fmt.Sprintf(" AND a.id IN (%s)", strings.Join(placeholders, ","))
	}

	if filter.ExcludeZero {
		query += " AND COALESCE(st.net_payable, 0) != 0"
	}

	query += " ORDER BY a.name"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var items []reports.RoyaltyLiabilityReportItem
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("royalty liability report: %w", err)
	}

	// Calculate totals
	var totalPayable, totalUnrecouped int64
	for _, item := range items {
		totalPayable += item.NetPayable
		totalUnrecouped += item.UnrecoupedAdvance
	}

	return &reports.RoyaltyLiabilityReport{
		AsOfDate:        asOfDate,
		Items:           items,
		TotalItems:      len(items),
		TotalNetPayable: totalPayable,
		TotalUnrecouped: totalUnrecouped,
	}, nil
}

// journalDocTypes are the document types shown in the journal by default.
var journalDocTypes = []string{"sales_batch", "returns_batch", "statement"}

// GetDocumentJournal retrieves documents for journal view.
func (r *ReportRepo) GetDocumentJournal(ctx context.Context, filter reports.DocumentJournalFilter) (*reports.DocumentJournal, error) {
	docTypes := filter.DocumentTypes
	if len(docTypes) == 0 {
		docTypes = journalDocTypes
	}

	var unions []string
	var args []any
	argIndex := 1

	appendPeriod := func(q string) string {
		if filter.FromDate != nil {
			q += fmt.Sprintf(" AND date >= $%d", argIndex)
			args = append(args, *filter.FromDate)
			argIndex++
		}
		if filter.ToDate != nil {
			q += fmt.Sprintf(" AND date < $%d", argIndex)
			args = append(args, *filter.ToDate)
			argIndex++
		}
		if filter.Posted != nil {
			q += fmt.Sprintf(" AND posted = $%d", argIndex)
			args = append(args, *filter.Posted)
			argIndex++
		}
		if filter.NumberContains != "" {
			q += fmt.Sprintf(" AND number ILIKE $%d", argIndex)
			args = append(args, "%"+filter.NumberContains+"%")
			argIndex++
		}
		return q
	}

	for _, docType := range docTypes {
		switch docType {
		case "sales_batch":
			q := `
				SELECT
					id, 'sales_batch' as document_type, number, date, posted,
					NULL::uuid as author_id, '' as author_name,
					channel,
					total_quantity,
					total_revenue as total_amount,
					comment, deletion_mark, created_at, updated_at
				FROM doc_sales_batches
				WHERE deletion_mark = false
			`
			unions = append(unions, appendPeriod(q))

		case "returns_batch":
			q := `
				SELECT
					id, 'returns_batch' as document_type, number, date, posted,
					NULL::uuid as author_id, '' as author_name,
					channel,
					total_quantity,
					total_refund as total_amount,
					comment, deletion_mark, created_at, updated_at
				FROM doc_returns_batches
				WHERE deletion_mark = false
			`
			unions = append(unions, appendPeriod(q))

		case "statement":
			q := `
				SELECT
					s.id, 'statement' as document_type, s.number, s.date, s.posted,
					s.author_id, COALESCE(a.name, '') as author_name,
					'' as channel,
					0 as total_quantity,
					s.net_payable as total_amount,
					s.comment, s.deletion_mark, s.created_at, s.updated_at
				FROM doc_statements s
				LEFT JOIN cat_authors a ON s.author_id = a.id
				WHERE s.deletion_mark = false
			`
			if filter.FromDate != nil {
				q += fmt.Sprintf(" AND s.date >= $%d", argIndex)
				args = append(args, *filter.FromDate)
				argIndex++
			}
			if filter.ToDate != nil {
				q += fmt.Sprintf(" AND s.date < $%d", argIndex)
				args = append(args, *filter.ToDate)
				argIndex++
			}
			if filter.Posted != nil {
				q += fmt.Sprintf(" AND s.posted = $%d", argIndex)
				args = append(args, *filter.Posted)
				argIndex++
			}
			if filter.NumberContains != "" {
				q += fmt.Sprintf(" AND s.number ILIKE $%d", argIndex)
				args = append(args, "%"+filter.NumberContains+"%")
				argIndex++
			}
			unions = append(unions, q)
		}
	}

	if len(unions) == 0 {
		return &reports.DocumentJournal{
			Items:      []reports.DocumentJournalItem{},
			TotalCount: 0,
		}, nil
	}

	query := strings.Join(unions, " UNION ALL ")
	query += " ORDER BY date DESC, number"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var items []reports.DocumentJournalItem
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("document journal: %w", err)
	}

	return &reports.DocumentJournal{
		Items:      items,
		TotalCount: len(items),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// GetDocumentTypeSummary returns document counts and totals by type.
func (r *ReportRepo) GetDocumentTypeSummary(ctx context.Context, filter reports.DocumentJournalFilter) ([]reports.DocumentTypeSummary, error) {
	var result []reports.DocumentTypeSummary

	docTypes := filter.DocumentTypes
	if len(docTypes) == 0 {
		docTypes = journalDocTypes
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)

	for _, docType := range docTypes {
		var summary reports.DocumentTypeSummary
		summary.DocumentType = docType

		var query string
		var args []any
		argIndex := 1

		switch docType {
		case "sales_batch":
			query = `
				SELECT
					COUNT(*) as count,
					COUNT(*) FILTER (WHERE posted = true) as posted_count,
					COALESCE(SUM(total_quantity), 0) as total_quantity,
					COALESCE(SUM(total_revenue), 0) as total_amount
				FROM doc_sales_batches
				WHERE deletion_mark = false
			`
		case "returns_batch":
			query = `
				SELECT
					COUNT(*) as count,
					COUNT(*) FILTER (WHERE posted = true) as posted_count,
					COALESCE(SUM(total_quantity), 0) as total_quantity,
					COALESCE(SUM(total_refund), 0) as total_amount
				FROM doc_returns_batches
				WHERE deletion_mark = false
			`
		case "statement":
			query = `
				SELECT
					COUNT(*) as count,
					COUNT(*) FILTER (WHERE posted = true) as posted_count,
					0::bigint as total_quantity,
					COALESCE(SUM(net_payable), 0) as total_amount
				FROM doc_statements
				WHERE deletion_mark = false
			`
		default:
			continue
		}

		if filter.FromDate != nil {
			query += fmt.Sprintf(" AND date >= $%d", argIndex)
			args = append(args, *filter.FromDate)
			argIndex++
		}
		if filter.ToDate != nil {
			query += fmt.Sprintf(" AND date < $%d", argIndex)
			args = append(args, *filter.ToDate)
			argIndex++
		}

		err := querier.QueryRow(ctx, query, args...).Scan(
			&summary.Count,
			&summary.PostedCount,
			&summary.TotalQuantity,
			&summary.TotalAmount,
		)
		if err != nil {
			return nil, fmt.Errorf("document type summary for %s: %w", docType, err)
		}

		result = append(result, summary)
	}

	return result, nil
}

// Ensure interface compliance
var _ reports.Repository = (*ReportRepo)(nil)
