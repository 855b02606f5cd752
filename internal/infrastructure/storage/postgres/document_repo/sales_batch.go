package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"imprint/internal/core/id"
	"imprint/internal/domain"
	"imprint/internal/domain/documents/sales_batch"
	"imprint/internal/infrastructure/storage/postgres"
)

const (
	salesBatchesTable    = "doc_sales_batches"
	salesBatchLinesTable = "doc_sales_batch_lines"
)

// SalesBatchRepo implements sales_batch.Repository.
type SalesBatchRepo struct {
	*BaseDocumentRepo[*sales_batch.SalesBatch]
}

// NewSalesBatchRepo creates a new sales batch repository.
func NewSalesBatchRepo() *SalesBatchRepo {
	return &SalesBatchRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*sales_batch.SalesBatch](
			salesBatchesTable,
			postgres.ExtractDBColumns[sales_batch.SalesBatch](),
			func() *sales_batch.SalesBatch { return &sales_batch.SalesBatch{} },
		),
	}
}

// GetLines retrieves lines for a sales batch.
func (r *SalesBatchRepo) GetLines(ctx context.Context, docID id.ID) ([]sales_batch.SalesBatchLine, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "author_id", "contract_id", "title_id",
			"format", "quantity", "revenue",
		).
		From(salesBatchLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []sales_batch.SalesBatchLine
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines saves lines for a sales batch (delete existing + insert new).
func (r *SalesBatchRepo) SaveLines(ctx context.Context, docID id.ID, lines []sales_batch.SalesBatchLine) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + salesBatchLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(salesBatchLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "author_id", "contract_id",
			"title_id", "format", "quantity", "revenue",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.AuthorID, line.ContractID,
			line.TitleID, line.Format, line.Quantity, line.Revenue,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// List retrieves sales batches with filtering.
func (r *SalesBatchRepo) List(ctx context.Context, filter sales_batch.ListFilter) (domain.ListResult[*sales_batch.SalesBatch], error) {
	result := domain.ListResult[*sales_batch.SalesBatch]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.Channel != nil {
		q = q.Where(squirrel.Eq{"channel": *filter.Channel})
	}

	if filter.AuthorID != nil {
		q = q.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM "+salesBatchLinesTable+" l WHERE l.document_id = "+salesBatchesTable+".id AND l.author_id = ?)",
			*filter.AuthorID,
		))
	}

	if filter.Posted != nil {
		q = q.Where(squirrel.Eq{"posted": *filter.Posted})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": searchPattern},
			squirrel.ILike{"channel_reference": searchPattern},
		})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy := "date DESC"
	if filter.OrderBy != "" {
		orderBy = filter.OrderBy
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	return result, nil
}
