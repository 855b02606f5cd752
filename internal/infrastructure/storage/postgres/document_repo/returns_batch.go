package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"imprint/internal/core/id"
	"imprint/internal/domain"
	"imprint/internal/domain/documents/returns_batch"
	"imprint/internal/infrastructure/storage/postgres"
)

const (
	returnsBatchesTable    = "doc_returns_batches"
	returnsBatchLinesTable = "doc_returns_batch_lines"
)

// ReturnsBatchRepo implements returns_batch.Repository.
type ReturnsBatchRepo struct {
	*BaseDocumentRepo[*returns_batch.ReturnsBatch]
}

// NewReturnsBatchRepo creates a new returns batch repository.
func NewReturnsBatchRepo() *ReturnsBatchRepo {
	return &ReturnsBatchRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*returns_batch.ReturnsBatch](
			returnsBatchesTable,
			postgres.ExtractDBColumns[returns_batch.ReturnsBatch](),
			func() *returns_batch.ReturnsBatch { return &returns_batch.ReturnsBatch{} },
		),
	}
}

// GetLines retrieves lines for a returns batch.
func (r *ReturnsBatchRepo) GetLines(ctx context.Context, docID id.ID) ([]returns_batch.ReturnsBatchLine, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "author_id", "contract_id", "title_id",
			"format", "quantity", "refund",
		).
		From(returnsBatchLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []returns_batch.ReturnsBatchLine
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines saves lines for a returns batch (delete existing + insert new).
func (r *ReturnsBatchRepo) SaveLines(ctx context.Context, docID id.ID, lines []returns_batch.ReturnsBatchLine) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + returnsBatchLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(returnsBatchLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "author_id", "contract_id",
			"title_id", "format", "quantity", "refund",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.AuthorID, line.ContractID,
			line.TitleID, line.Format, line.Quantity, line.Refund,
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

// List retrieves returns batches with filtering.
func (r *ReturnsBatchRepo) List(ctx context.Context, filter returns_batch.ListFilter) (domain.ListResult[*returns_batch.ReturnsBatch], error) {
	result := domain.ListResult[*returns_batch.ReturnsBatch]{
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
			"EXISTS (SELECT 1 FROM "+returnsBatchLinesTable+" l WHERE l.document_id = "+returnsBatchesTable+".id AND l.author_id = ?)",
			*filter.AuthorID,
		))
	}

	if filter.Posted != nil {
		q = q.Where(squirrel.Eq{"posted": *filter.Posted})
	}

	if filter.Approved != nil {
		q = q.Where(squirrel.Eq{"approved": *filter.Approved})
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
