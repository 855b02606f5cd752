package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"imprint/internal/core/id"
	"imprint/internal/core/types"
	"imprint/internal/domain"
	"imprint/internal/domain/royalty"
	"imprint/internal/domain/statements"
	"imprint/internal/infrastructure/storage/postgres"
)

const statementsTable = "doc_statements"

// StatementRepo implements statements.Repository. Payee and calculations are
// JSONB columns; the engine output is stored verbatim so a statement can be
// re-rendered years later exactly as issued.
type StatementRepo struct {
	*BaseDocumentRepo[*statements.Statement]
}

// NewStatementRepo creates a new statement repository.
func NewStatementRepo() *StatementRepo {
	return &StatementRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*statements.Statement](
			statementsTable,
			postgres.ExtractDBColumns[statements.Statement](),
			func() *statements.Statement { return &statements.Statement{} },
		),
	}
}

// List retrieves statements with filtering.
func (r *StatementRepo) List(ctx context.Context, filter statements.ListFilter) (domain.ListResult[*statements.Statement], error) {
	result := domain.ListResult[*statements.Statement]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.AuthorID != nil {
		q = q.Where(squirrel.Eq{"author_id": *filter.AuthorID})
	}

	if filter.ContractID != nil {
		q = q.Where(squirrel.Eq{"contract_id": *filter.ContractID})
	}

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.PeriodFrom != nil {
		q = q.Where(squirrel.GtOrEq{"period_start": *filter.PeriodFrom})
	}

	if filter.PeriodTo != nil {
		q = q.Where(squirrel.LtOrEq{"period_end": *filter.PeriodTo})
	}

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
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

	orderBy := "period_start DESC, number DESC"
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

// ListByAuthor retrieves an author's statements.
func (r *StatementRepo) ListByAuthor(ctx context.Context, authorID id.ID, filter domain.ListFilter) (domain.ListResult[*statements.Statement], error) {
	return r.List(ctx, statements.ListFilter{ListFilter: filter, AuthorID: &authorID})
}

// ExistsForPeriod reports whether a non-void statement already covers the
// contract+period.
func (r *StatementRepo) ExistsForPeriod(ctx context.Context, authorID, contractID id.ID, period royalty.PeriodBounds) (bool, error) {
	q := r.Builder().
		Select("1").
		From(statementsTable).
		Where(squirrel.Eq{"author_id": authorID}).
		Where(squirrel.Eq{"contract_id": contractID}).
		Where(squirrel.Eq{"period_start": period.Start}).
		Where(squirrel.Eq{"period_end": period.End}).
		Where(squirrel.NotEq{"status": statements.StatusVoid}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	err = querier.QueryRow(ctx, sql, args...).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check statement existence: %w", err)
	}
	return true, nil
}

// SumRecouped totals recoupment over non-void statements for an
// author+contract.
func (r *StatementRepo) SumRecouped(ctx context.Context, authorID, contractID id.ID) (types.MinorUnits, error) {
	sql := `
		SELECT COALESCE(SUM(recouped), 0)
		FROM doc_statements
		WHERE author_id = $1
		  AND contract_id = $2
		  AND status <> $3
		  AND deletion_mark = false
	`

	var total types.MinorUnits
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, authorID, contractID, statements.StatusVoid).Scan(&total)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("sum recouped: %w", err)
	}
	return total, nil
}

// Ensure interface compliance.
var _ statements.Repository = (*StatementRepo)(nil)
