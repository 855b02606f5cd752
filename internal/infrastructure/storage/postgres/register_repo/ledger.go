// Package register_repo provides PostgreSQL implementations for register repositories.
// In Database-per-Tenant architecture, TxManager is obtained from context.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"imprint/internal/core/entity"
	"imprint/internal/core/id"
	"imprint/internal/domain/registers/ledger"
	"imprint/internal/infrastructure/storage/postgres"
)

const (
	ledgerMovementsTable = "reg_ledger_movements"
	ledgerBalancesTable  = "reg_ledger_balances"
)

// LedgerRepo implements ledger.Repository.
// In Database-per-Tenant architecture, TxManager is obtained from context.
type LedgerRepo struct {
	builder squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new sales ledger register repository.
func NewLedgerRepo() *LedgerRepo {
	return &LedgerRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// getTxManager retrieves TxManager from context.
func (r *LedgerRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

var ledgerMovementColumns = []string{
	"line_id", "recorder_id", "recorder_type", "recorder_version",
	"period", "record_type",
	"author_id", "contract_id", "title_id", "format",
	"quantity", "revenue", "created_at",
}

// CreateMovements batch inserts movements.
func (r *LedgerRepo) CreateMovements(ctx context.Context, movements []entity.LedgerMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	txm := r.getTxManager(ctx)
	if tx := txm.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(txm)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
				m.Period, m.RecordType,
				m.AuthorID, m.ContractID, m.TitleID, m.Format,
				m.Quantity, m.Revenue, m.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, ledgerMovementsTable, ledgerMovementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	// Fallback: non-transactional insert (slower). Prefer calling CreateMovements within tx.
	q := r.builder.Insert(ledgerMovementsTable).Columns(ledgerMovementColumns...)
	for _, m := range movements {
		q = q.Values(
			m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
			m.Period, m.RecordType,
			m.AuthorID, m.ContractID, m.TitleID, m.Format,
			m.Quantity, m.Revenue, m.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}

	return nil
}

// DeleteMovementsByRecorder removes movements for a document version.
func (r *LedgerRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	q := r.builder.Delete(ledgerMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		Where(squirrel.Lt{"recorder_version": beforeVersion})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	return nil
}

// GetMovementsByRecorder retrieves movements for a document.
func (r *LedgerRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.LedgerMovement, error) {
	q := r.builder.Select(ledgerMovementColumns...).
		From(ledgerMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.LedgerMovement
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// GetPeriodTotals sums sold/returned quantities and gross revenue for
// author+contract+format within [from, to).
func (r *LedgerRepo) GetPeriodTotals(ctx context.Context, authorID, contractID id.ID, format string, from, to time.Time) (ledger.PeriodTotals, error) {
	var totals ledger.PeriodTotals

	sql := `
		SELECT
			COALESCE(SUM(CASE WHEN record_type = 'receipt' THEN quantity ELSE 0 END), 0) AS quantity_sold,
			COALESCE(SUM(CASE WHEN record_type = 'expense' THEN quantity ELSE 0 END), 0) AS quantity_returned,
			COALESCE(SUM(CASE WHEN record_type = 'receipt' THEN revenue ELSE 0 END), 0) AS gross_revenue
		FROM reg_ledger_movements
		WHERE author_id = $1
		  AND contract_id = $2
		  AND format = $3
		  AND period >= $4
		  AND period < $5
	`

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, authorID, contractID, format, from, to).
		Scan(&totals.QuantitySold, &totals.QuantityReturned, &totals.GrossRevenue)
	if err != nil && err != pgx.ErrNoRows {
		return totals, fmt.Errorf("aggregate period totals: %w", err)
	}

	return totals, nil
}

// GetTotalsBefore sums net quantity and revenue strictly before a date.
// HasOpening flags aggregate opening-balance rows inside the sum: the
// per-period history behind those rows never made it into the ledger.
func (r *LedgerRepo) GetTotalsBefore(ctx context.Context, authorID, contractID id.ID, format string, before time.Time) (ledger.CumulativeTotals, error) {
	var totals ledger.CumulativeTotals

	sql := `
		SELECT
			COALESCE(SUM(CASE WHEN record_type = 'receipt' THEN quantity ELSE -quantity END), 0) AS units,
			COALESCE(SUM(CASE WHEN record_type = 'receipt' THEN revenue ELSE -revenue END), 0) AS revenue,
			COALESCE(BOOL_OR(recorder_type = $5), false) AS has_opening
		FROM reg_ledger_movements
		WHERE author_id = $1
		  AND contract_id = $2
		  AND format = $3
		  AND period < $4
	`

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, authorID, contractID, format, before, ledger.RecorderTypeOpening).
		Scan(&totals.Units, &totals.Revenue, &totals.HasOpening)
	if err != nil && err != pgx.ErrNoRows {
		return totals, fmt.Errorf("aggregate lifetime totals: %w", err)
	}

	return totals, nil
}

// GetBalance returns the cumulative position for a dimension tuple.
func (r *LedgerRepo) GetBalance(ctx context.Context, authorID, contractID id.ID, format string) (entity.LedgerBalance, error) {
	var balance entity.LedgerBalance

	q := r.builder.Select(
		"author_id", "contract_id", "title_id", "format",
		"quantity", "revenue", "last_movement_at", "updated_at",
	).From(ledgerBalancesTable).
		Where(squirrel.Eq{
			"author_id":   authorID,
			"contract_id": contractID,
			"format":      format,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return balance, fmt.Errorf("build query: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity.LedgerBalance{
				AuthorID:   authorID,
				ContractID: contractID,
				Format:     format,
			}, nil
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// GetBalancesByAuthor returns positions across all contracts of an author.
func (r *LedgerRepo) GetBalancesByAuthor(ctx context.Context, authorID id.ID) ([]entity.LedgerBalance, error) {
	q := r.builder.Select(
		"author_id", "contract_id", "title_id", "format",
		"quantity", "revenue", "last_movement_at", "updated_at",
	).From(ledgerBalancesTable).
		Where(squirrel.Eq{"author_id": authorID}).
		OrderBy("contract_id", "format")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.LedgerBalance
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// GetMovementHistory returns movement history for a contract.
func (r *LedgerRepo) GetMovementHistory(ctx context.Context, contractID id.ID, filter ledger.MovementFilter) ([]entity.LedgerMovement, error) {
	q := r.builder.Select(ledgerMovementColumns...).
		From(ledgerMovementsTable).
		Where(squirrel.Eq{"contract_id": contractID})

	if filter.AuthorID != nil {
		q = q.Where(squirrel.Eq{"author_id": *filter.AuthorID})
	}

	if filter.Format != nil {
		q = q.Where(squirrel.Eq{"format": *filter.Format})
	}

	if filter.RecordType != nil {
		q = q.Where(squirrel.Eq{"record_type": *filter.RecordType})
	}

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"period": *filter.FromDate})
	}

	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"period": *filter.ToDate})
	}

	q = q.OrderBy("period DESC", "created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.LedgerMovement
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}

	return movements, nil
}

// RecalculateBalances rebuilds the balance table from movements.
func (r *LedgerRepo) RecalculateBalances(ctx context.Context, authorID, contractID *id.ID) error {
	conditions := squirrel.And{}
	if authorID != nil {
		conditions = append(conditions, squirrel.Eq{"author_id": *authorID})
	}
	if contractID != nil {
		conditions = append(conditions, squirrel.Eq{"contract_id": *contractID})
	}

	where, args := "", []any{}
	if len(conditions) > 0 {
		var err error
		where, args, err = conditions.ToSql()
		if err != nil {
			return fmt.Errorf("build conditions: %w", err)
		}
		where = " WHERE " + where
	}

	// Rebuild positions from scratch for the selected scope. Placeholders in
	// the WHERE clause are ?-style from squirrel.And; rewrite for pgx.
	sql := `
		INSERT INTO reg_ledger_balances
			(author_id, contract_id, title_id, format, quantity, revenue, last_movement_at, updated_at)
		SELECT
			author_id, contract_id, MAX(title_id::text)::uuid, format,
			SUM(CASE WHEN record_type = 'receipt' THEN quantity ELSE -quantity END),
			SUM(CASE WHEN record_type = 'receipt' THEN revenue ELSE -revenue END),
			MAX(period), NOW()
		FROM reg_ledger_movements` + where + `
		GROUP BY author_id, contract_id, format
		ON CONFLICT (author_id, contract_id, format) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			revenue = EXCLUDED.revenue,
			last_movement_at = EXCLUDED.last_movement_at,
			updated_at = EXCLUDED.updated_at
	`
	sql, err := squirrel.Dollar.ReplacePlaceholders(sql)
	if err != nil {
		return fmt.Errorf("rewrite placeholders: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("recalculate balances: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ ledger.Repository = (*LedgerRepo)(nil)
