// Package ledger provides the sales ledger accumulation register.
package ledger

import (
	"context"
	"time"

	"imprint/internal/core/entity"
	"imprint/internal/core/id"
	"imprint/internal/core/types"
)

// Repository defines operations for the sales ledger register.
type Repository interface {
	// Movement operations

	// CreateMovements batch inserts movements (used during posting)
	CreateMovements(ctx context.Context, movements []entity.LedgerMovement) error

	// DeleteMovementsByRecorder removes all movements for a document with
	// recorder_version < beforeVersion. Used during unposting or re-posting.
	DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error

	// GetMovementsByRecorder retrieves all movements for a document
	GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.LedgerMovement, error)

	// Aggregation for statement calculation

	// GetPeriodTotals sums sold/returned quantities and gross revenue for
	// author+contract+format within [from, to)
	GetPeriodTotals(ctx context.Context, authorID, contractID id.ID, format string, from, to time.Time) (PeriodTotals, error)

	// GetTotalsBefore sums net quantity and revenue strictly before a date
	// (lifetime position)
	GetTotalsBefore(ctx context.Context, authorID, contractID id.ID, format string, before time.Time) (CumulativeTotals, error)

	// Balance operations

	// GetBalance returns the cumulative position for a dimension tuple
	GetBalance(ctx context.Context, authorID, contractID id.ID, format string) (entity.LedgerBalance, error)

	// GetBalancesByAuthor returns positions across all contracts of an author
	GetBalancesByAuthor(ctx context.Context, authorID id.ID) ([]entity.LedgerBalance, error)

	// Reporting

	// GetMovementHistory returns movement history for a contract
	GetMovementHistory(ctx context.Context, contractID id.ID, filter MovementFilter) ([]entity.LedgerMovement, error)

	// Maintenance

	// RecalculateBalances rebuilds the balance table from movements
	RecalculateBalances(ctx context.Context, authorID, contractID *id.ID) error
}

// RecorderTypeOpening marks aggregate opening-balance movements written when
// a contract is migrated in with pre-existing sales. Their presence means
// per-period history before the opening date is unknown.
const RecorderTypeOpening = "OpeningBalance"

// PeriodTotals are the raw per-period sums the calculation engine consumes.
type PeriodTotals struct {
	QuantitySold     int64            `db:"quantity_sold" json:"quantitySold"`
	QuantityReturned int64            `db:"quantity_returned" json:"quantityReturned"`
	GrossRevenue     types.MinorUnits `db:"gross_revenue" json:"grossRevenue"`
}

// CumulativeTotals are net sums up to a point in time. HasOpening is true
// when the sums include an aggregate opening-balance row, meaning the
// per-period history behind it is not in the ledger.
type CumulativeTotals struct {
	Units      int64            `db:"units" json:"units"`
	Revenue    types.MinorUnits `db:"revenue" json:"revenue"`
	HasOpening bool             `db:"has_opening" json:"hasOpening"`
}

// MovementFilter for filtering movement history.
type MovementFilter struct {
	AuthorID   *id.ID
	Format     *string
	RecordType *entity.RecordType
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}
