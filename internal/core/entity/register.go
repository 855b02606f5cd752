// Package entity provides core domain entities.
package entity

import (
	"time"

	"imprint/internal/core/id"
	"imprint/internal/core/types"
)

// RecordType defines movement direction for accumulation registers.
type RecordType string

const (
	// RecordTypeReceipt increases balance (sales)
	RecordTypeReceipt RecordType = "receipt"
	// RecordTypeExpense decreases balance (returns)
	RecordTypeExpense RecordType = "expense"
)

// RegisterKind defines the type of register.
type RegisterKind string

const (
	// RegisterKindAccumulation - tracks quantities and amounts
	RegisterKindAccumulation RegisterKind = "accumulation"
	// RegisterKindInformation - stores dimensional data
	RegisterKindInformation RegisterKind = "information"
)

// MovementBase contains common fields for all register movements.
// Movements are immutable - they are never updated, only deleted and recreated.
type MovementBase struct {
	// LineID is unique identifier for this movement line (UUIDv7)
	// Used instead of hash for deterministic tracking
	LineID id.ID `db:"line_id" json:"lineId"`

	// RecorderID is the document that created this movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecorderType is the document type (e.g., "SalesBatch", "ReturnsBatch")
	RecorderType string `db:"recorder_type" json:"recorderType"`

	// RecorderVersion tracks which posting iteration created this movement
	// Allows efficient cleanup: DELETE WHERE recorder_id = X AND recorder_version < Y
	RecorderVersion int `db:"recorder_version" json:"recorderVersion"`

	// Period is the business date for the movement (for period-based queries)
	Period time.Time `db:"period" json:"period"`

	// RecordType: receipt (sale) or expense (return)
	RecordType RecordType `db:"record_type" json:"recordType"`

	// CreatedAt is when the movement was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovementBase creates a new movement base with generated LineID.
func NewMovementBase(recorderID id.ID, recorderType string, recorderVersion int, period time.Time, recordType RecordType) MovementBase {
	return MovementBase{
		LineID:          id.New(),
		RecorderID:      recorderID,
		RecorderType:    recorderType,
		RecorderVersion: recorderVersion,
		Period:          period,
		RecordType:      recordType,
		CreatedAt:       time.Now().UTC(),
	}
}

// LedgerMovement represents a movement in the sales ledger accumulation
// register. Every royalty figure traces back to these rows: statements read
// the ledger, never the source documents.
type LedgerMovement struct {
	MovementBase

	// Dimensions
	AuthorID   id.ID  `db:"author_id" json:"authorId"`
	ContractID id.ID  `db:"contract_id" json:"contractId"`
	TitleID    id.ID  `db:"title_id" json:"titleId"`
	Format     string `db:"format" json:"format"`

	// Resources
	Quantity int64            `db:"quantity" json:"quantity"`
	Revenue  types.MinorUnits `db:"revenue" json:"revenue"`
}

// NewLedgerMovement creates a new sales ledger movement.
func NewLedgerMovement(
	recorderID id.ID,
	recorderType string,
	recorderVersion int,
	period time.Time,
	recordType RecordType,
	authorID, contractID, titleID id.ID,
	format string,
	quantity int64,
	revenue types.MinorUnits,
) LedgerMovement {
	return LedgerMovement{
		MovementBase: NewMovementBase(recorderID, recorderType, recorderVersion, period, recordType),
		AuthorID:     authorID,
		ContractID:   contractID,
		TitleID:      titleID,
		Format:       format,
		Quantity:     quantity,
		Revenue:      revenue,
	}
}

// SignedQuantity returns quantity with sign based on record type.
// Receipt (sale) = positive, Expense (return) = negative.
func (m *LedgerMovement) SignedQuantity() int64 {
	if m.RecordType == RecordTypeExpense {
		return -m.Quantity
	}
	return m.Quantity
}

// SignedRevenue returns revenue with sign based on record type.
func (m *LedgerMovement) SignedRevenue() types.MinorUnits {
	if m.RecordType == RecordTypeExpense {
		return m.Revenue.Neg()
	}
	return m.Revenue
}

// LedgerBalance represents the cumulative position in the sales ledger.
// This is a materialized/cached view for fast lifetime-position queries.
type LedgerBalance struct {
	// Dimensions
	AuthorID   id.ID  `db:"author_id" json:"authorId"`
	ContractID id.ID  `db:"contract_id" json:"contractId"`
	TitleID    id.ID  `db:"title_id" json:"titleId"`
	Format     string `db:"format" json:"format"`

	// Balances (net of returns)
	Quantity int64            `db:"quantity" json:"quantity"`
	Revenue  types.MinorUnits `db:"revenue" json:"revenue"`

	// Metadata
	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
