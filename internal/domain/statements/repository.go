package statements

import (
	"context"
	"time"

	"imprint/internal/core/id"
	"imprint/internal/core/types"
	"imprint/internal/domain"
	"imprint/internal/domain/royalty"
)

// Repository defines persistence operations for statements.
type Repository interface {
	Create(ctx context.Context, st *Statement) error
	GetByID(ctx context.Context, statementID id.ID) (*Statement, error)
	GetByNumber(ctx context.Context, number string) (*Statement, error)

	// Update persists lifecycle changes (sent/void). Calculations are
	// immutable after Create; implementations only write status fields.
	Update(ctx context.Context, st *Statement) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Statement], error)
	ListByAuthor(ctx context.Context, authorID id.ID, filter domain.ListFilter) (domain.ListResult[*Statement], error)

	// ExistsForPeriod reports whether a non-void statement already covers
	// the given contract+period. Guards against double generation.
	ExistsForPeriod(ctx context.Context, authorID, contractID id.ID, period royalty.PeriodBounds) (bool, error)

	// SumRecouped totals the Recouped column over non-void statements for
	// an author+contract. Backs the engine's recoupment history.
	SumRecouped(ctx context.Context, authorID, contractID id.ID) (types.MinorUnits, error)

	// Locking
	GetForUpdate(ctx context.Context, statementID id.ID) (*Statement, error)
}

// ListFilter for filtering statements.
type ListFilter struct {
	domain.ListFilter

	AuthorID   *id.ID
	ContractID *id.ID
	Status     *Status
	PeriodFrom *time.Time
	PeriodTo   *time.Time
}

// EventPublisher hands statement lifecycle events to the transactional
// outbox. The service publishes inside the same transaction that writes
// the statement; the background relay delivers asynchronously.
type EventPublisher interface {
	Publish(ctx context.Context, aggregateID id.ID, eventType string, payload any) error
}

// Event types emitted by the statement service.
const (
	EventStatementGenerated = "statement.generated"
	EventStatementSent      = "statement.sent"
	EventStatementVoided    = "statement.voided"
)
