// Package returns_batch provides the ReturnsBatch document repository.
package returns_batch

import (
	"context"
	"time"

	"imprint/internal/core/id"
	"imprint/internal/domain"
)

// Repository defines operations for returns batch documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *ReturnsBatch) error
	GetByID(ctx context.Context, docID id.ID) (*ReturnsBatch, error)
	GetByNumber(ctx context.Context, number string) (*ReturnsBatch, error)
	Update(ctx context.Context, doc *ReturnsBatch) error
	Delete(ctx context.Context, docID id.ID) error

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]ReturnsBatchLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []ReturnsBatchLine) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*ReturnsBatch], error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*ReturnsBatch, error)
}

// ListFilter for filtering returns batches.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	Channel  *string
	AuthorID *id.ID
	Posted   *bool
	Approved *bool
	DateFrom *time.Time
	DateTo   *time.Time
}
