// Package sales_batch provides the SalesBatch document repository.
package sales_batch

import (
	"context"
	"time"

	"imprint/internal/core/id"
	"imprint/internal/domain"
)

// Repository defines operations for sales batch documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *SalesBatch) error
	GetByID(ctx context.Context, docID id.ID) (*SalesBatch, error)
	GetByNumber(ctx context.Context, number string) (*SalesBatch, error)
	Update(ctx context.Context, doc *SalesBatch) error
	Delete(ctx context.Context, docID id.ID) error

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]SalesBatchLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []SalesBatchLine) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*SalesBatch], error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*SalesBatch, error)
}

// ListFilter for filtering sales batches.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	Channel  *string
	AuthorID *id.ID
	Posted   *bool
	DateFrom *time.Time
	DateTo   *time.Time
}
