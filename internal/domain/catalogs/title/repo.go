package title

import (
	"context"

	"imprint/internal/core/id"
	"imprint/internal/domain"
)

// Repository defines the interface for Title persistence.
type Repository interface {
	domain.CatalogRepository[*Title]

	// FindByISBN retrieves a title by ISBN.
	FindByISBN(ctx context.Context, isbn string) (*Title, error)

	// GetForUpdate retrieves a title with row lock.
	GetForUpdate(ctx context.Context, id id.ID) (*Title, error)

	// FindOutOfPrint retrieves titles flagged out of print.
	FindOutOfPrint(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Title], error)
}
