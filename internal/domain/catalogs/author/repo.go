package author

import (
	"context"

	"imprint/internal/core/id"
	"imprint/internal/domain"
)

// Repository defines the interface for Author persistence.
type Repository interface {
	domain.CatalogRepository[*Author]

	// FindByEmail retrieves an author by email (unique within tenant).
	FindByEmail(ctx context.Context, email string) (*Author, error)

	// GetForUpdate retrieves an author with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Author, error)
}
