package contract

import (
	"context"

	"imprint/internal/core/id"
	"imprint/internal/domain"
)

// Repository defines the interface for Contract persistence.
type Repository interface {
	domain.CatalogRepository[*Contract]

	// FindByAuthor retrieves all contracts for an author.
	FindByAuthor(ctx context.Context, authorID id.ID, filter domain.ListFilter) (domain.ListResult[*Contract], error)

	// FindByAuthorAndTitle retrieves the contract binding an author to a title.
	FindByAuthorAndTitle(ctx context.Context, authorID, titleID id.ID) (*Contract, error)

	// ListActive retrieves every active contract, for batch statement runs.
	ListActive(ctx context.Context) ([]*Contract, error)

	// GetForUpdate retrieves a contract with row lock.
	GetForUpdate(ctx context.Context, id id.ID) (*Contract, error)
}
