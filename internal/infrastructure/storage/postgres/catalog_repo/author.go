package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"imprint/internal/core/apperror"
	"imprint/internal/domain/catalogs/author"
	"imprint/internal/infrastructure/storage/postgres"
)

const authorTable = "cat_authors"

// AuthorRepo implements author.Repository.
type AuthorRepo struct {
	*BaseCatalogRepo[*author.Author]
}

// NewAuthorRepo creates a new author repository.
func NewAuthorRepo() *AuthorRepo {
	return &AuthorRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*author.Author](
			authorTable,
			postgres.ExtractDBColumns[author.Author](),
			func() *author.Author { return &author.Author{} },
		),
	}
}

// FindByEmail retrieves an author by email.
func (r *AuthorRepo) FindByEmail(ctx context.Context, email string) (*author.Author, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"email": email}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	a, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("author", email)
		}
		return nil, err
	}
	return a, nil
}
