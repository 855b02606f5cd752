package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"imprint/internal/core/apperror"
	"imprint/internal/domain"
	"imprint/internal/domain/catalogs/title"
	"imprint/internal/domain/filter"
	"imprint/internal/infrastructure/storage/postgres"
)

const titleTable = "cat_titles"

// TitleRepo implements title.Repository.
type TitleRepo struct {
	*BaseCatalogRepo[*title.Title]
}

// NewTitleRepo creates a new title repository.
func NewTitleRepo() *TitleRepo {
	return &TitleRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*title.Title](
			titleTable,
			postgres.ExtractDBColumns[title.Title](),
			func() *title.Title { return &title.Title{} },
		),
	}
}

// FindByISBN retrieves a title by ISBN. Callers normalize the ISBN first.
func (r *TitleRepo) FindByISBN(ctx context.Context, isbn string) (*title.Title, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"isbn": isbn}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	t, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("title", isbn)
		}
		return nil, err
	}
	return t, nil
}

// FindOutOfPrint retrieves titles flagged out of print.
func (r *TitleRepo) FindOutOfPrint(ctx context.Context, listFilter domain.ListFilter) (domain.ListResult[*title.Title], error) {
	listFilter.AdvancedFilters = append(listFilter.AdvancedFilters, filter.Item{
		Field:    "out_of_print",
		Operator: filter.Equal,
		Value:    true,
	})
	return r.List(ctx, listFilter)
}
