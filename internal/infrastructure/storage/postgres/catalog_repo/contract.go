package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"imprint/internal/core/apperror"
	"imprint/internal/core/id"
	"imprint/internal/domain"
	"imprint/internal/domain/catalogs/contract"
	"imprint/internal/infrastructure/storage/postgres"
)

const (
	contractTable         = "cat_contracts"
	contractTiersTable    = "cat_contract_tiers"
	contractCoOwnersTable = "cat_contract_co_owners"
)

// ContractRepo implements contract.Repository. Tier rows and co-owner rows
// live in child tables and are loaded with every contract: the tier table
// is the whole point of the record.
type ContractRepo struct {
	*BaseCatalogRepo[*contract.Contract]
}

// NewContractRepo creates a new contract repository.
func NewContractRepo() *ContractRepo {
	return &ContractRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*contract.Contract](
			contractTable,
			postgres.ExtractDBColumns[contract.Contract](),
			func() *contract.Contract { return &contract.Contract{} },
		),
	}
}

// Create inserts the contract header and its line tables atomically.
// Callers run it inside a transaction (the service does).
func (r *ContractRepo) Create(ctx context.Context, c *contract.Contract) error {
	if err := r.BaseCatalogRepo.Create(ctx, c); err != nil {
		return err
	}
	return r.saveLines(ctx, c)
}

// Update rewrites the header and replaces the line tables.
func (r *ContractRepo) Update(ctx context.Context, c *contract.Contract) error {
	if err := r.BaseCatalogRepo.Update(ctx, c); err != nil {
		return err
	}
	return r.saveLines(ctx, c)
}

// GetByID retrieves a contract with tiers and co-owners.
func (r *ContractRepo) GetByID(ctx context.Context, contractID id.ID) (*contract.Contract, error) {
	c, err := r.BaseCatalogRepo.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetForUpdate retrieves a contract with row lock, lines included.
func (r *ContractRepo) GetForUpdate(ctx context.Context, contractID id.ID) (*contract.Contract, error) {
	c, err := r.BaseCatalogRepo.GetForUpdate(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// FindByAuthor retrieves all contracts for an author.
func (r *ContractRepo) FindByAuthor(ctx context.Context, authorID id.ID, filter domain.ListFilter) (domain.ListResult[*contract.Contract], error) {
	result := domain.ListResult[*contract.Contract]{Limit: filter.Limit, Offset: filter.Offset}

	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"author_id": authorID}).
		Where(squirrel.Eq{"deletion_mark": false})

	querier := r.getTxManager(ctx).GetQuerier(ctx)

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count contracts: %w", err)
	}

	q = q.OrderBy("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select contracts: %w", err)
	}

	for _, c := range result.Items {
		if err := r.loadLines(ctx, c); err != nil {
			return result, err
		}
	}
	return result, nil
}

// FindByAuthorAndTitle retrieves the contract binding an author to a title.
func (r *ContractRepo) FindByAuthorAndTitle(ctx context.Context, authorID, titleID id.ID) (*contract.Contract, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"author_id": authorID}).
		Where(squirrel.Eq{"title_id": titleID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	c, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("contract", fmt.Sprintf("%s/%s", authorID, titleID))
		}
		return nil, err
	}
	if err := r.loadLines(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListActive retrieves every active contract, for batch statement runs.
func (r *ContractRepo) ListActive(ctx context.Context) ([]*contract.Contract, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"active": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var contracts []*contract.Contract
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &contracts, sql, args...); err != nil {
		return nil, fmt.Errorf("select active contracts: %w", err)
	}

	for _, c := range contracts {
		if err := r.loadLines(ctx, c); err != nil {
			return nil, err
		}
	}
	return contracts, nil
}

func (r *ContractRepo) loadLines(ctx context.Context, c *contract.Contract) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	tiersQ := r.Builder().
		Select("line_id", "format", "tier_no", "min_quantity", "max_quantity", "rate").
		From(contractTiersTable).
		Where(squirrel.Eq{"contract_id": c.ID}).
		OrderBy("format", "tier_no")

	sql, args, err := tiersQ.ToSql()
	if err != nil {
		return fmt.Errorf("build tiers query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &c.Tiers, sql, args...); err != nil {
		return fmt.Errorf("get contract tiers: %w", err)
	}

	ownersQ := r.Builder().
		Select("author_id", "percent").
		From(contractCoOwnersTable).
		Where(squirrel.Eq{"contract_id": c.ID}).
		OrderBy("author_id")

	sql, args, err = ownersQ.ToSql()
	if err != nil {
		return fmt.Errorf("build co-owners query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &c.CoOwners, sql, args...); err != nil {
		return fmt.Errorf("get contract co-owners: %w", err)
	}
	return nil
}

func (r *ContractRepo) saveLines(ctx context.Context, c *contract.Contract) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	if _, err := querier.Exec(ctx, "DELETE FROM "+contractTiersTable+" WHERE contract_id = $1", c.ID); err != nil {
		return fmt.Errorf("delete existing tiers: %w", err)
	}
	if _, err := querier.Exec(ctx, "DELETE FROM "+contractCoOwnersTable+" WHERE contract_id = $1", c.ID); err != nil {
		return fmt.Errorf("delete existing co-owners: %w", err)
	}

	if len(c.Tiers) > 0 {
		q := r.Builder().
			Insert(contractTiersTable).
			Columns("line_id", "contract_id", "format", "tier_no", "min_quantity", "max_quantity", "rate")
		for _, t := range c.Tiers {
			q = q.Values(t.LineID, c.ID, t.Format, t.TierNo, t.MinQuantity, t.MaxQuantity, t.Rate)
		}
		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert tiers: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert tiers: %w", err)
		}
	}

	if len(c.CoOwners) > 0 {
		q := r.Builder().
			Insert(contractCoOwnersTable).
			Columns("contract_id", "author_id", "percent")
		for _, o := range c.CoOwners {
			q = q.Values(c.ID, o.AuthorID, o.Percent)
		}
		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert co-owners: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert co-owners: %w", err)
		}
	}
	return nil
}
