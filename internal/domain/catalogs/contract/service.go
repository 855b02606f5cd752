package contract

import (
	"context"
	"fmt"
	"time"

	"imprint/internal/core/apperror"
	"imprint/internal/core/id"
	"imprint/internal/core/numerator"
	"imprint/internal/domain"
	"imprint/internal/domain/royalty"
)

// Service provides business logic for the Contract catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Contract]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Contract service.
// In Database-per-Tenant, TxManager is obtained from context.
func NewService(
	repo Repository,
	numerator numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Contract]{
		Repo:       repo,
		TxManager:  nil, // Will be obtained from context
		Numerator:  numerator,
		EntityName: "contract",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks.
func (s *Service) prepareForCreate(ctx context.Context, c *Contract) error {
	if c.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("CT"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		c.Code = code
	}

	return s.checkUniquePairing(ctx, c)
}

// prepareForUpdate handles uniqueness checks.
func (s *Service) prepareForUpdate(ctx context.Context, c *Contract) error {
	return s.checkUniquePairing(ctx, c)
}

// checkUniquePairing enforces one active contract per author+title. Replaced
// terms mean deactivating the old contract, never amending a posted one.
func (s *Service) checkUniquePairing(ctx context.Context, c *Contract) error {
	if !c.Active {
		return nil
	}

	existing, err := s.repo.FindByAuthorAndTitle(ctx, c.AuthorID, c.TitleID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != c.ID && existing.Active {
		return apperror.NewConflict("author already has an active contract for this title").
			WithDetail("authorId", c.AuthorID).
			WithDetail("titleId", c.TitleID)
	}
	return nil
}

// --- Entity-specific methods ---

// GetTerms loads a contract and projects it into engine terms. Implements
// royalty.ContractRepository so the composer can consume the catalog
// directly.
func (s *Service) GetTerms(ctx context.Context, contractID id.ID) (*royalty.ContractTerms, error) {
	c, err := s.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return c.Terms(), nil
}

// FindByAuthor retrieves all contracts for an author.
func (s *Service) FindByAuthor(ctx context.Context, authorID id.ID, filter domain.ListFilter) (domain.ListResult[*Contract], error) {
	return s.repo.FindByAuthor(ctx, authorID, filter)
}

// ListActive retrieves every active contract, for batch statement runs.
func (s *Service) ListActive(ctx context.Context) ([]*Contract, error) {
	return s.repo.ListActive(ctx)
}

// ListActiveTerms resolves royalty terms for every active contract.
func (s *Service) ListActiveTerms(ctx context.Context) ([]*royalty.ContractTerms, error) {
	contracts, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	terms := make([]*royalty.ContractTerms, 0, len(contracts))
	for _, c := range contracts {
		terms = append(terms, c.Terms())
	}
	return terms, nil
}

// Deactivate excludes a contract from future statement runs without
// touching its history.
func (s *Service) Deactivate(ctx context.Context, contractID id.ID) error {
	c, err := s.repo.GetForUpdate(ctx, contractID)
	if err != nil {
		return err
	}
	if !c.Active {
		return nil
	}
	c.Active = false
	return s.Update(ctx, c)
}
