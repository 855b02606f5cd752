package title

import (
	"context"
	"fmt"
	"time"

	"imprint/internal/core/apperror"
	"imprint/internal/core/id"
	"imprint/internal/core/numerator"
	"imprint/internal/domain"
)

// Service provides business logic for the Title catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Title]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Title service.
// In Database-per-Tenant, TxManager is obtained from context.
func NewService(
	repo Repository,
	numerator numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Title]{
		Repo:       repo,
		TxManager:  nil, // Will be obtained from context
		Numerator:  numerator,
		EntityName: "title",
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
func (s *Service) prepareForCreate(ctx context.Context, t *Title) error {
	// Generate code if not provided
	if t.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("TI"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		t.Code = code
	}

	return s.checkUniqueISBN(ctx, t)
}

// prepareForUpdate handles uniqueness checks.
func (s *Service) prepareForUpdate(ctx context.Context, t *Title) error {
	return s.checkUniqueISBN(ctx, t)
}

func (s *Service) checkUniqueISBN(ctx context.Context, t *Title) error {
	if t.ISBN == nil || *t.ISBN == "" {
		return nil
	}

	existing, err := s.repo.FindByISBN(ctx, *t.ISBN)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != t.ID {
		return apperror.NewConflict("title with this ISBN already exists").
			WithDetail("isbn", t.ISBN)
	}
	return nil
}

// --- Entity-specific methods ---

// FindByISBN retrieves a title by ISBN.
func (s *Service) FindByISBN(ctx context.Context, isbn string) (*Title, error) {
	return s.repo.FindByISBN(ctx, isbn)
}

// FindOutOfPrint retrieves titles flagged out of print.
func (s *Service) FindOutOfPrint(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Title], error) {
	return s.repo.FindOutOfPrint(ctx, filter)
}

// MarkOutOfPrint flags a title as out of print.
func (s *Service) MarkOutOfPrint(ctx context.Context, titleID id.ID) (*Title, error) {
	t, err := s.repo.GetForUpdate(ctx, titleID)
	if err != nil {
		return nil, err
	}
	if t.OutOfPrint {
		return t, nil
	}
	t.OutOfPrint = true
	if err := s.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}
