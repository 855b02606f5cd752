package author

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

// Service provides business logic for the Author catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Author] // Embedded for delegation
	repo                            Repository
	numerator                       numerator.Generator
}

// NewService creates a new Author service.
// In Database-per-Tenant, TxManager is obtained from context.
func NewService(
	repo Repository,
	numerator numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Author]{
		Repo:       repo,
		TxManager:  nil, // Will be obtained from context
		Numerator:  numerator,
		EntityName: "author",
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

// prepareForCreate handles code generation and uniqueness checks before create.
func (s *Service) prepareForCreate(ctx context.Context, a *Author) error {
	if a.Code == "" {
		cfg := numerator.DefaultConfig("AU")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		a.Code = code
	}

	if a.Email != nil && *a.Email != "" {
		exists, err := s.checkEmailExists(ctx, *a.Email, a.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewConflict("author with this email already exists").
				WithDetail("email", a.Email)
		}
	}

	return nil
}

// prepareForUpdate handles uniqueness checks before update.
func (s *Service) prepareForUpdate(ctx context.Context, a *Author) error {
	if a.Email != nil && *a.Email != "" {
		exists, err := s.checkEmailExists(ctx, *a.Email, a.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewConflict("author with this email already exists").
				WithDetail("email", a.Email)
		}
	}

	return nil
}

// --- Entity-specific methods (not in base CatalogService) ---

// FindByEmail retrieves an author by email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*Author, error) {
	return s.repo.FindByEmail(ctx, email)
}

// GetPayee resolves the payee identity for statement generation.
func (s *Service) GetPayee(ctx context.Context, authorID id.ID) (royalty.PayeeIdentity, error) {
	a, err := s.GetByID(ctx, authorID)
	if err != nil {
		return royalty.PayeeIdentity{}, err
	}
	return a.PayeeIdentity(), nil
}

// checkEmailExists checks if an email is already used by another author.
func (s *Service) checkEmailExists(ctx context.Context, email string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		// Not found is OK; other errors must be propagated (DB errors, timeouts, etc.).
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != excludeID, nil
}
