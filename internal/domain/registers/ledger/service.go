// Package ledger provides the sales ledger accumulation register service.
package ledger

import (
	"context"
	"fmt"
	"time"

	"imprint/internal/core/apperror"
	"imprint/internal/core/entity"
	"imprint/internal/core/id"
	"imprint/internal/domain/royalty"
	"imprint/pkg/logger"
)

// Service provides business operations for the sales ledger register.
// In Database-per-Tenant architecture, transactions are managed by the
// caller (posting engine).
//
// Service implements royalty.LedgerRepository: the statement composer reads
// its inputs straight off this register.
type Service struct {
	repo Repository
}

// NewService creates a new sales ledger service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

var _ royalty.LedgerRepository = (*Service)(nil)

// RecordMovements records ledger movements from a document posting.
// This is called during document posting within a transaction.
func (s *Service) RecordMovements(ctx context.Context, movements []entity.LedgerMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// Validate movements
	for i, m := range movements {
		if m.Quantity <= 0 {
			return apperror.NewValidation(fmt.Sprintf("movement %d: quantity must be positive", i))
		}
		if m.Revenue.IsNegative() {
			return apperror.NewValidation(fmt.Sprintf("movement %d: revenue cannot be negative", i))
		}
		if id.IsNil(m.RecorderID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: recorder_id is required", i))
		}
		if !royalty.IsValidFormat(royalty.Format(m.Format)) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: unknown format %q", i, m.Format))
		}
	}

	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	logger.Info(ctx, "recorded ledger movements",
		"count", len(movements),
		"recorder_id", movements[0].RecorderID,
	)

	return nil
}

// ReverseMovements removes movements for a document (used during unposting).
func (s *Service) ReverseMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	if err := s.repo.DeleteMovementsByRecorder(ctx, recorderID, beforeVersion); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	logger.Info(ctx, "reversed ledger movements",
		"recorder_id", recorderID,
		"before_version", beforeVersion,
	)

	return nil
}

// --- royalty.LedgerRepository implementation ---

// GetPeriodTotals returns the aggregated sale/return totals for one
// author+contract+format within the period.
func (s *Service) GetPeriodTotals(ctx context.Context, authorID, contractID id.ID, format royalty.Format, period royalty.PeriodBounds) (royalty.PeriodLedger, error) {
	totals, err := s.repo.GetPeriodTotals(ctx, authorID, contractID, string(format), period.Start, period.End)
	if err != nil {
		return royalty.PeriodLedger{}, fmt.Errorf("period totals: %w", err)
	}

	return royalty.PeriodLedger{
		Format:           format,
		QuantitySold:     totals.QuantitySold,
		QuantityReturned: totals.QuantityReturned,
		GrossRevenue:     totals.GrossRevenue,
	}, nil
}

// GetLifetimeTotalsBefore returns the cumulative net position strictly
// before a date. The position counts as incomplete when it includes an
// opening-balance aggregate, because the periods behind that row were never
// backfilled.
func (s *Service) GetLifetimeTotalsBefore(ctx context.Context, authorID, contractID id.ID, format royalty.Format, before time.Time) (royalty.LifetimeTotals, error) {
	totals, err := s.repo.GetTotalsBefore(ctx, authorID, contractID, string(format), before)
	if err != nil {
		return royalty.LifetimeTotals{}, fmt.Errorf("lifetime totals: %w", err)
	}

	return royalty.LifetimeTotals{
		Units:    totals.Units,
		Revenue:  totals.Revenue,
		Complete: !totals.HasOpening,
	}, nil
}

// --- Reporting ---

// GetAuthorPositions returns the cumulative positions across all contracts
// of an author.
func (s *Service) GetAuthorPositions(ctx context.Context, authorID id.ID) ([]entity.LedgerBalance, error) {
	return s.repo.GetBalancesByAuthor(ctx, authorID)
}

// GetContractHistory returns movement history for a contract.
func (s *Service) GetContractHistory(ctx context.Context, contractID id.ID, filter MovementFilter) ([]entity.LedgerMovement, error) {
	return s.repo.GetMovementHistory(ctx, contractID, filter)
}

// RecalculateBalances rebuilds the cached balance table from movements.
func (s *Service) RecalculateBalances(ctx context.Context, authorID, contractID *id.ID) error {
	return s.repo.RecalculateBalances(ctx, authorID, contractID)
}
