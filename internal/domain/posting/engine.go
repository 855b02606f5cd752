package posting

import (
	"context"
	"fmt"

	"imprint/internal/core/apperror"
	"imprint/internal/core/tenant"
	"imprint/internal/core/tx"
	"imprint/internal/domain/registers/ledger"
	"imprint/pkg/logger"
)

// Engine posts and unposts documents atomically: movements and the
// document's posted flag always change in one transaction.
//
// Re-posting is cleanup-by-version: new movements are written under the
// next RecorderVersion, then older versions are deleted. A crash between
// the two leaves only versioned rows, never a half-posted document.
type Engine struct {
	ledger    *ledger.Service
	txManager tx.Manager // Optional. If nil, obtained from context (DB-per-tenant).
}

// NewEngine creates a posting engine over the sales ledger register.
func NewEngine(ledgerService *ledger.Service) *Engine {
	return &Engine{ledger: ledgerService}
}

func (e *Engine) getTxManager(ctx context.Context) (tx.Manager, error) {
	if e.txManager != nil {
		return e.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// Post records a document's movements and marks it posted. updateDoc
// persists the document itself (including the bumped posting version) and
// runs inside the same transaction.
func (e *Engine) Post(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) error {
	if err := doc.CanPost(ctx); err != nil {
		return err
	}

	movements, err := doc.GenerateMovements(ctx)
	if err != nil {
		return fmt.Errorf("generate movements: %w", err)
	}

	txm, err := e.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	previousVersion := doc.GetPostedVersion()

	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := e.ledger.RecordMovements(ctx, movements.Ledger()); err != nil {
			return err
		}

		doc.MarkPosted()
		if err := updateDoc(ctx); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		// Drop movements from earlier posting iterations (re-post case).
		if previousVersion > 0 {
			if err := e.ledger.ReverseMovements(ctx, doc.GetID(), doc.GetPostedVersion()); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		// MarkPosted mutated the in-memory document; the caller reloads on error.
		return err
	}

	logger.Info(ctx, "document posted",
		"document_type", doc.GetDocumentType(),
		"document_id", doc.GetID(),
		"version", doc.GetPostedVersion(),
		"movements", len(movements.Ledger()),
	)
	return nil
}

// Unpost removes all of a document's movements and clears the posted flag.
func (e *Engine) Unpost(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) error {
	if !doc.IsPosted() {
		return apperror.NewBusinessRule(
			apperror.CodeDocumentNotPosted,
			"Document is not posted",
		).WithDetail("document_id", doc.GetID().String())
	}

	txm, err := e.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		// Delete every version, including the current one.
		if err := e.ledger.ReverseMovements(ctx, doc.GetID(), doc.GetPostedVersion()+1); err != nil {
			return err
		}

		doc.MarkUnposted()
		return updateDoc(ctx)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "document unposted",
		"document_type", doc.GetDocumentType(),
		"document_id", doc.GetID(),
	)
	return nil
}
