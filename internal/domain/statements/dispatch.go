package statements

import (
	"context"
	"fmt"

	"imprint/internal/core/id"
	"imprint/pkg/logger"
)

// Renderer produces the deliverable artifact for a statement.
type Renderer interface {
	Render(ctx context.Context, st *Statement) ([]byte, error)

	// ContentType of the rendered artifact, e.g. "application/pdf".
	ContentType() string
}

// Mailer delivers a rendered statement to the payee.
type Mailer interface {
	Send(ctx context.Context, st *Statement, attachment []byte, contentType string) error
}

// Dispatcher renders and delivers generated statements. It runs from the
// background worker off statement.generated events: the dispatch rule
// decides whether the statement goes out without review.
type Dispatcher struct {
	svc      *Service
	renderer Renderer
	mailer   Mailer
}

// NewDispatcher creates a statement dispatcher.
func NewDispatcher(svc *Service, renderer Renderer, mailer Mailer) *Dispatcher {
	return &Dispatcher{svc: svc, renderer: renderer, mailer: mailer}
}

// Dispatch delivers one statement if the tenant's dispatch rule allows it.
// A held statement is not an error; it stays in final status for manual
// sending.
func (d *Dispatcher) Dispatch(ctx context.Context, statementID id.ID) error {
	st, err := d.svc.GetByID(ctx, statementID)
	if err != nil {
		return fmt.Errorf("load statement: %w", err)
	}

	if st.Status != StatusFinal {
		logger.Debug(ctx, "statement not dispatchable, skipping",
			"statement_id", st.ID,
			"status", st.Status,
		)
		return nil
	}

	allowed, err := d.svc.ShouldDispatch(ctx, st)
	if err != nil {
		return fmt.Errorf("evaluate dispatch rule: %w", err)
	}
	if !allowed {
		logger.Info(ctx, "statement held for review",
			"statement_id", st.ID,
			"number", st.Number,
			"warnings", st.WarningCodes(),
		)
		return nil
	}

	artifact, err := d.renderer.Render(ctx, st)
	if err != nil {
		return fmt.Errorf("render statement %s: %w", st.Number, err)
	}

	if err := d.mailer.Send(ctx, st, artifact, d.renderer.ContentType()); err != nil {
		return fmt.Errorf("send statement %s: %w", st.Number, err)
	}

	if _, err := d.svc.MarkSent(ctx, st.ID); err != nil {
		return fmt.Errorf("mark statement sent: %w", err)
	}

	logger.Info(ctx, "statement dispatched",
		"statement_id", st.ID,
		"number", st.Number,
		"payee", st.Payee.Email,
	)
	return nil
}
