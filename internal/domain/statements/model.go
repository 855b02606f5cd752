// Package statements owns the persisted royalty statement: the immutable,
// numbered record of one calculation run for one author+contract+period.
//
// Statements are documents but never post register movements; the sales
// ledger is their input, not their output. The only mutation after
// generation is lifecycle: final -> sent, or a void that releases the
// recouped amount back to the contract's advance balance.
package statements

import (
	"context"
	"time"

	"imprint/internal/core/apperror"
	"imprint/internal/core/entity"
	"imprint/internal/core/id"
	"imprint/internal/core/types"
	"imprint/internal/domain/royalty"
)

// Status is the statement lifecycle state.
type Status string

const (
	// StatusFinal marks a generated statement awaiting dispatch.
	StatusFinal Status = "final"

	// StatusSent marks a statement delivered to the payee.
	StatusSent Status = "sent"

	// StatusVoid marks a cancelled statement. Void statements keep their
	// number and calculations for the audit trail but no longer count
	// toward advance recoupment.
	StatusVoid Status = "void"
)

// Statement is a generated royalty statement.
//
// GrossRoyalty, NetPayable and Recouped are denormalized from Calculations
// so recoupment history and payout reports never parse JSON.
type Statement struct {
	entity.BaseDocument

	// Number is the statement number (auto-generated, e.g. RS-2026-00001)
	Number string `db:"number" json:"number"`

	Status Status `db:"status" json:"status"`

	AuthorID   id.ID `db:"author_id" json:"authorId"`
	ContractID id.ID `db:"contract_id" json:"contractId"`
	TitleID    id.ID `db:"title_id" json:"titleId"`

	// Period covered, [PeriodStart, PeriodEnd)
	PeriodStart time.Time `db:"period_start" json:"periodStart"`
	PeriodEnd   time.Time `db:"period_end" json:"periodEnd"`

	// Payee is the identity snapshot taken at generation time. Author
	// record edits after the fact do not rewrite issued statements.
	Payee royalty.PayeeIdentity `db:"payee" json:"payee"`

	// Calculations is the full engine output (JSONB in PostgreSQL)
	Calculations royalty.StatementCalculations `db:"calculations" json:"calculations"`

	GrossRoyalty types.MinorUnits `db:"gross_royalty" json:"grossRoyalty"`
	NetPayable   types.MinorUnits `db:"net_payable" json:"netPayable"`

	// Recouped is this statement's advance recoupment contribution
	Recouped types.MinorUnits `db:"recouped" json:"recouped"`

	SentAt     *time.Time `db:"sent_at" json:"sentAt,omitempty"`
	VoidedAt   *time.Time `db:"voided_at" json:"voidedAt,omitempty"`
	VoidReason *string    `db:"void_reason" json:"voidReason,omitempty"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewStatement builds a final statement from engine output and the resolved
// payee snapshot. The number is assigned by the service on persist.
func NewStatement(calc *royalty.StatementCalculations, payee royalty.PayeeIdentity, titleID id.ID) *Statement {
	return &Statement{
		BaseDocument: entity.NewBaseDocument(),
		Status:       StatusFinal,
		AuthorID:     calc.AuthorID,
		ContractID:   calc.ContractID,
		TitleID:      titleID,
		PeriodStart:  calc.Period.Start,
		PeriodEnd:    calc.Period.End,
		Payee:        payee,
		Calculations: *calc,
		GrossRoyalty: calc.GrossRoyalty,
		NetPayable:   calc.NetPayable,
		Recouped:     calc.AdvanceRecoupment.ThisPeriodsRecoupment,
	}
}

// Period returns the covered period bounds.
func (s *Statement) Period() royalty.PeriodBounds {
	return royalty.PeriodBounds{Start: s.PeriodStart, End: s.PeriodEnd}
}

// WarningCodes returns the warning codes attached to the calculation.
func (s *Statement) WarningCodes() []string {
	codes := make([]string, 0, len(s.Calculations.Warnings))
	for _, w := range s.Calculations.Warnings {
		codes = append(codes, string(w.Code))
	}
	return codes
}

// IsVoid reports whether the statement has been cancelled.
func (s *Statement) IsVoid() bool {
	return s.Status == StatusVoid
}

// MarkSent records delivery to the payee.
func (s *Statement) MarkSent() error {
	switch s.Status {
	case StatusFinal:
		now := time.Now().UTC()
		s.Status = StatusSent
		s.SentAt = &now
		s.Touch()
		return nil
	case StatusSent:
		// Redelivery is fine; keep the first timestamp.
		return nil
	default:
		return apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"Cannot send a void statement",
		).WithDetail("statement_id", s.ID.String())
	}
}

// Void cancels the statement. The recouped amount stops counting toward
// the contract's advance, so a corrected statement can recoup it again.
func (s *Statement) Void(reason string) error {
	if s.Status == StatusVoid {
		return apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"Statement is already void",
		).WithDetail("statement_id", s.ID.String())
	}
	now := time.Now().UTC()
	s.Status = StatusVoid
	s.VoidedAt = &now
	s.VoidReason = &reason
	s.Touch()
	return nil
}

// Validate implements entity.Validatable.
func (s *Statement) Validate(ctx context.Context) error {
	if id.IsNil(s.AuthorID) {
		return apperror.NewValidation("author is required").
			WithDetail("field", "authorId")
	}
	if id.IsNil(s.ContractID) {
		return apperror.NewValidation("contract is required").
			WithDetail("field", "contractId")
	}
	if s.PeriodStart.IsZero() || s.PeriodEnd.IsZero() {
		return apperror.NewValidation("statement period is required").
			WithDetail("field", "period")
	}
	if !s.PeriodEnd.After(s.PeriodStart) {
		return apperror.NewValidation("period end must be after period start").
			WithDetail("period_start", s.PeriodStart).
			WithDetail("period_end", s.PeriodEnd)
	}
	switch s.Status {
	case StatusFinal, StatusSent, StatusVoid:
	default:
		return apperror.NewValidation("unknown statement status").
			WithDetail("status", string(s.Status))
	}
	return nil
}
