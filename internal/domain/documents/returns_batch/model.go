// Package returns_batch provides the ReturnsBatch document: approved unit
// returns reported by a distribution channel.
package returns_batch

import (
	"context"
	"time"

	"imprint/internal/core/apperror"
	"imprint/internal/core/entity"
	"imprint/internal/core/id"
	"imprint/internal/core/types"
	"imprint/internal/domain/posting"
	"imprint/internal/domain/royalty"
)

// ReturnsBatch represents a batch of returns for one reporting date.
// Only approved batches may be posted; posting writes expense movements to
// the ledger, where they surface as the statement returns deduction.
type ReturnsBatch struct {
	entity.Document
	entity.ChannelAware

	// Approved gates posting; returns need a review step before they
	// reduce anyone's royalties
	Approved   bool       `db:"approved" json:"approved"`
	ApprovedAt *time.Time `db:"approved_at" json:"approvedAt,omitempty"`
	ApprovedBy *string    `db:"approved_by" json:"approvedBy,omitempty"`

	// Totals (calculated from lines)
	TotalQuantity int64            `db:"total_quantity" json:"totalQuantity"`
	TotalRefund   types.MinorUnits `db:"total_refund" json:"totalRefund"`

	// Table part: returned units per author+contract+title+format
	Lines []ReturnsBatchLine `db:"-" json:"lines"`
}

// ReturnsBatchLine represents one aggregated returns row in the batch.
type ReturnsBatchLine struct {
	// Line identification
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	// Dimensions
	AuthorID   id.ID          `db:"author_id" json:"authorId"`
	ContractID id.ID          `db:"contract_id" json:"contractId"`
	TitleID    id.ID          `db:"title_id" json:"titleId"`
	Format     royalty.Format `db:"format" json:"format"`

	// Figures
	Quantity int64            `db:"quantity" json:"quantity"`
	Refund   types.MinorUnits `db:"refund" json:"refund"` // refunded revenue, minor units
}

// NewReturnsBatch creates a new returns batch document.
func NewReturnsBatch(organizationID string, channel string) *ReturnsBatch {
	return &ReturnsBatch{
		Document:     entity.NewDocument(organizationID),
		ChannelAware: entity.ChannelAware{Channel: channel},
		Lines:        make([]ReturnsBatchLine, 0),
	}
}

// AddLine adds a line to the batch and recalculates totals.
func (b *ReturnsBatch) AddLine(authorID, contractID, titleID id.ID, format royalty.Format, quantity int64, refund types.MinorUnits) {
	line := ReturnsBatchLine{
		LineID:     id.New(),
		LineNo:     len(b.Lines) + 1,
		AuthorID:   authorID,
		ContractID: contractID,
		TitleID:    titleID,
		Format:     format,
		Quantity:   quantity,
		Refund:     refund,
	}

	b.Lines = append(b.Lines, line)
	b.recalculateTotals()
}

func (b *ReturnsBatch) recalculateTotals() {
	b.TotalQuantity = 0
	b.TotalRefund = 0

	for _, line := range b.Lines {
		b.TotalQuantity += line.Quantity
		b.TotalRefund += line.Refund
	}
}

// Approve marks the batch as reviewed.
func (b *ReturnsBatch) Approve(by string) {
	now := time.Now().UTC()
	b.Approved = true
	b.ApprovedAt = &now
	b.ApprovedBy = &by
	b.Touch()
}

// Validate implements entity.Validatable.
func (b *ReturnsBatch) Validate(ctx context.Context) error {
	if err := b.Document.Validate(ctx); err != nil {
		return err
	}

	if err := b.ValidateChannel(ctx); err != nil {
		return err
	}

	if len(b.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range b.Lines {
		if id.IsNil(line.AuthorID) || id.IsNil(line.ContractID) || id.IsNil(line.TitleID) {
			return apperror.NewValidation("author, contract and title are required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !royalty.IsValidFormat(line.Format) {
			return apperror.NewValidation("unknown format").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1).
				WithDetail("format", string(line.Format))
		}
		if line.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.Refund.IsNegative() {
			return apperror.NewValidation("refund cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// --- Postable interface implementation ---

// GetDocumentType returns the document type name.
func (b *ReturnsBatch) GetDocumentType() string {
	return "ReturnsBatch"
}

// CanPost extends the document validation: only approved batches post.
func (b *ReturnsBatch) CanPost(ctx context.Context) error {
	if err := b.Validate(ctx); err != nil {
		return err
	}
	if !b.Approved {
		return apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"Returns batch must be approved before posting",
		).WithDetail("document_id", b.ID.String())
	}
	return nil
}

// GenerateMovements creates return (expense) movements for this batch.
func (b *ReturnsBatch) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	movements := posting.NewMovementSet()

	newVersion := b.PostedVersion + 1

	for _, line := range b.Lines {
		movements.AddLedger(entity.NewLedgerMovement(
			b.ID,
			b.GetDocumentType(),
			newVersion,
			b.Date,
			entity.RecordTypeExpense,
			line.AuthorID,
			line.ContractID,
			line.TitleID,
			string(line.Format),
			line.Quantity,
			line.Refund,
		))
	}

	return movements, nil
}

// Ensure interface compliance at compile time.
var _ posting.Postable = (*ReturnsBatch)(nil)
