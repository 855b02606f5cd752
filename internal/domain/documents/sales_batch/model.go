// Package sales_batch provides the SalesBatch document: one imported batch
// of unit sales from a distribution channel.
package sales_batch

import (
	"context"

	"imprint/internal/core/apperror"
	"imprint/internal/core/entity"
	"imprint/internal/core/id"
	"imprint/internal/core/types"
	"imprint/internal/domain/posting"
	"imprint/internal/domain/royalty"
)

// SalesBatch represents a batch of sales reported by one channel for one
// reporting date. Posting the batch writes sale movements to the ledger;
// until then the figures are invisible to statements.
type SalesBatch struct {
	entity.Document
	entity.ChannelAware

	// Totals (calculated from lines)
	TotalQuantity int64            `db:"total_quantity" json:"totalQuantity"`
	TotalRevenue  types.MinorUnits `db:"total_revenue" json:"totalRevenue"`

	// Table part: sold units per author+contract+title+format
	Lines []SalesBatchLine `db:"-" json:"lines"`
}

// SalesBatchLine represents one aggregated sales row in the batch.
type SalesBatchLine struct {
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
	Revenue  types.MinorUnits `db:"revenue" json:"revenue"` // gross, in minor units
}

// NewSalesBatch creates a new sales batch document.
func NewSalesBatch(organizationID string, channel string) *SalesBatch {
	return &SalesBatch{
		Document:     entity.NewDocument(organizationID),
		ChannelAware: entity.ChannelAware{Channel: channel},
		Lines:        make([]SalesBatchLine, 0),
	}
}

// AddLine adds a line to the batch and recalculates totals.
func (b *SalesBatch) AddLine(authorID, contractID, titleID id.ID, format royalty.Format, quantity int64, revenue types.MinorUnits) {
	line := SalesBatchLine{
		LineID:     id.New(),
		LineNo:     len(b.Lines) + 1,
		AuthorID:   authorID,
		ContractID: contractID,
		TitleID:    titleID,
		Format:     format,
		Quantity:   quantity,
		Revenue:    revenue,
	}

	b.Lines = append(b.Lines, line)
	b.recalculateTotals()
}

// recalculateTotals updates document totals from lines.
func (b *SalesBatch) recalculateTotals() {
	b.TotalQuantity = 0
	b.TotalRevenue = 0

	for _, line := range b.Lines {
		b.TotalQuantity += line.Quantity
		b.TotalRevenue += line.Revenue
	}
}

// Validate implements entity.Validatable.
func (b *SalesBatch) Validate(ctx context.Context) error {
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
		if id.IsNil(line.AuthorID) {
			return apperror.NewValidation("author is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if id.IsNil(line.ContractID) {
			return apperror.NewValidation("contract is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if id.IsNil(line.TitleID) {
			return apperror.NewValidation("title is required").
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
		if line.Revenue.IsNegative() {
			return apperror.NewValidation("revenue cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// --- Postable interface implementation ---
// GetID, GetPostedVersion, IsPosted, CanPost are inherited from entity.Document

// GetDocumentType returns the document type name.
func (b *SalesBatch) GetDocumentType() string {
	return "SalesBatch"
}

// GenerateMovements creates sale movements for this batch.
func (b *SalesBatch) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	movements := posting.NewMovementSet()

	newVersion := b.PostedVersion + 1

	for _, line := range b.Lines {
		movements.AddLedger(entity.NewLedgerMovement(
			b.ID,
			b.GetDocumentType(),
			newVersion,
			b.Date,
			entity.RecordTypeReceipt,
			line.AuthorID,
			line.ContractID,
			line.TitleID,
			string(line.Format),
			line.Quantity,
			line.Revenue,
		))
	}

	return movements, nil
}

// Ensure interface compliance at compile time.
var _ posting.Postable = (*SalesBatch)(nil)
