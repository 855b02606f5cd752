package dto

import (
	"time"

	"imprint/internal/core/id"
	"imprint/internal/core/types"
	"imprint/internal/domain/documents/sales_batch"
	"imprint/internal/domain/royalty"
)

// --- Request DTOs ---

// CreateSalesBatchRequest represents a request to create a sales batch.
type CreateSalesBatchRequest struct {
	Number            string                  `json:"number,omitempty"`
	Date              time.Time               `json:"date" binding:"required"`
	OrganizationID    string                  `json:"organizationId" binding:"required"`
	Channel           string                  `json:"channel" binding:"required"`
	ChannelReference  string                  `json:"channelReference,omitempty"`
	ChannelReportDate *time.Time              `json:"channelReportDate,omitempty"`
	Comment           string                  `json:"comment,omitempty"`
	Lines             []SalesBatchLineRequest `json:"lines" binding:"required,min=1,dive"`
	PostImmediately   bool                    `json:"postImmediately,omitempty"`
}

// SalesBatchLineRequest represents a line in create/update request.
type SalesBatchLineRequest struct {
	AuthorID   string         `json:"authorId" binding:"required"`
	ContractID string         `json:"contractId" binding:"required"`
	TitleID    string         `json:"titleId" binding:"required"`
	Format     royalty.Format `json:"format" binding:"required"`
	Quantity   int64          `json:"quantity" binding:"required,gt=0"`
	Revenue    int64          `json:"revenue" binding:"required,gte=0"`
}

// ToEntity converts request to domain entity.
func (r *CreateSalesBatchRequest) ToEntity() *sales_batch.SalesBatch {
	doc := sales_batch.NewSalesBatch(r.OrganizationID, r.Channel)
	doc.Number = r.Number
	doc.Date = r.Date
	doc.ChannelReference = r.ChannelReference
	doc.ChannelReportDate = r.ChannelReportDate
	doc.Comment = r.Comment

	for _, line := range r.Lines {
		authorID, _ := id.Parse(line.AuthorID)
		contractID, _ := id.Parse(line.ContractID)
		titleID, _ := id.Parse(line.TitleID)
		doc.AddLine(authorID, contractID, titleID, line.Format, line.Quantity, types.MinorUnits(line.Revenue))
	}

	return doc
}

// UpdateSalesBatchRequest represents a request to update a sales batch.
type UpdateSalesBatchRequest struct {
	Number            *string                 `json:"number,omitempty"`
	Date              *time.Time              `json:"date,omitempty"`
	OrganizationID    *string                 `json:"organizationId,omitempty"`
	Channel           *string                 `json:"channel,omitempty"`
	ChannelReference  *string                 `json:"channelReference,omitempty"`
	ChannelReportDate *time.Time              `json:"channelReportDate,omitempty"`
	Comment           *string                 `json:"comment,omitempty"`
	Lines             []SalesBatchLineRequest `json:"lines,omitempty"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateSalesBatchRequest) ApplyTo(doc *sales_batch.SalesBatch) {
	if r.Number != nil {
		doc.Number = *r.Number
	}
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.OrganizationID != nil {
		doc.OrganizationID = *r.OrganizationID
	}
	if r.Channel != nil {
		doc.Channel = *r.Channel
	}
	if r.ChannelReference != nil {
		doc.ChannelReference = *r.ChannelReference
	}
	if r.ChannelReportDate != nil {
		doc.ChannelReportDate = r.ChannelReportDate
	}
	if r.Comment != nil {
		doc.Comment = *r.Comment
	}

	// If lines are provided, rebuild them
	if r.Lines != nil {
		doc.Lines = make([]sales_batch.SalesBatchLine, 0, len(r.Lines))
		for _, line := range r.Lines {
			authorID, _ := id.Parse(line.AuthorID)
			contractID, _ := id.Parse(line.ContractID)
			titleID, _ := id.Parse(line.TitleID)
			doc.AddLine(authorID, contractID, titleID, line.Format, line.Quantity, types.MinorUnits(line.Revenue))
		}
	}
}

// --- Response DTOs ---

// SalesBatchResponse represents a sales batch in API responses.
type SalesBatchResponse struct {
	ID                string                   `json:"id"`
	Number            string                   `json:"number"`
	Date              time.Time                `json:"date"`
	Posted            bool                     `json:"posted"`
	OrganizationID    string                   `json:"organizationId"`
	Channel           string                   `json:"channel"`
	ChannelReference  string                   `json:"channelReference,omitempty"`
	ChannelReportDate *time.Time               `json:"channelReportDate,omitempty"`
	TotalQuantity     int64                    `json:"totalQuantity"`
	TotalRevenue      int64                    `json:"totalRevenue"`
	Comment           string                   `json:"comment,omitempty"`
	Lines             []SalesBatchLineResponse `json:"lines,omitempty"`
	DeletionMark      bool                     `json:"deletionMark,omitempty"`
	CreatedAt         time.Time                `json:"createdAt"`
	UpdatedAt         time.Time                `json:"updatedAt"`
}

// SalesBatchLineResponse represents a line in API responses.
type SalesBatchLineResponse struct {
	LineID     string         `json:"lineId"`
	LineNo     int            `json:"lineNo"`
	AuthorID   string         `json:"authorId"`
	ContractID string         `json:"contractId"`
	TitleID    string         `json:"titleId"`
	Format     royalty.Format `json:"format"`
	Quantity   int64          `json:"quantity"`
	Revenue    int64          `json:"revenue"`
}

// FromSalesBatch converts domain entity to response DTO.
func FromSalesBatch(doc *sales_batch.SalesBatch) *SalesBatchResponse {
	resp := &SalesBatchResponse{
		ID:                doc.ID.String(),
		Number:            doc.Number,
		Date:              doc.Date,
		Posted:            doc.Posted,
		OrganizationID:    doc.OrganizationID,
		Channel:           doc.Channel,
		ChannelReference:  doc.ChannelReference,
		ChannelReportDate: doc.ChannelReportDate,
		TotalQuantity:     doc.TotalQuantity,
		TotalRevenue:      int64(doc.TotalRevenue),
		Comment:           doc.Comment,
		DeletionMark:      doc.DeletionMark,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}

	resp.Lines = make([]SalesBatchLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		resp.Lines[i] = SalesBatchLineResponse{
			LineID:     line.LineID.String(),
			LineNo:     line.LineNo,
			AuthorID:   line.AuthorID.String(),
			ContractID: line.ContractID.String(),
			TitleID:    line.TitleID.String(),
			Format:     line.Format,
			Quantity:   line.Quantity,
			Revenue:    int64(line.Revenue),
		}
	}

	return resp
}

// SalesBatchListResponse is a paginated list of sales batches.
type SalesBatchListResponse struct {
	Items      []*SalesBatchResponse `json:"items"`
	TotalCount int                   `json:"totalCount"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`
}
