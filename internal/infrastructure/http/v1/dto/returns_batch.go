package dto

import (
	"time"

	"imprint/internal/core/id"
	"imprint/internal/core/types"
	"imprint/internal/domain/documents/returns_batch"
	"imprint/internal/domain/royalty"
)

// --- Request DTOs ---

// CreateReturnsBatchRequest represents a request to create a returns batch.
type CreateReturnsBatchRequest struct {
	Number            string                    `json:"number,omitempty"`
	Date              time.Time                 `json:"date" binding:"required"`
	OrganizationID    string                    `json:"organizationId" binding:"required"`
	Channel           string                    `json:"channel" binding:"required"`
	ChannelReference  string                    `json:"channelReference,omitempty"`
	ChannelReportDate *time.Time                `json:"channelReportDate,omitempty"`
	Comment           string                    `json:"comment,omitempty"`
	Lines             []ReturnsBatchLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ReturnsBatchLineRequest represents a line in create/update request.
type ReturnsBatchLineRequest struct {
	AuthorID   string         `json:"authorId" binding:"required"`
	ContractID string         `json:"contractId" binding:"required"`
	TitleID    string         `json:"titleId" binding:"required"`
	Format     royalty.Format `json:"format" binding:"required"`
	Quantity   int64          `json:"quantity" binding:"required,gt=0"`
	Refund     int64          `json:"refund" binding:"required,gte=0"`
}

// ToEntity converts request to domain entity.
func (r *CreateReturnsBatchRequest) ToEntity() *returns_batch.ReturnsBatch {
	doc := returns_batch.NewReturnsBatch(r.OrganizationID, r.Channel)
	doc.Number = r.Number
	doc.Date = r.Date
	doc.ChannelReference = r.ChannelReference
	doc.ChannelReportDate = r.ChannelReportDate
	doc.Comment = r.Comment

	for _, line := range r.Lines {
		authorID, _ := id.Parse(line.AuthorID)
		contractID, _ := id.Parse(line.ContractID)
		titleID, _ := id.Parse(line.TitleID)
		doc.AddLine(authorID, contractID, titleID, line.Format, line.Quantity, types.MinorUnits(line.Refund))
	}

	return doc
}

// UpdateReturnsBatchRequest represents a request to update a returns batch.
type UpdateReturnsBatchRequest struct {
	Number            *string                   `json:"number,omitempty"`
	Date              *time.Time                `json:"date,omitempty"`
	OrganizationID    *string                   `json:"organizationId,omitempty"`
	Channel           *string                   `json:"channel,omitempty"`
	ChannelReference  *string                   `json:"channelReference,omitempty"`
	ChannelReportDate *time.Time                `json:"channelReportDate,omitempty"`
	Comment           *string                   `json:"comment,omitempty"`
	Lines             []ReturnsBatchLineRequest `json:"lines,omitempty"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateReturnsBatchRequest) ApplyTo(doc *returns_batch.ReturnsBatch) {
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
		doc.Lines = make([]returns_batch.ReturnsBatchLine, 0, len(r.Lines))
		for _, line := range r.Lines {
			authorID, _ := id.Parse(line.AuthorID)
			contractID, _ := id.Parse(line.ContractID)
			titleID, _ := id.Parse(line.TitleID)
			doc.AddLine(authorID, contractID, titleID, line.Format, line.Quantity, types.MinorUnits(line.Refund))
		}
	}
}

// --- Response DTOs ---

// ReturnsBatchResponse represents a returns batch in API responses.
type ReturnsBatchResponse struct {
	ID                string                     `json:"id"`
	Number            string                     `json:"number"`
	Date              time.Time                  `json:"date"`
	Posted            bool                       `json:"posted"`
	OrganizationID    string                     `json:"organizationId"`
	Channel           string                     `json:"channel"`
	ChannelReference  string                     `json:"channelReference,omitempty"`
	ChannelReportDate *time.Time                 `json:"channelReportDate,omitempty"`
	Approved          bool                       `json:"approved"`
	ApprovedAt        *time.Time                 `json:"approvedAt,omitempty"`
	ApprovedBy        *string                    `json:"approvedBy,omitempty"`
	TotalQuantity     int64                      `json:"totalQuantity"`
	TotalRefund       int64                      `json:"totalRefund"`
	Comment           string                     `json:"comment,omitempty"`
	Lines             []ReturnsBatchLineResponse `json:"lines,omitempty"`
	DeletionMark      bool                       `json:"deletionMark,omitempty"`
	CreatedAt         time.Time                  `json:"createdAt"`
	UpdatedAt         time.Time                  `json:"updatedAt"`
}

// ReturnsBatchLineResponse represents a line in API responses.
type ReturnsBatchLineResponse struct {
	LineID     string         `json:"lineId"`
	LineNo     int            `json:"lineNo"`
	AuthorID   string         `json:"authorId"`
	ContractID string         `json:"contractId"`
	TitleID    string         `json:"titleId"`
	Format     royalty.Format `json:"format"`
	Quantity   int64          `json:"quantity"`
	Refund     int64          `json:"refund"`
}

// FromReturnsBatch converts domain entity to response DTO.
func FromReturnsBatch(doc *returns_batch.ReturnsBatch) *ReturnsBatchResponse {
	resp := &ReturnsBatchResponse{
		ID:                doc.ID.String(),
		Number:            doc.Number,
		Date:              doc.Date,
		Posted:            doc.Posted,
		OrganizationID:    doc.OrganizationID,
		Channel:           doc.Channel,
		ChannelReference:  doc.ChannelReference,
		ChannelReportDate: doc.ChannelReportDate,
		Approved:          doc.Approved,
		ApprovedAt:        doc.ApprovedAt,
		ApprovedBy:        doc.ApprovedBy,
		TotalQuantity:     doc.TotalQuantity,
		TotalRefund:       int64(doc.TotalRefund),
		Comment:           doc.Comment,
		DeletionMark:      doc.DeletionMark,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}

	resp.Lines = make([]ReturnsBatchLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		resp.Lines[i] = ReturnsBatchLineResponse{
			LineID:     line.LineID.String(),
			LineNo:     line.LineNo,
			AuthorID:   line.AuthorID.String(),
			ContractID: line.ContractID.String(),
			TitleID:    line.TitleID.String(),
			Format:     line.Format,
			Quantity:   line.Quantity,
			Refund:     int64(line.Refund),
		}
	}

	return resp
}

// ReturnsBatchListResponse is a paginated list of returns batches.
type ReturnsBatchListResponse struct {
	Items      []*ReturnsBatchResponse `json:"items"`
	TotalCount int                     `json:"totalCount"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
}
