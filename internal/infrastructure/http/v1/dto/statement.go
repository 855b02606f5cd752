package dto

import (
	"time"

	"imprint/internal/core/id"
	"imprint/internal/domain/royalty"
	"imprint/internal/domain/statements"
)

// --- Request DTOs ---

// ComposeStatementRequest asks for one author+contract+period calculation.
// The same body drives both preview and final generation.
type ComposeStatementRequest struct {
	AuthorID    string    `json:"authorId" binding:"required"`
	ContractID  string    `json:"contractId" binding:"required"`
	PeriodStart time.Time `json:"periodStart" binding:"required"`
	PeriodEnd   time.Time `json:"periodEnd" binding:"required"`
}

// ToComposeRequest converts the DTO to the engine's request value.
func (r *ComposeStatementRequest) ToComposeRequest() royalty.ComposeRequest {
	authorID, _ := id.Parse(r.AuthorID)
	contractID, _ := id.Parse(r.ContractID)
	return royalty.ComposeRequest{
		AuthorID:   authorID,
		ContractID: contractID,
		Period: royalty.PeriodBounds{
			Start: r.PeriodStart,
			End:   r.PeriodEnd,
		},
	}
}

// BatchStatementRequest asks for a batch run over all active contracts.
type BatchStatementRequest struct {
	PeriodStart time.Time `json:"periodStart" binding:"required"`
	PeriodEnd   time.Time `json:"periodEnd" binding:"required"`
}

// Period returns the request's period bounds.
func (r *BatchStatementRequest) Period() royalty.PeriodBounds {
	return royalty.PeriodBounds{Start: r.PeriodStart, End: r.PeriodEnd}
}

// VoidStatementRequest carries the mandatory void reason.
type VoidStatementRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// --- Response DTOs ---

// StatementResponse represents a statement in API responses. The full
// calculation detail is returned as composed; the engine's JSON shape is
// the API contract.
type StatementResponse struct {
	ID           string                        `json:"id"`
	Number       string                        `json:"number"`
	Status       statements.Status             `json:"status"`
	AuthorID     string                        `json:"authorId"`
	ContractID   string                        `json:"contractId"`
	TitleID      string                        `json:"titleId"`
	PeriodStart  time.Time                     `json:"periodStart"`
	PeriodEnd    time.Time                     `json:"periodEnd"`
	Payee        royalty.PayeeIdentity         `json:"payee"`
	Calculations royalty.StatementCalculations `json:"calculations"`
	GrossRoyalty int64                         `json:"grossRoyalty"`
	NetPayable   int64                         `json:"netPayable"`
	Recouped     int64                         `json:"recouped"`
	SentAt       *time.Time                    `json:"sentAt,omitempty"`
	VoidedAt     *time.Time                    `json:"voidedAt,omitempty"`
	VoidReason   *string                       `json:"voidReason,omitempty"`
	Comment      string                        `json:"comment,omitempty"`
	CreatedAt    time.Time                     `json:"createdAt"`
	UpdatedAt    time.Time                     `json:"updatedAt"`
}

// FromStatement converts domain entity to response DTO.
func FromStatement(st *statements.Statement) *StatementResponse {
	return &StatementResponse{
		ID:           st.ID.String(),
		Number:       st.Number,
		Status:       st.Status,
		AuthorID:     st.AuthorID.String(),
		ContractID:   st.ContractID.String(),
		TitleID:      st.TitleID.String(),
		PeriodStart:  st.PeriodStart,
		PeriodEnd:    st.PeriodEnd,
		Payee:        st.Payee,
		Calculations: st.Calculations,
		GrossRoyalty: int64(st.GrossRoyalty),
		NetPayable:   int64(st.NetPayable),
		Recouped:     int64(st.Recouped),
		SentAt:       st.SentAt,
		VoidedAt:     st.VoidedAt,
		VoidReason:   st.VoidReason,
		Comment:      st.Comment,
		CreatedAt:    st.CreatedAt,
		UpdatedAt:    st.UpdatedAt,
	}
}

// StatementListResponse is a paginated list of statements.
type StatementListResponse struct {
	Items      []*StatementResponse `json:"items"`
	TotalCount int                  `json:"totalCount"`
	Limit      int                  `json:"limit"`
	Offset     int                  `json:"offset"`
}

// BatchItemResponse is one contract's outcome in a batch run.
type BatchItemResponse struct {
	AuthorID    string  `json:"authorId"`
	ContractID  string  `json:"contractId"`
	StatementID *string `json:"statementId,omitempty"`
	Number      string  `json:"number,omitempty"`
	Skipped     bool    `json:"skipped,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// BatchReportResponse summarizes a batch generation run.
type BatchReportResponse struct {
	Requested int                 `json:"requested"`
	Generated int                 `json:"generated"`
	Skipped   int                 `json:"skipped"`
	Failed    int                 `json:"failed"`
	Items     []BatchItemResponse `json:"items"`
}

// FromBatchReport converts the service's batch report to a response DTO.
func FromBatchReport(report *statements.BatchReport) *BatchReportResponse {
	resp := &BatchReportResponse{
		Requested: report.Requested,
		Generated: report.Generated,
		Skipped:   report.Skipped,
		Failed:    report.Failed,
		Items:     make([]BatchItemResponse, len(report.Items)),
	}
	for i, item := range report.Items {
		ir := BatchItemResponse{
			AuthorID:   item.AuthorID.String(),
			ContractID: item.ContractID.String(),
			Number:     item.Number,
			Skipped:    item.Skipped,
		}
		if item.StatementID != nil {
			sid := item.StatementID.String()
			ir.StatementID = &sid
		}
		ir.Error = item.Error
		resp.Items[i] = ir
	}
	return resp
}

// PreviewBatchResponse carries the calculations of a dry batch run.
type PreviewBatchResponse struct {
	Succeeded int                        `json:"succeeded"`
	Failed    int                        `json:"failed"`
	Items     []PreviewBatchItemResponse `json:"items"`
}

// PreviewBatchItemResponse is one contract's preview outcome.
type PreviewBatchItemResponse struct {
	AuthorID     string                         `json:"authorId"`
	ContractID   string                         `json:"contractId"`
	Calculations *royalty.StatementCalculations `json:"calculations,omitempty"`
	Error        string                         `json:"error,omitempty"`
}

// FromBatchResult converts the engine's batch result to a preview response.
func FromBatchResult(result royalty.BatchResult) *PreviewBatchResponse {
	resp := &PreviewBatchResponse{
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Items:     make([]PreviewBatchItemResponse, len(result.Outcomes)),
	}
	for i, o := range result.Outcomes {
		item := PreviewBatchItemResponse{
			AuthorID:     o.AuthorID.String(),
			ContractID:   o.ContractID.String(),
			Calculations: o.Calculations,
		}
		if o.Err != nil {
			item.Error = o.Err.Error()
		}
		resp.Items[i] = item
	}
	return resp
}
