package dto

import (
	"time"

	"imprint/internal/core/entity"
)

// --- Response DTOs for Sales Ledger Register ---

// LedgerBalanceResponse represents a lifetime position in API responses.
type LedgerBalanceResponse struct {
	AuthorID       string     `json:"authorId"`
	ContractID     string     `json:"contractId"`
	TitleID        string     `json:"titleId"`
	Format         string     `json:"format"`
	Quantity       int64      `json:"quantity"`
	Revenue        int64      `json:"revenue"`
	LastMovementAt *time.Time `json:"lastMovementAt,omitempty"`
}

// FromLedgerBalance converts entity to response DTO.
func FromLedgerBalance(b entity.LedgerBalance) LedgerBalanceResponse {
	var lastMovement *time.Time
	if !b.LastMovementAt.IsZero() {
		val := b.LastMovementAt
		lastMovement = &val
	}

	return LedgerBalanceResponse{
		AuthorID:       b.AuthorID.String(),
		ContractID:     b.ContractID.String(),
		TitleID:        b.TitleID.String(),
		Format:         b.Format,
		Quantity:       b.Quantity,
		Revenue:        int64(b.Revenue),
		LastMovementAt: lastMovement,
	}
}

// LedgerMovementResponse represents a ledger movement in API responses.
type LedgerMovementResponse struct {
	LineID          string    `json:"lineId"`
	RecorderID      string    `json:"recorderId"`
	RecorderType    string    `json:"recorderType"`
	RecorderVersion int       `json:"recorderVersion"`
	Period          time.Time `json:"period"`
	RecordType      string    `json:"recordType"`
	AuthorID        string    `json:"authorId"`
	ContractID      string    `json:"contractId"`
	TitleID         string    `json:"titleId"`
	Format          string    `json:"format"`
	Quantity        int64     `json:"quantity"`
	Revenue         int64     `json:"revenue"`
	CreatedAt       time.Time `json:"createdAt"`
}

// FromLedgerMovement converts entity to response DTO.
func FromLedgerMovement(m entity.LedgerMovement) LedgerMovementResponse {
	return LedgerMovementResponse{
		LineID:          m.LineID.String(),
		RecorderID:      m.RecorderID.String(),
		RecorderType:    m.RecorderType,
		RecorderVersion: m.RecorderVersion,
		Period:          m.Period,
		RecordType:      string(m.RecordType),
		AuthorID:        m.AuthorID.String(),
		ContractID:      m.ContractID.String(),
		TitleID:         m.TitleID.String(),
		Format:          m.Format,
		Quantity:        m.Quantity,
		Revenue:         int64(m.Revenue),
		CreatedAt:       m.CreatedAt,
	}
}

// LedgerBalanceListResponse represents a list of lifetime positions.
type LedgerBalanceListResponse struct {
	Items []LedgerBalanceResponse `json:"items"`
}

// LedgerMovementListResponse represents a list of ledger movements.
type LedgerMovementListResponse struct {
	Items      []LedgerMovementResponse `json:"items"`
	TotalCount int                      `json:"totalCount,omitempty"`
}
