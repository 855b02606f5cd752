package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"imprint/internal/core/apperror"
	"imprint/internal/core/entity"
	"imprint/internal/core/id"
	"imprint/internal/domain/registers/ledger"
	"imprint/internal/infrastructure/http/v1/dto"
)

// LedgerHandler handles HTTP requests for the sales ledger register.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewLedgerHandler creates a new sales ledger handler.
func NewLedgerHandler(base *BaseHandler, service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetBalances handles GET /registers/ledger/balances
// Returns lifetime positions per contract+format for one author.
func (h *LedgerHandler) GetBalances(c *gin.Context) {
	ctx := c.Request.Context()

	authorID, err := id.Parse(c.Query("authorId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("authorId is required"))
		return
	}

	balances, err := h.service.GetAuthorPositions(ctx, authorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.LedgerBalanceResponse, len(balances))
	for i, b := range balances {
		items[i] = dto.FromLedgerBalance(b)
	}

	c.JSON(http.StatusOK, dto.LedgerBalanceListResponse{Items: items})
}

// GetMovements handles GET /registers/ledger/movements
// Returns the movement history for one contract.
func (h *LedgerHandler) GetMovements(c *gin.Context) {
	ctx := c.Request.Context()

	contractID, err := id.Parse(c.Query("contractId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("contractId is required"))
		return
	}

	filter := ledger.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if authorID := c.Query("authorId"); authorID != "" {
		parsed, err := id.Parse(authorID)
		if err == nil {
			filter.AuthorID = &parsed
		}
	}

	if format := c.Query("format"); format != "" {
		filter.Format = &format
	}

	if recordType := c.Query("recordType"); recordType != "" {
		val := entity.RecordType(recordType)
		filter.RecordType = &val
	}

	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		if parsed, err := time.Parse(time.RFC3339, dateFrom); err == nil {
			filter.FromDate = &parsed
		}
	}

	if dateTo := c.Query("dateTo"); dateTo != "" {
		if parsed, err := time.Parse(time.RFC3339, dateTo); err == nil {
			filter.ToDate = &parsed
		}
	}

	movements, err := h.service.GetContractHistory(ctx, contractID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.LedgerMovementResponse, len(movements))
	for i, m := range movements {
		items[i] = dto.FromLedgerMovement(m)
	}

	c.JSON(http.StatusOK, dto.LedgerMovementListResponse{Items: items})
}

// Recalculate handles POST /registers/ledger/recalculate
// Rebuilds the position snapshot from movements, optionally scoped to one
// author or contract.
func (h *LedgerHandler) Recalculate(c *gin.Context) {
	ctx := c.Request.Context()

	var authorID, contractID *id.ID

	if aStr := c.Query("authorId"); aStr != "" {
		parsed, err := id.Parse(aStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid authorId format"))
			return
		}
		authorID = &parsed
	}

	if cStr := c.Query("contractId"); cStr != "" {
		parsed, err := id.Parse(cStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid contractId format"))
			return
		}
		contractID = &parsed
	}

	if err := h.service.RecalculateBalances(ctx, authorID, contractID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "ledger balances recalculated")
}
