package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"imprint/internal/core/apperror"
	"imprint/internal/core/id"
	"imprint/internal/domain/statements"
	"imprint/internal/infrastructure/http/v1/dto"
)

// StatementHandler handles HTTP requests for royalty statements.
type StatementHandler struct {
	*BaseHandler
	service  *statements.Service
	renderer statements.Renderer
}

// NewStatementHandler creates a new statement handler. The renderer is
// optional; without it the PDF route responds 404.
func NewStatementHandler(base *BaseHandler, service *statements.Service, renderer statements.Renderer) *StatementHandler {
	return &StatementHandler{
		BaseHandler: base,
		service:     service,
		renderer:    renderer,
	}
}

// Preview handles POST /statements/preview - calculate without persisting.
func (h *StatementHandler) Preview(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ComposeStatementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	calc, err := h.service.Preview(ctx, req.ToComposeRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, calc)
}

// Generate handles POST /statements - calculate and persist.
func (h *StatementHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ComposeStatementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	st, err := h.service.Generate(ctx, req.ToComposeRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromStatement(st)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// GenerateBatch handles POST /statements/batch - run the period for every
// active contract.
func (h *StatementHandler) GenerateBatch(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.BatchStatementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	report, err := h.service.GenerateBatch(ctx, req.Period())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBatchReport(report))
}

// PreviewBatch handles POST /statements/batch/preview - dry batch run.
func (h *StatementHandler) PreviewBatch(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.BatchStatementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.PreviewBatch(ctx, req.Period())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBatchResult(result))
}

// List handles GET /statements - list with filtering.
func (h *StatementHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := statements.ListFilter{}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "period_start DESC, number DESC")

	if authorID := c.Query("authorId"); authorID != "" {
		parsed, err := id.Parse(authorID)
		if err == nil {
			filter.AuthorID = &parsed
		}
	}

	if contractID := c.Query("contractId"); contractID != "" {
		parsed, err := id.Parse(contractID)
		if err == nil {
			filter.ContractID = &parsed
		}
	}

	if status := c.Query("status"); status != "" {
		val := statements.Status(status)
		filter.Status = &val
	}

	if periodFrom := c.Query("periodFrom"); periodFrom != "" {
		if parsed, err := time.Parse(time.RFC3339, periodFrom); err == nil {
			filter.PeriodFrom = &parsed
		}
	}

	if periodTo := c.Query("periodTo"); periodTo != "" {
		if parsed, err := time.Parse(time.RFC3339, periodTo); err == nil {
			filter.PeriodTo = &parsed
		}
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.StatementResponse, len(result.Items))
	for i, st := range result.Items {
		items[i] = dto.FromStatement(st)
	}

	c.JSON(http.StatusOK, dto.StatementListResponse{
		Items:      items,
		TotalCount: int(result.TotalCount),
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /statements/:id
func (h *StatementHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	statementID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	st, err := h.service.GetByID(ctx, statementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStatement(st))
}

// GetByNumber handles GET /statements/by-number/:number
func (h *StatementHandler) GetByNumber(c *gin.Context) {
	ctx := c.Request.Context()

	st, err := h.service.GetByNumber(ctx, c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStatement(st))
}

// MarkSent handles POST /statements/:id/send
func (h *StatementHandler) MarkSent(c *gin.Context) {
	ctx := c.Request.Context()

	statementID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	st, err := h.service.MarkSent(ctx, statementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStatement(st))
}

// Void handles POST /statements/:id/void
func (h *StatementHandler) Void(c *gin.Context) {
	ctx := c.Request.Context()

	statementID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.VoidStatementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	st, err := h.service.Void(ctx, statementID, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStatement(st))
}

// Download handles GET /statements/:id/pdf
func (h *StatementHandler) Download(c *gin.Context) {
	ctx := c.Request.Context()

	if h.renderer == nil {
		h.Error(c, apperror.NewBusinessRule("RENDERER_NOT_CONFIGURED", "statement rendering is not configured"))
		return
	}

	statementID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	st, err := h.service.GetByID(ctx, statementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	data, err := h.renderer.Render(ctx, st)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+st.Number+`.pdf"`)
	c.Data(http.StatusOK, h.renderer.ContentType(), data)
}
