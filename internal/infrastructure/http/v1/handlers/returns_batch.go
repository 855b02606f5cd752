package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"imprint/internal/core/apperror"
	"imprint/internal/core/id"
	"imprint/internal/domain"
	"imprint/internal/domain/documents/returns_batch"
	"imprint/internal/infrastructure/http/v1/dto"
)

// ReturnsBatchHandler handles HTTP requests for ReturnsBatch documents.
type ReturnsBatchHandler struct {
	*BaseDocumentHandler[*returns_batch.ReturnsBatch, dto.CreateReturnsBatchRequest, dto.UpdateReturnsBatchRequest]
	service *returns_batch.Service
}

// NewReturnsBatchHandler creates a new returns batch handler.
func NewReturnsBatchHandler(base *BaseHandler, service *returns_batch.Service) *ReturnsBatchHandler {
	cfg := BaseDocumentHandlerConfig[*returns_batch.ReturnsBatch, dto.CreateReturnsBatchRequest, dto.UpdateReturnsBatchRequest]{
		Service:    service,
		EntityName: "returns-batch",
		MapCreateDTO: func(req dto.CreateReturnsBatchRequest) *returns_batch.ReturnsBatch {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateReturnsBatchRequest, existing *returns_batch.ReturnsBatch) *returns_batch.ReturnsBatch {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(entity *returns_batch.ReturnsBatch) any {
			return dto.FromReturnsBatch(entity)
		},
	}

	return &ReturnsBatchHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
		service:             service,
	}
}

// Create handles POST /documents/returns-batches
// Returns post only after approval, so there is no postImmediately path.
func (h *ReturnsBatchHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreateReturnsBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc := req.ToEntity()

	if err := h.service.Create(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromReturnsBatch(doc)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// Update handles PUT /documents/returns-batches/:id
func (h *ReturnsBatchHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateReturnsBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(doc)

	if err := h.service.Update(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromReturnsBatch(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// Approve handles POST /documents/returns-batches/:id/approve
func (h *ReturnsBatchHandler) Approve(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Approve(ctx, docID, h.GetUserID(c)); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "returns batch approved")
}

// List handles GET /documents/returns-batches - list with filtering.
func (h *ReturnsBatchHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := returns_batch.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "date DESC")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	// Parse optional filters
	if channel := c.Query("channel"); channel != "" {
		filter.Channel = &channel
	}

	if authorID := c.Query("authorId"); authorID != "" {
		parsed, err := id.Parse(authorID)
		if err == nil {
			filter.AuthorID = &parsed
		}
	}

	if posted := c.Query("posted"); posted != "" {
		val := posted == "true"
		filter.Posted = &val
	}

	if approved := c.Query("approved"); approved != "" {
		val := approved == "true"
		filter.Approved = &val
	}

	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		if parsed, err := time.Parse(time.RFC3339, dateFrom); err == nil {
			filter.DateFrom = &parsed
		}
	}

	if dateTo := c.Query("dateTo"); dateTo != "" {
		if parsed, err := time.Parse(time.RFC3339, dateTo); err == nil {
			filter.DateTo = &parsed
		}
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.respondList(c, result)
}

// respondList sends paginated list response.
func (h *ReturnsBatchHandler) respondList(c *gin.Context, result domain.ListResult[*returns_batch.ReturnsBatch]) {
	items := make([]*dto.ReturnsBatchResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromReturnsBatch(doc)
	}

	c.JSON(http.StatusOK, dto.ReturnsBatchListResponse{
		Items:      items,
		TotalCount: int(result.TotalCount),
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
