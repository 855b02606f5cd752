package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"imprint/internal/core/apperror"
	"imprint/internal/core/id"
	"imprint/internal/domain"
	"imprint/internal/domain/documents/sales_batch"
	"imprint/internal/infrastructure/http/v1/dto"
)

// SalesBatchHandler handles HTTP requests for SalesBatch documents.
type SalesBatchHandler struct {
	*BaseDocumentHandler[*sales_batch.SalesBatch, dto.CreateSalesBatchRequest, dto.UpdateSalesBatchRequest]
	service *sales_batch.Service
}

// NewSalesBatchHandler creates a new sales batch handler.
func NewSalesBatchHandler(base *BaseHandler, service *sales_batch.Service) *SalesBatchHandler {
	cfg := BaseDocumentHandlerConfig[*sales_batch.SalesBatch, dto.CreateSalesBatchRequest, dto.UpdateSalesBatchRequest]{
		Service:    service,
		EntityName: "sales-batch",
		MapCreateDTO: func(req dto.CreateSalesBatchRequest) *sales_batch.SalesBatch {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateSalesBatchRequest, existing *sales_batch.SalesBatch) *sales_batch.SalesBatch {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(entity *sales_batch.SalesBatch) any {
			return dto.FromSalesBatch(entity)
		},
		IsPostImmediately: func(req dto.CreateSalesBatchRequest) bool {
			return req.PostImmediately
		},
	}

	return &SalesBatchHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
		service:             service,
	}
}

// Create handles POST /documents/sales-batches
func (h *SalesBatchHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreateSalesBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc := req.ToEntity()

	var err error
	if req.PostImmediately {
		err = h.service.PostAndSave(ctx, doc)
	} else {
		err = h.service.Create(ctx, doc)
	}

	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromSalesBatch(doc)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// Update handles PUT /documents/sales-batches/:id
func (h *SalesBatchHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateSalesBatchRequest
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

	response := dto.FromSalesBatch(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// List handles GET /documents/sales-batches - list with filtering.
func (h *SalesBatchHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := sales_batch.ListFilter{
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

// Copy handles POST /documents/sales-batches/:id/copy
func (h *SalesBatchHandler) Copy(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	source, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	copy := sales_batch.NewSalesBatch(source.OrganizationID, source.Channel)
	copy.Date = time.Now()
	copy.ChannelReference = source.ChannelReference
	copy.Comment = source.Comment

	for _, line := range source.Lines {
		copy.AddLine(line.AuthorID, line.ContractID, line.TitleID, line.Format, line.Quantity, line.Revenue)
	}

	if err := h.service.Create(ctx, copy); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromSalesBatch(copy)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// respondList sends paginated list response.
func (h *SalesBatchHandler) respondList(c *gin.Context, result domain.ListResult[*sales_batch.SalesBatch]) {
	items := make([]*dto.SalesBatchResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromSalesBatch(doc)
	}

	c.JSON(http.StatusOK, dto.SalesBatchListResponse{
		Items:      items,
		TotalCount: int(result.TotalCount),
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
