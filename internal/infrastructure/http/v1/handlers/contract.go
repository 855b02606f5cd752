package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"imprint/internal/core/apperror"
	"imprint/internal/core/id"
	"imprint/internal/domain"
	"imprint/internal/domain/catalogs/contract"
	"imprint/internal/infrastructure/http/v1/dto"
)

// ContractHandler extends the generic catalog handler with contract-specific
// routes: listing by author and deactivation.
type ContractHandler struct {
	*CatalogHandler[*contract.Contract, dto.CreateContractRequest, dto.UpdateContractRequest]
	service *contract.Service
}

// NewContractHandler creates a new contract handler.
func NewContractHandler(base *BaseHandler, service *contract.Service) *ContractHandler {
	config := CatalogHandlerConfig[
		*contract.Contract,
		dto.CreateContractRequest,
		dto.UpdateContractRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "contract",

		MapCreateDTO: func(req dto.CreateContractRequest) *contract.Contract {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateContractRequest, existing *contract.Contract) *contract.Contract {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *contract.Contract) any {
			return dto.FromContract(entity)
		},
	}

	return &ContractHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		service:        service,
	}
}

// ByAuthor handles GET /catalogs/contracts/by-author/:authorId
func (h *ContractHandler) ByAuthor(c *gin.Context) {
	ctx := c.Request.Context()

	authorID, err := id.Parse(c.Param("authorId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid authorId format"))
		return
	}

	filter := domain.DefaultListFilter()
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	result, err := h.service.FindByAuthor(ctx, authorID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.ContractResponse, len(result.Items))
	for i, ct := range result.Items {
		items[i] = dto.FromContract(ct)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Deactivate handles POST /catalogs/contracts/:id/deactivate
func (h *ContractHandler) Deactivate(c *gin.Context) {
	ctx := c.Request.Context()

	contractID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Deactivate(ctx, contractID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "contract deactivated")
}
