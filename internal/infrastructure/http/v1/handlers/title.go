package handlers

import (
	"imprint/internal/domain/catalogs/title"
	"imprint/internal/infrastructure/http/v1/dto"
)

// Type alias keeps the handler signatures readable.
type TitleHTTPHandler = CatalogHandler[
	*title.Title,
	dto.CreateTitleRequest,
	dto.UpdateTitleRequest,
]

// NewTitleHandler wires the generic catalog handler to the title DTOs.
func NewTitleHandler(
	base *BaseHandler,
	service *title.Service,
) *TitleHTTPHandler {

	config := CatalogHandlerConfig[
		*title.Title,
		dto.CreateTitleRequest,
		dto.UpdateTitleRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "title",

		MapCreateDTO: func(req dto.CreateTitleRequest) *title.Title {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateTitleRequest, existing *title.Title) *title.Title {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *title.Title) any {
			return dto.FromTitle(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
