package handlers

import (
	"imprint/internal/domain/catalogs/author"
	"imprint/internal/infrastructure/http/v1/dto"
)

// Type alias keeps the handler signatures readable.
type AuthorHTTPHandler = CatalogHandler[
	*author.Author,
	dto.CreateAuthorRequest,
	dto.UpdateAuthorRequest,
]

// NewAuthorHandler wires the generic catalog handler to the author DTOs.
func NewAuthorHandler(
	base *BaseHandler,
	service *author.Service,
) *AuthorHTTPHandler {

	config := CatalogHandlerConfig[
		*author.Author,
		dto.CreateAuthorRequest,
		dto.UpdateAuthorRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "author",

		MapCreateDTO: func(req dto.CreateAuthorRequest) *author.Author {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateAuthorRequest, existing *author.Author) *author.Author {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *author.Author) any {
			return dto.FromAuthor(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
