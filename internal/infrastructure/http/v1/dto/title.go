package dto

import (
	"time"

	"imprint/internal/core/entity"
	"imprint/internal/core/types"
	"imprint/internal/domain/catalogs/title"
)

// --- Request DTOs ---

// CreateTitleRequest is the request body for creating a title.
type CreateTitleRequest struct {
	Code        string            `json:"code"`
	Name        string            `json:"name" binding:"required"`
	Subtitle    *string           `json:"subtitle"`
	ISBN        *string           `json:"isbn"`
	ImprintID   *string           `json:"imprintId"`
	Language    *string           `json:"language"`
	PublishedOn *time.Time        `json:"publishedOn"`
	PageCount   *int              `json:"pageCount"`
	ListPrice   int64             `json:"listPrice"`
	OutOfPrint  bool              `json:"outOfPrint"`
	CoverURL    *string           `json:"coverUrl"`
	ParentID    *string           `json:"parentId"`
	IsFolder    bool              `json:"isFolder"`
	Attributes  entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateTitleRequest) ToEntity() *title.Title {
	t := title.NewTitle(r.Code, r.Name)
	t.Subtitle = r.Subtitle
	t.ISBN = r.ISBN
	t.ImprintID = r.ImprintID
	t.Language = r.Language
	t.PublishedOn = r.PublishedOn
	t.PageCount = r.PageCount
	t.ListPrice = types.MinorUnits(r.ListPrice)
	t.OutOfPrint = r.OutOfPrint
	t.CoverURL = r.CoverURL
	t.ParentID = r.ParentID
	t.IsFolder = r.IsFolder
	t.Attributes = r.Attributes
	return t
}

// UpdateTitleRequest is the request body for updating a title.
type UpdateTitleRequest struct {
	Code        string            `json:"code"`
	Name        string            `json:"name" binding:"required"`
	Subtitle    *string           `json:"subtitle"`
	ISBN        *string           `json:"isbn"`
	ImprintID   *string           `json:"imprintId"`
	Language    *string           `json:"language"`
	PublishedOn *time.Time        `json:"publishedOn"`
	PageCount   *int              `json:"pageCount"`
	ListPrice   int64             `json:"listPrice"`
	OutOfPrint  bool              `json:"outOfPrint"`
	CoverURL    *string           `json:"coverUrl"`
	ParentID    *string           `json:"parentId"`
	IsFolder    bool              `json:"isFolder"`
	Attributes  entity.Attributes `json:"attributes"`
	Version     int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateTitleRequest) ApplyTo(t *title.Title) {
	t.Code = r.Code
	t.Name = r.Name
	t.Subtitle = r.Subtitle
	t.ISBN = r.ISBN
	t.ImprintID = r.ImprintID
	t.Language = r.Language
	t.PublishedOn = r.PublishedOn
	t.PageCount = r.PageCount
	t.ListPrice = types.MinorUnits(r.ListPrice)
	t.OutOfPrint = r.OutOfPrint
	t.CoverURL = r.CoverURL
	t.ParentID = r.ParentID
	t.IsFolder = r.IsFolder
	t.Attributes = r.Attributes
	t.Version = r.Version
}

// --- Response DTOs ---

// TitleResponse is the response body for a title.
type TitleResponse struct {
	ID           string            `json:"id"`
	Code         string            `json:"code"`
	Name         string            `json:"name"`
	Subtitle     *string           `json:"subtitle,omitempty"`
	ISBN         *string           `json:"isbn,omitempty"`
	ImprintID    *string           `json:"imprintId,omitempty"`
	Language     *string           `json:"language,omitempty"`
	PublishedOn  *time.Time        `json:"publishedOn,omitempty"`
	PageCount    *int              `json:"pageCount,omitempty"`
	ListPrice    int64             `json:"listPrice"`
	OutOfPrint   bool              `json:"outOfPrint"`
	CoverURL     *string           `json:"coverUrl,omitempty"`
	ParentID     *string           `json:"parentId,omitempty"`
	IsFolder     bool              `json:"isFolder"`
	DeletionMark bool              `json:"deletionMark"`
	Version      int               `json:"version"`
	Attributes   entity.Attributes `json:"attributes,omitempty"`
}

// FromTitle creates response DTO from domain entity.
func FromTitle(t *title.Title) *TitleResponse {
	return &TitleResponse{
		ID:           t.ID.String(),
		Code:         t.Code,
		Name:         t.Name,
		Subtitle:     t.Subtitle,
		ISBN:         t.ISBN,
		ImprintID:    t.ImprintID,
		Language:     t.Language,
		PublishedOn:  t.PublishedOn,
		PageCount:    t.PageCount,
		ListPrice:    int64(t.ListPrice),
		OutOfPrint:   t.OutOfPrint,
		CoverURL:     t.CoverURL,
		ParentID:     t.ParentID,
		IsFolder:     t.IsFolder,
		DeletionMark: t.DeletionMark,
		Version:      t.Version,
		Attributes:   t.Attributes,
	}
}
