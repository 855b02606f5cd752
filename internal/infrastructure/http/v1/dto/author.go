package dto

import (
	"imprint/internal/core/entity"
	"imprint/internal/domain/catalogs/author"
)

// --- Request DTOs ---

// CreateAuthorRequest is the request body for creating an author.
type CreateAuthorRequest struct {
	Code           string            `json:"code"`
	Name           string            `json:"name" binding:"required"`
	Kind           author.Kind       `json:"kind" binding:"required"`
	LegalName      *string           `json:"legalName"`
	Email          *string           `json:"email"`
	Phone          *string           `json:"phone"`
	MailingAddress *string           `json:"mailingAddress"`
	TaxID          *string           `json:"taxId"`
	AgentName      *string           `json:"agentName"`
	Comment        *string           `json:"comment"`
	ParentID       *string           `json:"parentId"`
	IsFolder       bool              `json:"isFolder"`
	Attributes     entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateAuthorRequest) ToEntity() *author.Author {
	a := author.NewAuthor(r.Code, r.Name, r.Kind)
	a.LegalName = r.LegalName
	a.Email = r.Email
	a.Phone = r.Phone
	a.MailingAddress = r.MailingAddress
	a.TaxID = r.TaxID
	a.AgentName = r.AgentName
	a.Comment = r.Comment
	a.ParentID = r.ParentID
	a.IsFolder = r.IsFolder
	a.Attributes = r.Attributes
	return a
}

// UpdateAuthorRequest is the request body for updating an author.
type UpdateAuthorRequest struct {
	Code           string            `json:"code"`
	Name           string            `json:"name" binding:"required"`
	Kind           author.Kind       `json:"kind" binding:"required"`
	LegalName      *string           `json:"legalName"`
	Email          *string           `json:"email"`
	Phone          *string           `json:"phone"`
	MailingAddress *string           `json:"mailingAddress"`
	TaxID          *string           `json:"taxId"`
	AgentName      *string           `json:"agentName"`
	Comment        *string           `json:"comment"`
	ParentID       *string           `json:"parentId"`
	IsFolder       bool              `json:"isFolder"`
	Attributes     entity.Attributes `json:"attributes"`
	Version        int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateAuthorRequest) ApplyTo(a *author.Author) {
	a.Code = r.Code
	a.Name = r.Name
	a.Kind = r.Kind
	a.LegalName = r.LegalName
	a.Email = r.Email
	a.Phone = r.Phone
	a.MailingAddress = r.MailingAddress
	a.TaxID = r.TaxID
	a.AgentName = r.AgentName
	a.Comment = r.Comment
	a.ParentID = r.ParentID
	a.IsFolder = r.IsFolder
	a.Attributes = r.Attributes
	a.Version = r.Version
}

// --- Response DTOs ---

// AuthorResponse is the response body for an author.
type AuthorResponse struct {
	ID             string            `json:"id"`
	Code           string            `json:"code"`
	Name           string            `json:"name"`
	Kind           author.Kind       `json:"kind"`
	LegalName      *string           `json:"legalName,omitempty"`
	Email          *string           `json:"email,omitempty"`
	Phone          *string           `json:"phone,omitempty"`
	MailingAddress *string           `json:"mailingAddress,omitempty"`
	TaxID          *string           `json:"taxId,omitempty"`
	AgentName      *string           `json:"agentName,omitempty"`
	Comment        *string           `json:"comment,omitempty"`
	ParentID       *string           `json:"parentId,omitempty"`
	IsFolder       bool              `json:"isFolder"`
	DeletionMark   bool              `json:"deletionMark"`
	Version        int               `json:"version"`
	Attributes     entity.Attributes `json:"attributes,omitempty"`
}

// FromAuthor creates response DTO from domain entity.
func FromAuthor(a *author.Author) *AuthorResponse {
	return &AuthorResponse{
		ID:             a.ID.String(),
		Code:           a.Code,
		Name:           a.Name,
		Kind:           a.Kind,
		LegalName:      a.LegalName,
		Email:          a.Email,
		Phone:          a.Phone,
		MailingAddress: a.MailingAddress,
		TaxID:          a.TaxID,
		AgentName:      a.AgentName,
		Comment:        a.Comment,
		ParentID:       a.ParentID,
		IsFolder:       a.IsFolder,
		DeletionMark:   a.DeletionMark,
		Version:        a.Version,
		Attributes:     a.Attributes,
	}
}
