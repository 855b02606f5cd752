package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"imprint/internal/core/entity"
	"imprint/internal/core/id"
	"imprint/internal/core/types"
	"imprint/internal/domain/catalogs/contract"
	"imprint/internal/domain/royalty"
)

// --- Request DTOs ---

// ContractTierRequest is one tier row in create/update requests.
type ContractTierRequest struct {
	Format      royalty.Format  `json:"format" binding:"required"`
	MinQuantity int64           `json:"minQuantity"`
	MaxQuantity *int64          `json:"maxQuantity"`
	Rate        decimal.Decimal `json:"rate" binding:"required"`
}

// ContractCoOwnerRequest is one ownership share in create/update requests.
type ContractCoOwnerRequest struct {
	AuthorID string          `json:"authorId" binding:"required"`
	Percent  decimal.Decimal `json:"percent" binding:"required"`
}

// CreateContractRequest is the request body for creating a contract.
type CreateContractRequest struct {
	Code          string                   `json:"code"`
	Name          string                   `json:"name" binding:"required"`
	AuthorID      string                   `json:"authorId" binding:"required"`
	TitleID       string                   `json:"titleId" binding:"required"`
	Mode          royalty.TierMode         `json:"mode" binding:"required"`
	AdvanceAmount int64                    `json:"advanceAmount"`
	SignedOn      *time.Time               `json:"signedOn"`
	Active        *bool                    `json:"active"`
	Tiers         []ContractTierRequest    `json:"tiers" binding:"required,min=1,dive"`
	CoOwners      []ContractCoOwnerRequest `json:"coOwners,omitempty"`
	Attributes    entity.Attributes        `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateContractRequest) ToEntity() *contract.Contract {
	authorID, _ := id.Parse(r.AuthorID)
	titleID, _ := id.Parse(r.TitleID)

	c := contract.NewContract(r.Code, r.Name, authorID, titleID, r.Mode)
	c.AdvanceAmount = types.MinorUnits(r.AdvanceAmount)
	c.SignedOn = r.SignedOn
	c.Attributes = r.Attributes
	if r.Active != nil {
		c.Active = *r.Active
	}

	applyTiers(c, r.Tiers)
	applyCoOwners(c, r.CoOwners)

	return c
}

// UpdateContractRequest is the request body for updating a contract.
type UpdateContractRequest struct {
	Code          string                   `json:"code"`
	Name          string                   `json:"name" binding:"required"`
	AuthorID      string                   `json:"authorId" binding:"required"`
	TitleID       string                   `json:"titleId" binding:"required"`
	Mode          royalty.TierMode         `json:"mode" binding:"required"`
	AdvanceAmount int64                    `json:"advanceAmount"`
	SignedOn      *time.Time               `json:"signedOn"`
	Active        *bool                    `json:"active"`
	Tiers         []ContractTierRequest    `json:"tiers" binding:"required,min=1,dive"`
	CoOwners      []ContractCoOwnerRequest `json:"coOwners,omitempty"`
	Attributes    entity.Attributes        `json:"attributes"`
	Version       int                      `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateContractRequest) ApplyTo(c *contract.Contract) {
	authorID, _ := id.Parse(r.AuthorID)
	titleID, _ := id.Parse(r.TitleID)

	c.Code = r.Code
	c.Name = r.Name
	c.AuthorID = authorID
	c.TitleID = titleID
	c.Mode = r.Mode
	c.AdvanceAmount = types.MinorUnits(r.AdvanceAmount)
	c.SignedOn = r.SignedOn
	c.Attributes = r.Attributes
	c.Version = r.Version
	if r.Active != nil {
		c.Active = *r.Active
	}

	c.Tiers = c.Tiers[:0]
	applyTiers(c, r.Tiers)
	applyCoOwners(c, r.CoOwners)
}

func applyTiers(c *contract.Contract, tiers []ContractTierRequest) {
	for _, t := range tiers {
		c.AddTier(t.Format, t.MinQuantity, t.MaxQuantity, t.Rate)
	}
}

func applyCoOwners(c *contract.Contract, owners []ContractCoOwnerRequest) {
	c.CoOwners = make([]contract.CoOwner, 0, len(owners))
	for _, o := range owners {
		authorID, _ := id.Parse(o.AuthorID)
		c.CoOwners = append(c.CoOwners, contract.CoOwner{
			AuthorID: authorID,
			Percent:  o.Percent,
		})
	}
}

// --- Response DTOs ---

// ContractTierResponse is one tier row in API responses.
type ContractTierResponse struct {
	LineID      string          `json:"lineId"`
	Format      royalty.Format  `json:"format"`
	TierNo      int             `json:"tierNo"`
	MinQuantity int64           `json:"minQuantity"`
	MaxQuantity *int64          `json:"maxQuantity,omitempty"`
	Rate        decimal.Decimal `json:"rate"`
}

// ContractCoOwnerResponse is one ownership share in API responses.
type ContractCoOwnerResponse struct {
	AuthorID string          `json:"authorId"`
	Percent  decimal.Decimal `json:"percent"`
}

// ContractResponse is the response body for a contract.
type ContractResponse struct {
	ID            string                    `json:"id"`
	Code          string                    `json:"code"`
	Name          string                    `json:"name"`
	AuthorID      string                    `json:"authorId"`
	TitleID       string                    `json:"titleId"`
	Mode          royalty.TierMode          `json:"mode"`
	AdvanceAmount int64                     `json:"advanceAmount"`
	SignedOn      *time.Time                `json:"signedOn,omitempty"`
	Active        bool                      `json:"active"`
	Tiers         []ContractTierResponse    `json:"tiers"`
	CoOwners      []ContractCoOwnerResponse `json:"coOwners,omitempty"`
	DeletionMark  bool                      `json:"deletionMark"`
	Version       int                       `json:"version"`
	Attributes    entity.Attributes         `json:"attributes,omitempty"`
}

// FromContract creates response DTO from domain entity.
func FromContract(c *contract.Contract) *ContractResponse {
	resp := &ContractResponse{
		ID:            c.ID.String(),
		Code:          c.Code,
		Name:          c.Name,
		AuthorID:      c.AuthorID.String(),
		TitleID:       c.TitleID.String(),
		Mode:          c.Mode,
		AdvanceAmount: int64(c.AdvanceAmount),
		SignedOn:      c.SignedOn,
		Active:        c.Active,
		DeletionMark:  c.DeletionMark,
		Version:       c.Version,
		Attributes:    c.Attributes,
	}

	resp.Tiers = make([]ContractTierResponse, len(c.Tiers))
	for i, t := range c.Tiers {
		resp.Tiers[i] = ContractTierResponse{
			LineID:      t.LineID.String(),
			Format:      t.Format,
			TierNo:      t.TierNo,
			MinQuantity: t.MinQuantity,
			MaxQuantity: t.MaxQuantity,
			Rate:        t.Rate,
		}
	}

	if len(c.CoOwners) > 0 {
		resp.CoOwners = make([]ContractCoOwnerResponse, len(c.CoOwners))
		for i, o := range c.CoOwners {
			resp.CoOwners[i] = ContractCoOwnerResponse{
				AuthorID: o.AuthorID.String(),
				Percent:  o.Percent,
			}
		}
	}

	return resp
}
