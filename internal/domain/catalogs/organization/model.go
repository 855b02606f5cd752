// Package organization provides the Organization catalog (Справочник "Организации").
package organization

import (
	"context"

	"imprint/internal/core/entity"
)

// Organization represents a publishing imprint or business unit that issues
// documents and statements.
type Organization struct {
	entity.Catalog

	// FullName is the official full name of the organization
	FullName *string `db:"full_name" json:"fullName,omitempty"`

	// TaxID is the tax identification number
	TaxID *string `db:"tax_id" json:"taxId,omitempty"`

	// StatementFrom is the sender address used on outgoing statements
	StatementFrom *string `db:"statement_from" json:"statementFrom,omitempty"`

	// IsDefault indicates if this is the default organization for new documents
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// NewOrganization creates a new Organization with required fields.
func NewOrganization(code, name string) *Organization {
	return &Organization{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable interface.
func (o *Organization) Validate(ctx context.Context) error {
	return o.Catalog.Validate(ctx)
}
