// Package author provides the Author catalog: the payees royalty
// statements are issued to.
package author

import (
	"context"
	"regexp"
	"strings"

	"imprint/internal/core/apperror"
	"imprint/internal/core/entity"
	"imprint/internal/domain/royalty"
)

// Pre-compiled regex patterns for validation (performance optimization)
var (
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Kind distinguishes records created as authors proper from contact records
// migrated in from the legacy contact book. Statements may reference either;
// downstream code resolves both to the same PayeeIdentity.
type Kind string

const (
	KindAuthor  Kind = "author"
	KindContact Kind = "contact"
)

// Author represents a royalty payee: a person or estate that signs
// contracts and receives statements.
type Author struct {
	entity.Catalog

	// Kind marks legacy contact-book records vs native author records
	Kind Kind `db:"kind" json:"kind"`

	// LegalName is the name payments are made out to, when it differs
	// from the display name
	LegalName *string `db:"legal_name" json:"legalName,omitempty"`

	// Email is the statement delivery address
	Email *string `db:"email" json:"email,omitempty"`

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// MailingAddress is the postal address printed on statements
	MailingAddress *string `db:"mailing_address" json:"mailingAddress,omitempty"`

	// TaxID is the payee's tax identification number
	TaxID *string `db:"tax_id" json:"taxId,omitempty"`

	// AgentName is the literary agent handling this author, if any
	AgentName *string `db:"agent_name" json:"agentName,omitempty"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewAuthor creates a new Author with required fields.
func NewAuthor(code, name string, kind Kind) *Author {
	return &Author{
		Catalog: entity.NewCatalog(code, name),
		Kind:    kind,
	}
}

// Validate implements entity.Validatable interface.
func (a *Author) Validate(ctx context.Context) error {
	if err := a.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidKind(a.Kind) {
		return apperror.NewValidation("invalid author kind").
			WithDetail("field", "kind").
			WithDetail("value", string(a.Kind))
	}

	if a.Email != nil && *a.Email != "" && !emailRE.MatchString(*a.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	if a.TaxID != nil && strings.TrimSpace(*a.TaxID) != *a.TaxID {
		return apperror.NewValidation("tax ID must not contain leading or trailing whitespace").
			WithDetail("field", "taxId")
	}

	return nil
}

// PayeeIdentity resolves this record to the single payee value the
// statement pipeline uses, regardless of its legacy kind.
func (a *Author) PayeeIdentity() royalty.PayeeIdentity {
	p := royalty.PayeeIdentity{
		ID:   a.ID,
		Name: a.Name,
	}
	if a.LegalName != nil && *a.LegalName != "" {
		p.Name = *a.LegalName
	}
	if a.Email != nil {
		p.Email = *a.Email
	}
	if a.MailingAddress != nil {
		p.Address = *a.MailingAddress
	}
	return p
}

// IsLegacyContact returns true for records migrated from the contact book.
func (a *Author) IsLegacyContact() bool {
	return a.Kind == KindContact
}

func isValidKind(k Kind) bool {
	switch k {
	case KindAuthor, KindContact:
		return true
	}
	return false
}
