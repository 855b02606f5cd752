// Package title provides the Title catalog: the published works royalty
// contracts are signed against.
package title

import (
	"context"
	"strings"
	"time"

	"imprint/internal/core/apperror"
	"imprint/internal/core/entity"
	"imprint/internal/core/types"
	"imprint/internal/domain/royalty"
)

// Title represents one published work. Sales are recorded per edition
// format; the title itself is format-agnostic.
type Title struct {
	entity.Catalog

	// Subtitle is printed below the name on statements
	Subtitle *string `db:"subtitle" json:"subtitle,omitempty"`

	// ISBN is the primary identifier, unique within tenant. Editions of
	// the same work in other formats carry their own ISBNs in the sales
	// feed; the catalog tracks the lead edition.
	ISBN *string `db:"isbn" json:"isbn,omitempty"`

	// ImprintID is the reference to the publishing imprint
	ImprintID *string `db:"imprint_id" json:"imprintId,omitempty"`

	// Language is the publication language code (ISO 639-1)
	Language *string `db:"language" json:"language,omitempty"`

	// PublishedOn is the first publication date
	PublishedOn *time.Time `db:"published_on" json:"publishedOn,omitempty"`

	// PageCount for print editions
	PageCount *int `db:"page_count" json:"pageCount,omitempty"`

	// ListPrice is the recommended retail price in minor units
	ListPrice types.MinorUnits `db:"list_price" json:"listPrice"`

	// OutOfPrint marks titles no longer sold; historical statements
	// still reference them
	OutOfPrint bool `db:"out_of_print" json:"outOfPrint"`

	// CoverURL is the cover image URL
	CoverURL *string `db:"cover_url" json:"coverUrl,omitempty"`
}

// NewTitle creates a new Title with required fields.
func NewTitle(code, name string) *Title {
	return &Title{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable interface.
func (t *Title) Validate(ctx context.Context) error {
	// Base catalog validation
	if err := t.Catalog.Validate(ctx); err != nil {
		return err
	}

	if t.ISBN != nil && *t.ISBN != "" {
		if err := validateISBN(*t.ISBN); err != nil {
			return err
		}
	}

	if t.ListPrice.IsNegative() {
		return apperror.NewValidation("list price cannot be negative").
			WithDetail("field", "listPrice")
	}

	if t.PageCount != nil && *t.PageCount <= 0 {
		return apperror.NewValidation("page count must be positive").
			WithDetail("field", "pageCount")
	}

	return nil
}

// IsSellable reports whether new sales may be recorded against the title.
func (t *Title) IsSellable() bool {
	return !t.OutOfPrint
}

// --- Validation Helpers ---

// validateISBN accepts hyphenated or bare ISBN-10 and ISBN-13. Check-digit
// verification is the sales feed's responsibility; the catalog only guards
// shape.
func validateISBN(isbn string) error {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(isbn, "-", ""), " ", "")

	switch len(cleaned) {
	case 10:
		for i, r := range cleaned {
			if r >= '0' && r <= '9' {
				continue
			}
			// ISBN-10 allows X as the final check character.
			if i == 9 && (r == 'X' || r == 'x') {
				continue
			}
			return apperror.NewValidation("ISBN-10 must contain only digits (final X allowed)").
				WithDetail("field", "isbn")
		}
	case 13:
		for _, r := range cleaned {
			if r < '0' || r > '9' {
				return apperror.NewValidation("ISBN-13 must contain only digits").
					WithDetail("field", "isbn")
			}
		}
	default:
		return apperror.NewValidation("ISBN must be 10 or 13 characters").
			WithDetail("field", "isbn").
			WithDetail("length", len(cleaned))
	}

	return nil
}

// KnownFormats lists the edition formats sales may be recorded in.
func KnownFormats() []royalty.Format {
	return royalty.Formats()
}
