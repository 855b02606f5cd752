// Package contract provides the Contract catalog: royalty terms binding an
// author to a title.
package contract

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"imprint/internal/core/apperror"
	"imprint/internal/core/entity"
	"imprint/internal/core/id"
	"imprint/internal/core/types"
	"imprint/internal/domain/royalty"
)

// Contract represents the royalty terms for one author on one title.
// Co-authored titles carry one contract per owner; the co-owner table on
// each contract records the full ownership split so every statement can
// show the title total.
type Contract struct {
	entity.Catalog

	// AuthorID is the signatory this contract pays
	AuthorID id.ID `db:"author_id" json:"authorId"`

	// TitleID is the published work the terms apply to
	TitleID id.ID `db:"title_id" json:"titleId"`

	// Mode selects period or lifetime tier progression
	Mode royalty.TierMode `db:"mode" json:"mode"`

	// AdvanceAmount in minor units; zero means no advance
	AdvanceAmount types.MinorUnits `db:"advance_amount" json:"advanceAmount"`

	// SignedOn is the contract signature date
	SignedOn *time.Time `db:"signed_on" json:"signedOn,omitempty"`

	// Active gates statement generation; inactive contracts keep their
	// history but are excluded from batch runs
	Active bool `db:"active" json:"active"`

	// Table part: tier rows, ordered by format then tier number
	Tiers []TierLine `db:"-" json:"tiers"`

	// Table part: ownership split. Empty means sole authorship.
	CoOwners []CoOwner `db:"-" json:"coOwners,omitempty"`
}

// TierLine is one tier row of a contract's rate schedule.
type TierLine struct {
	LineID id.ID          `db:"line_id" json:"lineId"`
	Format royalty.Format `db:"format" json:"format"`
	TierNo int            `db:"tier_no" json:"tierNo"`

	MinQuantity int64           `db:"min_quantity" json:"minQuantity"`
	MaxQuantity *int64          `db:"max_quantity" json:"maxQuantity,omitempty"`
	Rate        decimal.Decimal `db:"rate" json:"rate"`
}

// CoOwner is one owner's share of a co-authored title.
type CoOwner struct {
	AuthorID id.ID           `db:"author_id" json:"authorId"`
	Percent  decimal.Decimal `db:"percent" json:"percent"`
}

// NewContract creates a new Contract with required fields.
func NewContract(code, name string, authorID, titleID id.ID, mode royalty.TierMode) *Contract {
	return &Contract{
		Catalog:  entity.NewCatalog(code, name),
		AuthorID: authorID,
		TitleID:  titleID,
		Mode:     mode,
		Active:   true,
		Tiers:    make([]TierLine, 0),
	}
}

// AddTier appends a tier row for a format, numbering it after the format's
// existing rows.
func (c *Contract) AddTier(format royalty.Format, minQuantity int64, maxQuantity *int64, rate decimal.Decimal) {
	tierNo := 1
	for _, t := range c.Tiers {
		if t.Format == format {
			tierNo++
		}
	}
	c.Tiers = append(c.Tiers, TierLine{
		LineID:      id.New(),
		Format:      format,
		TierNo:      tierNo,
		MinQuantity: minQuantity,
		MaxQuantity: maxQuantity,
		Rate:        rate,
	})
}

// TierTables groups the tier rows into per-format ordered tables.
func (c *Contract) TierTables() map[royalty.Format][]royalty.RoyaltyTier {
	tables := make(map[royalty.Format][]royalty.RoyaltyTier)
	for _, f := range royalty.Formats() {
		for _, t := range c.Tiers {
			if t.Format != f {
				continue
			}
			tables[f] = append(tables[f], royalty.RoyaltyTier{
				MinQuantity: t.MinQuantity,
				MaxQuantity: t.MaxQuantity,
				Rate:        t.Rate,
			})
		}
	}
	return tables
}

// IsSplit reports whether the title is co-owned.
func (c *Contract) IsSplit() bool {
	return len(c.CoOwners) > 0
}

// OwnershipPercent returns this contract's author share, or nil for sole
// authorship.
func (c *Contract) OwnershipPercent() *decimal.Decimal {
	for _, o := range c.CoOwners {
		if o.AuthorID == c.AuthorID {
			p := o.Percent
			return &p
		}
	}
	return nil
}

// Terms projects the contract into the read-only value the calculation
// engine consumes.
func (c *Contract) Terms() *royalty.ContractTerms {
	return &royalty.ContractTerms{
		ContractID:    c.ID,
		AuthorID:      c.AuthorID,
		TitleID:       c.TitleID,
		Tiers:         c.TierTables(),
		AdvanceAmount: c.AdvanceAmount,
		Mode:          c.Mode,
		SplitPercent:  c.OwnershipPercent(),
	}
}

// Validate implements entity.Validatable interface.
func (c *Contract) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(c.AuthorID) {
		return apperror.NewValidation("author is required").
			WithDetail("field", "authorId")
	}
	if id.IsNil(c.TitleID) {
		return apperror.NewValidation("title is required").
			WithDetail("field", "titleId")
	}

	if c.Mode != royalty.ModePeriod && c.Mode != royalty.ModeLifetime {
		return apperror.NewValidation("invalid tier mode").
			WithDetail("field", "mode").
			WithDetail("value", string(c.Mode))
	}

	if c.AdvanceAmount.IsNegative() {
		return apperror.NewValidation("advance cannot be negative").
			WithDetail("field", "advanceAmount")
	}

	if len(c.Tiers) == 0 {
		return apperror.NewValidation("contract needs at least one tier row").
			WithDetail("field", "tiers")
	}
	for f, table := range c.TierTables() {
		if err := royalty.ValidateTierTable(table); err != nil {
			return apperror.NewValidation("invalid tier table").
				WithDetail("format", string(f)).
				WithCause(err)
		}
	}
	for _, t := range c.Tiers {
		if !royalty.IsValidFormat(t.Format) {
			return apperror.NewValidation("unknown format in tier table").
				WithDetail("format", string(t.Format))
		}
	}

	return c.validateCoOwners()
}

// validateCoOwners enforces the split invariants the calculation engine
// assumes: each share in (0,100], shares sum to exactly 100, no duplicate
// owners, and this contract's author among them.
func (c *Contract) validateCoOwners() error {
	if len(c.CoOwners) == 0 {
		return nil
	}
	if len(c.CoOwners) == 1 {
		return apperror.NewValidation("a split needs at least two owners; leave empty for sole authorship").
			WithDetail("field", "coOwners")
	}

	seen := make(map[id.ID]bool, len(c.CoOwners))
	total := decimal.Zero
	authorListed := false
	for _, o := range c.CoOwners {
		if seen[o.AuthorID] {
			return apperror.NewValidation("duplicate co-owner").
				WithDetail("authorId", o.AuthorID)
		}
		seen[o.AuthorID] = true

		if !o.Percent.IsPositive() || o.Percent.GreaterThan(decimal.NewFromInt(100)) {
			return apperror.NewValidation("ownership percent must be in (0, 100]").
				WithDetail("authorId", o.AuthorID).
				WithDetail("percent", o.Percent.String())
		}
		total = total.Add(o.Percent)
		if o.AuthorID == c.AuthorID {
			authorListed = true
		}
	}

	if !total.Equal(decimal.NewFromInt(100)) {
		return apperror.NewValidation("ownership percentages must sum to 100").
			WithDetail("sum", total.String())
	}
	if !authorListed {
		return apperror.NewValidation("contract author must be among the co-owners").
			WithDetail("authorId", c.AuthorID)
	}

	return nil
}
