package contract

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imprint/internal/core/id"
	"imprint/internal/domain/royalty"
)

func intPtr(v int64) *int64 { return &v }

// validContract builds a period-mode contract with a single-tier ebook
// schedule, ready to extend per test case.
func validContract(t *testing.T) *Contract {
	t.Helper()

	c := NewContract("RC-001", "Novel deal", id.New(), id.New(), royalty.ModePeriod)
	c.AddTier(royalty.FormatEbook, 0, nil, decimal.NewFromFloat(0.25))
	return c
}

func TestNewContract_Defaults(t *testing.T) {
	authorID := id.New()
	titleID := id.New()

	c := NewContract("RC-042", "Backlist deal", authorID, titleID, royalty.ModeLifetime)

	assert.Equal(t, "RC-042", c.Code)
	assert.Equal(t, "Backlist deal", c.Name)
	assert.Equal(t, authorID, c.AuthorID)
	assert.Equal(t, titleID, c.TitleID)
	assert.Equal(t, royalty.ModeLifetime, c.Mode)
	assert.True(t, c.Active)
	assert.Empty(t, c.Tiers)
	assert.False(t, c.IsSplit())
}

func TestAddTier_NumbersPerFormat(t *testing.T) {
	c := validContract(t)

	c.AddTier(royalty.FormatEbook, 5000, nil, decimal.NewFromFloat(0.30))
	c.AddTier(royalty.FormatPaperback, 0, nil, decimal.NewFromFloat(0.10))

	require.Len(t, c.Tiers, 3)
	assert.Equal(t, 1, c.Tiers[0].TierNo)
	assert.Equal(t, 2, c.Tiers[1].TierNo)
	// paperback numbering starts over
	assert.Equal(t, 1, c.Tiers[2].TierNo)
	assert.NotEqual(t, c.Tiers[0].LineID, c.Tiers[1].LineID)
}

func TestTierTables_GroupsByFormat(t *testing.T) {
	c := NewContract("RC-001", "Novel deal", id.New(), id.New(), royalty.ModePeriod)
	c.AddTier(royalty.FormatPaperback, 0, intPtr(10_000), decimal.NewFromFloat(0.10))
	c.AddTier(royalty.FormatPaperback, 10_000, nil, decimal.NewFromFloat(0.125))
	c.AddTier(royalty.FormatEbook, 0, nil, decimal.NewFromFloat(0.25))

	tables := c.TierTables()

	require.Len(t, tables, 2)
	require.Len(t, tables[royalty.FormatPaperback], 2)
	assert.Equal(t, int64(0), tables[royalty.FormatPaperback][0].MinQuantity)
	assert.Equal(t, int64(10_000), tables[royalty.FormatPaperback][1].MinQuantity)
	assert.Nil(t, tables[royalty.FormatPaperback][1].MaxQuantity)
	require.Len(t, tables[royalty.FormatEbook], 1)
	assert.True(t, tables[royalty.FormatEbook][0].Rate.Equal(decimal.NewFromFloat(0.25)))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Contract)
		wantErr bool
	}{
		{
			name:   "valid contract",
			mutate: func(c *Contract) {},
		},
		{
			name:    "missing author",
			mutate:  func(c *Contract) { c.AuthorID = id.Nil() },
			wantErr: true,
		},
		{
			name:    "missing title",
			mutate:  func(c *Contract) { c.TitleID = id.Nil() },
			wantErr: true,
		},
		{
			name:    "unknown tier mode",
			mutate:  func(c *Contract) { c.Mode = "cumulative" },
			wantErr: true,
		},
		{
			name:    "negative advance",
			mutate:  func(c *Contract) { c.AdvanceAmount = -1 },
			wantErr: true,
		},
		{
			name:    "no tier rows",
			mutate:  func(c *Contract) { c.Tiers = nil },
			wantErr: true,
		},
		{
			name: "tier table does not start at zero",
			mutate: func(c *Contract) {
				c.Tiers = nil
				c.AddTier(royalty.FormatEbook, 100, nil, decimal.NewFromFloat(0.25))
			},
			wantErr: true,
		},
		{
			name: "bounded last tier",
			mutate: func(c *Contract) {
				c.Tiers = nil
				c.AddTier(royalty.FormatEbook, 0, intPtr(5000), decimal.NewFromFloat(0.25))
			},
			wantErr: true,
		},
		{
			name: "unknown format in tier row",
			mutate: func(c *Contract) {
				c.Tiers = append(c.Tiers, TierLine{
					LineID: id.New(),
					Format: "vinyl",
					TierNo: 1,
					Rate:   decimal.NewFromFloat(0.1),
				})
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validContract(t)
			tt.mutate(c)

			err := c.Validate(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_CoOwners(t *testing.T) {
	other := id.New()

	tests := []struct {
		name    string
		owners  func(c *Contract) []CoOwner
		wantErr bool
	}{
		{
			name: "valid 60/40 split",
			owners: func(c *Contract) []CoOwner {
				return []CoOwner{
					{AuthorID: c.AuthorID, Percent: decimal.NewFromInt(60)},
					{AuthorID: other, Percent: decimal.NewFromInt(40)},
				}
			},
		},
		{
			name: "fractional shares summing to 100",
			owners: func(c *Contract) []CoOwner {
				return []CoOwner{
					{AuthorID: c.AuthorID, Percent: decimal.NewFromFloat(33.5)},
					{AuthorID: other, Percent: decimal.NewFromFloat(66.5)},
				}
			},
		},
		{
			name: "single owner split",
			owners: func(c *Contract) []CoOwner {
				return []CoOwner{
					{AuthorID: c.AuthorID, Percent: decimal.NewFromInt(100)},
				}
			},
			wantErr: true,
		},
		{
			name: "duplicate owner",
			owners: func(c *Contract) []CoOwner {
				return []CoOwner{
					{AuthorID: c.AuthorID, Percent: decimal.NewFromInt(50)},
					{AuthorID: c.AuthorID, Percent: decimal.NewFromInt(50)},
				}
			},
			wantErr: true,
		},
		{
			name: "zero percent share",
			owners: func(c *Contract) []CoOwner {
				return []CoOwner{
					{AuthorID: c.AuthorID, Percent: decimal.NewFromInt(100)},
					{AuthorID: other, Percent: decimal.Zero},
				}
			},
			wantErr: true,
		},
		{
			name: "shares sum below 100",
			owners: func(c *Contract) []CoOwner {
				return []CoOwner{
					{AuthorID: c.AuthorID, Percent: decimal.NewFromInt(50)},
					{AuthorID: other, Percent: decimal.NewFromInt(40)},
				}
			},
			wantErr: true,
		},
		{
			name: "contract author not among owners",
			owners: func(c *Contract) []CoOwner {
				return []CoOwner{
					{AuthorID: id.New(), Percent: decimal.NewFromInt(60)},
					{AuthorID: other, Percent: decimal.NewFromInt(40)},
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validContract(t)
			c.CoOwners = tt.owners(c)

			err := c.Validate(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOwnershipPercent(t *testing.T) {
	c := validContract(t)
	assert.Nil(t, c.OwnershipPercent())

	c.CoOwners = []CoOwner{
		{AuthorID: c.AuthorID, Percent: decimal.NewFromInt(60)},
		{AuthorID: id.New(), Percent: decimal.NewFromInt(40)},
	}

	p := c.OwnershipPercent()
	require.NotNil(t, p)
	assert.True(t, p.Equal(decimal.NewFromInt(60)))
	assert.True(t, c.IsSplit())
}

func TestTerms_ProjectsContract(t *testing.T) {
	c := validContract(t)
	c.AdvanceAmount = 500_000
	c.CoOwners = []CoOwner{
		{AuthorID: c.AuthorID, Percent: decimal.NewFromInt(70)},
		{AuthorID: id.New(), Percent: decimal.NewFromInt(30)},
	}

	terms := c.Terms()

	assert.Equal(t, c.ID, terms.ContractID)
	assert.Equal(t, c.AuthorID, terms.AuthorID)
	assert.Equal(t, c.TitleID, terms.TitleID)
	assert.Equal(t, c.Mode, terms.Mode)
	assert.Equal(t, c.AdvanceAmount, terms.AdvanceAmount)
	require.NotNil(t, terms.SplitPercent)
	assert.True(t, terms.SplitPercent.Equal(decimal.NewFromInt(70)))
	require.Len(t, terms.Tiers[royalty.FormatEbook], 1)
}
