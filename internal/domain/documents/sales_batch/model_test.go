package sales_batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imprint/internal/core/entity"
	"imprint/internal/core/id"
	"imprint/internal/core/types"
	"imprint/internal/domain/royalty"
)

func validBatch(t *testing.T) *SalesBatch {
	t.Helper()

	b := NewSalesBatch("org-main", "amazon_kdp")
	b.AddLine(id.New(), id.New(), id.New(), royalty.FormatEbook, 120, 360_000)
	return b
}

func TestNewSalesBatch(t *testing.T) {
	b := NewSalesBatch("org-main", "amazon_kdp")

	assert.Equal(t, "org-main", b.OrganizationID)
	assert.Equal(t, "amazon_kdp", b.Channel)
	assert.False(t, b.Posted)
	assert.Empty(t, b.Lines)
	assert.False(t, b.Date.IsZero())
}

func TestAddLine_RecalculatesTotals(t *testing.T) {
	b := NewSalesBatch("org-main", "ingram")

	b.AddLine(id.New(), id.New(), id.New(), royalty.FormatPaperback, 50, 100_000)
	b.AddLine(id.New(), id.New(), id.New(), royalty.FormatHardcover, 30, 150_000)

	require.Len(t, b.Lines, 2)
	assert.Equal(t, 1, b.Lines[0].LineNo)
	assert.Equal(t, 2, b.Lines[1].LineNo)
	assert.Equal(t, int64(80), b.TotalQuantity)
	assert.Equal(t, types.MinorUnits(250_000), b.TotalRevenue)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b *SalesBatch)
		wantErr bool
	}{
		{
			name:   "valid batch",
			mutate: func(b *SalesBatch) {},
		},
		{
			name:    "missing organization",
			mutate:  func(b *SalesBatch) { b.OrganizationID = "" },
			wantErr: true,
		},
		{
			name:    "missing channel",
			mutate:  func(b *SalesBatch) { b.Channel = "" },
			wantErr: true,
		},
		{
			name:    "no lines",
			mutate:  func(b *SalesBatch) { b.Lines = nil },
			wantErr: true,
		},
		{
			name:    "line missing author",
			mutate:  func(b *SalesBatch) { b.Lines[0].AuthorID = id.Nil() },
			wantErr: true,
		},
		{
			name:    "line missing contract",
			mutate:  func(b *SalesBatch) { b.Lines[0].ContractID = id.Nil() },
			wantErr: true,
		},
		{
			name:    "line missing title",
			mutate:  func(b *SalesBatch) { b.Lines[0].TitleID = id.Nil() },
			wantErr: true,
		},
		{
			name:    "unknown format",
			mutate:  func(b *SalesBatch) { b.Lines[0].Format = "vinyl" },
			wantErr: true,
		},
		{
			name:    "zero quantity",
			mutate:  func(b *SalesBatch) { b.Lines[0].Quantity = 0 },
			wantErr: true,
		},
		{
			name:    "negative revenue",
			mutate:  func(b *SalesBatch) { b.Lines[0].Revenue = -1 },
			wantErr: true,
		},
		{
			name:   "zero revenue allowed",
			mutate: func(b *SalesBatch) { b.Lines[0].Revenue = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBatch(t)
			tt.mutate(b)

			err := b.Validate(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerateMovements(t *testing.T) {
	b := validBatch(t)
	b.AddLine(id.New(), id.New(), id.New(), royalty.FormatAudiobook, 40, 200_000)

	set, err := b.GenerateMovements(context.Background())
	require.NoError(t, err)

	movements := set.Ledger()
	require.Len(t, movements, 2)
	for i, m := range movements {
		assert.Equal(t, b.ID, m.RecorderID)
		assert.Equal(t, "SalesBatch", m.RecorderType)
		assert.Equal(t, b.PostedVersion+1, m.RecorderVersion)
		assert.Equal(t, entity.RecordTypeReceipt, m.RecordType)
		assert.Equal(t, b.Lines[i].Quantity, m.Quantity)
		assert.Equal(t, b.Lines[i].Revenue, m.Revenue)
		assert.Equal(t, string(b.Lines[i].Format), m.Format)
		assert.Equal(t, b.Date, m.Period)
	}
}

func TestGenerateMovements_UsesNextVersion(t *testing.T) {
	b := validBatch(t)
	b.Posted = true
	b.PostedVersion = 4

	set, err := b.GenerateMovements(context.Background())
	require.NoError(t, err)

	require.Len(t, set.Ledger(), 1)
	assert.Equal(t, 5, set.Ledger()[0].RecorderVersion)
}
