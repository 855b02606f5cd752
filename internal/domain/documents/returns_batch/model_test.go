package returns_batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imprint/internal/core/apperror"
	"imprint/internal/core/entity"
	"imprint/internal/core/id"
	"imprint/internal/core/types"
	"imprint/internal/domain/royalty"
)

func validBatch(t *testing.T) *ReturnsBatch {
	t.Helper()

	b := NewReturnsBatch("org-main", "ingram")
	b.AddLine(id.New(), id.New(), id.New(), royalty.FormatPaperback, 15, 30_000)
	return b
}

func TestNewReturnsBatch(t *testing.T) {
	b := NewReturnsBatch("org-main", "ingram")

	assert.Equal(t, "org-main", b.OrganizationID)
	assert.Equal(t, "ingram", b.Channel)
	assert.False(t, b.Approved)
	assert.Nil(t, b.ApprovedAt)
	assert.Empty(t, b.Lines)
}

func TestAddLine_RecalculatesTotals(t *testing.T) {
	b := NewReturnsBatch("org-main", "ingram")

	b.AddLine(id.New(), id.New(), id.New(), royalty.FormatPaperback, 10, 20_000)
	b.AddLine(id.New(), id.New(), id.New(), royalty.FormatEbook, 5, 12_500)

	assert.Equal(t, int64(15), b.TotalQuantity)
	assert.Equal(t, types.MinorUnits(32_500), b.TotalRefund)
}

func TestApprove(t *testing.T) {
	b := validBatch(t)

	b.Approve("reviewer@imprint.example")

	assert.True(t, b.Approved)
	require.NotNil(t, b.ApprovedAt)
	require.NotNil(t, b.ApprovedBy)
	assert.Equal(t, "reviewer@imprint.example", *b.ApprovedBy)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b *ReturnsBatch)
		wantErr bool
	}{
		{
			name:   "valid batch",
			mutate: func(b *ReturnsBatch) {},
		},
		{
			name:    "missing channel",
			mutate:  func(b *ReturnsBatch) { b.Channel = "" },
			wantErr: true,
		},
		{
			name:    "no lines",
			mutate:  func(b *ReturnsBatch) { b.Lines = nil },
			wantErr: true,
		},
		{
			name:    "line missing dimensions",
			mutate:  func(b *ReturnsBatch) { b.Lines[0].ContractID = id.Nil() },
			wantErr: true,
		},
		{
			name:    "unknown format",
			mutate:  func(b *ReturnsBatch) { b.Lines[0].Format = "vinyl" },
			wantErr: true,
		},
		{
			name:    "zero quantity",
			mutate:  func(b *ReturnsBatch) { b.Lines[0].Quantity = 0 },
			wantErr: true,
		},
		{
			name:    "negative refund",
			mutate:  func(b *ReturnsBatch) { b.Lines[0].Refund = -1 },
			wantErr: true,
		},
		{
			name:   "zero refund allowed",
			mutate: func(b *ReturnsBatch) { b.Lines[0].Refund = 0 },
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

func TestCanPost_RequiresApproval(t *testing.T) {
	b := validBatch(t)

	err := b.CanPost(context.Background())
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)

	b.Approve("reviewer@imprint.example")
	assert.NoError(t, b.CanPost(context.Background()))
}

func TestGenerateMovements_ExpenseRecords(t *testing.T) {
	b := validBatch(t)
	b.AddLine(id.New(), id.New(), id.New(), royalty.FormatEbook, 3, 7_500)

	set, err := b.GenerateMovements(context.Background())
	require.NoError(t, err)

	movements := set.Ledger()
	require.Len(t, movements, 2)
	for i, m := range movements {
		assert.Equal(t, b.ID, m.RecorderID)
		assert.Equal(t, "ReturnsBatch", m.RecorderType)
		assert.Equal(t, b.PostedVersion+1, m.RecorderVersion)
		assert.Equal(t, entity.RecordTypeExpense, m.RecordType)
		assert.Equal(t, b.Lines[i].Quantity, m.Quantity)
		assert.Equal(t, b.Lines[i].Refund, m.Revenue)
		assert.Equal(t, -b.Lines[i].Quantity, m.SignedQuantity())
	}
}
