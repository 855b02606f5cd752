package statements

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imprint/internal/core/id"
	"imprint/internal/domain/royalty"
)

func sampleStatement(t *testing.T) *Statement {
	t.Helper()
	calc := &royalty.StatementCalculations{
		AuthorID:   id.New(),
		ContractID: id.New(),
		Period: royalty.PeriodBounds{
			Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		GrossRoyalty: 130_000,
		NetPayable:   80_000,
		AdvanceRecoupment: royalty.StatementAdvanceRecoupment{
			OriginalAdvance:       50_000,
			ThisPeriodsRecoupment: 50_000,
		},
		Warnings: []royalty.Warning{{Code: royalty.WarningZeroNet}},
	}
	payee := royalty.PayeeIdentity{ID: calc.AuthorID, Name: "Iris Bell", Email: "iris@example.com"}
	return NewStatement(calc, payee, id.New())
}

func TestNewStatement_DenormalizesTotals(t *testing.T) {
	st := sampleStatement(t)

	assert.Equal(t, StatusFinal, st.Status)
	assert.Equal(t, st.Calculations.GrossRoyalty, st.GrossRoyalty)
	assert.Equal(t, st.Calculations.NetPayable, st.NetPayable)
	assert.Equal(t, st.Calculations.AdvanceRecoupment.ThisPeriodsRecoupment, st.Recouped)
	assert.Equal(t, []string{"zero_net"}, st.WarningCodes())
	require.NoError(t, st.Validate(context.Background()))
}

func TestStatement_MarkSent(t *testing.T) {
	st := sampleStatement(t)

	require.NoError(t, st.MarkSent())
	assert.Equal(t, StatusSent, st.Status)
	require.NotNil(t, st.SentAt)

	// Redelivery keeps the original timestamp.
	first := *st.SentAt
	require.NoError(t, st.MarkSent())
	assert.Equal(t, first, *st.SentAt)
}

func TestStatement_SendVoidStatement(t *testing.T) {
	st := sampleStatement(t)
	require.NoError(t, st.Void("duplicate run"))

	err := st.MarkSent()
	require.Error(t, err)
}

func TestStatement_Void(t *testing.T) {
	st := sampleStatement(t)

	require.NoError(t, st.Void("returns file was stale"))
	assert.Equal(t, StatusVoid, st.Status)
	assert.True(t, st.IsVoid())
	require.NotNil(t, st.VoidedAt)

	// Void is terminal.
	require.Error(t, st.Void("again"))
}

func TestStatement_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Statement)
	}{
		{"missing author", func(s *Statement) { s.AuthorID = id.Nil() }},
		{"missing contract", func(s *Statement) { s.ContractID = id.Nil() }},
		{"zero period", func(s *Statement) { s.PeriodStart = time.Time{} }},
		{"inverted period", func(s *Statement) { s.PeriodEnd = s.PeriodStart.Add(-time.Hour) }},
		{"unknown status", func(s *Statement) { s.Status = Status("draft") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := sampleStatement(t)
			tt.mutate(st)
			assert.Error(t, st.Validate(context.Background()))
		})
	}
}
