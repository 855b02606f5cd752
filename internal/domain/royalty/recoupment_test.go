package royalty

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"imprint/internal/core/types"
)

func TestComputeRecoupment(t *testing.T) {
	tests := []struct {
		name          string
		advance       types.MinorUnits
		prevRecouped  types.MinorUnits
		gross         types.MinorUnits
		wantThis      types.MinorUnits
		wantRemaining types.MinorUnits
	}{
		{
			name:          "partial recoupment",
			advance:       50_000,
			prevRecouped:  0,
			gross:         30_000,
			wantThis:      30_000,
			wantRemaining: 20_000,
		},
		{
			name:          "royalty exceeds remaining advance",
			advance:       50_000,
			prevRecouped:  0,
			gross:         130_000,
			wantThis:      50_000,
			wantRemaining: 0,
		},
		{
			name:          "advance already depleted",
			advance:       50_000,
			prevRecouped:  50_000,
			gross:         130_000,
			wantThis:      0,
			wantRemaining: 0,
		},
		{
			name:          "over-recouped history clamps to zero",
			advance:       50_000,
			prevRecouped:  60_000,
			gross:         10_000,
			wantThis:      0,
			wantRemaining: 0,
		},
		{
			name:          "no advance on contract",
			advance:       0,
			prevRecouped:  0,
			gross:         10_000,
			wantThis:      0,
			wantRemaining: 0,
		},
		{
			name:          "zero royalty leaves advance untouched",
			advance:       50_000,
			prevRecouped:  20_000,
			gross:         0,
			wantThis:      0,
			wantRemaining: 30_000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRecoupment(tt.advance, tt.prevRecouped, tt.gross)

			assert.Equal(t, tt.advance, got.OriginalAdvance)
			assert.Equal(t, tt.prevRecouped, got.PreviouslyRecouped)
			assert.Equal(t, tt.wantThis, got.ThisPeriodsRecoupment)
			assert.Equal(t, tt.wantRemaining, got.RemainingAdvance)
		})
	}
}

func TestComputeRecoupment_RecoupmentNeverExceedsGross(t *testing.T) {
	for _, gross := range []types.MinorUnits{0, 1, 49_999, 50_000, 50_001, 1_000_000} {
		got := ComputeRecoupment(50_000, 0, gross)
		assert.LessOrEqual(t, got.ThisPeriodsRecoupment, gross)
		assert.LessOrEqual(t, got.ThisPeriodsRecoupment, types.MinorUnits(50_000))
		assert.Equal(t, types.MinorUnits(50_000), got.ThisPeriodsRecoupment+got.RemainingAdvance)
	}
}
