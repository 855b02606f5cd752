package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imprint/internal/core/apperror"
)

func dispatchVars() map[string]any {
	return map[string]any{
		"net_payable":   int64(80_000),
		"gross_royalty": int64(130_000),
		"recouped":      int64(50_000),
		"warnings":      []string{},
		"has_email":     true,
		"is_split":      false,
		"mode":          "period",
	}
}

func TestRuleEngine_DefaultDispatchRule(t *testing.T) {
	e, err := NewRuleEngine()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(map[string]any)
		want   bool
	}{
		{"clean statement", func(v map[string]any) {}, true},
		{"no email", func(v map[string]any) { v["has_email"] = false }, false},
		{"negative net", func(v map[string]any) { v["warnings"] = []string{"negative_net"} }, false},
		{"incomplete history", func(v map[string]any) { v["warnings"] = []string{"lifetime_history_incomplete"} }, false},
		{"benign warning", func(v map[string]any) { v["warnings"] = []string{"zero_net"} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := dispatchVars()
			tt.mutate(vars)
			got, err := e.Eval(context.Background(), RuleStatementDispatch, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuleEngine_SetRuleReplaces(t *testing.T) {
	e, err := NewRuleEngine()
	require.NoError(t, err)

	// Tenant policy: hold anything above a payout threshold for review.
	require.NoError(t, e.SetRule(RuleStatementDispatch, `has_email && net_payable < 100000`))

	vars := dispatchVars()
	got, err := e.Eval(context.Background(), RuleStatementDispatch, vars)
	require.NoError(t, err)
	assert.True(t, got)

	vars["net_payable"] = int64(250_000)
	got, err = e.Eval(context.Background(), RuleStatementDispatch, vars)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestRuleEngine_RejectsInvalidExpression(t *testing.T) {
	e, err := NewRuleEngine()
	require.NoError(t, err)

	err = e.SetRule("broken", `net_payable >`)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestRuleEngine_RejectsNonBooleanExpression(t *testing.T) {
	e, err := NewRuleEngine()
	require.NoError(t, err)

	err = e.SetRule("numeric", `net_payable + recouped`)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestRuleEngine_UnknownRule(t *testing.T) {
	e, err := NewRuleEngine()
	require.NoError(t, err)

	_, err = e.Eval(context.Background(), "no_such_rule", dispatchVars())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
