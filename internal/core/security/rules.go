package security

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"imprint/internal/core/apperror"
)

// Rule names known to the engine. Tenants override the expressions, not
// the names.
const (
	// RuleStatementDispatch decides whether a freshly generated statement
	// is emailed to the author without a human review step.
	RuleStatementDispatch = "statement_dispatch"
)

// DefaultDispatchRule holds back statements that need a human look before
// they reach an author's inbox: missing contact details, negative periods
// or statements computed from an admittedly incomplete sales history.
const DefaultDispatchRule = `has_email && !warnings.exists(w, w == "negative_net" || w == "lifetime_history_incomplete")`

// RuleEngine compiles and evaluates tenant-configured CEL expressions.
// The calculation core never branches on policy; anything a tenant may
// want to tune (dispatch gating, review thresholds) goes through here.
//
// Expressions see the following variables:
//
//	net_payable    int    net amount owed to the author, minor units
//	gross_royalty  int    royalty before recoupment, minor units
//	recouped       int    advance recouped this period, minor units
//	warnings       list   warning codes attached to the statement
//	has_email      bool   payee has a deliverable email address
//	is_split       bool   statement computed from a co-ownership share
//	mode           string tier mode, "period" or "lifetime"
type RuleEngine struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewRuleEngine creates an engine with the default rule set compiled.
func NewRuleEngine() (*RuleEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("net_payable", cel.IntType),
		cel.Variable("gross_royalty", cel.IntType),
		cel.Variable("recouped", cel.IntType),
		cel.Variable("warnings", cel.ListType(cel.StringType)),
		cel.Variable("has_email", cel.BoolType),
		cel.Variable("is_split", cel.BoolType),
		cel.Variable("mode", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	e := &RuleEngine{
		env:      env,
		programs: make(map[string]cel.Program),
	}
	if err := e.SetRule(RuleStatementDispatch, DefaultDispatchRule); err != nil {
		return nil, err
	}
	return e, nil
}

// SetRule compiles and installs an expression under the given name,
// replacing any previous version. The expression must evaluate to bool.
func (e *RuleEngine) SetRule(name, expression string) error {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return apperror.NewValidation("invalid rule expression").
			WithDetail("rule", name).
			WithDetail("error", issues.Err().Error())
	}

	if !ast.OutputType().IsExactType(cel.BoolType) {
		return apperror.NewValidation("rule expression must evaluate to a boolean").
			WithDetail("rule", name).
			WithDetail("output_type", ast.OutputType().String())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return fmt.Errorf("build rule program %s: %w", name, err)
	}

	e.mu.Lock()
	e.programs[name] = prg
	e.mu.Unlock()
	return nil
}

// Eval evaluates the named rule against the given variables.
func (e *RuleEngine) Eval(ctx context.Context, name string, vars map[string]any) (bool, error) {
	e.mu.RLock()
	prg, ok := e.programs[name]
	e.mu.RUnlock()
	if !ok {
		return false, apperror.NewNotFound("rule", name)
	}

	out, _, err := prg.ContextEval(ctx, vars)
	if err != nil {
		return false, fmt.Errorf("evaluate rule %s: %w", name, err)
	}

	allowed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule %s produced %T, expected bool", name, out.Value())
	}
	return allowed, nil
}
