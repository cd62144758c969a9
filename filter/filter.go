// Package filter selects compiled constraints with CEL expressions.
//
// An expression sees one constraint at a time through these variables:
//
//	template    string        snake_case template name, e.g. "chain_succession"
//	activities  list(string)  operand labels in order
//	arity       int           number of operands
//	declare     string        DECLARE descriptor
//	ltlf        string        LTLf formula
//
// Example: template in ["succession", "chain_succession"] && "Ship goods" in activities
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/liamcoop/bpmnconstraints/compiler"
)

// ErrInvalidExpression is returned by New for expressions that do not compile.
var ErrInvalidExpression = errors.New("invalid filter expression")

// costLimit bounds the work a single evaluation may do.
const costLimit = 100000

// Filter is a compiled selection expression. A nil *Filter matches every
// constraint. Filters are safe for concurrent use.
type Filter struct {
	expr string
	prog cel.Program
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("template", cel.StringType),
		cel.Variable("activities", cel.ListType(cel.StringType)),
		cel.Variable("arity", cel.IntType),
		cel.Variable("declare", cel.StringType),
		cel.Variable("ltlf", cel.StringType),
	)
}

// New compiles expr. A blank expression yields a nil filter.
func New(expr string) (*Filter, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}

	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: compile error: %v", ErrInvalidExpression, issues.Err())
	}

	prog, err := env.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: program creation error: %v", ErrInvalidExpression, err)
	}

	return &Filter{expr: expr, prog: prog}, nil
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match evaluates the filter against c. Non-boolean results count as no
// match.
func (f *Filter) Match(c compiler.CompiledConstraint) (bool, error) {
	if f == nil {
		return true, nil
	}

	out, _, err := f.prog.Eval(map[string]any{
		"template":   c.Kind.String(),
		"activities": c.Activities,
		"arity":      len(c.Activities),
		"declare":    c.Declare,
		"ltlf":       c.LTLf,
	})
	if err != nil {
		return false, fmt.Errorf("evaluating %q on %s: %w", f.expr, c.Declare, err)
	}

	matched, ok := out.Value().(bool)
	return ok && matched, nil
}

// Apply keeps the constraints of cs that match, preserving order.
func (f *Filter) Apply(cs []compiler.CompiledConstraint) ([]compiler.CompiledConstraint, error) {
	if f == nil {
		return cs, nil
	}

	out := make([]compiler.CompiledConstraint, 0, len(cs))
	for _, c := range cs {
		ok, err := f.Match(c)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}
