package evaluator

import (
	"errors"
	"fmt"

	"github.com/antonmedv/expr"
)

var ErrEmptyExpression = errors.New("expression is empty")

// Expression is an expr-lang expression evaluated against a map of
// variables.
type Expression string

func (e Expression) Evaluate() (interface{}, error) {
	return e.EvaluateWithVars(map[string]interface{}{})
}

func (e Expression) EvaluateWithVars(params map[string]interface{}) (interface{}, error) {
	if e == "" {
		return nil, ErrEmptyExpression
	}

	program, err := expr.Compile(string(e), expr.Env(params), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compiling expression %q: %w", e, err)
	}

	output, err := expr.Run(program, params)
	if err != nil {
		return nil, fmt.Errorf("evaluating expression %q: %w", e, err)
	}

	return output, nil
}

// EvaluateBool evaluates the expression and requires a boolean result.
func (e Expression) EvaluateBool(params map[string]interface{}) (bool, error) {
	v, err := e.EvaluateWithVars(params)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q did not evaluate to a boolean, got: %v", e, v)
	}
	return b, nil
}
