package flowtest

import (
	"encoding/base64"
	"fmt"

	"github.com/expr-lang/expr"
)

// Custom expression functions available in all step conditions.
var exprFunctions = []expr.Option{
	expr.Function("base64_encode", func(params ...any) (any, error) {
		s, _ := params[0].(string)
		return base64.StdEncoding.EncodeToString([]byte(s)), nil
	}),
	expr.Function("base64_decode", func(params ...any) (any, error) {
		s, _ := params[0].(string)
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}),
}

// Evaluator evaluates step `if:` conditions with the expr-lang library,
// using the current variable store as the environment.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

func (e *Evaluator) Eval(expression string, env map[string]any) (any, error) {
	context := make(map[string]any, len(env)+1)
	for k, v := range env {
		context[k] = v
	}

	// null as alias for nil (JSON/YAML compatibility)
	context["null"] = nil

	// defined() checks if a variable exists (distinguishes missing from null)
	definedFn := expr.Function(
		"defined",
		func(params ...any) (any, error) {
			name, ok := params[0].(string)
			if !ok {
				return false, fmt.Errorf("defined() expects string argument, got %T", params[0])
			}
			_, exists := context[name]
			return exists, nil
		},
		new(func(string) bool),
	)

	// NOTE: expr.Env MUST come before AllowUndefinedVariables for it to work
	opts := []expr.Option{
		expr.Env(context),
		expr.AllowUndefinedVariables(), // Missing variables return nil instead of compile error
		definedFn,
	}
	opts = append(opts, exprFunctions...)

	program, err := expr.Compile(expression, opts...)
	if err != nil {
		return nil, err
	}
	return expr.Run(program, context)
}

// Condition evaluates a boolean step condition. A non-boolean result is
// an error, not a truthiness guess.
func (e *Evaluator) Condition(expression string, env map[string]any) (bool, error) {
	result, err := e.Eval(expression, env)
	if err != nil {
		return false, err
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("condition %s evaluated to %T, expected boolean", expression, result)
	}
	return b, nil
}
