// Package expr evaluates visibility rules as boolean expressions over the
// collected answers, e.g. `answers["country"] == "US"` or
// `extras.preview && answers["age"] > 17`.
package expr

import (
	"errors"
	"strings"

	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// Evaluator compiles and runs rules with expr-lang. Compiled programs are
// cached per rule text, so repeated evaluation during a fill session pays
// compilation once.
type Evaluator struct {
	programs map[string]*vm.Program
}

// New constructs an Evaluator with an empty program cache.
func New() *Evaluator {
	return &Evaluator{programs: make(map[string]*vm.Program)}
}

var _ visibility.Evaluator = (*Evaluator)(nil)

// Eval runs the rule against the context. An empty rule is always visible.
func (e *Evaluator) Eval(fieldID, rule string, ctx visibility.Context) (bool, error) {
	_ = fieldID
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return true, nil
	}

	env := map[string]any{
		"answers": nonNilMap(ctx.Values),
		"extras":  nonNilMap(ctx.Extras),
	}

	program, ok := e.programs[trimmed]
	if !ok {
		var err error
		program, err = exprlang.Compile(trimmed, exprlang.Env(env), exprlang.AsBool())
		if err != nil {
			return false, err
		}
		e.programs[trimmed] = program
	}

	output, err := exprlang.Run(program, env)
	if err != nil {
		return false, err
	}

	result, ok := output.(bool)
	if !ok {
		return false, errors.New("visibility/expr: rule did not return a boolean")
	}
	return result, nil
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
