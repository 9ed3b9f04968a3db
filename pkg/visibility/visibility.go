// Package visibility decides whether a field should be shown to the person
// filling a form, based on a rule string attached to the field and the answers
// collected so far.
package visibility

// Evaluator determines whether a field should be visible based on a rule
// string and the current fill context.
type Evaluator interface {
	Eval(fieldID, rule string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values holds the answers collected
// so far keyed by field id; Extras allows callers to inject arbitrary context
// such as prefilled metadata.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldID, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldID, rule string, ctx Context) (bool, error) {
	return fn(fieldID, rule, ctx)
}

// Always returns an Evaluator that shows every field regardless of rules.
func Always() Evaluator {
	return EvaluatorFunc(func(string, string, Context) (bool, error) {
		return true, nil
	})
}
