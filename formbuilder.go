package formbuilder

import (
	"context"

	"github.com/goliatone/go-formbuilder/pkg/filler"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	htmlrenderer "github.com/goliatone/go-formbuilder/pkg/renderers/html"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/store"
	"github.com/goliatone/go-formbuilder/pkg/validation"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
	exprvis "github.com/goliatone/go-formbuilder/pkg/visibility/expr"
)

// Form aliases the document type exported via the root package for
// convenience.
type Form = model.Form

// Field aliases the field definition type.
type Field = model.Field

// Template aliases the template type.
type Template = model.Template

// Submission aliases the submission record type.
type Submission = model.Submission

// RenderOptions describes per-request overrides renderers use to prefill
// values or surface server-side validation errors.
type RenderOptions = render.Options

// NewStore exposes the document store constructor from the top-level module.
func NewStore(ctx context.Context, options ...store.Option) *store.Store {
	return store.New(ctx, options...)
}

// NewSession starts a fill session over a form, with visibility rules
// evaluated by the expression engine.
func NewSession(form model.Form, options ...filler.Option) *filler.Session {
	merged := append([]filler.Option{filler.WithEvaluator(exprvis.New())}, options...)
	return filler.NewSession(form, merged...)
}

// Validate checks one value against one field definition; the empty string
// means it passed.
func Validate(field model.Field, value any) string {
	return validation.Validate(field, value)
}

// RenderHTML emits standalone HTML markup for a form. It is the simplest
// entry point for callers that just want output for one document.
func RenderHTML(ctx context.Context, form model.Form, opts render.Options) ([]byte, error) {
	return htmlrenderer.New().Render(ctx, form, opts)
}

// Submissions reads every recorded submission from a backend.
func Submissions(ctx context.Context, backend storage.Storage) ([]model.Submission, error) {
	return filler.Submissions(ctx, backend)
}

// NewEvaluator constructs the expression-based visibility evaluator.
func NewEvaluator() visibility.Evaluator {
	return exprvis.New()
}
