// Package render defines the contract between the form document and its
// output surfaces, plus the registry renderers are discovered through.
package render

import (
	"context"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Renderer turns a form document into output bytes: HTML markup, an
// interactive terminal walk, or anything else a caller registers.
type Renderer interface {
	// Name reports the renderer identifier used for registry lookups.
	Name() string
	// ContentType reports the media type of Render's output.
	ContentType() string
	// Render produces the output for one form.
	Render(ctx context.Context, form model.Form, opts Options) ([]byte, error)
}

// Options carries per-request rendering instructions: prefilled values,
// server-side validation errors to surface, and hidden fields to emit
// alongside the visible ones.
type Options struct {
	// Values prefills inputs, keyed by field id.
	Values map[string]any
	// Errors surfaces validation messages next to their fields.
	Errors map[string]string
	// HiddenFields is emitted verbatim by renderers that support it.
	HiddenFields map[string]string
	// Step restricts rendering to one zero-based step of a multi-step form.
	// Nil renders the whole document.
	Step *int
}
