// Package html renders a form document as standalone HTML markup suitable
// for embedding in a host page. Output is deterministic for a given form and
// options, which keeps snapshot tests stable.
package html

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

// Renderer implements render.Renderer producing HTML form markup.
type Renderer struct {
	helpPolicy *bluemonday.Policy
	classes    Classes
}

// Classes lets hosts theme the emitted markup without touching the renderer.
type Classes struct {
	Form     string
	Step     string
	Field    string
	Label    string
	Error    string
	Help     string
	Progress string
}

// DefaultClasses are applied when the caller does not override them.
func DefaultClasses() Classes {
	return Classes{
		Form:     "fb-form",
		Step:     "fb-step",
		Field:    "fb-field",
		Label:    "fb-label",
		Error:    "fb-error",
		Help:     "fb-help",
		Progress: "fb-progress",
	}
}

// Option configures the HTML renderer.
type Option func(*Renderer)

// WithClasses overrides the CSS class names emitted on markup elements.
func WithClasses(classes Classes) Option {
	return func(r *Renderer) {
		r.classes = classes
	}
}

// WithHelpPolicy overrides the sanitizer applied to field help text. Help
// text may carry limited inline HTML authored in the builder; everything
// else on the form is escaped outright.
func WithHelpPolicy(policy *bluemonday.Policy) Option {
	return func(r *Renderer) {
		if policy != nil {
			r.helpPolicy = policy
		}
	}
}

// New constructs an HTML renderer. By default help text passes through
// bluemonday's UGC policy.
func New(options ...Option) *Renderer {
	r := &Renderer{
		helpPolicy: bluemonday.UGCPolicy(),
		classes:    DefaultClasses(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "html"
}

// ContentType reports the media type of Render's output.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render emits the form markup. With opts.Step set only that step's fields
// are rendered; otherwise every step appears as its own fieldset.
func (r *Renderer) Render(ctx context.Context, form model.Form, opts render.Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<form class=%q data-form-id=%q method="post">`+"\n", r.classes.Form, form.ID)

	if form.Title != "" {
		fmt.Fprintf(&b, "<h2>%s</h2>\n", esc(form.Title))
	}
	if form.Description != "" {
		fmt.Fprintf(&b, "<p>%s</p>\n", esc(form.Description))
	}

	for _, hidden := range render.SortedHiddenFields(opts.HiddenFields) {
		fmt.Fprintf(&b, `<input type="hidden" name=%q value=%q>`+"\n", hidden.Name, esc(hidden.Value))
	}

	total := form.TotalSteps()
	if form.IsMultiStep && opts.Step != nil {
		index := *opts.Step
		if index < 0 || index >= total {
			return nil, fmt.Errorf("html: step %d out of range (form has %d)", index, total)
		}
		if form.Settings.ShowProgressBar {
			r.writeProgress(&b, index, total)
		}
		r.writeStep(&b, form, index, opts)
	} else if form.IsMultiStep {
		for index := 0; index < total; index++ {
			r.writeStep(&b, form, index, opts)
		}
	} else {
		for _, field := range form.Fields {
			r.writeField(&b, field, opts)
		}
	}

	submit := form.Settings.SubmitText
	if submit == "" {
		submit = "Submit"
	}
	fmt.Fprintf(&b, `<button type="submit">%s</button>`+"\n", esc(submit))
	b.WriteString("</form>\n")

	return []byte(b.String()), nil
}

func (r *Renderer) writeProgress(b *strings.Builder, index, total int) {
	percent := (index + 1) * 100 / total
	fmt.Fprintf(b, `<div class=%q role="progressbar" aria-valuenow="%d" aria-valuemin="0" aria-valuemax="100">Step %d of %d</div>`+"\n",
		r.classes.Progress, percent, index+1, total)
}

func (r *Renderer) writeStep(b *strings.Builder, form model.Form, index int, opts render.Options) {
	fmt.Fprintf(b, `<fieldset class=%q data-step="%d">`+"\n", r.classes.Step, index)
	if index < len(form.Steps) {
		step := form.Steps[index]
		if step.Title != "" {
			fmt.Fprintf(b, "<legend>%s</legend>\n", esc(step.Title))
		}
		if step.Description != "" {
			fmt.Fprintf(b, "<p>%s</p>\n", esc(step.Description))
		}
	}
	for _, field := range form.FieldsForStep(index) {
		r.writeField(b, field, opts)
	}
	b.WriteString("</fieldset>\n")
}

func (r *Renderer) writeField(b *strings.Builder, field model.Field, opts render.Options) {
	value := ""
	if opts.Values != nil {
		if v, ok := opts.Values[field.ID]; ok && v != nil {
			value = fmt.Sprint(v)
		}
	}

	fmt.Fprintf(b, `<div class=%q data-field-type=%q>`+"\n", r.classes.Field, string(field.Type))

	label := esc(field.Label)
	if field.Required {
		label += ` <span aria-hidden="true">*</span>`
	}
	fmt.Fprintf(b, `<label class=%q for=%q>%s</label>`+"\n", r.classes.Label, field.ID, label)

	switch field.Type {
	case model.FieldTypeTextarea:
		fmt.Fprintf(b, `<textarea id=%q name=%q placeholder=%q%s>%s</textarea>`+"\n",
			field.ID, field.ID, esc(field.Placeholder), requiredAttr(field), esc(value))
	case model.FieldTypeSelect:
		fmt.Fprintf(b, `<select id=%q name=%q%s>`+"\n", field.ID, field.ID, requiredAttr(field))
		b.WriteString(`<option value="">` + esc(field.Placeholder) + "</option>\n")
		for _, option := range field.Options {
			selected := ""
			if value != "" && option == value {
				selected = " selected"
			}
			fmt.Fprintf(b, `<option value=%q%s>%s</option>`+"\n", esc(option), selected, esc(option))
		}
		b.WriteString("</select>\n")
	case model.FieldTypeRadio, model.FieldTypeCheckbox:
		kind := "radio"
		if field.Type == model.FieldTypeCheckbox {
			kind = "checkbox"
		}
		checkedSet := selectedValues(opts.Values, field.ID)
		for i, option := range field.Options {
			id := fmt.Sprintf("%s-%d", field.ID, i)
			checked := ""
			if _, ok := checkedSet[option]; ok {
				checked = " checked"
			}
			fmt.Fprintf(b, `<label><input type=%q id=%q name=%q value=%q%s> %s</label>`+"\n",
				kind, id, field.ID, esc(option), checked, esc(option))
		}
	case model.FieldTypeNumber:
		extra := numberAttrs(field.Validation)
		fmt.Fprintf(b, `<input type="number" id=%q name=%q value=%q placeholder=%q%s%s>`+"\n",
			field.ID, field.ID, esc(value), esc(field.Placeholder), extra, requiredAttr(field))
	case model.FieldTypeDate:
		fmt.Fprintf(b, `<input type="date" id=%q name=%q value=%q%s>`+"\n",
			field.ID, field.ID, esc(value), requiredAttr(field))
	case model.FieldTypeEmail:
		fmt.Fprintf(b, `<input type="email" id=%q name=%q value=%q placeholder=%q%s>`+"\n",
			field.ID, field.ID, esc(value), esc(field.Placeholder), requiredAttr(field))
	case model.FieldTypePhone:
		fmt.Fprintf(b, `<input type="tel" id=%q name=%q value=%q placeholder=%q%s>`+"\n",
			field.ID, field.ID, esc(value), esc(field.Placeholder), requiredAttr(field))
	case model.FieldTypeImage:
		fmt.Fprintf(b, `<input type="file" id=%q name=%q accept="image/*"%s>`+"\n",
			field.ID, field.ID, requiredAttr(field))
	case model.FieldTypeFile:
		fmt.Fprintf(b, `<input type="file" id=%q name=%q%s>`+"\n",
			field.ID, field.ID, requiredAttr(field))
	default:
		fmt.Fprintf(b, `<input type="text" id=%q name=%q value=%q placeholder=%q%s>`+"\n",
			field.ID, field.ID, esc(value), esc(field.Placeholder), requiredAttr(field))
	}

	if field.HelpText != "" {
		fmt.Fprintf(b, `<small class=%q>%s</small>`+"\n", r.classes.Help, r.helpPolicy.Sanitize(field.HelpText))
	}
	if opts.Errors != nil {
		if msg := opts.Errors[field.ID]; msg != "" {
			fmt.Fprintf(b, `<span class=%q role="alert">%s</span>`+"\n", r.classes.Error, esc(msg))
		}
	}

	b.WriteString("</div>\n")
}

// selectedValues normalises a prefill value into the set of checked options.
// Checkbox answers may arrive as a slice; everything else as a scalar.
func selectedValues(values map[string]any, fieldID string) map[string]struct{} {
	out := map[string]struct{}{}
	if values == nil {
		return out
	}
	switch v := values[fieldID].(type) {
	case nil:
	case []string:
		for _, s := range v {
			out[s] = struct{}{}
		}
	case []any:
		for _, item := range v {
			out[fmt.Sprint(item)] = struct{}{}
		}
	default:
		out[fmt.Sprint(v)] = struct{}{}
	}
	return out
}

func numberAttrs(v *model.Validation) string {
	if v == nil {
		return ""
	}
	var b strings.Builder
	if v.Min != nil {
		fmt.Fprintf(&b, ` min="%v"`, *v.Min)
	}
	if v.Max != nil {
		fmt.Fprintf(&b, ` max="%v"`, *v.Max)
	}
	return b.String()
}

func requiredAttr(field model.Field) string {
	if field.Required {
		return " required"
	}
	return ""
}

func esc(s string) string {
	return template.HTMLEscapeString(s)
}
