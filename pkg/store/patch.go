package store

import "github.com/goliatone/go-formbuilder/pkg/model"

// FormPatch is a partial update of form metadata. Nil pointers leave the
// corresponding value untouched.
type FormPatch struct {
	Title       *string
	Description *string
	IsMultiStep *bool
	Settings    *model.Settings
}

func (p FormPatch) apply(form *model.Form) {
	if p.Title != nil {
		form.Title = *p.Title
	}
	if p.Description != nil {
		form.Description = *p.Description
	}
	if p.IsMultiStep != nil {
		form.IsMultiStep = *p.IsMultiStep
	}
	if p.Settings != nil {
		form.Settings = *p.Settings
	}
}

// FieldPatch is a partial update of one field. Nil pointers leave values
// untouched; the Clear flags drop optional members outright, since a nil
// pointer already means "unchanged".
type FieldPatch struct {
	Type            *model.FieldType
	Label           *string
	Placeholder     *string
	HelpText        *string
	Required        *bool
	Options         []string
	Validation      *model.Validation
	ClearValidation bool
	Step            *int
	ClearStep       bool
	VisibleIf       *string
}

func (p FieldPatch) apply(field *model.Field) {
	if p.Type != nil {
		field.Type = *p.Type
	}
	if p.Label != nil {
		field.Label = *p.Label
	}
	if p.Placeholder != nil {
		field.Placeholder = *p.Placeholder
	}
	if p.HelpText != nil {
		field.HelpText = *p.HelpText
	}
	if p.Required != nil {
		field.Required = *p.Required
	}
	if p.Options != nil {
		field.Options = append([]string(nil), p.Options...)
	}
	switch {
	case p.ClearValidation:
		field.Validation = nil
	case p.Validation != nil:
		v := *p.Validation
		field.Validation = &v
	}
	switch {
	case p.ClearStep:
		field.Step = nil
	case p.Step != nil:
		v := *p.Step
		field.Step = &v
	}
	if p.VisibleIf != nil {
		field.VisibleIf = *p.VisibleIf
	}
}

// StepPatch is a partial update of one step.
type StepPatch struct {
	Title       *string
	Description *string
	FieldIDs    []string
}

func (p StepPatch) apply(step *model.Step) {
	if p.Title != nil {
		step.Title = *p.Title
	}
	if p.Description != nil {
		step.Description = *p.Description
	}
	if p.FieldIDs != nil {
		step.FieldIDs = append([]string(nil), p.FieldIDs...)
	}
}
