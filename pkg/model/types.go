package model

import "time"

// FieldType enumerates the input widgets the builder palette offers.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeDate     FieldType = "date"
	FieldTypeEmail    FieldType = "email"
	FieldTypePhone    FieldType = "phone"
	FieldTypeNumber   FieldType = "number"
	FieldTypeImage    FieldType = "image"
	FieldTypeFile     FieldType = "file"
)

// FieldTypes lists every supported field type in palette order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeTextarea,
		FieldTypeSelect,
		FieldTypeCheckbox,
		FieldTypeRadio,
		FieldTypeDate,
		FieldTypeEmail,
		FieldTypePhone,
		FieldTypeNumber,
		FieldTypeImage,
		FieldTypeFile,
	}
}

// HasOptions reports whether the type renders from an options list.
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldTypeSelect, FieldTypeRadio, FieldTypeCheckbox:
		return true
	default:
		return false
	}
}

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeSelect, FieldTypeCheckbox,
		FieldTypeRadio, FieldTypeDate, FieldTypeEmail, FieldTypePhone,
		FieldTypeNumber, FieldTypeImage, FieldTypeFile:
		return true
	default:
		return false
	}
}

// Validation carries the optional per-field constraints. Length and pattern
// constraints apply to string values, Min/Max to numeric values; the validator
// ignores whichever set does not match the value's kind.
type Validation struct {
	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Field describes a single input inside a form document. ID is assigned by the
// store at creation time and never changes afterwards; Options only carries
// meaning for select, radio and checkbox fields. Step is a zero-based index
// into the owning form's step list and is only present on multi-step forms.
type Field struct {
	ID          string      `json:"id" yaml:"id"`
	Type        FieldType   `json:"type" yaml:"type"`
	Label       string      `json:"label" yaml:"label"`
	Placeholder string      `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelpText    string      `json:"helpText,omitempty" yaml:"helpText,omitempty"`
	Required    bool        `json:"required" yaml:"required"`
	Options     []string    `json:"options,omitempty" yaml:"options,omitempty"`
	Validation  *Validation `json:"validation,omitempty" yaml:"validation,omitempty"`
	Step        *int        `json:"step,omitempty" yaml:"step,omitempty"`

	// VisibleIf holds an optional boolean expression over collected answers.
	// An empty rule means the field is always visible.
	VisibleIf string `json:"visibleIf,omitempty" yaml:"visibleIf,omitempty"`
}

// Step groups fields shown together in multi-step mode. FieldIDs is
// informational only; the Field.Step index on each field is the authoritative
// membership record and step contents should be derived by filtering on it.
type Step struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	FieldIDs    []string `json:"fields" yaml:"fields"`
}

// Settings holds form-level presentation knobs.
type Settings struct {
	SubmitText      string `json:"submitText" yaml:"submitText"`
	RedirectURL     string `json:"redirectUrl,omitempty" yaml:"redirectUrl,omitempty"`
	ShowProgressBar bool   `json:"showProgressBar" yaml:"showProgressBar"`
}

// Form is the document under edit or being filled. Field order is the display
// and fill order within a step; Steps is ignored when IsMultiStep is false.
type Form struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field   `json:"fields" yaml:"fields"`
	Steps       []Step    `json:"steps" yaml:"steps"`
	IsMultiStep bool      `json:"isMultiStep" yaml:"isMultiStep"`
	Settings    Settings  `json:"settings" yaml:"settings"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// FieldByID returns the index of the field with the given id, or -1.
func (f *Form) FieldByID(id string) int {
	for i := range f.Fields {
		if f.Fields[i].ID == id {
			return i
		}
	}
	return -1
}

// StepByID returns the index of the step with the given id, or -1.
func (f *Form) StepByID(id string) int {
	for i := range f.Steps {
		if f.Steps[i].ID == id {
			return i
		}
	}
	return -1
}

// FieldsForStep returns the fields belonging to the zero-based step index. On
// single-step forms every field belongs to the only step regardless of its
// Step value.
func (f *Form) FieldsForStep(index int) []Field {
	if !f.IsMultiStep {
		return CloneFields(f.Fields)
	}
	var out []Field
	for _, field := range f.Fields {
		if field.Step != nil && *field.Step == index {
			out = append(out, *field.Clone())
		}
	}
	return out
}

// TotalSteps reports how many steps a fill session walks: at least one, even
// for single-step forms.
func (f *Form) TotalSteps() int {
	if !f.IsMultiStep || len(f.Steps) == 0 {
		return 1
	}
	return len(f.Steps)
}

// FormShape is the reusable portion of a form: everything except identity and
// timestamps. Templates embed it and instantiation stamps fresh identity onto
// a deep copy.
type FormShape struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field  `json:"fields" yaml:"fields"`
	Steps       []Step   `json:"steps" yaml:"steps"`
	IsMultiStep bool     `json:"isMultiStep" yaml:"isMultiStep"`
	Settings    Settings `json:"settings" yaml:"settings"`
}

// Shape extracts the reusable portion of a form, sharing no state with it.
func (f *Form) Shape() FormShape {
	return FormShape{
		Title:       f.Title,
		Description: f.Description,
		Fields:      CloneFields(f.Fields),
		Steps:       CloneSteps(f.Steps),
		IsMultiStep: f.IsMultiStep,
		Settings:    f.Settings,
	}
}

// Template pairs a reusable form shape with registry metadata.
type Template struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Form        FormShape `json:"form" yaml:"form"`
}

// Submission records one completed fill of a form.
type Submission struct {
	ID          string         `json:"id"`
	FormID      string         `json:"formId"`
	FormTitle   string         `json:"formTitle"`
	Data        map[string]any `json:"data"`
	SubmittedAt time.Time      `json:"submittedAt"`
}
