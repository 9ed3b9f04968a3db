package model

import "strings"

// paletteLabels mirrors the display names the builder palette shows for each
// field type.
var paletteLabels = map[FieldType]string{
	FieldTypeText:     "Text Input",
	FieldTypeTextarea: "Textarea",
	FieldTypeNumber:   "Number",
	FieldTypeEmail:    "Email",
	FieldTypePhone:    "Phone",
	FieldTypeSelect:   "Dropdown",
	FieldTypeCheckbox: "Checkbox",
	FieldTypeRadio:    "Radio Button",
	FieldTypeDate:     "Date Picker",
	FieldTypeImage:    "Image Upload",
	FieldTypeFile:     "File Upload",
}

// PaletteLabel returns the display name the palette uses for a field type.
func PaletteLabel(t FieldType) string {
	if label, ok := paletteLabels[t]; ok {
		return label
	}
	return string(t)
}

// NewField seeds a field the way the palette does when a type is dropped onto
// the canvas: palette label, a derived placeholder, not required, and three
// starter options for choice types. The returned field has no ID; the store
// assigns one on AddField.
func NewField(t FieldType) Field {
	label := PaletteLabel(t)
	field := Field{
		Type:        t,
		Label:       label,
		Placeholder: "Enter " + strings.ToLower(label),
	}
	if t.HasOptions() {
		field.Options = []string{"Option 1", "Option 2", "Option 3"}
	}
	return field
}

// DefaultSettings returns the settings a freshly created form starts with.
func DefaultSettings() Settings {
	return Settings{
		SubmitText:      "Submit",
		ShowProgressBar: true,
	}
}
