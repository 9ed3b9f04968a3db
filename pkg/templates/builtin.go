// Package templates holds the starter form templates and the loader for
// user-provided template documents. A template is a form shape without
// identity; instantiating one stamps a fresh id and timestamps onto a deep
// copy, leaving the template untouched.
package templates

import "github.com/goliatone/go-formbuilder/pkg/model"

func intp(v int) *int { return &v }

// Builtin returns the fixed starter set. The slice and its contents are fresh
// on every call so callers can never corrupt the built-ins.
func Builtin() []model.Template {
	return []model.Template{
		{
			ID:          "contact-us",
			Name:        "Contact Us",
			Description: "Basic contact form template",
			Form: model.FormShape{
				Title:       "Contact Us",
				Description: "Get in touch with us",
				Fields: []model.Field{
					{
						ID:          "contact-name",
						Type:        model.FieldTypeText,
						Label:       "Full Name",
						Placeholder: "Enter your full name",
						Required:    true,
						Step:        intp(0),
					},
					{
						ID:          "contact-email",
						Type:        model.FieldTypeEmail,
						Label:       "Email Address",
						Placeholder: "Enter your email",
						Required:    true,
						Step:        intp(0),
					},
					{
						ID:          "contact-message",
						Type:        model.FieldTypeTextarea,
						Label:       "Message",
						Placeholder: "Enter your message",
						Required:    true,
						Validation: &model.Validation{
							MinLength: intp(10),
							MaxLength: intp(500),
						},
						Step: intp(0),
					},
				},
				Steps:       []model.Step{},
				IsMultiStep: false,
				Settings: model.Settings{
					SubmitText:      "Send Message",
					ShowProgressBar: true,
				},
			},
		},
		{
			ID:          "survey",
			Name:        "Survey Form",
			Description: "Multi-step survey template",
			Form: model.FormShape{
				Title:       "Customer Survey",
				Description: "Help us improve our services",
				Fields: []model.Field{
					{
						ID:          "survey-name",
						Type:        model.FieldTypeText,
						Label:       "Name",
						Placeholder: "Your name",
						Required:    true,
						Step:        intp(0),
					},
					{
						ID:       "survey-source",
						Type:     model.FieldTypeSelect,
						Label:    "How did you hear about us?",
						Required: true,
						Options:  []string{"Google", "Social Media", "Friend", "Advertisement", "Other"},
						Step:     intp(0),
					},
					{
						ID:       "survey-satisfaction",
						Type:     model.FieldTypeRadio,
						Label:    "Overall satisfaction",
						Required: true,
						Options:  []string{"Very Satisfied", "Satisfied", "Neutral", "Dissatisfied", "Very Dissatisfied"},
						Step:     intp(1),
					},
					{
						ID:          "survey-comments",
						Type:        model.FieldTypeTextarea,
						Label:       "Additional Comments",
						Placeholder: "Any additional feedback?",
						Required:    false,
						Step:        intp(1),
					},
				},
				Steps: []model.Step{
					{
						ID:          "survey-step-basics",
						Title:       "Basic Information",
						Description: "Tell us about yourself",
						FieldIDs:    []string{},
					},
					{
						ID:          "survey-step-feedback",
						Title:       "Feedback",
						Description: "Share your experience",
						FieldIDs:    []string{},
					},
				},
				IsMultiStep: true,
				Settings: model.Settings{
					SubmitText:      "Submit Survey",
					ShowProgressBar: true,
				},
			},
		},
	}
}
