// Package validation implements the per-field answer checks the builder
// configures and the filler enforces. Validation outcomes are data, not
// errors: a non-empty message means the value failed, an empty string means it
// passed. The check order is part of the contract because only the first
// failing message surfaces: required, then configured constraints, then the
// type-shape checks for email and phone.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

const (
	// MsgRequired surfaces when a required field has no value.
	MsgRequired = "This field is required"
	// MsgInvalidFormat surfaces when a configured pattern does not match.
	MsgInvalidFormat = "Invalid format"
	// MsgInvalidEmail surfaces when an email field fails the shape check.
	MsgInvalidEmail = "Please enter a valid email address"
	// MsgInvalidPhone surfaces when a phone field fails the shape check.
	MsgInvalidPhone = "Please enter a valid phone number"
)

var (
	emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneShape = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	phoneNoise = strings.NewReplacer("-", "", " ", "", "(", "", ")", "")
)

// Validate checks one value against one field definition and returns the first
// failing check's message, or "" when the value passes. A required field with
// an empty value short-circuits every other check.
func Validate(field model.Field, value any) string {
	if field.Required && isEmpty(value) {
		return MsgRequired
	}

	if !isEmpty(value) && field.Validation != nil {
		rules := field.Validation

		if s, ok := value.(string); ok {
			if rules.MinLength != nil && len(s) < *rules.MinLength {
				return fmt.Sprintf("Minimum length is %d characters", *rules.MinLength)
			}
			if rules.MaxLength != nil && len(s) > *rules.MaxLength {
				return fmt.Sprintf("Maximum length is %d characters", *rules.MaxLength)
			}
			if rules.Pattern != "" {
				// An uncompilable pattern is a builder mistake; it degrades
				// to "no constraint" rather than failing every value.
				if re, err := regexp.Compile(rules.Pattern); err == nil && !re.MatchString(s) {
					return MsgInvalidFormat
				}
			}
		}

		if n, ok := numericValue(value); ok {
			if rules.Min != nil && n < *rules.Min {
				return fmt.Sprintf("Minimum value is %v", *rules.Min)
			}
			if rules.Max != nil && n > *rules.Max {
				return fmt.Sprintf("Maximum value is %v", *rules.Max)
			}
		}
	}

	if field.Type == model.FieldTypeEmail && !isEmpty(value) {
		if s, ok := value.(string); ok && !emailShape.MatchString(s) {
			return MsgInvalidEmail
		}
	}

	if field.Type == model.FieldTypePhone && !isEmpty(value) {
		if s, ok := value.(string); ok && !phoneShape.MatchString(phoneNoise.Replace(s)) {
			return MsgInvalidPhone
		}
	}

	return ""
}

// ValidateAll runs Validate over every supplied field, keyed by field id.
// Fields excluded by the optional visible predicate are skipped entirely; the
// result only contains entries for failing fields.
func ValidateAll(fields []model.Field, values map[string]any, visible func(model.Field) bool) map[string]string {
	errs := make(map[string]string)
	for _, field := range fields {
		if visible != nil && !visible(field) {
			continue
		}
		if msg := Validate(field, values[field.ID]); msg != "" {
			errs[field.ID] = msg
		}
	}
	return errs
}

// isEmpty mirrors the filler's notion of "no answer": nil, an empty string,
// or an empty sequence for multi-value types such as checkbox groups.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
