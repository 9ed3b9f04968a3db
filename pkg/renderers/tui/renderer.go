// Package tui renders a form document as an interactive terminal walk built
// on survey prompts. Each step of a multi-step form is presented in order,
// validated before the walk moves on, and the collected answers are recorded
// as a submission when the final step passes.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/filler"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithStorage injects the backend completed submissions are appended to.
func WithStorage(backend storage.Storage) Option {
	return func(r *Renderer) {
		r.backend = backend
	}
}

// WithEvaluator injects the visibility evaluator applied to conditional
// fields during the walk.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(r *Renderer) {
		r.evaluator = evaluator
	}
}

// WithSubmitDelay overrides the fill session's artificial submit delay.
// Mostly useful for keeping tests fast.
func WithSubmitDelay(delay time.Duration) Option {
	return func(r *Renderer) {
		r.delay = &delay
	}
}

// Renderer implements render.Renderer for terminal-driven fill sessions.
type Renderer struct {
	driver    PromptDriver
	backend   storage.Storage
	evaluator visibility.Evaluator
	delay     *time.Duration
}

// New constructs a TUI renderer with defaults (survey driver, no storage).
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver: newSurveyDriver(),
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
	return "tui"
}

// ContentType reports the serialization format of the collected answers.
func (r *Renderer) ContentType() string {
	return "application/json"
}

// Render walks the user through the form and returns the recorded submission
// as JSON. Options.Values seeds answers so a walk can resume a partial fill.
func (r *Renderer) Render(ctx context.Context, form model.Form, opts render.Options) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, ErrNoDriver
	}

	sessionOpts := []filler.Option{}
	if r.backend != nil {
		sessionOpts = append(sessionOpts, filler.WithStorage(r.backend))
	}
	if r.evaluator != nil {
		sessionOpts = append(sessionOpts, filler.WithEvaluator(r.evaluator))
	}
	if r.delay != nil {
		sessionOpts = append(sessionOpts, filler.WithSubmitDelay(*r.delay))
	}
	session := filler.NewSession(form, sessionOpts...)
	for id, value := range opts.Values {
		session.SetAnswer(id, value)
	}

	if form.Title != "" {
		_ = r.driver.Info(ctx, form.Title)
	}
	if form.Description != "" {
		_ = r.driver.Info(ctx, form.Description)
	}

	for {
		if err := r.promptStep(ctx, session); err != nil {
			return nil, err
		}

		last := session.CurrentStep() == session.TotalSteps()-1
		if !last {
			if session.Next() {
				continue
			}
			// validation failed; report and re-prompt the step
			r.reportErrors(ctx, session)
			continue
		}

		submission, err := session.Submit(ctx)
		if errors.Is(err, filler.ErrStepInvalid) {
			r.reportErrors(ctx, session)
			continue
		}
		if err != nil {
			return nil, err
		}
		return json.Marshal(submission)
	}
}

func (r *Renderer) promptStep(ctx context.Context, session *filler.Session) error {
	form := session.Form()
	if form.IsMultiStep {
		index := session.CurrentStep()
		header := fmt.Sprintf("Step %d of %d", index+1, session.TotalSteps())
		if index < len(form.Steps) && form.Steps[index].Title != "" {
			header = fmt.Sprintf("%s: %s", header, form.Steps[index].Title)
		}
		_ = r.driver.Info(ctx, header)
		if index < len(form.Steps) && form.Steps[index].Description != "" {
			_ = r.driver.Info(ctx, form.Steps[index].Description)
		}
	}

	for _, field := range session.Fields() {
		value, err := r.promptField(ctx, field, session)
		if err != nil {
			return err
		}
		session.SetAnswer(field.ID, value)
	}
	return nil
}

func (r *Renderer) reportErrors(ctx context.Context, session *filler.Session) {
	messages := session.Errors()
	for _, field := range session.Fields() {
		if msg := messages[field.ID]; msg != "" {
			_ = r.driver.Info(ctx, fmt.Sprintf("%s: %s", field.Label, msg))
		}
	}
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, session *filler.Session) (any, error) {
	label := field.Label
	if field.Required {
		label += " *"
	}

	switch field.Type {
	case model.FieldTypeTextarea:
		return r.driver.TextArea(ctx, TextAreaConfig{
			Message: label,
			Default: answerString(session, field.ID),
			Help:    field.HelpText,
		})
	case model.FieldTypeSelect, model.FieldTypeRadio:
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      field.Options,
			DefaultIndex: indexOf(field.Options, answerString(session, field.ID)),
			Help:         field.HelpText,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(field.Options) {
			return "", nil
		}
		return field.Options[idx], nil
	case model.FieldTypeCheckbox:
		if len(field.Options) == 0 {
			return r.driver.Confirm(ctx, ConfirmConfig{
				Message: label,
				Help:    field.HelpText,
			})
		}
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  label,
			Options:  field.Options,
			Defaults: indicesOf(field.Options, answerStrings(session, field.ID)),
			Help:     field.HelpText,
		})
		if err != nil {
			return nil, err
		}
		selected := make([]string, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(field.Options) {
				selected = append(selected, field.Options[idx])
			}
		}
		return selected, nil
	case model.FieldTypeNumber:
		return r.promptNumber(ctx, field, label, session)
	case model.FieldTypeImage, model.FieldTypeFile:
		return r.driver.Input(ctx, InputConfig{
			Message: label + " (path)",
			Default: answerString(session, field.ID),
			Help:    field.HelpText,
		})
	default:
		// text, email, phone, date
		return r.driver.Input(ctx, InputConfig{
			Message:     label,
			Default:     answerString(session, field.ID),
			Help:        field.HelpText,
			Placeholder: field.Placeholder,
		})
	}
}

// promptNumber keeps asking until the input parses; domain constraints are
// enforced later by step validation.
func (r *Renderer) promptNumber(ctx context.Context, field model.Field, label string, session *filler.Session) (any, error) {
	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: answerString(session, field.ID),
			Help:    field.HelpText,
		})
		if err != nil {
			return nil, err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			return "", nil
		}
		parsed, err := strconv.ParseFloat(input, 64)
		if err != nil {
			_ = r.driver.Info(ctx, fmt.Sprintf("%s: not a number", field.Label))
			continue
		}
		return parsed, nil
	}
}

func answerString(session *filler.Session, fieldID string) string {
	v, ok := session.Answer(fieldID)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func answerStrings(session *filler.Session, fieldID string) []string {
	v, ok := session.Answer(fieldID)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return nil
	}
}
