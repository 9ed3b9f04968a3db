// Package filler walks an end user through a persisted form: step by step for
// multi-step documents, collecting answers, validating each step before it is
// left, and recording a submission at the end. It is the read path of the
// builder and never mutates the form document.
package filler

import (
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/validation"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// DefaultSubmitDelay is the artificial settle time applied before a
// submission completes. Interactive surfaces keep it; servers pass
// WithSubmitDelay(0).
const DefaultSubmitDelay = 1500 * time.Millisecond

// Option customises a fill session.
type Option func(*Session)

// WithStorage injects the blob backend submissions are appended to. Without
// one, submissions are returned to the caller but not recorded.
func WithStorage(backend storage.Storage) Option {
	return func(s *Session) {
		s.backend = backend
	}
}

// WithSubmitDelay overrides the artificial submission delay. Zero disables it.
func WithSubmitDelay(delay time.Duration) Option {
	return func(s *Session) {
		if delay >= 0 {
			s.delay = delay
		}
	}
}

// WithEvaluator injects the visibility evaluator used to hide conditional
// fields. The default shows everything.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(s *Session) {
		if evaluator != nil {
			s.evaluator = evaluator
		}
	}
}

// WithIDGenerator overrides how submission ids are minted.
func WithIDGenerator(generate func() string) Option {
	return func(s *Session) {
		if generate != nil {
			s.generateID = generate
		}
	}
}

// WithClock overrides the submission timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session is one end user's walk through one form. It is not safe for
// concurrent use; a session belongs to a single fill flow.
type Session struct {
	form    model.Form
	answers map[string]any
	errors  map[string]string
	current int

	evaluator  visibility.Evaluator
	backend    storage.Storage
	delay      time.Duration
	generateID func() string
	now        func() time.Time
}

// NewSession starts a fill session at the first step of the given form.
func NewSession(form model.Form, options ...Option) *Session {
	s := &Session{
		form:       *form.Clone(),
		answers:    make(map[string]any),
		errors:     make(map[string]string),
		evaluator:  visibility.Always(),
		delay:      DefaultSubmitDelay,
		generateID: uuid.NewString,
		now:        time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Form returns the document being filled.
func (s *Session) Form() model.Form {
	return *s.form.Clone()
}

// CurrentStep reports the zero-based step the session is on.
func (s *Session) CurrentStep() int {
	return s.current
}

// TotalSteps reports how many steps the walk has; always at least one.
func (s *Session) TotalSteps() int {
	return s.form.TotalSteps()
}

// Progress reports completion as a percentage of steps entered, matching the
// builder's progress bar: step 1 of 2 reads 50.
func (s *Session) Progress() float64 {
	return float64(s.current+1) / float64(s.TotalSteps()) * 100
}

// Fields returns the visible fields of the current step, in display order.
func (s *Session) Fields() []model.Field {
	var out []model.Field
	for _, field := range s.form.FieldsForStep(s.current) {
		if s.visible(field) {
			out = append(out, field)
		}
	}
	return out
}

// SetAnswer records a value for a field and clears any error previously
// reported against it. Errors come back only when the step is validated
// again.
func (s *Session) SetAnswer(fieldID string, value any) {
	s.answers[fieldID] = value
	delete(s.errors, fieldID)
}

// Answer returns the recorded value for a field.
func (s *Session) Answer(fieldID string) (any, bool) {
	v, ok := s.answers[fieldID]
	return v, ok
}

// Answers returns a copy of everything collected so far.
func (s *Session) Answers() map[string]any {
	out := make(map[string]any, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Errors returns the validation messages from the most recent step
// validation, keyed by field id.
func (s *Session) Errors() map[string]string {
	out := make(map[string]string, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

// Next validates the current step and, when it passes and another step
// remains, advances. It reports whether the session moved.
func (s *Session) Next() bool {
	if !s.validateCurrentStep() {
		return false
	}
	if s.current < s.TotalSteps()-1 {
		s.current++
		return true
	}
	return false
}

// Previous steps back without validating, reporting whether the session
// moved.
func (s *Session) Previous() bool {
	if s.current > 0 {
		s.current--
		return true
	}
	return false
}

// validateCurrentStep records per-field messages for the current step and
// reports whether it is clean. Hidden fields are not validated.
func (s *Session) validateCurrentStep() bool {
	stepErrors := validation.ValidateAll(s.form.FieldsForStep(s.current), s.answers, s.visible)
	s.errors = stepErrors
	return len(stepErrors) == 0
}

func (s *Session) visible(field model.Field) bool {
	if field.VisibleIf == "" {
		return true
	}
	ok, err := s.evaluator.Eval(field.ID, field.VisibleIf, visibility.Context{Values: s.answers})
	if err != nil {
		// A broken rule must never block a fill; the field stays visible.
		return true
	}
	return ok
}
