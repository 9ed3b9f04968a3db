// Package store owns the form document being edited, the saved-form
// collection and the template registry. It is the single mutation surface:
// presentation code reads snapshots and asks the store to change things, and
// every mutation produces a fresh copy-on-write snapshot followed by an
// automatic persist of the saved-form collection.
//
// Operations on a missing current form, field id or step id are silent no-ops
// rather than errors; lookups signal "not found" through their return values.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/templates"
)

// DefaultTitle is the title a freshly created form starts with.
const DefaultTitle = "Untitled Form"

// Store is the form document container. Construct it with New; the zero value
// is not usable.
type Store struct {
	mu sync.RWMutex

	current         *model.Form
	selectedFieldID string
	savedForms      []model.Form
	userTemplates   []model.Template
	extraTemplates  []model.Template

	backend        storage.Storage
	generateID     func() string
	now            func() time.Time
	onPersistError func(error)
}

// New constructs a Store, applying options and reloading the saved-form and
// user-template collections from the configured backend. A missing key simply
// means "start empty"; a corrupt blob is reported through the persist failure
// handler and otherwise ignored.
func New(ctx context.Context, options ...Option) *Store {
	s := &Store{
		backend:        storage.NewMemory(),
		generateID:     uuid.NewString,
		now:            time.Now,
		onPersistError: func(error) {},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.reload(ctx)
	return s
}

func (s *Store) reload(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	if data, err := s.backend.Get(ctx, storage.KeySavedForms); err == nil {
		var forms []model.Form
		if err := json.Unmarshal(data, &forms); err != nil {
			s.onPersistError(err)
		} else {
			s.savedForms = forms
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.onPersistError(err)
	}
	if data, err := s.backend.Get(ctx, storage.KeyTemplates); err == nil {
		var tpls []model.Template
		if err := json.Unmarshal(data, &tpls); err != nil {
			s.onPersistError(err)
		} else {
			s.userTemplates = tpls
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.onPersistError(err)
	}
}

// CreateNewForm replaces the current form with a fresh default document and
// clears the field selection.
func (s *Store) CreateNewForm() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.current = &model.Form{
		ID:        s.generateID(),
		Title:     DefaultTitle,
		Fields:    []model.Field{},
		Steps:     []model.Step{},
		Settings:  model.DefaultSettings(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.selectedFieldID = ""
	return s.current.ID
}

// LoadForm replaces the current form with a copy of the given document and
// clears the field selection.
func (s *Store) LoadForm(form model.Form) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = form.Clone()
	s.selectedFieldID = ""
}

// UpdateForm merges the patch into the current form's metadata. A missing
// current form makes this a no-op.
func (s *Store) UpdateForm(patch FormPatch) {
	s.mutate(func(form *model.Form) {
		patch.apply(form)
	})
}

// AddField assigns a fresh id to the field, appends it, selects it and
// returns the id. On multi-step forms new fields land on step 0; the builder
// expects the user to reassign them. Returns "" when no form is loaded.
func (s *Store) AddField(field model.Field) string {
	var id string
	s.mutate(func(form *model.Form) {
		added := *field.Clone()
		added.ID = s.generateID()
		if form.IsMultiStep {
			zero := 0
			added.Step = &zero
		} else {
			added.Step = nil
		}
		form.Fields = append(form.Fields, added)
		id = added.ID
		s.selectedFieldID = id
	})
	return id
}

// UpdateField merges the patch into the field with the given id; a missing
// form or id is a no-op.
func (s *Store) UpdateField(id string, patch FieldPatch) {
	s.mutateField(id, func(field *model.Field) {
		patch.apply(field)
	})
}

// RemoveField drops the field with the given id and clears the selection if
// it pointed at that field. Step indexes on other fields and the step
// FieldIDs lists are deliberately left untouched.
func (s *Store) RemoveField(id string) {
	s.mutate(func(form *model.Form) {
		idx := form.FieldByID(id)
		if idx < 0 {
			return
		}
		form.Fields = append(form.Fields[:idx], form.Fields[idx+1:]...)
		if s.selectedFieldID == id {
			s.selectedFieldID = ""
		}
	})
}

// ReorderFields moves the field at from to position to, shifting everything
// between (a single-element move, not a swap). Out-of-range indices are
// clamped to the list bounds.
func (s *Store) ReorderFields(from, to int) {
	s.mutate(func(form *model.Form) {
		n := len(form.Fields)
		if n == 0 {
			return
		}
		from = clamp(from, 0, n-1)
		to = clamp(to, 0, n-1)
		moved := form.Fields[from]
		rest := append(form.Fields[:from:from], form.Fields[from+1:]...)
		fields := make([]model.Field, 0, n)
		fields = append(fields, rest[:to]...)
		fields = append(fields, moved)
		fields = append(fields, rest[to:]...)
		form.Fields = fields
	})
}

// SelectField marks the field under configuration; pass "" to clear. The id
// is not checked against the current form.
func (s *Store) SelectField(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedFieldID = id
}

// SelectedFieldID reports which field is under configuration, "" when none.
func (s *Store) SelectedFieldID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedFieldID
}

// AddStep appends a step with a fresh id and switches the form to multi-step
// mode. Returns the new step id, "" when no form is loaded.
func (s *Store) AddStep(step model.Step) string {
	var id string
	s.mutate(func(form *model.Form) {
		step.ID = s.generateID()
		if step.FieldIDs == nil {
			step.FieldIDs = []string{}
		}
		form.Steps = append(form.Steps, step)
		form.IsMultiStep = true
		id = step.ID
	})
	return id
}

// UpdateStep merges the patch into the step with the given id; a missing form
// or id is a no-op.
func (s *Store) UpdateStep(id string, patch StepPatch) {
	s.mutate(func(form *model.Form) {
		idx := form.StepByID(id)
		if idx < 0 {
			return
		}
		patch.apply(&form.Steps[idx])
	})
}

// RemoveStep drops the step with the given id. The form stays multi-step only
// while at least two steps remain; with one left it silently reverts to
// single-step mode. Fields referencing the removed step keep their index.
func (s *Store) RemoveStep(id string) {
	s.mutate(func(form *model.Form) {
		idx := form.StepByID(id)
		if idx < 0 {
			return
		}
		form.Steps = append(form.Steps[:idx], form.Steps[idx+1:]...)
		form.IsMultiStep = len(form.Steps) > 1
	})
}

// SaveForm upserts the current form into the saved collection by id and
// flushes the collection synchronously. Returns the form id, or "" when there
// is nothing to save.
func (s *Store) SaveForm() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ""
	}
	s.upsertCurrentLocked()
	s.persistFormsLocked()
	return s.current.ID
}

// AutoSave runs the same upsert-and-persist as SaveForm. It is invoked after
// every mutation and is idempotent: repeated calls with unchanged state write
// the same snapshot.
func (s *Store) AutoSave() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	s.upsertCurrentLocked()
	s.persistFormsLocked()
}

// FormByID looks a form up in the saved collection. The boolean reports
// whether it was found; the lookup never fails.
func (s *Store) FormByID(id string) (model.Form, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.savedForms {
		if s.savedForms[i].ID == id {
			return *s.savedForms[i].Clone(), true
		}
	}
	return model.Form{}, false
}

// CurrentForm returns a snapshot of the form under edit, nil when absent.
func (s *Store) CurrentForm() *model.Form {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// SavedForms returns a snapshot of the saved-form collection.
func (s *Store) SavedForms() []model.Form {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Form, len(s.savedForms))
	for i := range s.savedForms {
		out[i] = *s.savedForms[i].Clone()
	}
	return out
}

// Templates returns the built-in templates merged with any user-saved and
// option-registered ones, in that order.
func (s *Store) Templates() []model.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.templatesLocked()
}

func (s *Store) templatesLocked() []model.Template {
	out := templates.Builtin()
	for i := range s.userTemplates {
		out = append(out, *s.userTemplates[i].Clone())
	}
	for i := range s.extraTemplates {
		out = append(out, *s.extraTemplates[i].Clone())
	}
	return out
}

// LoadTemplate instantiates the template with the given id as the current
// form: a deep copy of its shape with a fresh id and fresh timestamps. The
// template itself is never touched. An unknown id changes nothing and
// reports false.
func (s *Store) LoadTemplate(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tpl := range s.templatesLocked() {
		if tpl.ID != id {
			continue
		}
		shape := tpl.Form.Clone()
		now := s.now()
		s.current = &model.Form{
			ID:          s.generateID(),
			Title:       shape.Title,
			Description: shape.Description,
			Fields:      shape.Fields,
			Steps:       shape.Steps,
			IsMultiStep: shape.IsMultiStep,
			Settings:    shape.Settings,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		s.selectedFieldID = ""
		return true
	}
	return false
}

// SaveAsTemplate snapshots the current form's shape into a new user template
// and persists the user-template collection. The caller is responsible for
// rejecting empty forms before calling; the store itself only requires a
// current form. Returns the new template id, "" when no form is loaded.
func (s *Store) SaveAsTemplate(name, description string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ""
	}
	tpl := model.Template{
		ID:          s.generateID(),
		Name:        strings.TrimSpace(name),
		Description: description,
		Form:        s.current.Shape(),
	}
	s.userTemplates = append(s.userTemplates, tpl)
	s.persistTemplatesLocked()
	return tpl.ID
}

// mutate clones the current form, applies fn, stamps UpdatedAt, swaps the
// snapshot in and autosaves. A missing current form makes it a no-op.
func (s *Store) mutate(fn func(*model.Form)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	next := s.current.Clone()
	fn(next)
	next.UpdatedAt = s.now()
	s.current = next

	s.upsertCurrentLocked()
	s.persistFormsLocked()
}

func (s *Store) mutateField(id string, fn func(*model.Field)) {
	s.mutate(func(form *model.Form) {
		idx := form.FieldByID(id)
		if idx < 0 {
			return
		}
		fn(&form.Fields[idx])
	})
}

func (s *Store) upsertCurrentLocked() {
	snapshot := *s.current.Clone()
	for i := range s.savedForms {
		if s.savedForms[i].ID == snapshot.ID {
			s.savedForms[i] = snapshot
			return
		}
	}
	s.savedForms = append(s.savedForms, snapshot)
}

func (s *Store) persistFormsLocked() {
	data, err := json.Marshal(s.savedForms)
	if err != nil {
		s.onPersistError(err)
		return
	}
	if err := s.backend.Put(context.Background(), storage.KeySavedForms, data); err != nil {
		s.onPersistError(err)
	}
}

func (s *Store) persistTemplatesLocked() {
	data, err := json.Marshal(s.userTemplates)
	if err != nil {
		s.onPersistError(err)
		return
	}
	if err := s.backend.Put(context.Background(), storage.KeyTemplates, data); err != nil {
		s.onPersistError(err)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
