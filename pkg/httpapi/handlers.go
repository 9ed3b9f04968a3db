package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/goliatone/go-formbuilder/pkg/filler"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

type createFormRequest struct {
	Title      string `json:"title"`
	TemplateID string `json:"templateId"`
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	var req createFormRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}

	s.editMu.Lock()
	defer s.editMu.Unlock()

	var id string
	if req.TemplateID != "" {
		if !s.store.LoadTemplate(req.TemplateID) {
			s.notFound(w, "template", req.TemplateID)
			return
		}
		form := s.store.CurrentForm()
		id = form.ID
	} else {
		id = s.store.CreateNewForm()
	}
	if req.Title != "" {
		s.store.UpdateForm(store.FormPatch{Title: &req.Title})
	}
	s.store.SaveForm()

	form, ok := s.store.FormByID(id)
	if !ok {
		s.internalError(w, fmt.Errorf("httpapi: created form %s not found after save", id))
		return
	}
	s.writeJSON(w, http.StatusCreated, form)
}

func (s *Server) handleListForms(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.SavedForms())
}

func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	form, ok := s.store.FormByID(id)
	if !ok {
		s.notFound(w, "form", id)
		return
	}
	s.writeJSON(w, http.StatusOK, form)
}

type updateFormRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	IsMultiStep *bool           `json:"isMultiStep"`
	Settings    *model.Settings `json:"settings"`
}

func (s *Server) handleUpdateForm(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req updateFormRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}

	s.editMu.Lock()
	defer s.editMu.Unlock()

	if _, ok := s.loadForEdit(w, id); !ok {
		return
	}
	s.store.UpdateForm(store.FormPatch{
		Title:       req.Title,
		Description: req.Description,
		IsMultiStep: req.IsMultiStep,
		Settings:    req.Settings,
	})
	s.respondWithSaved(w, id)
}

func (s *Server) handleAddField(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		Type model.FieldType `json:"type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	if !req.Type.Valid() {
		s.badRequest(w, fmt.Errorf("httpapi: unknown field type %q", req.Type))
		return
	}

	s.editMu.Lock()
	defer s.editMu.Unlock()

	if _, ok := s.loadForEdit(w, id); !ok {
		return
	}
	fieldID := s.store.AddField(model.NewField(req.Type))
	form, _ := s.store.FormByID(id)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"fieldId": fieldID,
		"form":    form,
	})
}

type updateFieldRequest struct {
	Type        *model.FieldType  `json:"type"`
	Label       *string           `json:"label"`
	Placeholder *string           `json:"placeholder"`
	HelpText    *string           `json:"helpText"`
	Required    *bool             `json:"required"`
	Options     []string          `json:"options"`
	Validation  *model.Validation `json:"validation"`
	Step        *int              `json:"step"`
	VisibleIf   *string           `json:"visibleIf"`
}

func (s *Server) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, fieldID := vars["id"], vars["fieldID"]
	var req updateFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}

	s.editMu.Lock()
	defer s.editMu.Unlock()

	form, ok := s.loadForEdit(w, id)
	if !ok {
		return
	}
	if form.FieldByID(fieldID) < 0 {
		s.notFound(w, "field", fieldID)
		return
	}
	s.store.UpdateField(fieldID, store.FieldPatch{
		Type:        req.Type,
		Label:       req.Label,
		Placeholder: req.Placeholder,
		HelpText:    req.HelpText,
		Required:    req.Required,
		Options:     req.Options,
		Validation:  req.Validation,
		Step:        req.Step,
		VisibleIf:   req.VisibleIf,
	})
	s.respondWithSaved(w, id)
}

func (s *Server) handleRemoveField(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, fieldID := vars["id"], vars["fieldID"]

	s.editMu.Lock()
	defer s.editMu.Unlock()

	form, ok := s.loadForEdit(w, id)
	if !ok {
		return
	}
	if form.FieldByID(fieldID) < 0 {
		s.notFound(w, "field", fieldID)
		return
	}
	s.store.RemoveField(fieldID)
	s.respondWithSaved(w, id)
}

func (s *Server) handleReorderFields(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	s.editMu.Lock()
	defer s.editMu.Unlock()

	if _, ok := s.loadForEdit(w, id); !ok {
		return
	}
	s.store.ReorderFields(req.From, req.To)
	s.respondWithSaved(w, id)
}

type stepRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	FieldIDs    []string `json:"fields"`
}

func (s *Server) handleAddStep(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req stepRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	s.editMu.Lock()
	defer s.editMu.Unlock()

	if _, ok := s.loadForEdit(w, id); !ok {
		return
	}
	stepID := s.store.AddStep(model.Step{
		Title:       req.Title,
		Description: req.Description,
		FieldIDs:    req.FieldIDs,
	})
	form, _ := s.store.FormByID(id)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"stepId": stepID,
		"form":   form,
	})
}

func (s *Server) handleUpdateStep(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, stepID := vars["id"], vars["stepID"]
	var req struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		FieldIDs    []string `json:"fields"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}

	s.editMu.Lock()
	defer s.editMu.Unlock()

	form, ok := s.loadForEdit(w, id)
	if !ok {
		return
	}
	if form.StepByID(stepID) < 0 {
		s.notFound(w, "step", stepID)
		return
	}
	s.store.UpdateStep(stepID, store.StepPatch{
		Title:       req.Title,
		Description: req.Description,
		FieldIDs:    req.FieldIDs,
	})
	s.respondWithSaved(w, id)
}

func (s *Server) handleRemoveStep(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, stepID := vars["id"], vars["stepID"]

	s.editMu.Lock()
	defer s.editMu.Unlock()

	form, ok := s.loadForEdit(w, id)
	if !ok {
		return
	}
	if form.StepByID(stepID) < 0 {
		s.notFound(w, "step", stepID)
		return
	}
	s.store.RemoveStep(stepID)
	s.respondWithSaved(w, id)
}

func (s *Server) handleRenderForm(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	form, ok := s.store.FormByID(id)
	if !ok {
		s.notFound(w, "form", id)
		return
	}

	name := r.URL.Query().Get("renderer")
	if name == "" {
		name = "html"
	}
	renderer, err := s.renderers.Get(name)
	if err != nil {
		s.badRequest(w, err)
		return
	}

	out, err := renderer.Render(r.Context(), form, render.Options{})
	if err != nil {
		s.internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Write(out)
}

func (s *Server) handleSubmitForm(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	form, ok := s.store.FormByID(id)
	if !ok {
		s.notFound(w, "form", id)
		return
	}

	var answers map[string]any
	if err := decodeJSON(r, &answers); err != nil {
		s.badRequest(w, err)
		return
	}

	session := filler.NewSession(form,
		filler.WithStorage(s.backend),
		filler.WithEvaluator(s.evaluator),
		filler.WithSubmitDelay(s.submitDelay),
	)
	for fieldID, value := range answers {
		session.SetAnswer(fieldID, value)
	}
	// walk every step so each one is validated, not just the last
	for session.Next() {
	}

	s.submitMu.Lock()
	submission, err := session.Submit(r.Context())
	s.submitMu.Unlock()
	if errors.Is(err, filler.ErrStepInvalid) || len(session.Errors()) > 0 {
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"errors": session.Errors(),
		})
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, submission)
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := s.store.FormByID(id); !ok {
		s.notFound(w, "form", id)
		return
	}
	all, err := filler.Submissions(r.Context(), s.backend)
	if err != nil {
		s.internalError(w, err)
		return
	}
	matching := make([]model.Submission, 0)
	for _, submission := range all {
		if submission.FormID == id {
			matching = append(matching, submission)
		}
	}
	s.writeJSON(w, http.StatusOK, matching)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Templates())
}

type saveTemplateRequest struct {
	FormID      string `json:"formId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	var req saveTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	if req.Name == "" {
		s.badRequest(w, fmt.Errorf("httpapi: template name is required"))
		return
	}
	s.editMu.Lock()
	defer s.editMu.Unlock()

	if _, ok := s.loadForEdit(w, req.FormID); !ok {
		return
	}
	templateID := s.store.SaveAsTemplate(req.Name, req.Description)
	s.writeJSON(w, http.StatusCreated, map[string]string{"templateId": templateID})
}

// loadForEdit resolves a saved form and loads it as the store's current
// document so mutation operations apply to it. Writes a 404 and reports
// false when the id is unknown. Callers must hold editMu until the edit is
// saved.
func (s *Server) loadForEdit(w http.ResponseWriter, id string) (model.Form, bool) {
	form, ok := s.store.FormByID(id)
	if !ok {
		s.notFound(w, "form", id)
		return model.Form{}, false
	}
	s.store.LoadForm(form)
	return form, true
}

// respondWithSaved saves the current document and returns its saved snapshot.
func (s *Server) respondWithSaved(w http.ResponseWriter, id string) {
	s.store.SaveForm()
	form, ok := s.store.FormByID(id)
	if !ok {
		s.internalError(w, fmt.Errorf("httpapi: form %s missing after save", id))
		return
	}
	s.writeJSON(w, http.StatusOK, form)
}

func decodeJSON(r *http.Request, target any) error {
	if r.Body == nil {
		return fmt.Errorf("httpapi: request body is required")
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("httpapi: decode request: %w", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func (s *Server) notFound(w http.ResponseWriter, kind, id string) {
	s.writeJSON(w, http.StatusNotFound, map[string]string{
		"error": fmt.Sprintf("%s %q not found", kind, id),
	})
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("internal error", "error", err)
	s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
