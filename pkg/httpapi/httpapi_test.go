package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/store"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	backend := storage.NewMemory()
	documents := store.New(context.Background(), store.WithStorage(backend))
	server := New(documents, backend,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return server, documents
}

func doJSON(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = strings.NewReader("{}")
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body.String())
	}
	return out
}

func createForm(t *testing.T, server *Server, title string) model.Form {
	t.Helper()
	rec := doJSON(t, server, http.MethodPost, "/forms", map[string]string{"title": title})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create form: %d %s", rec.Code, rec.Body.String())
	}
	return decode[model.Form](t, rec)
}

func TestCreateAndGetForm(t *testing.T) {
	server, _ := newTestServer(t)

	form := createForm(t, server, "My Form")
	if form.ID == "" || form.Title != "My Form" {
		t.Fatalf("unexpected created form: %+v", form)
	}

	rec := doJSON(t, server, http.MethodGet, "/forms/"+form.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get form: %d", rec.Code)
	}
	got := decode[model.Form](t, rec)
	if got.ID != form.ID {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestCreateForm_FromTemplate(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/forms", map[string]string{"templateId": "contact-us"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create from template: %d %s", rec.Code, rec.Body.String())
	}
	form := decode[model.Form](t, rec)
	if form.Title != "Contact Us" || len(form.Fields) != 3 {
		t.Fatalf("template not instantiated: %+v", form)
	}

	rec = doJSON(t, server, http.MethodPost, "/forms", map[string]string{"templateId": "bogus"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown template must 404, got %d", rec.Code)
	}
}

func TestGetForm_Unknown(t *testing.T) {
	server, _ := newTestServer(t)
	rec := doJSON(t, server, http.MethodGet, "/forms/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateForm(t *testing.T) {
	server, _ := newTestServer(t)
	form := createForm(t, server, "Before")

	rec := doJSON(t, server, http.MethodPut, "/forms/"+form.ID, map[string]any{
		"title":       "After",
		"description": "now described",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	updated := decode[model.Form](t, rec)
	if updated.Title != "After" || updated.Description != "now described" {
		t.Fatalf("patch not applied: %+v", updated)
	}
}

func TestUpdateForm_ConcurrentEditsStayIsolated(t *testing.T) {
	server, _ := newTestServer(t)
	alpha := createForm(t, server, "Alpha")
	beta := createForm(t, server, "Beta")

	put := func(path string, body []byte) int {
		req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(body))
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		return rec.Code
	}

	const workers = 8
	const rounds = 200
	alphaPatch := []byte(`{"title":"Alpha Title"}`)
	betaPatch := []byte(`{"description":"beta notes"}`)

	var wg sync.WaitGroup
	codes := make(chan int, workers*rounds)
	for w := 0; w < workers; w++ {
		path, body := "/forms/"+alpha.ID, alphaPatch
		if w%2 == 1 {
			path, body = "/forms/"+beta.ID, betaPatch
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				codes <- put(path, body)
			}
		}()
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		if code != http.StatusOK {
			t.Fatalf("concurrent update returned %d", code)
		}
	}

	gotAlpha := decode[model.Form](t, doJSON(t, server, http.MethodGet, "/forms/"+alpha.ID, nil))
	gotBeta := decode[model.Form](t, doJSON(t, server, http.MethodGet, "/forms/"+beta.ID, nil))
	if gotAlpha.Title != "Alpha Title" || gotAlpha.Description != "" {
		t.Fatalf("alpha picked up the wrong patch: %+v", gotAlpha)
	}
	if gotBeta.Title != "Beta" || gotBeta.Description != "beta notes" {
		t.Fatalf("beta picked up the wrong patch: %+v", gotBeta)
	}
}

func TestFieldLifecycle(t *testing.T) {
	server, _ := newTestServer(t)
	form := createForm(t, server, "Fields")

	rec := doJSON(t, server, http.MethodPost, "/forms/"+form.ID+"/fields", map[string]string{"type": "text"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add field: %d %s", rec.Code, rec.Body.String())
	}
	created := decode[struct {
		FieldID string     `json:"fieldId"`
		Form    model.Form `json:"form"`
	}](t, rec)
	if created.FieldID == "" || len(created.Form.Fields) != 1 {
		t.Fatalf("unexpected add response: %+v", created)
	}

	rec = doJSON(t, server, http.MethodPut,
		fmt.Sprintf("/forms/%s/fields/%s", form.ID, created.FieldID),
		map[string]any{"label": "Name", "required": true},
	)
	if rec.Code != http.StatusOK {
		t.Fatalf("update field: %d %s", rec.Code, rec.Body.String())
	}
	updated := decode[model.Form](t, rec)
	if updated.Fields[0].Label != "Name" || !updated.Fields[0].Required {
		t.Fatalf("field patch not applied: %+v", updated.Fields[0])
	}

	rec = doJSON(t, server, http.MethodDelete,
		fmt.Sprintf("/forms/%s/fields/%s", form.ID, created.FieldID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove field: %d", rec.Code)
	}
	final := decode[model.Form](t, rec)
	if len(final.Fields) != 0 {
		t.Fatalf("field not removed: %+v", final.Fields)
	}
}

func TestFieldEndpoints_UnknownField(t *testing.T) {
	server, _ := newTestServer(t)
	form := createForm(t, server, "Fields")

	rec := doJSON(t, server, http.MethodPut, "/forms/"+form.ID+"/fields/ghost", map[string]any{"label": "x"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown field, got %d", rec.Code)
	}
	rec = doJSON(t, server, http.MethodDelete, "/forms/"+form.ID+"/fields/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown field, got %d", rec.Code)
	}
}

func TestAddField_RejectsUnknownType(t *testing.T) {
	server, _ := newTestServer(t)
	form := createForm(t, server, "Fields")

	rec := doJSON(t, server, http.MethodPost, "/forms/"+form.ID+"/fields", map[string]string{"type": "hologram"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bogus type, got %d", rec.Code)
	}
}

func TestReorderFields(t *testing.T) {
	server, _ := newTestServer(t)
	form := createForm(t, server, "Order")

	var fieldIDs []string
	for _, fieldType := range []string{"text", "email", "number"} {
		rec := doJSON(t, server, http.MethodPost, "/forms/"+form.ID+"/fields", map[string]string{"type": fieldType})
		created := decode[struct {
			FieldID string `json:"fieldId"`
		}](t, rec)
		fieldIDs = append(fieldIDs, created.FieldID)
	}

	rec := doJSON(t, server, http.MethodPost, "/forms/"+form.ID+"/reorder", map[string]int{"from": 0, "to": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("reorder: %d %s", rec.Code, rec.Body.String())
	}
	reordered := decode[model.Form](t, rec)
	want := []string{fieldIDs[1], fieldIDs[2], fieldIDs[0]}
	for i, field := range reordered.Fields {
		if field.ID != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], field.ID)
		}
	}
}

func TestStepLifecycle(t *testing.T) {
	server, _ := newTestServer(t)
	form := createForm(t, server, "Steps")

	rec := doJSON(t, server, http.MethodPost, "/forms/"+form.ID+"/steps", map[string]string{"title": "One"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add step: %d %s", rec.Code, rec.Body.String())
	}
	created := decode[struct {
		StepID string     `json:"stepId"`
		Form   model.Form `json:"form"`
	}](t, rec)
	if !created.Form.IsMultiStep {
		t.Fatalf("adding a step must flip multi-step mode")
	}

	rec = doJSON(t, server, http.MethodPut,
		fmt.Sprintf("/forms/%s/steps/%s", form.ID, created.StepID),
		map[string]string{"title": "Renamed"},
	)
	if rec.Code != http.StatusOK {
		t.Fatalf("update step: %d", rec.Code)
	}
	updated := decode[model.Form](t, rec)
	if updated.Steps[0].Title != "Renamed" {
		t.Fatalf("step patch not applied: %+v", updated.Steps)
	}

	rec = doJSON(t, server, http.MethodDelete,
		fmt.Sprintf("/forms/%s/steps/%s", form.ID, created.StepID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove step: %d", rec.Code)
	}
	final := decode[model.Form](t, rec)
	if len(final.Steps) != 0 || final.IsMultiStep {
		t.Fatalf("step not removed: %+v", final)
	}
}

func TestRenderForm_HTML(t *testing.T) {
	server, _ := newTestServer(t)
	form := createForm(t, server, "Rendered")
	doJSON(t, server, http.MethodPost, "/forms/"+form.ID+"/fields", map[string]string{"type": "text"})

	req := httptest.NewRequest(http.MethodGet, "/forms/"+form.ID+"/render", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("render: %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<form") {
		t.Fatalf("no markup in response: %s", rec.Body.String())
	}

	rec = doJSON(t, server, http.MethodGet, "/forms/"+form.ID+"/render?renderer=bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown renderer must 400, got %d", rec.Code)
	}
}

func TestSubmitForm(t *testing.T) {
	server, documents := newTestServer(t)
	form := createForm(t, server, "Submit")

	rec := doJSON(t, server, http.MethodPost, "/forms/"+form.ID+"/fields", map[string]string{"type": "text"})
	created := decode[struct {
		FieldID string `json:"fieldId"`
	}](t, rec)
	documents.UpdateField(created.FieldID, store.FieldPatch{Required: boolp(true)})
	documents.SaveForm()

	// missing required answer -> 422 with the validator's message
	rec = doJSON(t, server, http.MethodPost, "/forms/"+form.ID+"/submit", map[string]any{})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d %s", rec.Code, rec.Body.String())
	}
	failure := decode[struct {
		Errors map[string]string `json:"errors"`
	}](t, rec)
	if failure.Errors[created.FieldID] != validation.MsgRequired {
		t.Fatalf("expected required message, got %v", failure.Errors)
	}

	// valid submission lands in the collection
	rec = doJSON(t, server, http.MethodPost, "/forms/"+form.ID+"/submit", map[string]any{
		created.FieldID: "hello",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body.String())
	}
	submission := decode[model.Submission](t, rec)
	if submission.FormID != form.ID || submission.Data[created.FieldID] != "hello" {
		t.Fatalf("unexpected submission: %+v", submission)
	}

	rec = doJSON(t, server, http.MethodGet, "/forms/"+form.ID+"/submissions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list submissions: %d", rec.Code)
	}
	listed := decode[[]model.Submission](t, rec)
	if len(listed) != 1 || listed[0].ID != submission.ID {
		t.Fatalf("submission not listed: %+v", listed)
	}
}

func TestTemplates(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/templates", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list templates: %d", rec.Code)
	}
	listed := decode[[]model.Template](t, rec)
	if len(listed) < 2 {
		t.Fatalf("expected the builtin templates, got %d", len(listed))
	}

	form := createForm(t, server, "Template Source")
	rec = doJSON(t, server, http.MethodPost, "/templates", map[string]string{
		"formId":      form.ID,
		"name":        "Saved",
		"description": "from a form",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("save template: %d %s", rec.Code, rec.Body.String())
	}
	saved := decode[map[string]string](t, rec)
	if saved["templateId"] == "" {
		t.Fatalf("missing template id: %v", saved)
	}

	rec = doJSON(t, server, http.MethodGet, "/templates", nil)
	after := decode[[]model.Template](t, rec)
	if len(after) != len(listed)+1 {
		t.Fatalf("saved template not listed: %d -> %d", len(listed), len(after))
	}
}

func TestSaveTemplate_RequiresName(t *testing.T) {
	server, _ := newTestServer(t)
	form := createForm(t, server, "Source")

	rec := doJSON(t, server, http.MethodPost, "/templates", map[string]string{"formId": form.ID})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a name, got %d", rec.Code)
	}
}

func TestBadJSONIsRejected(t *testing.T) {
	server, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/forms", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad JSON, got %d", rec.Code)
	}
}

func boolp(v bool) *bool { return &v }
