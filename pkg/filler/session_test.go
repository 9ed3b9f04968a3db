package filler

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/validation"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

func intp(v int) *int { return &v }

func twoStepForm() model.Form {
	return model.Form{
		ID:          "form-1",
		Title:       "Survey",
		IsMultiStep: true,
		Fields: []model.Field{
			{ID: "name", Type: model.FieldTypeText, Label: "Name", Required: true, Step: intp(0)},
			{ID: "email", Type: model.FieldTypeEmail, Label: "Email", Step: intp(0)},
			{ID: "comments", Type: model.FieldTypeTextarea, Label: "Comments", Required: true, Step: intp(1)},
		},
		Steps: []model.Step{
			{ID: "s1", Title: "Basics"},
			{ID: "s2", Title: "Feedback"},
		},
		Settings: model.DefaultSettings(),
	}
}

func TestSession_StartsAtFirstStep(t *testing.T) {
	s := NewSession(twoStepForm())
	if s.CurrentStep() != 0 {
		t.Fatalf("expected step 0, got %d", s.CurrentStep())
	}
	if s.TotalSteps() != 2 {
		t.Fatalf("expected 2 steps, got %d", s.TotalSteps())
	}
	if got := s.Progress(); got != 50 {
		t.Fatalf("expected 50%% progress on step 1 of 2, got %v", got)
	}
}

func TestSession_NextGatesOnValidation(t *testing.T) {
	s := NewSession(twoStepForm())

	if s.Next() {
		t.Fatalf("must not advance with a required field empty")
	}
	if s.Errors()["name"] != validation.MsgRequired {
		t.Fatalf("expected required error for name, got %v", s.Errors())
	}

	s.SetAnswer("name", "Ada")
	if !s.Next() {
		t.Fatalf("expected to advance once the step is clean")
	}
	if s.CurrentStep() != 1 {
		t.Fatalf("expected step 1, got %d", s.CurrentStep())
	}
	if got := s.Progress(); got != 100 {
		t.Fatalf("expected 100%% on the last step, got %v", got)
	}
}

func TestSession_SetAnswerClearsError(t *testing.T) {
	s := NewSession(twoStepForm())
	s.Next()
	if _, ok := s.Errors()["name"]; !ok {
		t.Fatalf("expected an error recorded for name")
	}

	s.SetAnswer("name", "Ada")
	if _, ok := s.Errors()["name"]; ok {
		t.Fatalf("editing a field must clear its error")
	}
}

func TestSession_PreviousNeverValidates(t *testing.T) {
	s := NewSession(twoStepForm())
	s.SetAnswer("name", "Ada")
	s.Next()

	if !s.Previous() {
		t.Fatalf("expected to move back")
	}
	if s.CurrentStep() != 0 {
		t.Fatalf("expected step 0, got %d", s.CurrentStep())
	}
	if s.Previous() {
		t.Fatalf("cannot move before the first step")
	}
}

func TestSession_InvalidEmailBlocksStep(t *testing.T) {
	s := NewSession(twoStepForm())
	s.SetAnswer("name", "Ada")
	s.SetAnswer("email", "not-an-email")

	if s.Next() {
		t.Fatalf("must not advance with an invalid email")
	}
	if s.Errors()["email"] != validation.MsgInvalidEmail {
		t.Fatalf("expected email error, got %v", s.Errors())
	}
}

func TestSession_HiddenFieldsAreSkipped(t *testing.T) {
	form := twoStepForm()
	form.Fields[1].VisibleIf = `answers["name"] == "show"`
	evaluator := visibility.EvaluatorFunc(func(fieldID, rule string, ctx visibility.Context) (bool, error) {
		return ctx.Values["name"] == "show", nil
	})

	s := NewSession(form, WithEvaluator(evaluator))
	s.SetAnswer("name", "hide")

	fields := s.Fields()
	if len(fields) != 1 || fields[0].ID != "name" {
		t.Fatalf("hidden field must not be listed: %v", fieldIDs(fields))
	}

	// a required hidden field must not block validation either
	form2 := twoStepForm()
	form2.Fields[0].VisibleIf = "never"
	never := visibility.EvaluatorFunc(func(string, string, visibility.Context) (bool, error) {
		return false, nil
	})
	s2 := NewSession(form2, WithEvaluator(never))
	if !s2.Next() {
		t.Fatalf("hidden required field must not gate the step: %v", s2.Errors())
	}
}

func TestSession_BrokenRuleStaysVisible(t *testing.T) {
	form := twoStepForm()
	form.Fields[0].VisibleIf = "broken"
	failing := visibility.EvaluatorFunc(func(string, string, visibility.Context) (bool, error) {
		return false, context.DeadlineExceeded
	})

	s := NewSession(form, WithEvaluator(failing))
	fields := s.Fields()
	if len(fields) != 2 {
		t.Fatalf("field with a broken rule must stay visible: %v", fieldIDs(fields))
	}
}

func TestSubmit_ValidatesFinalStep(t *testing.T) {
	s := NewSession(twoStepForm(), WithSubmitDelay(0))
	s.SetAnswer("name", "Ada")
	s.Next()

	if _, err := s.Submit(context.Background()); err != ErrStepInvalid {
		t.Fatalf("expected ErrStepInvalid, got %v", err)
	}
	if s.Errors()["comments"] != validation.MsgRequired {
		t.Fatalf("expected required error for comments, got %v", s.Errors())
	}

	// the session stays usable
	s.SetAnswer("comments", "all good")
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("expected submit to pass after fixing, got %v", err)
	}
}

func TestSubmit_RecordsSubmission(t *testing.T) {
	backend := storage.NewMemory()
	submittedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession(twoStepForm(),
		WithStorage(backend),
		WithSubmitDelay(0),
		WithIDGenerator(func() string { return "sub-1" }),
		WithClock(func() time.Time { return submittedAt }),
	)
	s.SetAnswer("name", "Ada")
	s.Next()
	s.SetAnswer("comments", "lovely form")

	submission, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submission.ID != "sub-1" || submission.FormID != "form-1" || submission.FormTitle != "Survey" {
		t.Fatalf("unexpected submission: %+v", submission)
	}
	if !submission.SubmittedAt.Equal(submittedAt) {
		t.Fatalf("unexpected timestamp %v", submission.SubmittedAt)
	}
	if submission.Data["comments"] != "lovely form" {
		t.Fatalf("answers missing from submission: %v", submission.Data)
	}

	recorded, err := Submissions(context.Background(), backend)
	if err != nil {
		t.Fatalf("Submissions: %v", err)
	}
	if len(recorded) != 1 || recorded[0].ID != "sub-1" {
		t.Fatalf("submission not recorded: %+v", recorded)
	}
}

func TestSubmit_AppendsToExistingCollection(t *testing.T) {
	backend := storage.NewMemory()

	for i := 0; i < 2; i++ {
		s := NewSession(twoStepForm(), WithStorage(backend), WithSubmitDelay(0))
		s.SetAnswer("name", "Ada")
		s.Next()
		s.SetAnswer("comments", "again")
		if _, err := s.Submit(context.Background()); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	recorded, err := Submissions(context.Background(), backend)
	if err != nil {
		t.Fatalf("Submissions: %v", err)
	}
	if len(recorded) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(recorded))
	}
}

func TestSubmit_HonorsContextDuringDelay(t *testing.T) {
	s := NewSession(twoStepForm(), WithSubmitDelay(time.Minute))
	s.SetAnswer("name", "Ada")
	s.Next()
	s.SetAnswer("comments", "waiting")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if _, err := s.Submit(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSubmit_NoBackendStillReturnsSubmission(t *testing.T) {
	s := NewSession(twoStepForm(), WithSubmitDelay(0))
	s.SetAnswer("name", "Ada")
	s.Next()
	s.SetAnswer("comments", "no storage")

	submission, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submission.Data["name"] != "Ada" {
		t.Fatalf("unexpected submission data: %v", submission.Data)
	}
}

func TestSession_SingleStepForm(t *testing.T) {
	form := twoStepForm()
	form.IsMultiStep = false
	form.Steps = nil

	s := NewSession(form)
	if s.TotalSteps() != 1 {
		t.Fatalf("expected 1 step, got %d", s.TotalSteps())
	}
	if got := len(s.Fields()); got != 3 {
		t.Fatalf("single-step session must list every field, got %d", got)
	}
	if s.Next() {
		t.Fatalf("single-step session has nowhere to advance")
	}
}

func fieldIDs(fields []model.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.ID
	}
	return out
}
