package filler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/storage"
)

// ErrStepInvalid signals that the final step failed validation; the per-field
// messages are available through Session.Errors.
var ErrStepInvalid = errors.New("filler: current step has validation errors")

// Submit validates the current step, waits out the configured artificial
// delay and records a submission. The session stays usable after a failed
// submit: validation messages are kept for display and the answers remain.
func (s *Session) Submit(ctx context.Context) (model.Submission, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !s.validateCurrentStep() {
		return model.Submission{}, ErrStepInvalid
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return model.Submission{}, ctx.Err()
		}
	}

	submission := model.Submission{
		ID:          s.generateID(),
		FormID:      s.form.ID,
		FormTitle:   s.form.Title,
		Data:        s.Answers(),
		SubmittedAt: s.now(),
	}

	if s.backend != nil {
		if err := appendSubmission(ctx, s.backend, submission); err != nil {
			return model.Submission{}, err
		}
	}
	return submission, nil
}

// appendSubmission does a read-modify-write of the whole submission
// collection, matching the wholesale persistence model of the rest of the
// store.
func appendSubmission(ctx context.Context, backend storage.Storage, submission model.Submission) error {
	var submissions []model.Submission
	data, err := backend.Get(ctx, storage.KeySubmissions)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &submissions); err != nil {
			return fmt.Errorf("filler: decode submissions: %w", err)
		}
	case errors.Is(err, storage.ErrNotFound):
		// first submission ever
	default:
		return fmt.Errorf("filler: read submissions: %w", err)
	}

	submissions = append(submissions, submission)
	encoded, err := json.Marshal(submissions)
	if err != nil {
		return fmt.Errorf("filler: encode submissions: %w", err)
	}
	if err := backend.Put(ctx, storage.KeySubmissions, encoded); err != nil {
		return fmt.Errorf("filler: write submissions: %w", err)
	}
	return nil
}

// Submissions reads every recorded submission from the backend, newest last.
func Submissions(ctx context.Context, backend storage.Storage) ([]model.Submission, error) {
	data, err := backend.Get(ctx, storage.KeySubmissions)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("filler: read submissions: %w", err)
	}
	var submissions []model.Submission
	if err := json.Unmarshal(data, &submissions); err != nil {
		return nil, fmt.Errorf("filler: decode submissions: %w", err)
	}
	return submissions, nil
}
