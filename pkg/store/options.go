package store

import (
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/storage"
)

// Option customises the store configuration.
type Option func(*Store)

// WithStorage injects the blob backend the store persists into. When omitted
// the store uses an in-memory backend.
func WithStorage(backend storage.Storage) Option {
	return func(s *Store) {
		if backend != nil {
			s.backend = backend
		}
	}
}

// WithIDGenerator overrides how fresh form, field, step and template ids are
// minted. Useful for deterministic tests.
func WithIDGenerator(generate func() string) Option {
	return func(s *Store) {
		if generate != nil {
			s.generateID = generate
		}
	}
}

// WithClock overrides the time source used for CreatedAt/UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTemplates registers additional templates alongside the built-in set and
// any user-saved ones reloaded from storage.
func WithTemplates(templates ...model.Template) Option {
	return func(s *Store) {
		for i := range templates {
			s.extraTemplates = append(s.extraTemplates, *templates[i].Clone())
		}
	}
}

// WithPersistFailureHandler registers a callback invoked when an autosave
// write fails. Persistence is fire-and-forget: mutations never fail because
// the backend did, but callers can observe and report the condition.
func WithPersistFailureHandler(handle func(error)) Option {
	return func(s *Store) {
		if handle != nil {
			s.onPersistError = handle
		}
	}
}
