// Package storage provides the opaque key-value blob store the document store
// persists into. Two logical keys matter to the builder (the saved-form
// collection and the user-template collection); a third holds submissions.
// Nothing else reads the blobs, so the encoding is whatever the caller writes.
package storage

import (
	"context"
	"errors"
)

// Keys for the collections the builder persists.
const (
	KeySavedForms  = "formbuilder_savedForms"
	KeyTemplates   = "formbuilder_templates"
	KeySubmissions = "formbuilder_submissions"
)

// ErrNotFound signals that a key has never been written. Callers treat it as
// "start empty", never as a failure.
var ErrNotFound = errors.New("storage: key not found")

// Storage is a minimal blob store: whole values are read once at startup and
// rewritten wholesale on every mutation.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
