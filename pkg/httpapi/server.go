// Package httpapi exposes the form builder over HTTP: document CRUD, field
// and step manipulation, template instantiation, HTML rendering and
// submissions. Handlers translate the store's silent no-op semantics into
// proper status codes at the API edge: an unknown id is a 404 here even
// though the store itself never errors on one.
package httpapi

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/goliatone/go-formbuilder/pkg/render"
	htmlrenderer "github.com/goliatone/go-formbuilder/pkg/renderers/html"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/store"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
	exprvis "github.com/goliatone/go-formbuilder/pkg/visibility/expr"
)

// Option configures the Server.
type Option func(*Server)

// WithLogger overrides the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderers overrides the renderer registry used by the render endpoint.
func WithRenderers(registry *render.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.renderers = registry
		}
	}
}

// WithEvaluator overrides the visibility evaluator applied to submissions.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(s *Server) {
		if evaluator != nil {
			s.evaluator = evaluator
		}
	}
}

// WithSubmitDelay overrides the artificial submission delay. The API default
// is zero; the simulated settle time belongs to interactive surfaces.
func WithSubmitDelay(delay time.Duration) Option {
	return func(s *Server) {
		if delay >= 0 {
			s.submitDelay = delay
		}
	}
}

// Server wires the document store, storage backend and renderers into an
// http.Handler.
type Server struct {
	store       *store.Store
	backend     storage.Storage
	renderers   *render.Registry
	evaluator   visibility.Evaluator
	logger      *slog.Logger
	submitDelay time.Duration
	router      *mux.Router

	// editMu serializes each load-mutate-save span. The store holds one
	// current document, so two in-flight edits of different forms would
	// otherwise interleave and cross-apply their patches.
	editMu sync.Mutex

	// submitMu serializes submission appends, which read-modify-write the
	// shared submissions blob.
	submitMu sync.Mutex
}

// New constructs a Server around an existing store and backend. The backend
// is the same one the store persists into; the server reads submissions from
// it directly.
func New(documents *store.Store, backend storage.Storage, options ...Option) *Server {
	s := &Server{
		store:     documents,
		backend:   backend,
		evaluator: exprvis.New(),
		logger:    slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.renderers == nil {
		s.renderers = render.NewRegistry()
		s.renderers.MustRegister(htmlrenderer.New())
	}
	s.router = s.Router()
	return s
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/forms", s.handleCreateForm).Methods(http.MethodPost)
	r.HandleFunc("/forms", s.handleListForms).Methods(http.MethodGet)
	r.HandleFunc("/forms/{id}", s.handleGetForm).Methods(http.MethodGet)
	r.HandleFunc("/forms/{id}", s.handleUpdateForm).Methods(http.MethodPut)
	r.HandleFunc("/forms/{id}/fields", s.handleAddField).Methods(http.MethodPost)
	r.HandleFunc("/forms/{id}/fields/{fieldID}", s.handleUpdateField).Methods(http.MethodPut)
	r.HandleFunc("/forms/{id}/fields/{fieldID}", s.handleRemoveField).Methods(http.MethodDelete)
	r.HandleFunc("/forms/{id}/reorder", s.handleReorderFields).Methods(http.MethodPost)
	r.HandleFunc("/forms/{id}/steps", s.handleAddStep).Methods(http.MethodPost)
	r.HandleFunc("/forms/{id}/steps/{stepID}", s.handleUpdateStep).Methods(http.MethodPut)
	r.HandleFunc("/forms/{id}/steps/{stepID}", s.handleRemoveStep).Methods(http.MethodDelete)
	r.HandleFunc("/forms/{id}/render", s.handleRenderForm).Methods(http.MethodGet)
	r.HandleFunc("/forms/{id}/submit", s.handleSubmitForm).Methods(http.MethodPost)
	r.HandleFunc("/forms/{id}/submissions", s.handleListSubmissions).Methods(http.MethodGet)
	r.HandleFunc("/templates", s.handleListTemplates).Methods(http.MethodGet)
	r.HandleFunc("/templates", s.handleSaveTemplate).Methods(http.MethodPost)

	return r
}

// ServeHTTP implements http.Handler over the route table built in New.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
