package attendance

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Config controls runtime behaviour for the API handlers.
type Config struct {
	TokenTTL time.Duration
}

// API wires stores, domain services, and configuration for HTTP handlers.
type API struct {
	store      *Store
	config     Config
	tokens     *TokenService
	sessions   *SessionManager
	roster     *RosterStore
	pending    *PendingQueue
	processor  *Processor
	reconciler *Reconciler
}

// New initialises the API layer with sane defaults applied to the provided
// configuration.
func New(store *Store, cfg Config) (*API, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if store.ORM == nil {
		return nil, errors.New("store ORM is required")
	}
	if store.DB == nil {
		return nil, errors.New("store pool is required")
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}

	tokens, err := NewTokenService(store.ORM, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	sessions, err := NewSessionManager(store)
	if err != nil {
		return nil, err
	}
	roster := NewRosterStore(store)
	pending := NewPendingQueue(store)

	processor, err := NewProcessor(tokens, roster, sessions)
	if err != nil {
		return nil, err
	}
	reconciler, err := NewReconciler(tokens, roster, sessions, pending)
	if err != nil {
		return nil, err
	}

	return &API{
		store:      store,
		config:     cfg,
		tokens:     tokens,
		sessions:   sessions,
		roster:     roster,
		pending:    pending,
		processor:  processor,
		reconciler: reconciler,
	}, nil
}

// Routes constructs the chi router containing all API endpoints.
func (a *API) Routes() (http.Handler, error) {
	if a == nil {
		return nil, errors.New("nil api")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/check-in", a.handleCheckIn)
		r.Get("/lecturer-location", a.handleLecturerLocation)
		r.Post("/tokens", a.handleIssueToken)
		r.Post("/sessions/end", a.handleEndSession)
		r.Post("/sync/batch", a.handleSyncBatch)
		r.Post("/sync/process-pending", a.handleProcessPending)
		r.Get("/sync/pending", a.handleListPending)
		r.Get("/students/{student_id}/history", a.handleStudentHistory)
	})

	return r, nil
}
