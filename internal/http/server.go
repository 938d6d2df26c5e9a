// Package http exposes the expense store over a local JSON API: snapshot
// reads, expense CRUD, filter management, CSV export and chart images. It
// is a thin consumer of the store's published state; all invariants live in
// the store itself.
package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"outlay/internal/cache"
	"outlay/internal/charts"
	"outlay/internal/expense"
	applog "outlay/internal/log"
)

type Handler struct {
	store      *expense.Store
	charts     *charts.Generator
	chartCache *cache.LRU[[]byte]
	log        *applog.Logger
	clock      func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock overrides the handler clock used for export filenames and the
// daily chart window.
func WithClock(clock func() time.Time) Option {
	return func(h *Handler) { h.clock = clock }
}

func NewHandler(store *expense.Store, logger *applog.Logger, opts ...Option) *Handler {
	h := &Handler{
		store:      store,
		charts:     charts.NewGenerator(),
		chartCache: cache.NewLRU[[]byte](8, 5*time.Minute),
		log:        logger.WithComponent(applog.ComponentHTTP),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router wires all routes behind the trace middleware.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", h.handleState).Methods(http.MethodGet)
	api.HandleFunc("/summary", h.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/expenses", h.handleListExpenses).Methods(http.MethodGet)
	api.HandleFunc("/expenses", h.handleCreateExpense).Methods(http.MethodPost)
	api.HandleFunc("/expenses/{id}", h.handleUpdateExpense).Methods(http.MethodPut)
	api.HandleFunc("/expenses/{id}", h.handleDeleteExpense).Methods(http.MethodDelete)
	api.HandleFunc("/filters", h.handleSetFilters).Methods(http.MethodPut)
	api.HandleFunc("/filters", h.handleClearFilters).Methods(http.MethodDelete)
	api.HandleFunc("/reload", h.handleReload).Methods(http.MethodPost)
	api.HandleFunc("/export", h.handleExport).Methods(http.MethodGet)
	api.HandleFunc("/charts/categories.png", h.handleCategoryChart).Methods(http.MethodGet)
	api.HandleFunc("/charts/daily.png", h.handleDailyChart).Methods(http.MethodGet)

	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.handleReady).Methods(http.MethodGet)

	chain := traceMiddleware(h.log)(r)
	return chain
}

// NewServer builds the http.Server with the usual timeouts.
func NewServer(addr string, h *Handler) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        h.Router(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
}
