// Package expense implements the record store: the single owner of the
// canonical expense collection and the active filters. Every mutation
// persists the new collection, recomputes the derived views and publishes
// one consistent snapshot to subscribers before returning.
package expense

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"outlay/internal/core"
	applog "outlay/internal/log"
	"outlay/internal/storage"
)

type Store struct {
	mu      sync.Mutex
	repo    *storage.Repository
	clock   func() time.Time
	log     *applog.Logger
	state   State
	subs    map[int]func(State)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the store clock. Tests use it to pin the
// time-dependent monthly figure and the generated timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

func New(repo *storage.Repository, logger *applog.Logger, opts ...Option) *Store {
	s := &Store{
		repo:  repo,
		clock: time.Now,
		log:   logger.WithComponent(applog.ComponentStore),
		subs:  make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = initialState(s.clock())
	return s
}

// Open performs the one initial load. A failed load surfaces an error in
// the published state but still yields an empty, usable store.
func (s *Store) Open(ctx context.Context) {
	expenses, err := s.repo.Load(ctx)

	s.mu.Lock()
	next := loadExpenses(s.state, expenses, s.clock())
	next.Loading = false
	next.Err = ""
	if err != nil {
		s.log.ErrorContext(ctx, "Initial load failed, starting empty", applog.FieldError, err)
		next.Err = "failed to load expenses"
	}
	s.commit(ctx, next)
}

// Create appends a new expense built from the draft. The draft is expected
// to arrive pre-validated by the inbound collaborator; the store
// re-validates defensively and rejects on violation.
func (s *Store) Create(ctx context.Context, d core.Draft) (core.Expense, error) {
	now := s.clock()
	if err := d.Validate(now); err != nil {
		return core.Expense{}, err
	}

	e := core.Expense{
		ID:          uuid.NewString(),
		Amount:      d.Amount,
		Category:    d.Category,
		Description: d.Description,
		Date:        d.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	next := addExpense(s.state, e, now)
	s.persist(ctx, &next)
	s.commit(ctx, next)

	s.log.InfoContext(ctx, "Expense created",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldExpenseID, e.ID,
		applog.FieldAmount, e.Amount.Cents,
		applog.FieldCategory, string(e.Category))
	return e, nil
}

// Update replaces the stored expense with the same id, refreshing
// UpdatedAt. A missing id is a NotFound condition: logged, state untouched.
func (s *Store) Update(ctx context.Context, e core.Expense) error {
	now := s.clock()
	e.UpdatedAt = now

	s.mu.Lock()
	next, found := replaceExpense(s.state, e, now)
	if !found {
		s.mu.Unlock()
		s.log.WarnContext(ctx, "Update for unknown expense",
			applog.FieldOperation, applog.OpUpdate,
			applog.FieldExpenseID, e.ID)
		return core.ErrNotFound
	}
	s.persist(ctx, &next)
	s.commit(ctx, next)

	s.log.InfoContext(ctx, "Expense updated",
		applog.FieldOperation, applog.OpUpdate,
		applog.FieldExpenseID, e.ID)
	return nil
}

// Delete removes the expense with the given id. Deleting an absent id is a
// no-op, not an error: the end state is the same either way.
func (s *Store) Delete(ctx context.Context, id string) error {
	now := s.clock()

	s.mu.Lock()
	next := removeExpense(s.state, id, now)
	s.persist(ctx, &next)
	s.commit(ctx, next)

	s.log.InfoContext(ctx, "Expense deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldExpenseID, id)
	return nil
}

// SetFilters merges the patch into the active filters and recomputes the
// filtered view. The summary is independent of filters and is left alone.
func (s *Store) SetFilters(ctx context.Context, patch core.FilterPatch) {
	s.mu.Lock()
	s.commit(ctx, setFilters(s.state, patch))
}

// ClearFilters resets the filters to the empty specification.
func (s *Store) ClearFilters(ctx context.Context) {
	s.mu.Lock()
	s.commit(ctx, clearFilters(s.state))
}

// Reload re-reads the durable collection and adopts it as canonical. Used
// to resynchronize after an external change to durable storage.
func (s *Store) Reload(ctx context.Context) {
	expenses, err := s.repo.Load(ctx)

	s.mu.Lock()
	next := loadExpenses(s.state, expenses, s.clock())
	next.Err = ""
	if err != nil {
		s.log.ErrorContext(ctx, "Reload failed", applog.FieldError, err)
		next.Err = "failed to load expenses"
	}
	s.commit(ctx, next)

	s.log.InfoContext(ctx, "Expenses reloaded",
		applog.FieldOperation, applog.OpReload,
		applog.FieldCount, len(expenses))
}

// Snapshot returns the last published state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers a callback invoked synchronously, in mutation order,
// with every published snapshot. The returned function cancels the
// subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// persist writes the collection through the adapter. A durable-write
// failure keeps the in-memory mutation and surfaces the error on the state:
// memory/durable divergence is accepted over compensating rollback.
// Called with the store lock held.
func (s *Store) persist(ctx context.Context, next *State) {
	if err := s.repo.SaveAll(ctx, next.Expenses); err != nil {
		s.log.ErrorContext(ctx, "Persist failed, keeping in-memory state",
			applog.FieldOperation, applog.OpPersist,
			applog.FieldError, err)
		next.Err = "failed to save expenses"
		return
	}
	next.Err = ""
}

// commit stores the new state and notifies subscribers. It takes ownership
// of the held lock and releases it before the callbacks run, so a
// subscriber may call back into the store.
func (s *Store) commit(_ context.Context, next State) {
	next.Version = s.state.Version + 1
	s.state = next
	snap := next.clone()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
