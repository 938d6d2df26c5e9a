// Package storage persists the full expense collection as one JSON blob
// behind the kv contract. Every save rewrites the whole collection; there is
// no incremental append.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"outlay/internal/core"
	"outlay/internal/kv"
	applog "outlay/internal/log"
)

// Key is the single durable entry holding the serialized collection.
const Key = "expenses"

type Repository struct {
	store kv.Store
	log   *applog.Logger
}

func New(store kv.Store, logger *applog.Logger) *Repository {
	return &Repository{
		store: store,
		log:   logger.WithComponent(applog.ComponentStorage),
	}
}

// Load reads the durable collection. It never fails the caller: a missing
// entry or an unparsable blob yields an empty collection, with the error
// returned purely as an advisory for observability.
func (r *Repository) Load(ctx context.Context) ([]core.Expense, error) {
	data, ok, err := r.store.Get(ctx, Key)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to read expenses", applog.FieldError, err)
		return []core.Expense{}, fmt.Errorf("load expenses: %w", err)
	}
	if !ok {
		return []core.Expense{}, nil
	}

	var expenses []core.Expense
	if err := json.Unmarshal(data, &expenses); err != nil {
		r.log.ErrorContext(ctx, "Failed to parse stored expenses", applog.FieldError, err)
		return []core.Expense{}, fmt.Errorf("parse expenses: %w", err)
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	return expenses, nil
}

// SaveAll replaces the entire durable collection.
func (r *Repository) SaveAll(ctx context.Context, expenses []core.Expense) error {
	data, err := json.Marshal(expenses)
	if err != nil {
		return fmt.Errorf("serialize expenses: %w", err)
	}
	if err := r.store.Set(ctx, Key, data); err != nil {
		return fmt.Errorf("save expenses: %w", err)
	}
	r.log.DebugContext(ctx, "Expenses saved", applog.FieldCount, len(expenses))
	return nil
}

// Reset removes the durable collection entirely.
func (r *Repository) Reset(ctx context.Context) error {
	if err := r.store.Delete(ctx, Key); err != nil {
		return fmt.Errorf("reset expenses: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.store.Close()
}
