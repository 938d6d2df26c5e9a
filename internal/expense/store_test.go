package expense

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"outlay/internal/core"
	"outlay/internal/kv"
	applog "outlay/internal/log"
	"outlay/internal/storage"
)

var testNow = time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)

func testLogger() *applog.Logger {
	return applog.New(applog.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	fileKV, err := kv.NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}
	repo := storage.New(fileKV, testLogger())
	s := New(repo, testLogger(), WithClock(func() time.Time { return testNow }))
	s.Open(context.Background())
	return s
}

func lunchDraft() core.Draft {
	return core.Draft{
		Amount:      core.Money{Cents: 4250},
		Category:    core.Food,
		Description: "Lunch",
		Date:        core.NewDate(2024, 1, 15),
	}
}

func TestOpenStartsEmpty(t *testing.T) {
	s := newTestStore(t)
	snap := s.Snapshot()
	if snap.Loading || snap.Err != "" {
		t.Fatalf("expected settled state, got %+v", snap)
	}
	if len(snap.Expenses) != 0 || snap.Summary.ExpenseCount != 0 {
		t.Fatalf("expected empty store, got %+v", snap)
	}
}

func TestCreateThenRead(t *testing.T) {
	s := newTestStore(t)
	created, err := s.Create(context.Background(), lunchDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("createdAt and updatedAt must match on creation")
	}

	snap := s.Snapshot()
	if len(snap.Expenses) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(snap.Expenses))
	}
	got := snap.Expenses[0]
	if got.ID != created.ID || got.Amount.Cents != 4250 || got.Category != core.Food || got.Description != "Lunch" {
		t.Fatalf("stored expense differs from draft: %+v", got)
	}

	// Scenario from the dashboard: one 42.50 Food expense.
	if snap.Summary.TotalSpending.Cents != 4250 {
		t.Fatalf("total: expected 4250, got %d", snap.Summary.TotalSpending.Cents)
	}
	if snap.Summary.Breakdown[core.Food].Cents != 4250 {
		t.Fatalf("food breakdown: expected 4250, got %d", snap.Summary.Breakdown[core.Food].Cents)
	}
	if snap.Summary.TopCategory != core.Food {
		t.Fatalf("top category: expected Food, got %q", snap.Summary.TopCategory)
	}
	if snap.Summary.ExpenseCount != 1 {
		t.Fatalf("count: expected 1, got %d", snap.Summary.ExpenseCount)
	}
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	s := newTestStore(t)
	bad := lunchDraft()
	bad.Amount = core.Money{}
	if _, err := s.Create(context.Background(), bad); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if len(s.Snapshot().Expenses) != 0 {
		t.Fatalf("rejected draft must not mutate state")
	}
}

func TestUpdatePreservesCardinality(t *testing.T) {
	s := newTestStore(t)
	created, _ := s.Create(context.Background(), lunchDraft())

	created.Description = "Team lunch"
	created.Amount = core.Money{Cents: 6000}
	if err := s.Update(context.Background(), created); err != nil {
		t.Fatalf("update: %v", err)
	}
	snap := s.Snapshot()
	if len(snap.Expenses) != 1 {
		t.Fatalf("update changed cardinality: %d", len(snap.Expenses))
	}
	if snap.Expenses[0].Description != "Team lunch" || snap.Expenses[0].Amount.Cents != 6000 {
		t.Fatalf("update not applied: %+v", snap.Expenses[0])
	}
	if snap.Summary.TotalSpending.Cents != 6000 {
		t.Fatalf("summary stale after update: %d", snap.Summary.TotalSpending.Cents)
	}

	// Unknown id: NotFound, collection untouched.
	ghost := created
	ghost.ID = "no-such-id"
	if err := s.Update(context.Background(), ghost); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(s.Snapshot().Expenses) != 1 {
		t.Fatalf("not-found update changed the collection")
	}
}

func TestDeleteIdempotent(t *testing.T) {
	s := newTestStore(t)
	created, _ := s.Create(context.Background(), lunchDraft())

	if err := s.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	after := s.Snapshot()
	if err := s.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	again := s.Snapshot()
	if len(after.Expenses) != 0 || len(again.Expenses) != 0 {
		t.Fatalf("expected empty collection after deletes")
	}
	if after.Summary.ExpenseCount != again.Summary.ExpenseCount {
		t.Fatalf("double delete changed the end state")
	}
}

func TestFilterLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, _ = s.Create(ctx, core.Draft{Amount: core.Money{Cents: 3000}, Category: core.Food, Description: "AAA", Date: core.NewDate(2024, 1, 1)})
	_, _ = s.Create(ctx, core.Draft{Amount: core.Money{Cents: 2000}, Category: core.Transport, Description: "BBB", Date: core.NewDate(2024, 1, 2)})

	cat := core.Food
	s.SetFilters(ctx, core.FilterPatch{Category: &cat})
	snap := s.Snapshot()
	if len(snap.Filtered) != 1 || snap.Filtered[0].Category != core.Food {
		t.Fatalf("category filter: got %+v", snap.Filtered)
	}
	// Summary ignores filters.
	if snap.Summary.TotalSpending.Cents != 5000 {
		t.Fatalf("summary must ignore filters: %d", snap.Summary.TotalSpending.Cents)
	}

	from := core.NewDate(2024, 1, 2)
	all := core.CategoryAll
	s.SetFilters(ctx, core.FilterPatch{Category: &all, DateFrom: &from})
	snap = s.Snapshot()
	if len(snap.Filtered) != 1 || snap.Filtered[0].Category != core.Transport {
		t.Fatalf("dateFrom filter: got %+v", snap.Filtered)
	}

	s.ClearFilters(ctx)
	snap = s.Snapshot()
	if len(snap.Filtered) != 2 || snap.Filters != (core.Filters{}) {
		t.Fatalf("clear filters: got %+v", snap)
	}
}

func TestReloadResyncsFromDurable(t *testing.T) {
	fileKV, err := kv.NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}
	repo := storage.New(fileKV, testLogger())
	s := New(repo, testLogger(), WithClock(func() time.Time { return testNow }))
	s.Open(context.Background())

	_, _ = s.Create(context.Background(), lunchDraft())

	// External change: durable state wiped behind the store's back.
	if err := repo.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	s.Reload(context.Background())
	snap := s.Snapshot()
	if len(snap.Expenses) != 0 || snap.Summary.ExpenseCount != 0 {
		t.Fatalf("reload did not adopt durable state: %+v", snap)
	}
}

func TestOpenFailOpenOnCorruptBlob(t *testing.T) {
	fileKV, err := kv.NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}
	if err := fileKV.Set(context.Background(), storage.Key, []byte("not json")); err != nil {
		t.Fatalf("seed corrupt blob: %v", err)
	}
	repo := storage.New(fileKV, testLogger())
	s := New(repo, testLogger())
	s.Open(context.Background())

	snap := s.Snapshot()
	if snap.Loading {
		t.Fatalf("store must settle after open")
	}
	if snap.Err == "" {
		t.Fatalf("load failure must surface an error")
	}
	if len(snap.Expenses) != 0 {
		t.Fatalf("load failure must fail open to empty")
	}
	// The store stays usable.
	if _, err := s.Create(context.Background(), lunchDraft()); err != nil {
		t.Fatalf("create after failed load: %v", err)
	}
	if s.Snapshot().Err != "" {
		t.Fatalf("successful mutation should clear the error")
	}
}

// failKV accepts nothing: every write fails.
type failKV struct{ kv.Null }

func (failKV) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	repo := storage.New(failKV{}, testLogger())
	s := New(repo, testLogger(), WithClock(func() time.Time { return testNow }))
	s.Open(context.Background())

	created, err := s.Create(context.Background(), lunchDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	snap := s.Snapshot()
	if len(snap.Expenses) != 1 || snap.Expenses[0].ID != created.ID {
		t.Fatalf("in-memory mutation must survive a persist failure: %+v", snap.Expenses)
	}
	if snap.Err == "" {
		t.Fatalf("persist failure must surface on the published state")
	}
}

func TestSubscribersSeeConsistentSnapshots(t *testing.T) {
	s := newTestStore(t)
	var seen []State
	cancel := s.Subscribe(func(snap State) { seen = append(seen, snap) })

	_, _ = s.Create(context.Background(), lunchDraft())
	cat := core.Food
	s.SetFilters(context.Background(), core.FilterPatch{Category: &cat})

	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(seen))
	}
	for i, snap := range seen {
		if snap.Summary.ExpenseCount != len(snap.Expenses) {
			t.Fatalf("notification %d: summary computed against stale expenses", i)
		}
		if len(snap.Filtered) > len(snap.Expenses) {
			t.Fatalf("notification %d: filtered view larger than canonical list", i)
		}
	}

	cancel()
	s.ClearFilters(context.Background())
	if len(seen) != 2 {
		t.Fatalf("cancelled subscriber still notified")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fileKV, err := kv.NewFile(dir)
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}
	repo := storage.New(fileKV, testLogger())
	s := New(repo, testLogger(), WithClock(func() time.Time { return testNow }))
	s.Open(context.Background())
	first, _ := s.Create(context.Background(), lunchDraft())

	// A second store over the same backend sees the same records.
	reopenKV, err := kv.NewFile(dir)
	if err != nil {
		t.Fatalf("reopen kv: %v", err)
	}
	s2 := New(storage.New(reopenKV, testLogger()), testLogger(), WithClock(func() time.Time { return testNow }))
	s2.Open(context.Background())
	snap := s2.Snapshot()
	if len(snap.Expenses) != 1 {
		t.Fatalf("expected 1 persisted expense, got %d", len(snap.Expenses))
	}
	got := snap.Expenses[0]
	if got.ID != first.ID || got.Amount != first.Amount || got.Category != first.Category ||
		got.Description != first.Description || got.Date.String() != first.Date.String() {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, first)
	}
}
