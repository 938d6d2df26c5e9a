package expense

import (
	"time"

	"outlay/internal/core"
)

// State is the full published snapshot. Filtered and Summary are always
// derived from the same Expenses value, so consumers can never observe a
// torn combination.
type State struct {
	Expenses []core.Expense `json:"expenses"`
	Filtered []core.Expense `json:"filteredExpenses"`
	Filters  core.Filters   `json:"filters"`
	Summary  core.Summary   `json:"summary"`
	Loading  bool           `json:"loading"`
	Err      string         `json:"error,omitempty"`

	// Version increments with every published snapshot. Consumers use it to
	// detect change cheaply; it is not part of the wire state.
	Version uint64 `json:"-"`
}

func initialState(now time.Time) State {
	return State{
		Expenses: []core.Expense{},
		Filtered: []core.Expense{},
		Summary:  core.Summarize(nil, now),
		Loading:  true,
	}
}

// The transition functions below are pure: (old state, input) -> new state,
// no persistence, no clocks beyond the now argument. The orchestrating
// Store wraps them with the durable write and subscriber publish.

func loadExpenses(s State, expenses []core.Expense, now time.Time) State {
	s.Expenses = expenses
	s.Filtered = core.Apply(expenses, s.Filters)
	s.Summary = core.Summarize(expenses, now)
	return s
}

func addExpense(s State, e core.Expense, now time.Time) State {
	expenses := make([]core.Expense, 0, len(s.Expenses)+1)
	expenses = append(expenses, s.Expenses...)
	expenses = append(expenses, e)
	return loadExpenses(s, expenses, now)
}

// replaceExpense swaps the entry with e's id, preserving order. The second
// return is false when no entry matches, in which case the state is
// returned unchanged.
func replaceExpense(s State, e core.Expense, now time.Time) (State, bool) {
	found := false
	expenses := make([]core.Expense, len(s.Expenses))
	for i, existing := range s.Expenses {
		if existing.ID == e.ID {
			expenses[i] = e
			found = true
		} else {
			expenses[i] = existing
		}
	}
	if !found {
		return s, false
	}
	return loadExpenses(s, expenses, now), true
}

func removeExpense(s State, id string, now time.Time) State {
	expenses := make([]core.Expense, 0, len(s.Expenses))
	for _, existing := range s.Expenses {
		if existing.ID != id {
			expenses = append(expenses, existing)
		}
	}
	return loadExpenses(s, expenses, now)
}

// setFilters merges the patch and recomputes only the filtered view; the
// summary does not depend on filters.
func setFilters(s State, patch core.FilterPatch) State {
	s.Filters = s.Filters.Merge(patch)
	s.Filtered = core.Apply(s.Expenses, s.Filters)
	return s
}

func clearFilters(s State) State {
	s.Filters = core.Filters{}
	s.Filtered = core.Apply(s.Expenses, s.Filters)
	return s
}

// clone returns a snapshot consumers may hold onto: the slices and the
// breakdown map are copied so later reads cannot race with store internals.
func (s State) clone() State {
	out := s
	out.Expenses = append([]core.Expense(nil), s.Expenses...)
	out.Filtered = append([]core.Expense(nil), s.Filtered...)
	out.Summary.Breakdown = make(map[core.Category]core.Money, len(s.Summary.Breakdown))
	for c, m := range s.Summary.Breakdown {
		out.Summary.Breakdown[c] = m
	}
	return out
}
