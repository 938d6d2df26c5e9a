package core

import "strings"

type (
	// Filters narrows the expense list. Zero-valued fields place no
	// constraint on their dimension; CategoryAll is equivalent to unset.
	Filters struct {
		Category Category `json:"category,omitempty"`
		DateFrom Date     `json:"dateFrom,omitempty"`
		DateTo   Date     `json:"dateTo,omitempty"`
		Search   string   `json:"search,omitempty"`
	}

	// FilterPatch is a partial filter update. Nil fields leave the current
	// value untouched; non-nil zero values clear the constraint.
	FilterPatch struct {
		Category *Category `json:"category,omitempty"`
		DateFrom *Date     `json:"dateFrom,omitempty"`
		DateTo   *Date     `json:"dateTo,omitempty"`
		Search   *string   `json:"search,omitempty"`
	}
)

// Merge applies the patch on top of f, field by field.
func (f Filters) Merge(patch FilterPatch) Filters {
	if patch.Category != nil {
		f.Category = *patch.Category
	}
	if patch.DateFrom != nil {
		f.DateFrom = *patch.DateFrom
	}
	if patch.DateTo != nil {
		f.DateTo = *patch.DateTo
	}
	if patch.Search != nil {
		f.Search = *patch.Search
	}
	return f
}

// Match reports whether the expense satisfies every supplied constraint.
// The search term composes conjunctively with the category and date bounds:
// a record must pass all of them.
func (f Filters) Match(e Expense) bool {
	if f.Category != "" && f.Category != CategoryAll && e.Category != f.Category {
		return false
	}
	if !f.DateFrom.IsZero() && e.Date.Before(f.DateFrom) {
		return false
	}
	if !f.DateTo.IsZero() && e.Date.After(f.DateTo) {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(e.Description), term) &&
			!strings.Contains(strings.ToLower(string(e.Category)), term) {
			return false
		}
	}
	return true
}

// Apply selects the expenses matching the filters, preserving input order.
func Apply(expenses []Expense, f Filters) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}
