package core

import "time"

// Summary is the derived aggregate view of a collection. It is recomputed
// from scratch after every mutation and never persisted, so it cannot drift
// from the canonical list.
type Summary struct {
	TotalSpending   Money              `json:"totalSpending"`
	MonthlySpending Money              `json:"monthlySpending"`
	Breakdown       map[Category]Money `json:"categoryBreakdown"`
	TopCategory     Category           `json:"topCategory,omitempty"`
	ExpenseCount    int                `json:"expenseCount"`
}

// Summarize derives the aggregate view of the collection. The monthly figure
// covers the calendar month containing now, which makes the result
// time-dependent even with unchanged data.
func Summarize(expenses []Expense, now time.Time) Summary {
	s := Summary{
		Breakdown:    make(map[Category]Money, len(Categories)),
		ExpenseCount: len(expenses),
	}
	// Every category key is present even at zero.
	for _, c := range Categories {
		s.Breakdown[c] = Money{}
	}

	year, month := now.Year(), now.Month()
	for _, e := range expenses {
		s.TotalSpending = s.TotalSpending.Add(e.Amount)
		if e.Date.InMonth(year, month) {
			s.MonthlySpending = s.MonthlySpending.Add(e.Amount)
		}
		s.Breakdown[e.Category] = s.Breakdown[e.Category].Add(e.Amount)
	}

	if s.TotalSpending.Cents > 0 {
		top := Categories[0]
		for _, c := range Categories[1:] {
			if s.Breakdown[c].Cents > s.Breakdown[top].Cents {
				top = c
			}
		}
		s.TopCategory = top
	}
	return s
}
