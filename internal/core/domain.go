package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Food          Category = "Food"
	Transport     Category = "Transportation"
	Entertainment Category = "Entertainment"
	Shopping      Category = "Shopping"
	Bills         Category = "Bills"
	Other         Category = "Other"

	// CategoryAll is the filter sentinel meaning "no category constraint".
	CategoryAll Category = "all"
)

// Categories lists every valid category in declaration order. The order is
// load-bearing: top-category ties resolve to the earliest entry.
var Categories = []Category{Food, Transport, Entertainment, Shopping, Bills, Other}

type (
	Category string

	// Expense is a single recorded transaction. ID, CreatedAt and UpdatedAt
	// are owned by the store and never user-editable.
	Expense struct {
		ID          string    `json:"id"`
		Amount      Money     `json:"amount"`
		Category    Category  `json:"category"`
		Description string    `json:"description"`
		Date        Date      `json:"date"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	// Draft is the validated payload a collaborator hands to the store when
	// creating or editing an expense.
	Draft struct {
		Amount      Money
		Category    Category
		Description string
		Date        Date
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrAmountTooLarge   = errors.New("amount exceeds maximum")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrEmptyDescription = errors.New("empty description")
	ErrDescriptionSize  = errors.New("description must be 3-100 characters")
	ErrInvalidDate      = errors.New("invalid date")
	ErrFutureDate       = errors.New("date cannot be in the future")
	ErrNotFound         = errors.New("expense not found")
)

// MaxAmount bounds a single expense to block obvious input errors.
var MaxAmount = Money{Cents: 99_999_900} // 999,999.00

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Validate checks the draft against the input contract. now anchors the
// future-date check to the caller's clock.
func (d Draft) Validate(now time.Time) error {
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if d.Amount.Cents > MaxAmount.Cents {
		return ErrAmountTooLarge
	}
	if !d.Category.Valid() {
		return ErrInvalidCategory
	}
	desc := strings.TrimSpace(d.Description)
	if desc == "" {
		return ErrEmptyDescription
	}
	if n := utf8.RuneCountInString(desc); n < 3 || n > 100 {
		return ErrDescriptionSize
	}
	if d.Date.IsZero() {
		return ErrInvalidDate
	}
	if d.Date.After(DateOf(now)) {
		return ErrFutureDate
	}
	return nil
}
