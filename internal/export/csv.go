// Package export serializes expense records to the portable CSV layout:
// header Date,Category,Description,Amount, dates as YYYY-MM-DD, the
// description always quoted and the amount with exactly two decimals.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"outlay/internal/core"
)

// Header is the fixed CSV header row.
const Header = "Date,Category,Description,Amount"

// Write emits the records in the order supplied; no sort is imposed here.
func Write(w io.Writer, expenses []core.Expense) error {
	if _, err := fmt.Fprintln(w, Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range expenses {
		row := fmt.Sprintf("%s,%s,%s,%s\n",
			e.Date.String(), e.Category, quote(e.Description), e.Amount.String())
		if _, err := io.WriteString(w, row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return nil
}

// Filename names the download artifact after the day of export.
func Filename(now time.Time) string {
	return "expenses-" + now.Format("2006-01-02") + ".csv"
}

// quote wraps the field in double quotes unconditionally, doubling any
// embedded quote per RFC 4180.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
