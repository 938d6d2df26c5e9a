// Package charts renders the derived aggregates as PNG images. It only
// consumes the store's published output and owns no state of its own.
package charts

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"outlay/internal/core"
)

// Generator renders spending visualizations.
type Generator struct {
	Width  int
	Height int
}

func NewGenerator() *Generator {
	return &Generator{Width: 800, Height: 400}
}

// CategoryBreakdown renders the per-category totals as a pie chart.
// Returns nil bytes when there is nothing to plot.
func (g *Generator) CategoryBreakdown(summary core.Summary) ([]byte, error) {
	if summary.TotalSpending.Cents == 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(core.Categories))
	for _, c := range core.Categories {
		amount := summary.Breakdown[c]
		if amount.Cents == 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%s)", c, amount),
			Value: float64(amount.Cents),
		})
	}

	// Pie charts render square, so both dimensions use the configured height.
	pie := chart.PieChart{
		Width:  g.Height,
		Height: g.Height,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render category chart: %w", err)
	}
	return buf.Bytes(), nil
}

// DailySpending renders per-day totals over the trailing window ending at
// now, zero-filling days without expenses so the series stays continuous.
func (g *Generator) DailySpending(expenses []core.Expense, now time.Time, days int) ([]byte, error) {
	if len(expenses) == 0 {
		return nil, nil
	}
	if days < 2 {
		days = 2
	}

	totals := make(map[string]int64, len(expenses))
	for _, e := range expenses {
		totals[e.Date.String()] += e.Amount.Cents
	}

	xs := make([]time.Time, 0, days)
	ys := make([]float64, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := core.DateOf(now.AddDate(0, 0, -i))
		xs = append(xs, day.Time)
		ys = append(ys, float64(totals[day.String()])/100.0)
	}

	graph := chart.Chart{
		Width:  g.Width,
		Height: g.Height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("01-02"),
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.2f", v.(float64))
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Daily spending",
				XValues: xs,
				YValues: ys,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render daily chart: %w", err)
	}
	return buf.Bytes(), nil
}
