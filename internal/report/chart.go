package report

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
)

// maxChartValue is the largest total the bar chart will draw. Larger or
// non-finite values overflow the rasterizer's bar geometry.
const maxChartValue = 1e15

var errChartOutOfRange = errors.New("totals out of chart range")

// chartable reports whether s can be drawn.
func chartable(s Summary) bool {
	if s.IsZero() {
		return false
	}
	_, _, ok := chartValues(s)
	return ok
}

func chartValues(s Summary) (income, expense float64, ok bool) {
	income = s.TotalIncome.InexactFloat64()
	expense = s.TotalExpense.InexactFloat64()
	for _, v := range []float64{income, expense} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > maxChartValue {
			return 0, 0, false
		}
	}
	return income, expense, true
}

// renderChart draws income against expense as a two-bar PNG.
// It must not be called with a zero summary.
func renderChart(s Summary) ([]byte, error) {
	income, expense, ok := chartValues(s)
	if !ok {
		return nil, errChartOutOfRange
	}

	top := income
	if expense > top {
		top = expense
	}

	graph := chart.BarChart{
		Width:    600,
		Height:   300,
		BarWidth: 120,
		Background: chart.Style{
			Padding: chart.Box{Top: 30, Left: 20, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.15},
		},
		Bars: []chart.Value{
			{Label: "Income", Value: income, Style: chart.Style{FillColor: chart.ColorGreen, StrokeColor: chart.ColorGreen}},
			{Label: "Expense", Value: expense, Style: chart.Style{FillColor: chart.ColorRed, StrokeColor: chart.ColorRed}},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}
