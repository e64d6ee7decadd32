package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/shopspring/decimal"
)

// table is a small column aligned renderer. Widths are measured with lipgloss so styled
// cells line up.
type table struct {
	headers []string
	rows    [][]string
}

func newTable(headers ...string) *table {
	return &table{headers: headers}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer) {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	header := make([]string, len(t.headers))
	for i, h := range t.headers {
		header[i] = cellStyle.Width(widths[i] + 2).Render(h)
	}
	fmt.Fprintln(w, headerStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, header...)))

	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = cellStyle.Width(widths[i] + 2).Render(cell)
		}
		fmt.Fprintln(w, strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, cells...), " "))
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// signed colors a value by whether it is good news. Zero stays unstyled.
func signed(d decimal.Decimal, text string) string {
	switch d.Sign() {
	case 1:
		return goodStyle.Render(text)
	case -1:
		return badStyle.Render(text)
	}
	return text
}

func metricValue(m domain.KPIMetric) string {
	switch m.Format {
	case domain.KPIFormatPercentage:
		return m.Value.StringFixed(2) + "%"
	case domain.KPIFormatCurrency:
		return money(m.Value)
	}
	return m.Value.StringFixed(2)
}

func trendText(t *domain.KPITrend) string {
	if t == nil {
		return subtleStyle.Render("-")
	}
	if t.Value == domain.TrendNoData {
		return subtleStyle.Render(t.Value)
	}

	arrow := "→"
	switch t.Direction {
	case domain.TrendUp:
		arrow = "↑"
	case domain.TrendDown:
		arrow = "↓"
	}
	text := arrow + " " + t.Value
	if t.Direction == domain.TrendNeutral {
		return text
	}
	if t.Positive {
		return goodStyle.Render(text)
	}
	return badStyle.Render(text)
}
