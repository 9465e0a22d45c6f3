package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// Total is the count and net amount for one category.
type Total struct {
	Category string
	Count    int
	Amount   decimal.Decimal
}

// Summarize groups rows by category, in order of first appearance.
func Summarize(rows []model.CategorizedTransaction) []Total {
	index := make(map[string]int)
	var totals []Total
	for _, row := range rows {
		i, ok := index[row.Category]
		if !ok {
			i = len(totals)
			index[row.Category] = i
			totals = append(totals, Total{Category: row.Category})
		}
		totals[i].Count++
		totals[i].Amount = totals[i].Amount.Add(row.Amount)
	}
	return totals
}

// WriteSummary renders totals as a Category/Count/Amount table.
func WriteSummary(w io.Writer, totals []Total) error {
	rows := make([][]string, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, []string{t.Category, fmt.Sprint(t.Count), t.Amount.StringFixed(2)})
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("Category", "Count", "Amount").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col > 0:
				return amountStyle
			default:
				return cellStyle
			}
		})

	_, err := fmt.Fprintf(w, "\n%s\n%s\n", titleStyle.Render("=== SUMMARY ==="), t.Render())
	return err
}
