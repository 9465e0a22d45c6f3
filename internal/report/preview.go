package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/cleared-dev/tally/internal/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).PaddingRight(2)
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
	amountStyle = cellStyle.Align(lipgloss.Right)
)

// Preview writes the rows whose category equals category (exact match) as a
// Date/Merchant/Amount/Subcategory table.
func Preview(w io.Writer, rows []model.CategorizedTransaction, category string) error {
	var matched [][]string
	for _, row := range rows {
		if row.Category != category {
			continue
		}
		matched = append(matched, []string{
			row.Date,
			row.Merchant,
			row.Amount.StringFixed(2),
			row.Subcategory,
		})
	}

	if len(matched) == 0 {
		_, err := fmt.Fprintf(w, "\n(No %s transactions found.)\n", category)
		return err
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("Date", "Merchant", "Amount", "Subcategory").
		Rows(matched...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 2:
				return amountStyle
			default:
				return cellStyle
			}
		})

	title := titleStyle.Render(fmt.Sprintf("=== %s TRANSACTIONS ===", strings.ToUpper(category)))
	_, err := fmt.Fprintf(w, "\n%s\n%s\n", title, t.Render())
	return err
}
