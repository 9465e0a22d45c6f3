package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/categorize"
	"github.com/cleared-dev/tally/internal/rules"
)

func newRulesCommand(a *app) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect categorization rules",
	}
	rulesCmd.AddCommand(newRulesCheckCommand(a))
	rulesCmd.AddCommand(newRulesExplainCommand(a))
	return rulesCmd
}

func newRulesCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the rules file and summarize it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rs, err := rules.Load(a.cfg.Rules)
			if err != nil {
				return err
			}
			return writeRulesCheck(cmd.OutOrStdout(), a.cfg.Rules, rs)
		},
	}
}

func writeRulesCheck(w io.Writer, path string, rs *rules.RuleSet) error {
	var rows [][]string
	var warnings []string

	for _, cat := range rs.Categories() {
		for _, sub := range cat.Subcategories {
			tokens := 0
			for _, m := range sub.Matchers {
				tokens += len(m.Tokens())
				where := fmt.Sprintf("%s > %s", cat.Name, sub.Name)
				switch {
				case m.IsEmpty():
					warnings = append(warnings, fmt.Sprintf("%s: blank term never matches", where))
				case m.IsLiteral():
					warnings = append(warnings, fmt.Sprintf("%s: term %q has no letters or digits and is matched literally", where, m.Term()))
				}
			}
			rows = append(rows, []string{cat.Name, sub.Name, strconv.Itoa(len(sub.Matchers)), strconv.Itoa(tokens)})
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Category", "Subcategory", "Terms", "Tokens").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return boldStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}

	for _, warn := range warnings {
		fmt.Fprintln(w, warningStyle.Render("warning: "+warn))
	}

	st := rs.Stats()
	_, err := fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("%s: %d categories, %d subcategories, %d terms",
		path, st.Categories, st.Subcategories, st.Terms)))
	return err
}

func newRulesExplainCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "explain DESCRIPTION...",
		Short: "Show every rule that matches a description and which one wins",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := rules.Load(a.cfg.Rules)
			if err != nil {
				return err
			}
			return writeExplain(cmd.OutOrStdout(), strings.Join(args, " "), rs)
		},
	}
}

func writeExplain(w io.Writer, description string, rs *rules.RuleSet) error {
	candidates := categorize.Explain(description, rs)
	text := []rune(description)

	fmt.Fprintf(w, "%s %s\n", boldStyle.Render("Description:"), description)

	best, ok := categorize.Best(candidates)
	if !ok {
		fmt.Fprintln(w, subtleStyle.Render("No rule matched."))
		_, err := fmt.Fprintf(w, "%s %s\n", boldStyle.Render("Result:"), categorize.Resolve(description, rs))
		return err
	}

	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, []string{
			c.Category,
			c.Subcategory,
			c.Term,
			string(text[c.Span.Start:c.Span.End]),
			strconv.Itoa(c.Span.Len()),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Category", "Subcategory", "Term", "Matched", "Length").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return boldStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	fmt.Fprintln(w, t.Render())

	_, err := fmt.Fprintf(w, "%s %s (term %q, %d chars)\n",
		boldStyle.Render("Result:"), successStyle.Render(best.Match.String()), best.Term, best.Span.Len())
	return err
}
