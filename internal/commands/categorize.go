package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/categorize"
	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/importer"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/report"
	"github.com/cleared-dev/tally/internal/rules"
)

var errNoInputs = errors.New("no importable files found")

func newCategorizeCommand(a *app) *cobra.Command {
	var summary bool
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "categorize FILE|DIR...",
		Short: "Categorize bank exports and write the results",
		Long: `Categorize reads one or more bank exports (or directories of them),
assigns each transaction the category of the longest matching rule term,
and writes a CSV or XLSX report.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCategorize(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), a.cfg, args, summary)
		},
	}

	f := cmd.Flags()
	f.String("out", defaults.Output.Path, "output file")
	f.String("output-format", defaults.Output.Format, "output format: csv or xlsx (default from --out extension)")
	f.String("format", defaults.Input.Format, "input format: auto, bofa, chase or ofx")
	f.String("preview", defaults.Output.Preview, "category to preview on stdout (empty disables)")
	f.Int("merchant-words", defaults.Output.MerchantWords, "words of the description kept in the Merchant column")
	f.Int("workers", defaults.Categorize.Workers, "concurrent categorization workers")
	f.Bool("progress", defaults.Categorize.Progress, "show a progress bar on stderr")
	f.BoolVar(&summary, "summary", false, "print per-category totals")

	return cmd
}

func runCategorize(ctx context.Context, out, errOut io.Writer, cfg *config.Config, args []string, summary bool) error {
	// Rules load first so a bad rules file fails before any input is read.
	rs, err := rules.Load(cfg.Rules)
	if err != nil {
		return err
	}
	st := rs.Stats()
	slog.Debug("Loaded rules", "path", cfg.Rules, "categories", st.Categories, "terms", st.Terms)

	paths, err := expandInputs(args)
	if err != nil {
		return err
	}

	reg := importer.DefaultRegistry()
	var txns []model.Transaction
	for _, path := range paths {
		parsed, err := reg.ParseFile(path, cfg.Input.Format)
		if err != nil {
			return err
		}
		slog.Info("Parsed bank export", "file", path, "transactions", len(parsed))
		txns = append(txns, parsed...)
	}

	opts := []categorize.Option{categorize.WithWorkers(cfg.Categorize.Workers)}
	if cfg.Categorize.Progress && len(txns) > 0 {
		bar := progressbar.NewOptions(len(txns),
			progressbar.OptionSetWriter(errOut),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Categorizing"),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Close()
		opts = append(opts, categorize.WithProgress(bar))
	}

	matches, err := categorize.New(rs, opts...).Categorize(ctx, txns)
	if err != nil {
		return fmt.Errorf("categorizing: %w", err)
	}

	rows := make([]model.CategorizedTransaction, len(txns))
	for i, txn := range txns {
		rows[i] = model.CategorizedTransaction{
			Transaction: txn,
			Merchant:    importer.MerchantHint(txn.Description, cfg.Output.MerchantWords),
			Match:       matches[i],
		}
	}

	if err := report.Save(cfg.Output.Path, cfg.Output.Format, rows); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", cfg.Output.Path)

	if summary {
		if err := report.WriteSummary(out, report.Summarize(rows)); err != nil {
			return err
		}
	}
	if cfg.Output.Preview != "" {
		return report.Preview(out, rows, cfg.Output.Preview)
	}
	return nil
}

// expandInputs replaces each directory argument with the importable files
// directly inside it.
func expandInputs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		files, err := importer.Scan(arg)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
	}
	if len(paths) == 0 {
		return nil, errNoInputs
	}
	return paths, nil
}
