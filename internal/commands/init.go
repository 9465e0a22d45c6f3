package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/config"
)

// starterRules is written by init as rules.json.
const starterRules = `{
  "Food": {
    "Groceries": ["whole foods", "trader joe's", "safeway", "kroger"],
    "Coffee": ["starbucks", "dunkin", "peet's"],
    "Restaurants": ["chipotle", "doordash", "grubhub", "sweetgreen"]
  },
  "Transportation": {
    "Rideshare": ["uber", "lyft"],
    "Fuel": ["shell oil", "chevron", "exxon", "gas station"],
    "Transit": ["mbta", "mta", "clipper"]
  },
  "Entertainment": {
    "Streaming": ["netflix", "hulu", "spotify", "disney plus"]
  },
  "Shopping": {
    "Online": ["amazon.com", "amzn mktp", "etsy"],
    "Shipping": ["fedex", "ups store", "usps"]
  },
  "Utilities": {
    "Internet": ["comcast", "xfinity", "verizon fios"],
    "Phone": ["t-mobile", "at&t wireless"]
  },
  "Income": {
    "Salary": ["payroll", "direct dep"],
    "Interest": ["interest earned"]
  }
}
`

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter tally.yaml and rules.json",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")

	return cmd
}

func runInit(out io.Writer, dir string, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	cfgPath := filepath.Join(dir, config.FileName)
	rulesPath := filepath.Join(dir, config.Default().Rules)

	if !force {
		for _, p := range []string{cfgPath, rulesPath} {
			if _, err := os.Stat(p); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", p)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("checking %s: %w", p, err)
			}
		}
	}

	// Write tally.yaml.
	if err := config.Save(cfgPath, config.Default()); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write starter rules.
	if err := os.WriteFile(rulesPath, []byte(starterRules), 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}

	fmt.Fprintln(out, successStyle.Render("Initialized tally project at "+dir))
	return nil
}
