package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/buildinfo"
	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/logging"
)

// app carries state resolved once per invocation and shared by subcommands.
type app struct {
	configPath string
	cfg        *config.Config
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}
	defaults := config.Default()

	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Categorize bank transactions with plain-text rules",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath, cmd.Flags())
			if err != nil {
				return err
			}
			if err := logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format); err != nil {
				return fmt.Errorf("configuring logging: %w", err)
			}
			a.cfg = cfg
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ./"+config.FileName+" when present)")
	pf.String("rules", defaults.Rules, "rules file (JSON or YAML)")
	pf.String("log-level", defaults.Logging.Level, "log level: error, warn, info or debug")
	pf.String("log-format", defaults.Logging.Format, "log format: text, logfmt or json")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newCategorizeCommand(a))
	rootCmd.AddCommand(newRulesCommand(a))

	return rootCmd
}
