package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory when no
// explicit path is given.
const FileName = "tally.yaml"

// EnvPrefix prefixes environment overrides, e.g. TALLY_OUTPUT_PREVIEW.
const EnvPrefix = "TALLY"

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Rules      string           `yaml:"rules" mapstructure:"rules"`
	Input      InputConfig      `yaml:"input" mapstructure:"input"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Categorize CategorizeConfig `yaml:"categorize" mapstructure:"categorize"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

// InputConfig selects how bank exports are parsed.
type InputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // auto, bofa, chase, ofx
}

// OutputConfig controls the categorized export and the stdout preview.
type OutputConfig struct {
	Path          string `yaml:"path" mapstructure:"path"`
	Format        string `yaml:"format,omitempty" mapstructure:"format"` // empty: from the path extension
	Preview       string `yaml:"preview" mapstructure:"preview"`
	MerchantWords int    `yaml:"merchant_words" mapstructure:"merchant_words"`
}

// CategorizeConfig tunes the categorization run.
type CategorizeConfig struct {
	Workers  int  `yaml:"workers" mapstructure:"workers"`
	Progress bool `yaml:"progress" mapstructure:"progress"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"rules":          "rules",
	"format":         "input.format",
	"out":            "output.path",
	"output-format":  "output.format",
	"preview":        "output.preview",
	"merchant-words": "output.merchant_words",
	"workers":        "categorize.workers",
	"progress":       "categorize.progress",
	"log-level":      "logging.level",
	"log-format":     "logging.format",
}

// Load builds a Config from, in increasing precedence: defaults, the config
// file, TALLY_* environment variables and flags changed on the command line.
// An explicit path must exist; otherwise ./tally.yaml is read when present.
// flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if rulesFromFile(v, flags) && !filepath.IsAbs(cfg.Rules) {
		cfg.Rules = filepath.Join(filepath.Dir(v.ConfigFileUsed()), cfg.Rules)
	}
	return &cfg, nil
}

// rulesFromFile reports whether the rules path was taken from the config
// file, in which case a relative path is relative to that file.
func rulesFromFile(v *viper.Viper, flags *pflag.FlagSet) bool {
	if v.ConfigFileUsed() == "" || !v.InConfig("rules") {
		return false
	}
	if flags != nil && flags.Changed("rules") {
		return false
	}
	_, fromEnv := os.LookupEnv(EnvPrefix + "_RULES")
	return !fromEnv
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("rules", cfg.Rules)
	v.SetDefault("input.format", cfg.Input.Format)
	v.SetDefault("output.path", cfg.Output.Path)
	v.SetDefault("output.format", cfg.Output.Format)
	v.SetDefault("output.preview", cfg.Output.Preview)
	v.SetDefault("output.merchant_words", cfg.Output.MerchantWords)
	v.SetDefault("categorize.workers", cfg.Categorize.Workers)
	v.SetDefault("categorize.progress", cfg.Categorize.Progress)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Rules: "rules.json",
		Input: InputConfig{
			Format: "auto",
		},
		Output: OutputConfig{
			Path:          "categorized_transactions.csv",
			Preview:       "Food",
			MerchantWords: 5,
		},
		Categorize: CategorizeConfig{
			Workers: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
