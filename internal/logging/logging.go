// Package logging builds the slog handler used by the tally CLI.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
)

type (
	Format string
	Level  string
)

const (
	FormatJSON   Format = "json"
	FormatLogfmt Format = "logfmt"
	FormatText   Format = "text"

	LevelError Level = "error"
	LevelWarn  Level = "warn"
	LevelInfo  Level = "info"
	LevelDebug Level = "debug"
)

var (
	ErrUnknownLogLevel  = errors.New("unknown log level")
	ErrUnknownLogFormat = errors.New("unknown log format")

	AllFormats = []string{
		string(FormatJSON),
		string(FormatLogfmt),
		string(FormatText),
	}
	AllLevels = []string{
		string(LevelError),
		string(LevelWarn),
		string(LevelInfo),
		string(LevelDebug),
	}
)

// New creates a [slog.Handler] writing to w from level and format names.
func New(w io.Writer, level, format string) (slog.Handler, error) {
	lvl, err := GetLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: %q (want one of %s)", err, level, strings.Join(AllLevels, ", "))
	}

	logFmt, err := GetFormat(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %q (want one of %s)", err, format, strings.Join(AllFormats, ", "))
	}

	return NewHandler(w, lvl, logFmt), nil
}

// NewHandler creates a charmbracelet/log backed [slog.Handler].
func NewHandler(w io.Writer, level slog.Level, format Format) slog.Handler {
	opts := charmlog.Options{
		//nolint:gosec // G115: input from GetLevel.
		Level:     charmlog.Level(int32(level)),
		Formatter: charmlog.TextFormatter,
	}

	switch format {
	case FormatJSON:
		opts.Formatter = charmlog.JSONFormatter
		opts.ReportTimestamp = true
	case FormatLogfmt:
		opts.Formatter = charmlog.LogfmtFormatter
		opts.ReportTimestamp = true
	default:
		opts.TimeFormat = time.Kitchen
	}

	return charmlog.NewWithOptions(w, opts)
}

// GetLevel parses a level name.
func GetLevel(level string) (slog.Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(level))) {
	case LevelError:
		return slog.LevelError, nil
	case LevelWarn, "warning":
		return slog.LevelWarn, nil
	case LevelInfo, "":
		return slog.LevelInfo, nil
	case LevelDebug:
		return slog.LevelDebug, nil
	}

	return 0, ErrUnknownLogLevel
}

// GetFormat parses a format name.
func GetFormat(format string) (Format, error) {
	logFmt := Format(strings.ToLower(strings.TrimSpace(format)))
	if logFmt == "" {
		return FormatText, nil
	}
	if slices.Contains([]Format{FormatJSON, FormatLogfmt, FormatText}, logFmt) {
		return logFmt, nil
	}

	return "", ErrUnknownLogFormat
}

// Setup installs a handler built from level and format as the slog default.
func Setup(w io.Writer, level, format string) error {
	h, err := New(w, level, format)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(h))
	return nil
}
