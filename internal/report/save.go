package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/tally/internal/model"
)

// Output formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ErrUnknownFormat is returned for an output format other than csv or xlsx.
var ErrUnknownFormat = errors.New("unknown output format")

// ResolveFormat returns format when set, otherwise the format implied by
// the extension of path (csv unless it ends in .xlsx).
func ResolveFormat(path, format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		if strings.EqualFold(filepath.Ext(path), ".xlsx") {
			return FormatXLSX, nil
		}
		return FormatCSV, nil
	}
	switch format {
	case FormatCSV, FormatXLSX:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Save writes rows to path in the given format, creating parent directories
// as needed.
func Save(path, format string, rows []model.CategorizedTransaction) error {
	format, err := ResolveFormat(path, format)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	var write func(io.Writer, []model.CategorizedTransaction) error
	switch format {
	case FormatXLSX:
		write = WriteXLSX
	default:
		write = WriteCSV
	}

	if err := write(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
