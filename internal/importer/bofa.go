package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/cleared-dev/tally/internal/model"
)

// BofAParser parses Bank of America checking CSV exports. The export opens
// with a summary block and a header row; transactions start at the first
// line beginning with an MM/DD/YYYY date.
type BofAParser struct{}

const (
	bofaColDate   = 0
	bofaColDesc   = 1
	bofaColAmount = 2
	bofaNumFields = 3
)

var bofaDateStart = regexp.MustCompile(`^\s*\d{2}/\d{2}/\d{4}\s*,`)

// Format returns the parser name.
func (p *BofAParser) Format() string { return "bofa" }

// Parse reads a BofA CSV and returns its transactions. Rows without a
// parseable amount (such as the "Beginning balance" line) are skipped.
func (p *BofAParser) Parse(r io.Reader) ([]model.Transaction, error) {
	body, skipped, err := skipToFirstTransaction(r)
	if err != nil {
		return nil, fmt.Errorf("reading bofa CSV: %w", err)
	}

	cr := csv.NewReader(body)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading bofa CSV: %w", err)
	}

	var txns []model.Transaction
	for i, rec := range records {
		txn, err := parseBofARow(rec)
		if err != nil {
			slog.Debug("Skipping row without a usable amount", "line", skipped+i+1, "error", err)
			continue
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func parseBofARow(rec []string) (model.Transaction, error) {
	row := make([]string, bofaNumFields)
	copy(row, rec)

	amount, err := ParseAmount(row[bofaColAmount])
	if err != nil {
		return model.Transaction{}, err
	}

	return model.Transaction{
		Date:        strings.TrimSpace(row[bofaColDate]),
		Description: NormalizeDescription(row[bofaColDesc]),
		Amount:      amount,
	}, nil
}

// skipToFirstTransaction consumes lines up to the first one that starts with
// a date and returns a reader positioned at that line, plus the number of
// lines skipped. With no such line the whole input is returned.
func skipToFirstTransaction(r io.Reader) (io.Reader, int, error) {
	br := bufio.NewReader(r)
	var consumed []string

	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if bofaDateStart.MatchString(line) {
				return io.MultiReader(strings.NewReader(line), br), len(consumed), nil
			}
			consumed = append(consumed, line)
		}
		if errors.Is(err, io.EOF) {
			return strings.NewReader(strings.Join(consumed, "")), 0, nil
		}
		if err != nil {
			return nil, 0, err
		}
	}
}
