// Package report writes categorized transactions as CSV or XLSX and renders
// a per-category preview for the terminal.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// Header is the CSV header of a categorized export.
const Header = "Date,Description,Merchant,Amount,Category,Subcategory"

const (
	numFields      = 6
	colDate        = 0
	colDesc        = 1
	colMerchant    = 2
	colAmount      = 3
	colCategory    = 4
	colSubcategory = 5
)

// WriteCSV writes rows to w, header first.
func WriteCSV(w io.Writer, rows []model.CategorizedTransaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		if err := cw.Write(MarshalRow(row)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a categorized export written by WriteCSV.
func ReadCSV(r io.Reader) ([]model.CategorizedTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading categorized CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var rows []model.CategorizedTransaction
	for i, rec := range records[1:] {
		row, err := UnmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// MarshalRow converts a categorized transaction to a CSV row.
func MarshalRow(row model.CategorizedTransaction) []string {
	rec := make([]string, numFields)
	rec[colDate] = row.Date
	rec[colDesc] = row.Description
	rec[colMerchant] = row.Merchant
	rec[colAmount] = row.Amount.StringFixed(2)
	rec[colCategory] = row.Category
	rec[colSubcategory] = row.Subcategory
	return rec
}

// UnmarshalRow converts a CSV row to a categorized transaction.
func UnmarshalRow(record []string) (model.CategorizedTransaction, error) {
	if len(record) != numFields {
		return model.CategorizedTransaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.CategorizedTransaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return model.CategorizedTransaction{
		Transaction: model.Transaction{
			Date:        record[colDate],
			Description: record[colDesc],
			Amount:      amount,
		},
		Merchant: record[colMerchant],
		Match: model.Match{
			Category:    record[colCategory],
			Subcategory: record[colSubcategory],
		},
	}, nil
}
