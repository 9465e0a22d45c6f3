package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/tally/internal/logging"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/report"
	"github.com/cleared-dev/tally/internal/rules"
)

func readReport(t *testing.T, path string) []model.CategorizedTransaction {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := report.ReadCSV(f)
	require.NoError(t, err)
	return rows
}

func TestCategorize_BofA(t *testing.T) {
	out := filepath.Join(t.TempDir(), "reports", "categorized.csv")

	stdout, _, err := runTally(t, "categorize", bofaFixture, "--rules", rulesFixture, "--out", out)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Wrote "+out)
	assert.Contains(t, stdout, "=== FOOD TRANSACTIONS ===")
	assert.Contains(t, stdout, "STARBUCKS STORE 1234")
	assert.NotContains(t, stdout, "LAS VEGAS CASINO")

	rows := readReport(t, out)
	require.Len(t, rows, 7)

	want := []model.Match{
		{Category: "Food", Subcategory: "Groceries"},
		{Category: "Entertainment", Subcategory: "Streaming"},
		{Category: "Transportation", Subcategory: "Rideshare"},
		{Category: "Food", Subcategory: "Coffee"},
		{Category: "Shopping", Subcategory: "Shipping"},
		{Category: "Income", Subcategory: "Salary"},
		model.Uncategorized(),
	}
	for i, w := range want {
		assert.Equal(t, w, rows[i].Match, "row %d (%s)", i, rows[i].Description)
	}

	assert.Equal(t, "01/02/2025", rows[0].Date)
	assert.Equal(t, "WHOLEFOODS MKT #532 CAMBRIDGE MA", rows[0].Merchant)
	assert.Equal(t, "-84.12", rows[0].Amount.StringFixed(2))
}

func TestCategorize_MerchantWords(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.csv")

	_, _, err := runTally(t, "categorize", bofaFixture, "--rules", rulesFixture, "--out", out, "--merchant-words", "1")
	require.NoError(t, err)

	rows := readReport(t, out)
	require.NotEmpty(t, rows)
	assert.Equal(t, "WHOLEFOODS", rows[0].Merchant)
	assert.Equal(t, "WHOLEFOODS MKT #532 CAMBRIDGE MA", rows[0].Description)
}

func TestCategorize_Directory(t *testing.T) {
	in := t.TempDir()
	copyFixture(t, bofaFixture, in)
	copyFixture(t, ofxFixture, in)
	out := filepath.Join(t.TempDir(), "out.csv")

	_, _, err := runTally(t, "categorize", in, "--rules", rulesFixture, "--out", out)
	require.NoError(t, err)

	rows := readReport(t, out)
	require.Len(t, rows, 10)

	// Files are read in name order: the BofA CSV first, then the QFX.
	assert.Equal(t, "WHOLEFOODS MKT #532 CAMBRIDGE MA", rows[0].Description)
	assert.Equal(t, "STARBUCKS STORE 1234", rows[7].Description)
	assert.Equal(t, model.Match{Category: "Food", Subcategory: "Groceries"}, rows[8].Match)
	assert.Equal(t, model.Match{Category: "Entertainment", Subcategory: "Streaming"}, rows[9].Match)
}

func TestCategorize_ChaseFormat(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.csv")

	stdout, _, err := runTally(t, "categorize", chaseFixture, "--rules", rulesFixture, "--out", out,
		"--format", "chase", "--preview", "Business")
	require.NoError(t, err)
	assert.Contains(t, stdout, "=== BUSINESS TRANSACTIONS ===")

	rows := readReport(t, out)
	require.Len(t, rows, 6)
	assert.Equal(t, model.Match{Category: "Business", Subcategory: "Software"}, rows[0].Match)
	assert.Equal(t, model.Match{Category: "Food", Subcategory: "Groceries"}, rows[2].Match)
	assert.Equal(t, model.Match{Category: "Transportation", Subcategory: "Fuel"}, rows[4].Match)
	assert.True(t, rows[5].IsUncategorized())
}

func TestCategorize_XLSX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.xlsx")

	stdout, _, err := runTally(t, "categorize", bofaFixture, "--rules", rulesFixture, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+out)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(report.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 8)
	assert.Equal(t, "Groceries", rows[1][5])
}

func TestCategorize_WorkersAndProgress(t *testing.T) {
	dir := t.TempDir()
	seq := filepath.Join(dir, "seq.csv")
	par := filepath.Join(dir, "par.csv")

	_, _, err := runTally(t, "categorize", bofaFixture, "--rules", rulesFixture, "--out", seq)
	require.NoError(t, err)
	_, _, err = runTally(t, "categorize", bofaFixture, "--rules", rulesFixture, "--out", par,
		"--workers", "4", "--progress")
	require.NoError(t, err)

	assert.Equal(t, readReport(t, seq), readReport(t, par))
}

func TestCategorize_Summary(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.csv")

	stdout, _, err := runTally(t, "categorize", bofaFixture, "--rules", rulesFixture, "--out", out,
		"--summary", "--preview", "")
	require.NoError(t, err)

	assert.Contains(t, stdout, "=== SUMMARY ===")
	assert.Contains(t, stdout, "Uncategorized")
	assert.NotContains(t, stdout, "TRANSACTIONS ===")
}

func TestCategorize_NoPreviewMatches(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.csv")

	stdout, _, err := runTally(t, "categorize", bofaFixture, "--rules", rulesFixture, "--out", out, "--preview", "Travel")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(No Travel transactions found.)")
}

func TestCategorize_MissingRulesIsFatal(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.csv")

	_, _, err := runTally(t, "categorize", bofaFixture, "--rules", filepath.Join(dir, "missing.json"), "--out", out)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output is written when rules fail to load")
}

func TestCategorize_InvalidRules(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, filepath.Join(dir, "rules.json"), `{"Food": {"Groceries": ["whole foods", 42]}}`)

	_, _, err := runTally(t, "categorize", bofaFixture, "--rules", bad, "--out", filepath.Join(dir, "out.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, rules.ErrInvalidRules)
}

func TestCategorize_InputErrors(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.csv")

	_, _, err := runTally(t, "categorize", filepath.Join(dir, "nope.csv"), "--rules", rulesFixture, "--out", out)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.MkdirAll(empty, 0o755))
	_, _, err = runTally(t, "categorize", empty, "--rules", rulesFixture, "--out", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no importable files")

	_, _, err = runTally(t, "categorize", bofaFixture, "--rules", rulesFixture, "--out", out, "--output-format", "pdf")
	assert.ErrorIs(t, err, report.ErrUnknownFormat)

	_, _, err = runTally(t, "categorize")
	assert.Error(t, err)
}

func TestCategorize_ConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "from-config.csv")
	rulesPath, err := filepath.Abs(rulesFixture)
	require.NoError(t, err)
	cfg := writeFile(t, filepath.Join(dir, "tally.yaml"), "rules: "+rulesPath+"\noutput:\n  path: "+out+"\n  preview: Transportation\n")

	stdout, _, err := runTally(t, "categorize", bofaFixture, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+out)
	assert.Contains(t, stdout, "=== TRANSPORTATION TRANSACTIONS ===")

	t.Setenv("TALLY_OUTPUT_PREVIEW", "Income")
	stdout, _, err = runTally(t, "categorize", bofaFixture, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "=== INCOME TRANSACTIONS ===")

	// Flags win over both.
	stdout, _, err = runTally(t, "categorize", bofaFixture, "--config", cfg, "--preview", "Shopping")
	require.NoError(t, err)
	assert.Contains(t, stdout, "=== SHOPPING TRANSACTIONS ===")
}

func TestCategorize_Logging(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.csv")

	_, stderr, err := runTally(t, "categorize", bofaFixture, "--rules", rulesFixture, "--out", out,
		"--log-format", "logfmt")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Parsed bank export")
	assert.Contains(t, stderr, "transactions=7")

	_, _, err = runTally(t, "categorize", bofaFixture, "--rules", rulesFixture, "--out", out, "--log-level", "chatty")
	assert.ErrorIs(t, err, logging.ErrUnknownLogLevel)
}
