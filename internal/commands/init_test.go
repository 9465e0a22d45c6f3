package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/rules"
)

func TestInit_WritesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project")

	stdout, _, err := runTally(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Initialized tally project at "+dir)

	cfg, err := config.Load(filepath.Join(dir, "tally.yaml"), nil)
	require.NoError(t, err)
	want := config.Default()
	want.Rules = filepath.Join(dir, "rules.json")
	assert.Equal(t, want, cfg)

	rs, err := rules.Load(filepath.Join(dir, "rules.json"))
	require.NoError(t, err)
	require.NotEmpty(t, rs.Categories())
	assert.Equal(t, "Food", rs.Categories()[0].Name)
}

func TestInit_StarterRulesCategorize(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runTally(t, "init", dir)
	require.NoError(t, err)

	out := filepath.Join(dir, "out.csv")
	stdout, _, err := runTally(t, "categorize", bofaFixture, "--rules", filepath.Join(dir, "rules.json"), "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "=== FOOD TRANSACTIONS ===")
	assert.Contains(t, stdout, "WHOLEFOODS MKT #532 CAMBRIDGE MA")
}

func TestInit_ConfigFindsRulesFromAnotherDir(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runTally(t, "init", dir)
	require.NoError(t, err)

	out := filepath.Join(dir, "out.csv")
	stdout, _, err := runTally(t, "categorize", bofaFixture, "--config", filepath.Join(dir, "tally.yaml"), "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "=== FOOD TRANSACTIONS ===")
	assert.FileExists(t, out)
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	rulesPath := writeFile(t, filepath.Join(dir, "rules.json"), `{"Mine": {"Keep": ["me"]}}`)

	_, _, err := runTally(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, err := os.ReadFile(rulesPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Mine")

	_, err = os.Stat(filepath.Join(dir, "tally.yaml"))
	assert.True(t, os.IsNotExist(err), "nothing is written when a file would be overwritten")
}

func TestInit_Force(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "rules.json"), `{"Mine": {"Keep": ["me"]}}`)

	_, _, err := runTally(t, "init", dir, "--force")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "rules.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Mine")
	assert.Contains(t, string(data), "Groceries")
}

func TestVersion(t *testing.T) {
	stdout, _, err := runTally(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "tally version dev")
}
