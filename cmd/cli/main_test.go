package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "ERROR"))
	err := cmd.Execute()
	return out.String(), err
}

func writeDataset(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("age,income,city\n")
	for i := 0; i < 30; i++ {
		age := 20 + i%10
		if i == 29 {
			age = 95
		}
		b.WriteString(strings.Join([]string{
			strconv.Itoa(age), strconv.Itoa(1000 + 40*i), []string{"Lima", "Quito", "Lima"}[i%3],
		}, ",") + "\n")
	}
	path := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestInitThenRun(t *testing.T) {
	dir := t.TempDir()
	input := writeDataset(t, dir)
	cfgPath := filepath.Join(dir, "config", "config.yaml")

	out, err := execute(t, "init", input, "--path", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration written to "+cfgPath)

	_, err = execute(t, "init", input, "--path", cfgPath)
	assert.Error(t, err, "init refuses to overwrite without --force")

	body, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	reportDir := filepath.Join(dir, "reports")
	body = []byte(strings.Replace(string(body), "report_folder_name: reports", "report_folder_name: "+reportDir, 1))
	require.NoError(t, os.WriteFile(cfgPath, body, 0o644))

	out, err = execute(t, "run", "--config", cfgPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Shape: (30, 3)")
	assert.Contains(t, out, "Report ")
	assert.Contains(t, out, "wrote "+reportDir)

	entries, err := os.ReadDir(filepath.Join(reportDir, "plots"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestRun_MissingConfig(t *testing.T) {
	_, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "config file not found")
}

func TestColumns(t *testing.T) {
	input := writeDataset(t, t.TempDir())
	out, err := execute(t, "columns", input)
	require.NoError(t, err)
	assert.Contains(t, out, "age")
	assert.Contains(t, out, "categorical")
	assert.Contains(t, out, "30 rows, 2 numeric, 1 categorical")

	_, err = execute(t, "columns", "people.parquet")
	assert.Error(t, err)
}

func TestCatalog(t *testing.T) {
	out, err := execute(t, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "category_dominance")
	assert.Contains(t, out, "iqr")
	assert.Contains(t, out, "plotly_white")
}
