package scraper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLayout(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layout.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadLayoutEmptyPath(t *testing.T) {
	layout, err := LoadLayout("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLayout(), layout)
}

func TestLoadLayoutPartialOverride(t *testing.T) {
	path := writeLayout(t, `
search_path = "/app/case-search"

[selectors]
results_table = "#caseTable"

[columns]
party = 4
corrigendum = -1
`)

	layout, err := LoadLayout(path)
	require.NoError(t, err)

	assert.Equal(t, "/app/case-search", layout.SearchPath)
	assert.Equal(t, "#caseTable", layout.Selectors.ResultsTable)
	assert.Equal(t, "#caseTable tbody", layout.Selectors.tbodySelector())
	assert.Equal(t, "#case_type", layout.Selectors.CaseType)
	assert.Equal(t, 1, layout.Columns.CaseNo)
	assert.Equal(t, 4, layout.Columns.Party)
	assert.Equal(t, -1, layout.Columns.Corrigendum)
}

func TestLoadLayoutErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed", `search_path = `, "failed to parse site layout"},
		{"blank selector", "[selectors]\nsubmit = \"\"\n", "selector submit is empty"},
		{"no case column", "[columns]\ncase_no = -1\n", "case_no column is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLayout(writeLayout(t, tt.body))
			assert.ErrorContains(t, err, tt.want)
		})
	}

	_, err := LoadLayout(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "failed to read site layout")
}
