package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTables(t *testing.T) {
	t.Parallel()

	tables, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "US", tables.FederalCode())
	assert.Equal(t, 9, tables.Statuses().Len())
	assert.Equal(t, []string{"cannabis", "marijuana", "marihuana"}, tables.AnchorTerms())
	assert.Contains(t, tables.PolicyTerms(), "280e")
	assert.Contains(t, tables.PolicyTerms(), "schedule iii")

	jurisdictions := tables.Jurisdictions()
	require.Len(t, jurisdictions, 51)
	assert.Equal(t, "US", jurisdictions[0].Code)
	assert.Equal(t, "Federal", jurisdictions[0].Name)
	assert.Equal(t, "Wyoming", jurisdictions[50].Name)
}

func TestStatusTableText(t *testing.T) {
	t.Parallel()

	tables, err := Default()
	require.NoError(t, err)
	statuses := tables.Statuses()

	want := map[int]string{
		1: "Introduced",
		2: "In Committee",
		3: "Passed Chamber",
		4: "Passed Both Chambers",
		5: "Sent to Executive",
		6: "Enacted/Signed",
		7: "Vetoed",
		8: "Failed/Dead",
		9: "Override Attempt",
	}
	for code, text := range want {
		assert.Equal(t, text, statuses.Text(code), "code %d", code)
	}
	for _, code := range []int{-1, 0, 10, 42} {
		assert.Equal(t, UnknownStatus, statuses.Text(code), "code %d", code)
	}
}

func TestTablesAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	tables, err := Default()
	require.NoError(t, err)

	terms := tables.AnchorTerms()
	terms[0] = "mutated"
	assert.Equal(t, "cannabis", tables.AnchorTerms()[0])

	js := tables.Jurisdictions()
	js[0].Name = "mutated"
	assert.Equal(t, "Federal", tables.Jurisdictions()[0].Name)

	source := map[int]string{1: "Introduced"}
	table := NewStatusTable(source)
	source[1] = "mutated"
	assert.Equal(t, "Introduced", table.Text(1))
}

func TestSelect(t *testing.T) {
	t.Parallel()

	tables, err := Default()
	require.NoError(t, err)

	all, err := tables.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 51)

	picked, err := tables.Select([]string{"ca", " US "})
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, "California", picked[0].Name)
	assert.Equal(t, "Federal", picked[1].Name)

	_, err = tables.Select([]string{"ZZ"})
	assert.Error(t, err)
}

func TestLoadOverrideFile(t *testing.T) {
	t.Parallel()

	doc := `
federal_code: US
statuses: {1: Introduced}
jurisdictions:
  - {code: CO, name: Colorado}
anchor_terms: [cannabis]
policy_terms: [tax]
analyses:
  "co/HB 1001": https://example.com/analysis/co-hb1001
`
	path := filepath.Join(t.TempDir(), "reference.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	tables, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/analysis/co-hb1001", tables.AnalysisURL("CO", "HB1001"))
	assert.Equal(t, "https://example.com/analysis/co-hb1001", tables.AnalysisURL("co", "HB 1001"))
	assert.Empty(t, tables.AnalysisURL("CO", "HB1002"))
	assert.Equal(t, UnknownStatus, tables.Statuses().Text(2))
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing federal code": "statuses: {1: a}\nanchor_terms: [x]\npolicy_terms: [y]\n",
		"no statuses":          "federal_code: US\nanchor_terms: [x]\npolicy_terms: [y]\n",
		"no anchors":           "federal_code: US\nstatuses: {1: a}\npolicy_terms: [y]\n",
		"no policy terms":      "federal_code: US\nstatuses: {1: a}\nanchor_terms: [x]\n",
		"duplicate code": "federal_code: US\nstatuses: {1: a}\nanchor_terms: [x]\npolicy_terms: [y]\n" +
			"jurisdictions: [{code: CA, name: California}, {code: CA, name: Again}]\n",
		"not yaml": "{{{",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
