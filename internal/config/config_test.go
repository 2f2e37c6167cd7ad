package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
repository:
  name: SciELO Books
  base_url: http://books.scielo.org/oai/
  admin_email:
    - books@scielo.org
  earliest_datestamp: "2012-01-01"
  deleted_record: persistent
http:
  listen: ":8984"
store:
  path: /var/lib/oaipmh/oaipmh.db
lists:
  page_length: 100
sets:
  - set_spec: reviews
    set_name: Review articles
`

func TestParse_ValidConfig(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	require.NoError(t, err)

	assert.Equal(t, "SciELO Books", cfg.Repository.Name)
	assert.Equal(t, []string{"books@scielo.org"}, cfg.Repository.AdminEmail)
	assert.Equal(t, "persistent", cfg.Repository.DeletedRecord)
	assert.Equal(t, ":8984", cfg.HTTP.Listen)
	assert.Equal(t, "/var/lib/oaipmh/oaipmh.db", cfg.Store.Path)
	assert.Equal(t, 100, cfg.Lists.PageLength)
	require.Len(t, cfg.Sets, 1)
	assert.Equal(t, "reviews", cfg.Sets[0].SetSpec)
}

func TestParse_AppliesDefaults(t *testing.T) {
	minimal := `
repository:
  name: SciELO Books
  base_url: http://books.scielo.org/oai/
  admin_email:
    - books@scielo.org
  earliest_datestamp: "2012-01-01"
store:
  path: ./oaipmh.db
`
	cfg, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, ":8984", cfg.HTTP.Listen)
	assert.Equal(t, 1000, cfg.Lists.PageLength)
	assert.Equal(t, "no", cfg.Repository.DeletedRecord)
	assert.Empty(t, cfg.Sets)
}

func TestParse_RejectsInvalidConfigs(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"not yaml at all", `{{{`},
		{"missing repository name", `
repository:
  base_url: http://books.scielo.org/oai/
  admin_email: [books@scielo.org]
  earliest_datestamp: "2012-01-01"
store:
  path: ./oaipmh.db
`},
		{"base url without scheme", `
repository:
  name: SciELO Books
  base_url: books.scielo.org
  admin_email: [books@scielo.org]
  earliest_datestamp: "2012-01-01"
store:
  path: ./oaipmh.db
`},
		{"empty admin email list", `
repository:
  name: SciELO Books
  base_url: http://books.scielo.org/oai/
  admin_email: []
  earliest_datestamp: "2012-01-01"
store:
  path: ./oaipmh.db
`},
		{"bad deleted record policy", `
repository:
  name: SciELO Books
  base_url: http://books.scielo.org/oai/
  admin_email: [books@scielo.org]
  earliest_datestamp: "2012-01-01"
  deleted_record: sometimes
store:
  path: ./oaipmh.db
`},
		{"timestamp-granularity earliest datestamp", `
repository:
  name: SciELO Books
  base_url: http://books.scielo.org/oai/
  admin_email: [books@scielo.org]
  earliest_datestamp: "2012-01-01T00:00:00Z"
store:
  path: ./oaipmh.db
`},
		{"zero page length", `
repository:
  name: SciELO Books
  base_url: http://books.scielo.org/oai/
  admin_email: [books@scielo.org]
  earliest_datestamp: "2012-01-01"
store:
  path: ./oaipmh.db
lists:
  page_length: 0
`},
		{"missing store path", `
repository:
  name: SciELO Books
  base_url: http://books.scielo.org/oai/
  admin_email: [books@scielo.org]
  earliest_datestamp: "2012-01-01"
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oaipmh.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "SciELO Books", cfg.Repository.Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRepositoryMeta_Conversion(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	require.NoError(t, err)

	meta := cfg.RepositoryMeta()

	assert.Equal(t, "SciELO Books", meta.RepositoryName)
	assert.Equal(t, "http://books.scielo.org/oai/", meta.BaseURL)
	assert.Equal(t, "2.0", meta.ProtocolVersion)
	assert.Equal(t, "YYYY-MM-DD", meta.Granularity)
	assert.Equal(t, "persistent", meta.DeletedRecord)
}

func TestStaticSets_Conversion(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	require.NoError(t, err)

	static := cfg.StaticSets()
	require.Len(t, static, 1)
	assert.Equal(t, "reviews", static[0].SetSpec)
	assert.Equal(t, "Review articles", static[0].SetName)
}
