// Package config loads the server configuration from a YAML file and
// validates it against an embedded CUE schema before any value is used.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/gustavofonseca/oai-pmh/internal/oai"
)

//go:embed schema.cue
var schemaSource string

// Config is the full server configuration.
type Config struct {
	Repository Repository `yaml:"repository"`
	HTTP       HTTP       `yaml:"http"`
	Store      Store      `yaml:"store"`
	Lists      Lists      `yaml:"lists"`
	Sets       []SetEntry `yaml:"sets"`
}

// Repository identifies the archive to harvesters.
type Repository struct {
	Name              string   `yaml:"name"`
	BaseURL           string   `yaml:"base_url"`
	AdminEmail        []string `yaml:"admin_email"`
	EarliestDatestamp string   `yaml:"earliest_datestamp"`
	DeletedRecord     string   `yaml:"deleted_record"`
}

// HTTP configures the front end.
type HTTP struct {
	Listen string `yaml:"listen"`
}

// Store configures the persistence backend.
type Store struct {
	Path string `yaml:"path"`
}

// Lists configures pagination.
type Lists struct {
	PageLength int `yaml:"page_length"`
}

// SetEntry is a statically configured set.
type SetEntry struct {
	SetSpec string `yaml:"set_spec"`
	SetName string `yaml:"set_name"`
}

// Load reads, validates and decodes the configuration file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(raw)
}

// Parse validates raw YAML against the schema and decodes it. Defaults
// declared in the schema are applied to fields the file omits.
func Parse(raw []byte) (*Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling config schema: %w", err)
	}

	if err := cueyaml.Validate(raw, schema); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg := Config{
		HTTP:  HTTP{Listen: ":8984"},
		Lists: Lists{PageLength: 1000},
		Repository: Repository{
			DeletedRecord: "no",
		},
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// RepositoryMeta converts the configured identity into the protocol
// representation served by Identify.
func (c *Config) RepositoryMeta() oai.RepositoryMeta {
	return oai.RepositoryMeta{
		RepositoryName:    c.Repository.Name,
		BaseURL:           c.Repository.BaseURL,
		ProtocolVersion:   "2.0",
		AdminEmail:        c.Repository.AdminEmail,
		EarliestDatestamp: c.Repository.EarliestDatestamp,
		DeletedRecord:     c.Repository.DeletedRecord,
		Granularity:       "YYYY-MM-DD",
	}
}

// StaticSets converts the configured set entries into protocol sets.
func (c *Config) StaticSets() []oai.Set {
	sets := make([]oai.Set, len(c.Sets))
	for i, s := range c.Sets {
		sets[i] = oai.Set{SetSpec: s.SetSpec, SetName: s.SetName}
	}
	return sets
}
