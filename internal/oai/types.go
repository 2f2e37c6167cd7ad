package oai

// Verb values recognized by the protocol. The set is closed: dispatch is
// table-driven over these constants and unknown values map to BadVerb.
const (
	VerbIdentify            = "Identify"
	VerbGetRecord           = "GetRecord"
	VerbListRecords         = "ListRecords"
	VerbListIdentifiers     = "ListIdentifiers"
	VerbListMetadataFormats = "ListMetadataFormats"
	VerbListSets            = "ListSets"
)

// KnownVerbs lists every verb the repository dispatches, in protocol order.
var KnownVerbs = []string{
	VerbIdentify,
	VerbGetRecord,
	VerbListRecords,
	VerbListIdentifiers,
	VerbListMetadataFormats,
	VerbListSets,
}

// RepositoryMeta is the static identity of the server. It is built once
// from configuration and read-only for the lifetime of the process.
type RepositoryMeta struct {
	RepositoryName    string
	BaseURL           string
	ProtocolVersion   string
	AdminEmail        []string
	EarliestDatestamp string
	DeletedRecord     string
	Granularity       string
}

// MetadataFormat identifies an output schema by its prefix.
type MetadataFormat struct {
	MetadataPrefix    string
	Schema            string
	MetadataNamespace string
}

// LangValue is a language-qualified text value, used by the associative
// Dublin Core fields (title, subject, description).
type LangValue struct {
	Lang  string `json:"lang" yaml:"lang"`
	Value string `json:"value" yaml:"value"`
}

// Resource is a Dublin-Core-like information object. RIdentifier and
// Datestamp are scalar; every other field is multivalued. Resources are
// produced by a DataStore and never mutated by the engine: augmenters
// return transformed copies.
//
// Datestamps are day-granularity strings (YYYY-MM-DD), so lexicographic
// comparison is also chronological comparison.
type Resource struct {
	RIdentifier string      `json:"ridentifier" yaml:"ridentifier"`
	Datestamp   string      `json:"datestamp" yaml:"datestamp"`
	SetSpec     []string    `json:"setspec,omitempty" yaml:"setspec,omitempty"`
	Title       []LangValue `json:"title,omitempty" yaml:"title,omitempty"`
	Creator     []string    `json:"creator,omitempty" yaml:"creator,omitempty"`
	Subject     []LangValue `json:"subject,omitempty" yaml:"subject,omitempty"`
	Description []LangValue `json:"description,omitempty" yaml:"description,omitempty"`
	Publisher   []string    `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	Contributor []string    `json:"contributor,omitempty" yaml:"contributor,omitempty"`
	Date        []string    `json:"date,omitempty" yaml:"date,omitempty"`
	Type        []string    `json:"type,omitempty" yaml:"type,omitempty"`
	Format      []string    `json:"format,omitempty" yaml:"format,omitempty"`
	Identifier  []string    `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	Source      []string    `json:"source,omitempty" yaml:"source,omitempty"`
	Language    []string    `json:"language,omitempty" yaml:"language,omitempty"`
	Relation    []string    `json:"relation,omitempty" yaml:"relation,omitempty"`
	Rights      []string    `json:"rights,omitempty" yaml:"rights,omitempty"`
}

// Set is a named view over the record space.
type Set struct {
	SetSpec string
	SetName string
}
