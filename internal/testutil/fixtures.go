package testutil

import (
	"fmt"

	"github.com/gustavofonseca/oai-pmh/internal/datastore"
	"github.com/gustavofonseca/oai-pmh/internal/oai"
)

// SampleMeta returns the repository identity used by deterministic
// tests. The earliest datestamp matches the oldest fixture record, so a
// fresh unbounded scan anchors on a year that actually holds data.
func SampleMeta() oai.RepositoryMeta {
	return oai.RepositoryMeta{
		RepositoryName:    "SciELO Books",
		BaseURL:           "http://books.scielo.org/oai/",
		ProtocolVersion:   "2.0",
		AdminEmail:        []string{"books@scielo.org"},
		EarliestDatestamp: "2012-01-01",
		DeletedRecord:     "persistent",
		Granularity:       "YYYY-MM-DD",
	}
}

// SampleResource returns a fully populated record.
func SampleResource() oai.Resource {
	return oai.Resource{
		RIdentifier: "oai:books:37t",
		Datestamp:   "2012-09-08",
		SetSpec:     []string{"0101-0101"},
		Title: []oai.LangValue{
			{Lang: "pt", Value: "Compêndio de zoologia"},
		},
		Creator:     []string{"Ferri, Mario"},
		Subject:     []oai.LangValue{{Lang: "en", Value: "zoology"}},
		Description: []oai.LangValue{{Lang: "pt", Value: "Uma introdução."}},
		Publisher:   []string{"EDUFBA"},
		Date:        []string{"2012"},
		Type:        []string{"book"},
		Format:      []string{"pdf"},
		Identifier:  []string{"http://books.scielo.org/id/37t"},
		Language:    []string{"pt"},
	}
}

// Resources returns n records with ascending datestamps inside year, one
// per day starting at January 1st. Identifiers are zero-padded so
// lexicographic order matches insertion order.
func Resources(year string, n int) []oai.Resource {
	out := make([]oai.Resource, 0, n)
	day := 1
	month := 1
	for i := 0; i < n; i++ {
		out = append(out, oai.Resource{
			RIdentifier: fmt.Sprintf("oai:books:%s%03d", year, i),
			Datestamp:   fmt.Sprintf("%s-%02d-%02d", year, month, day),
			SetSpec:     []string{"0101-0101"},
			Title:       []oai.LangValue{{Lang: "en", Value: fmt.Sprintf("Record %03d", i)}},
		})
		day++
		if day > 28 {
			day = 1
			month++
		}
	}
	return out
}

// SampleJournal returns the journal backing the dynamic set used in
// fixtures.
func SampleJournal() datastore.Journal {
	return datastore.Journal{
		Title:    "Memórias do Instituto Oswaldo Cruz",
		LeadISSN: "0101-0101",
	}
}
