package token

import (
	"regexp"

	"github.com/gustavofonseca/oai-pmh/internal/oai"
)

// Per-verb syntax patterns for client-supplied tokens. Every listing verb
// carries the date-anchored composite offset; they differ only in which
// fields may be present: record and identifier scans demand a metadata
// prefix, while set scans must leave both the set and prefix fields empty.
//
// Set specs may be ISSN-shaped (e.g. "0001-3714"), so the set field
// accepts hyphens alongside word characters.
var tokenPatterns = map[string]*regexp.Regexp{
	oai.VerbListRecords: regexp.MustCompile(
		`^([-\w]+)?:(\d{4}-\d{2}-\d{2})?:(\d{4}-\d{2}-\d{2})?:\d{4}-\d{2}-\d{2}\(\d+\):\d+:\w+$`),
	oai.VerbListIdentifiers: regexp.MustCompile(
		`^([-\w]+)?:(\d{4}-\d{2}-\d{2})?:(\d{4}-\d{2}-\d{2})?:\d{4}-\d{2}-\d{2}\(\d+\):\d+:\w+$`),
	oai.VerbListSets: regexp.MustCompile(
		`^:(\d{4}-\d{2}-\d{2})?:(\d{4}-\d{2}-\d{2})?:\d{4}-\d{2}-\d{2}\(\d+\):\d+:$`),
}

// ValidForVerb reports whether encoded matches the token syntax of verb.
// Verbs without a pattern never accept tokens.
func ValidForVerb(verb, encoded string) bool {
	pattern, ok := tokenPatterns[verb]
	if !ok {
		return false
	}
	return pattern.MatchString(encoded)
}
