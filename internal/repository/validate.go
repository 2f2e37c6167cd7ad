package repository

import (
	"slices"

	"github.com/gustavofonseca/oai-pmh/internal/oai"
)

// Per-verb argument-legality predicates. Each predicate receives the
// names of the arguments present with non-empty values and reports
// whether the combination is legal for its verb. Unknown and repeated
// argument names never reach these checks: the dispatcher's global
// syntax pass rejects them first.
//
// The listing verbs accept exactly two shapes: the verb plus a
// resumption token and nothing else (the token already embeds the query),
// or the verb plus a filter subset with no token.
var argCheckers = map[string]func([]string) bool{
	oai.VerbIdentify:            checkIdentifyArgs,
	oai.VerbGetRecord:           checkGetRecordArgs,
	oai.VerbListRecords:         checkListRecordsArgs,
	oai.VerbListIdentifiers:     checkListIdentifiersArgs,
	oai.VerbListMetadataFormats: checkListMetadataFormatsArgs,
	oai.VerbListSets:            checkListSetsArgs,
}

func checkIdentifyArgs(names []string) bool {
	return areEqual(names, []string{oai.ArgVerb})
}

func checkGetRecordArgs(names []string) bool {
	return areEqual(names, []string{oai.ArgVerb, oai.ArgMetadataPrefix, oai.ArgIdentifier})
}

func checkListRecordsArgs(names []string) bool {
	return checkRecordListingArgs(names)
}

func checkListIdentifiersArgs(names []string) bool {
	return checkRecordListingArgs(names)
}

// checkRecordListingArgs covers ListRecords and ListIdentifiers: both
// demand a metadata prefix on fresh requests and allow any subset of the
// date/set filters alongside it.
func checkRecordListingArgs(names []string) bool {
	if slices.Contains(names, oai.ArgResumptionToken) {
		return areEqual(names, []string{oai.ArgVerb, oai.ArgResumptionToken})
	}
	return slices.Contains(names, oai.ArgVerb) &&
		slices.Contains(names, oai.ArgMetadataPrefix) &&
		subsetOf(names, []string{
			oai.ArgVerb, oai.ArgMetadataPrefix, oai.ArgFrom, oai.ArgUntil, oai.ArgSet,
		})
}

func checkListMetadataFormatsArgs(names []string) bool {
	return areEqual(names, []string{oai.ArgVerb}) ||
		areEqual(names, []string{oai.ArgVerb, oai.ArgIdentifier})
}

// checkListSetsArgs: metadataPrefix and set are meaningless for a set
// listing and therefore illegal; dates may scope the embedded window.
func checkListSetsArgs(names []string) bool {
	if slices.Contains(names, oai.ArgResumptionToken) {
		return areEqual(names, []string{oai.ArgVerb, oai.ArgResumptionToken})
	}
	return slices.Contains(names, oai.ArgVerb) &&
		subsetOf(names, []string{oai.ArgVerb, oai.ArgFrom, oai.ArgUntil})
}

// areEqual reports whether a and b hold the same names, order ignored.
func areEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sortedA := slices.Clone(a)
	sortedB := slices.Clone(b)
	slices.Sort(sortedA)
	slices.Sort(sortedB)
	return slices.Equal(sortedA, sortedB)
}

// subsetOf reports whether every name in names appears in allowed.
func subsetOf(names, allowed []string) bool {
	for _, name := range names {
		if !slices.Contains(allowed, name) {
			return false
		}
	}
	return true
}
