package oai

import "net/url"

// Argument names a request may carry. Anything outside this set fails the
// global syntax check before verb-specific validation runs.
const (
	ArgVerb            = "verb"
	ArgIdentifier      = "identifier"
	ArgMetadataPrefix  = "metadataPrefix"
	ArgSet             = "set"
	ArgResumptionToken = "resumptionToken"
	ArgFrom            = "from"
	ArgUntil           = "until"
)

// LegalArgNames lists the recognized query keys in canonical order. The
// order also drives the request mirror in serialized responses.
var LegalArgNames = []string{
	ArgVerb,
	ArgIdentifier,
	ArgMetadataPrefix,
	ArgSet,
	ArgResumptionToken,
	ArgFrom,
	ArgUntil,
}

// Request is a parsed protocol request. Absent arguments are empty
// strings: parsing represents absence, it never erases or defaults it.
type Request struct {
	Verb            string
	Identifier      string
	MetadataPrefix  string
	Set             string
	ResumptionToken string
	From            string
	Until           string
}

// RequestFromQuery builds a Request from parsed query values. Repeated
// and unknown keys are the caller's problem (checked separately); here
// the first value wins.
func RequestFromQuery(values url.Values) Request {
	return Request{
		Verb:            values.Get(ArgVerb),
		Identifier:      values.Get(ArgIdentifier),
		MetadataPrefix:  values.Get(ArgMetadataPrefix),
		Set:             values.Get(ArgSet),
		ResumptionToken: values.Get(ArgResumptionToken),
		From:            values.Get(ArgFrom),
		Until:           values.Get(ArgUntil),
	}
}

// ArgNames returns the names of the arguments present with non-empty
// values, in canonical order. This is the input to the per-verb
// argument-legality predicates.
func (r Request) ArgNames() []string {
	present := make([]string, 0, len(LegalArgNames))
	for _, name := range LegalArgNames {
		if r.arg(name) != "" {
			present = append(present, name)
		}
	}
	return present
}

func (r Request) arg(name string) string {
	switch name {
	case ArgVerb:
		return r.Verb
	case ArgIdentifier:
		return r.Identifier
	case ArgMetadataPrefix:
		return r.MetadataPrefix
	case ArgSet:
		return r.Set
	case ArgResumptionToken:
		return r.ResumptionToken
	case ArgFrom:
		return r.From
	case ArgUntil:
		return r.Until
	default:
		return ""
	}
}
