package oai

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestFromQuery_MapsAllArguments(t *testing.T) {
	values, err := url.ParseQuery(
		"verb=GetRecord&identifier=oai:books:37t&metadataPrefix=oai_dc" +
			"&set=0101-0101&resumptionToken=tok&from=2012-01-01&until=2012-12-31")
	require.NoError(t, err)

	req := RequestFromQuery(values)

	assert.Equal(t, "GetRecord", req.Verb)
	assert.Equal(t, "oai:books:37t", req.Identifier)
	assert.Equal(t, "oai_dc", req.MetadataPrefix)
	assert.Equal(t, "0101-0101", req.Set)
	assert.Equal(t, "tok", req.ResumptionToken)
	assert.Equal(t, "2012-01-01", req.From)
	assert.Equal(t, "2012-12-31", req.Until)
}

func TestRequestFromQuery_AbsentArgumentsStayEmpty(t *testing.T) {
	values, err := url.ParseQuery("verb=Identify")
	require.NoError(t, err)

	req := RequestFromQuery(values)

	assert.Equal(t, "Identify", req.Verb)
	assert.Empty(t, req.Identifier)
	assert.Empty(t, req.MetadataPrefix)
}

func TestArgNames_CanonicalOrder(t *testing.T) {
	req := Request{
		Until:          "2012-12-31",
		Verb:           "ListRecords",
		From:           "2012-01-01",
		MetadataPrefix: "oai_dc",
	}

	assert.Equal(t, []string{"verb", "metadataPrefix", "from", "until"}, req.ArgNames())
}

func TestArgNames_EmptyRequest(t *testing.T) {
	assert.Empty(t, Request{}.ArgNames())
}
