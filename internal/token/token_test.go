package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustavofonseca/oai-pmh/internal/oai"
)

func TestEncode_RoundTrip(t *testing.T) {
	tok := Token{
		Set:            "0101-0101",
		From:           "2010-01-01",
		Until:          "2014-12-31",
		Offset:         "2012-05-20(300)",
		Count:          "100",
		MetadataPrefix: "oai_dc",
	}

	assert.Equal(t, "0101-0101:2010-01-01:2014-12-31:2012-05-20(300):100:oai_dc", tok.Encode())
	assert.Equal(t, tok, Decode(tok.Encode()))
}

func TestDecode_MissingTrailingFields(t *testing.T) {
	tok := Decode("::2014-12-31")

	assert.Equal(t, "", tok.Set)
	assert.Equal(t, "", tok.From)
	assert.Equal(t, "2014-12-31", tok.Until)
	assert.Equal(t, "", tok.Offset)
	assert.Equal(t, "", tok.Count)
	assert.Equal(t, "", tok.MetadataPrefix)
}

func TestDecode_ExtraFieldsDropped(t *testing.T) {
	tok := Decode("a:b:c:d:e:f:extra:more")

	assert.Equal(t, "a:b:c:d:e:f", tok.Encode())
}

func TestFromRequest_MintsFirstPageCursor(t *testing.T) {
	req := oai.Request{
		Verb:           oai.VerbListRecords,
		MetadataPrefix: "oai_dc",
		From:           "2012-01-01",
		Until:          "2013-06-30",
		Set:            "0101-0101",
	}

	tok, err := FromRequest(req, 100, "1998-01-01", "2025-06-15")
	require.NoError(t, err)

	assert.Equal(t, "0101-0101", tok.Set)
	assert.Equal(t, "2012-01-01", tok.From)
	assert.Equal(t, "2013-06-30", tok.Until)
	assert.Equal(t, "2012-01-01(0)", tok.Offset)
	assert.Equal(t, "100", tok.Count)
	assert.Equal(t, "oai_dc", tok.MetadataPrefix)
	assert.True(t, tok.IsFirstPage())
}

func TestFromRequest_DefaultsOpenBounds(t *testing.T) {
	req := oai.Request{Verb: oai.VerbListRecords, MetadataPrefix: "oai_dc"}

	tok, err := FromRequest(req, 100, "1998-01-01", "2025-06-15")
	require.NoError(t, err)

	assert.Equal(t, "1998-01-01", tok.From)
	assert.Equal(t, "2025-06-15", tok.Until)
	assert.Equal(t, "1998-01-01(0)", tok.Offset)
}

func TestFromRequest_AcceptsValidToken(t *testing.T) {
	req := oai.Request{
		Verb:            oai.VerbListRecords,
		ResumptionToken: ":2012-01-01:2013-06-30:2012-01-01(100):100:oai_dc",
	}

	tok, err := FromRequest(req, 100, "1998-01-01", "2025-06-15")
	require.NoError(t, err)

	assert.Equal(t, 100, tok.QueryOffset())
	assert.Equal(t, "oai_dc", tok.MetadataPrefix)
	assert.False(t, tok.IsFirstPage())
}

func TestFromRequest_RejectsMalformedToken(t *testing.T) {
	cases := []struct {
		name  string
		token string
	}{
		{"garbage", "certainly-not-a-token"},
		{"missing prefix", ":2012-01-01:2013-06-30:2012-01-01(100):100:"},
		{"malformed offset", ":2012-01-01:2013-06-30:broken:100:oai_dc"},
		{"non-numeric count", ":2012-01-01:2013-06-30:2012-01-01(100):abc:oai_dc"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := oai.Request{Verb: oai.VerbListRecords, ResumptionToken: tc.token}
			_, err := FromRequest(req, 100, "1998-01-01", "2025-06-15")
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestFromRequest_RejectsForeignPageLength(t *testing.T) {
	req := oai.Request{
		Verb:            oai.VerbListRecords,
		ResumptionToken: ":2012-01-01:2013-06-30:2012-01-01(100):100:oai_dc",
	}

	_, err := FromRequest(req, 500, "1998-01-01", "2025-06-15")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestQueryUntil_ClampsToAnchorYearEnd(t *testing.T) {
	tok := Token{From: "2010-01-01", Until: "2014-12-31", Offset: "2012-03-15(0)"}

	assert.Equal(t, "2012-03-15", tok.QueryFrom())
	assert.Equal(t, "2012-12-31", tok.QueryUntil())
}

func TestQueryUntil_UsesRequestedBoundInsideYear(t *testing.T) {
	tok := Token{From: "2012-01-01", Until: "2012-06-30", Offset: "2012-01-01(0)"}

	assert.Equal(t, "2012-06-30", tok.QueryUntil())
}

func TestQueryUntil_EmptyBoundClosesAtYearEnd(t *testing.T) {
	tok := Token{From: "2012-01-01", Until: "", Offset: "2012-01-01(0)"}

	assert.Equal(t, "2012-12-31", tok.QueryUntil())
}

func TestNext_FullPageAdvancesSkip(t *testing.T) {
	tok := Token{
		From: "2010-01-01", Until: "2014-12-31",
		Offset: "2012-01-01(200)", Count: "100", MetadataPrefix: "oai_dc",
	}

	next, more := tok.Next(100)
	require.True(t, more)

	assert.Equal(t, "2012-01-01(300)", next.Offset)
	assert.Equal(t, tok.From, next.From)
	assert.Equal(t, tok.Until, next.Until)
}

func TestNext_ShortPageRollsAnchorToNextYear(t *testing.T) {
	tok := Token{
		From: "2010-01-01", Until: "2014-12-31",
		Offset: "2012-07-01(200)", Count: "100", MetadataPrefix: "oai_dc",
	}

	next, more := tok.Next(40)
	require.True(t, more)

	assert.Equal(t, "2013-01-01(0)", next.Offset)
}

func TestNext_TerminalWhenWindowReachesBound(t *testing.T) {
	tok := Token{
		From: "2010-01-01", Until: "2014-12-31",
		Offset: "2014-01-01(200)", Count: "100",
	}

	_, more := tok.Next(40)
	assert.False(t, more)
}

func TestNext_EmptyFirstWindowStillWalksYears(t *testing.T) {
	// No records in 2012 does not end a scan bounded past 2012.
	tok := Token{From: "2012-01-01", Until: "2014-12-31", Offset: "2012-01-01(0)", Count: "100"}

	next, more := tok.Next(0)
	require.True(t, more)
	assert.Equal(t, "2013-01-01(0)", next.Offset)
}

func TestNext_TerminatesOverAnyRange(t *testing.T) {
	// Every advance either grows the skip or the anchor year, so a scan
	// over a fixed range always reaches the terminal state.
	tok := Token{From: "2010-01-01", Until: "2019-12-31", Offset: "2010-01-01(0)", Count: "100"}

	steps := 0
	for {
		next, more := tok.Next(0) // empty pages force year rollover
		if !more {
			break
		}
		tok = next
		steps++
		require.Less(t, steps, 50, "scan must terminate")
	}
	assert.Equal(t, 9, steps)
}

func TestNextPage_FullPageAdvances(t *testing.T) {
	tok := Token{From: "2012-01-01", Until: "2014-12-31", Offset: "2012-01-01(0)", Count: "100"}

	next, more := tok.NextPage(100)
	require.True(t, more)
	assert.Equal(t, "2012-01-01(100)", next.Offset)
}

func TestNextPage_ShortPageIsTerminal(t *testing.T) {
	// Set listings are not date scoped: rolling the year would rescan the
	// same rows, so a short page ends the scan outright.
	tok := Token{From: "2012-01-01", Until: "2014-12-31", Offset: "2012-01-01(100)", Count: "100"}

	_, more := tok.NextPage(40)
	assert.False(t, more)
}
