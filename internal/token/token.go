// Package token implements the resumption-token cursor: the opaque,
// client-held pagination state for the listing verbs.
//
// A token encodes a query plus the position of the scan within its result
// space. The scan position is a compound offset "YYYY-MM-DD(N)": a date
// anchor and a skip count within that anchor. Each backend query derived
// from a token is capped to a single calendar year, so the per-request
// backend cost stays bounded no matter how wide the requested date range
// is; wide ranges just take more round trips.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gustavofonseca/oai-pmh/internal/oai"
)

// ErrInvalid reports a client-supplied token that failed syntactic
// validation or disagreed with the server configuration. It always maps
// to a badResumptionToken response, never to a silent default.
var ErrInvalid = errors.New("invalid resumption token")

// fieldCount is the number of ':'-delimited fields in an encoded token.
const fieldCount = 6

// Token is an immutable pagination cursor. All fields are strings: the
// encoded form is lossy by design, preserving values but not types.
// Advancing a scan produces a new Token, never mutates one.
//
// Fields follow the canonical encoding order.
type Token struct {
	Set            string
	From           string
	Until          string
	Offset         string // composite "YYYY-MM-DD(N)" scan position
	Count          string
	MetadataPrefix string
}

// FromRequest resolves the cursor for a request. A supplied token must
// match the verb's syntax pattern and carry the configured page length;
// any violation is ErrInvalid. Without a token a fresh first-page cursor
// is minted from the request arguments and the server defaults.
func FromRequest(req oai.Request, pageLen int, defaultFrom, defaultUntil string) (Token, error) {
	if req.ResumptionToken == "" {
		from := req.From
		if from == "" {
			from = defaultFrom
		}
		until := req.Until
		if until == "" {
			until = defaultUntil
		}
		return Token{
			Set:            req.Set,
			From:           from,
			Until:          until,
			Offset:         fmt.Sprintf("%s(0)", from),
			Count:          strconv.Itoa(pageLen),
			MetadataPrefix: req.MetadataPrefix,
		}, nil
	}

	if !ValidForVerb(req.Verb, req.ResumptionToken) {
		return Token{}, fmt.Errorf("token %q fails the %s syntax: %w",
			req.ResumptionToken, req.Verb, ErrInvalid)
	}
	tok := Decode(req.ResumptionToken)
	count, err := strconv.Atoi(tok.Count)
	if err != nil || count != pageLen {
		return Token{}, fmt.Errorf("token count %q differs from the configured page length %d: %w",
			tok.Count, pageLen, ErrInvalid)
	}
	return tok, nil
}

// Decode rebuilds a Token from its encoded form. Missing trailing fields
// decode to empty strings and extra fields are dropped: decoding mirrors
// the lossy encode contract and performs no validation. Syntactic checks
// are the per-verb patterns' job (see ValidForVerb).
func Decode(encoded string) Token {
	parts := strings.Split(encoded, ":")
	for len(parts) < fieldCount {
		parts = append(parts, "")
	}
	return Token{
		Set:            parts[0],
		From:           parts[1],
		Until:          parts[2],
		Offset:         parts[3],
		Count:          parts[4],
		MetadataPrefix: parts[5],
	}
}

// Encode serializes the token as the canonical ':'-delimited string.
// Two tokens are interchangeable iff their encodings are equal.
func (t Token) Encode() string {
	return strings.Join([]string{
		t.Set, t.From, t.Until, t.Offset, t.Count, t.MetadataPrefix,
	}, ":")
}

// IsFirstPage reports whether the token denotes the first page of a scan:
// the anchor sits at the lower bound and nothing has been skipped.
func (t Token) IsFirstPage() bool {
	return t.Offset == fmt.Sprintf("%s(0)", t.From)
}

// QueryFrom returns the lower date bound for the current backend query:
// the scan anchor. Callers must validate the token first; a malformed
// offset yields an empty string.
func (t Token) QueryFrom() string {
	anchor, _, err := splitOffset(t.Offset)
	if err != nil {
		return ""
	}
	return anchor
}

// QueryUntil returns the upper date bound for the current backend query:
// the requested bound, clamped to December 31 of the anchor's year. The
// clamp is what caps every single backend scan to one year of data.
func (t Token) QueryUntil() string {
	anchor := t.QueryFrom()
	if len(anchor) < 4 {
		return t.Until
	}
	yearEnd := anchor[:4] + "-12-31"
	if t.Until != "" && t.Until <= yearEnd {
		return t.Until
	}
	return yearEnd
}

// QueryOffset returns the number of rows to skip within the query window.
func (t Token) QueryOffset() int {
	_, skip, err := splitOffset(t.Offset)
	if err != nil {
		return 0
	}
	return skip
}

// QueryCount returns the page length the token was minted with.
func (t Token) QueryCount() int {
	count, err := strconv.Atoi(t.Count)
	if err != nil {
		return 0
	}
	return count
}

// Next computes the successor cursor after a page of pageLen resources.
// The decision is ordered: a full page means the current window may hold
// more rows, so the skip advances first; only a short page concedes the
// window and rolls the anchor to January 1 of the next year; when the
// window has already reached the upper bound, the scan is terminal and
// no token is emitted.
func (t Token) Next(pageLen int) (Token, bool) {
	switch {
	case pageLen == t.QueryCount():
		return t.incrOffsetSize(), true
	case t.hasMoreSearchSpace():
		return t.incrOffsetFrom(), true
	default:
		return Token{}, false
	}
}

// NextPage computes the successor cursor for scans that are not date
// scoped (set listings): a full page advances the skip, anything shorter
// is terminal. Year rollover would rescan the same rows there.
func (t Token) NextPage(pageLen int) (Token, bool) {
	if pageLen == t.QueryCount() {
		return t.incrOffsetSize(), true
	}
	return Token{}, false
}

// hasMoreSearchSpace reports whether the current query window stops short
// of the requested upper bound.
func (t Token) hasMoreSearchSpace() bool {
	return t.Until > t.QueryUntil()
}

// incrOffsetSize advances the skip within the current anchor.
func (t Token) incrOffsetSize() Token {
	next := t
	next.Offset = fmt.Sprintf("%s(%d)", t.QueryFrom(), t.QueryOffset()+t.QueryCount())
	return next
}

// incrOffsetFrom rolls the anchor to January 1 of the following year and
// resets the skip.
func (t Token) incrOffsetFrom() Token {
	year, _ := strconv.Atoi(t.QueryFrom()[:4])
	next := t
	next.Offset = fmt.Sprintf("%d-01-01(0)", year+1)
	return next
}

// splitOffset parses the composite offset "YYYY-MM-DD(N)".
func splitOffset(offset string) (anchor string, skip int, err error) {
	open := strings.IndexByte(offset, '(')
	if open < 0 || !strings.HasSuffix(offset, ")") {
		return "", 0, fmt.Errorf("malformed offset %q", offset)
	}
	skip, err = strconv.Atoi(offset[open+1 : len(offset)-1])
	if err != nil {
		return "", 0, fmt.Errorf("malformed offset %q: %w", offset, err)
	}
	return offset[:open], skip, nil
}
