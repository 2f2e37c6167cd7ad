package httpd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoEngine records the query it received and returns a canned body.
type echoEngine struct {
	rawQuery string
	body     []byte
}

func (e *echoEngine) HandleRequest(_ context.Context, rawQuery string) []byte {
	e.rawQuery = rawQuery
	return e.body
}

func TestServeHTTP_GetPassesQueryVerbatim(t *testing.T) {
	engine := &echoEngine{body: []byte("<OAI-PMH/>")}
	handler := NewHandler(engine, nil)

	req := httptest.NewRequest(http.MethodGet, "/?verb=Identify", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "verb=Identify", engine.rawQuery)
	assert.Equal(t, "<OAI-PMH/>", rec.Body.String())
}

func TestServeHTTP_PostFormReachesEngine(t *testing.T) {
	engine := &echoEngine{body: []byte("<OAI-PMH/>")}
	handler := NewHandler(engine, nil)

	form := url.Values{}
	form.Set("verb", "GetRecord")
	form.Set("identifier", "oai:books:37t")
	form.Set("metadataPrefix", "oai_dc")

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	got, err := url.ParseQuery(engine.rawQuery)
	require.NoError(t, err)
	assert.Equal(t, "GetRecord", got.Get("verb"))
	assert.Equal(t, "oai:books:37t", got.Get("identifier"))
	assert.Equal(t, "oai_dc", got.Get("metadataPrefix"))
}

func TestServeHTTP_ProtocolErrorsStillReturn200(t *testing.T) {
	// The protocol carries errors inside the XML body; the transport
	// status stays 200.
	engine := &echoEngine{body: []byte(`<OAI-PMH><error code="badVerb"/></OAI-PMH>`)}
	handler := NewHandler(engine, nil)

	req := httptest.NewRequest(http.MethodGet, "/?verb=NotAVerb", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "badVerb")
}

func TestServeHTTP_RejectsOtherMethods(t *testing.T) {
	handler := NewHandler(&echoEngine{}, nil)

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodHead} {
		req := httptest.NewRequest(method, "/?verb=Identify", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))
	}
}
