// Package serializer renders OAI-PMH response documents. Every response
// shares the same envelope: the OAI-PMH root, a responseDate, a request
// element mirroring the accepted input, and either one payload section or
// exactly one error element.
package serializer

import (
	"fmt"
	"time"

	"github.com/beevik/etree"

	"github.com/gustavofonseca/oai-pmh/internal/formats"
	"github.com/gustavofonseca/oai-pmh/internal/oai"
)

const (
	oaiNamespace   = "http://www.openarchives.org/OAI/2.0/"
	xsiNamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	schemaLocation = "http://www.openarchives.org/OAI/2.0/ http://www.openarchives.org/OAI/2.0/OAI-PMH.xsd"
)

// Clock supplies the responseDate. Injectable so tests produce
// byte-identical documents.
type Clock func() time.Time

// Serializer renders response documents. The zero value is not usable;
// construct with New.
type Serializer struct {
	now Clock
}

// New creates a Serializer. A nil clock means time.Now.
func New(now Clock) *Serializer {
	if now == nil {
		now = time.Now
	}
	return &Serializer{now: now}
}

// Document carries everything a response may render. Handlers fill only
// the sections their response kind uses.
type Document struct {
	Repo            oai.RepositoryMeta
	Request         oai.Request
	Resources       []oai.Resource
	Formats         []oai.MetadataFormat
	Sets            []oai.Set
	ResumptionToken string
}

// Identify renders the Identify response.
func (s *Serializer) Identify(doc Document) ([]byte, error) {
	xml, root := s.envelope(doc)
	identify := root.CreateElement("Identify")
	identify.CreateElement("repositoryName").SetText(doc.Repo.RepositoryName)
	identify.CreateElement("baseURL").SetText(doc.Repo.BaseURL)
	identify.CreateElement("protocolVersion").SetText(doc.Repo.ProtocolVersion)
	for _, email := range doc.Repo.AdminEmail {
		identify.CreateElement("adminEmail").SetText(email)
	}
	identify.CreateElement("earliestDatestamp").SetText(doc.Repo.EarliestDatestamp)
	identify.CreateElement("deletedRecord").SetText(doc.Repo.DeletedRecord)
	identify.CreateElement("granularity").SetText(doc.Repo.Granularity)
	return toBytes(xml)
}

// GetRecord renders the GetRecord response for the single resource in doc.
func (s *Serializer) GetRecord(doc Document, format formats.Formatter) ([]byte, error) {
	xml, root := s.envelope(doc)
	section := root.CreateElement("GetRecord")
	for _, res := range doc.Resources {
		addRecord(section, res, format)
	}
	return toBytes(xml)
}

// ListRecords renders the ListRecords response: full records plus the
// next resumption token (empty text means the scan is terminal).
func (s *Serializer) ListRecords(doc Document, format formats.Formatter) ([]byte, error) {
	xml, root := s.envelope(doc)
	section := root.CreateElement("ListRecords")
	for _, res := range doc.Resources {
		addRecord(section, res, format)
	}
	addResumptionToken(section, doc.ResumptionToken)
	return toBytes(xml)
}

// ListIdentifiers renders the ListIdentifiers response: headers only.
func (s *Serializer) ListIdentifiers(doc Document) ([]byte, error) {
	xml, root := s.envelope(doc)
	section := root.CreateElement("ListIdentifiers")
	for _, res := range doc.Resources {
		addHeader(section, res)
	}
	addResumptionToken(section, doc.ResumptionToken)
	return toBytes(xml)
}

// ListMetadataFormats renders the registered format descriptors.
func (s *Serializer) ListMetadataFormats(doc Document) ([]byte, error) {
	xml, root := s.envelope(doc)
	section := root.CreateElement("ListMetadataFormats")
	for _, f := range doc.Formats {
		elem := section.CreateElement("metadataFormat")
		elem.CreateElement("metadataPrefix").SetText(f.MetadataPrefix)
		elem.CreateElement("schema").SetText(f.Schema)
		elem.CreateElement("metadataNamespace").SetText(f.MetadataNamespace)
	}
	return toBytes(xml)
}

// ListSets renders the ListSets response.
func (s *Serializer) ListSets(doc Document) ([]byte, error) {
	xml, root := s.envelope(doc)
	section := root.CreateElement("ListSets")
	for _, set := range doc.Sets {
		elem := section.CreateElement("set")
		elem.CreateElement("setSpec").SetText(set.SetSpec)
		elem.CreateElement("setName").SetText(set.SetName)
	}
	addResumptionToken(section, doc.ResumptionToken)
	return toBytes(xml)
}

// errorTexts carries the human-readable text for error elements that
// have one; codes missing here render an empty element.
var errorTexts = map[oai.ErrorCode]string{
	oai.CodeBadVerb:        "Illegal OAI verb",
	oai.CodeIDDoesNotExist: "No matching identifier",
}

// Error renders an error response with exactly one error element.
func (s *Serializer) Error(doc Document, code oai.ErrorCode, message string) ([]byte, error) {
	xml, root := s.envelope(doc)
	elem := root.CreateElement("error")
	elem.CreateAttr("code", string(code))
	text := message
	if text == "" {
		text = errorTexts[code]
	}
	if text != "" {
		elem.SetText(text)
	}
	return toBytes(xml)
}

// envelope builds the shared document skeleton: root element,
// responseDate, and the request mirror.
func (s *Serializer) envelope(doc Document) (*etree.Document, *etree.Element) {
	xml := etree.NewDocument()
	xml.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := xml.CreateElement("OAI-PMH")
	root.CreateAttr("xmlns", oaiNamespace)
	root.CreateAttr("xmlns:xsi", xsiNamespace)
	root.CreateAttr("xsi:schemaLocation", schemaLocation)

	root.CreateElement("responseDate").
		SetText(s.now().UTC().Format("2006-01-02T15:04:05Z"))

	request := root.CreateElement("request")
	addRequestAttr(request, "verb", doc.Request.Verb)
	addRequestAttr(request, "identifier", doc.Request.Identifier)
	addRequestAttr(request, "metadataPrefix", doc.Request.MetadataPrefix)
	addRequestAttr(request, "set", doc.Request.Set)
	addRequestAttr(request, "resumptionToken", doc.Request.ResumptionToken)
	addRequestAttr(request, "from", doc.Request.From)
	addRequestAttr(request, "until", doc.Request.Until)
	request.SetText(doc.Repo.BaseURL)

	return xml, root
}

func addRequestAttr(request *etree.Element, name, value string) {
	if value != "" {
		request.CreateAttr(name, value)
	}
}

// addHeader appends the header element carrying a resource's repository
// metadata: identifier, datestamp, and set memberships.
func addHeader(parent *etree.Element, res oai.Resource) {
	header := parent.CreateElement("header")
	header.CreateElement("identifier").SetText(res.RIdentifier)
	header.CreateElement("datestamp").SetText(res.Datestamp)
	for _, spec := range res.SetSpec {
		header.CreateElement("setSpec").SetText(spec)
	}
}

// addRecord appends a full record: header plus the formatted metadata
// payload.
func addRecord(parent *etree.Element, res oai.Resource, format formats.Formatter) {
	record := parent.CreateElement("record")
	addHeader(record, res)
	record.AddChild(format(res))
}

func addResumptionToken(parent *etree.Element, encoded string) {
	elem := parent.CreateElement("resumptionToken")
	if encoded != "" {
		elem.SetText(encoded)
	}
}

func toBytes(xml *etree.Document) ([]byte, error) {
	out, err := xml.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize response: %w", err)
	}
	return out, nil
}
