package formats

import (
	"github.com/beevik/etree"

	"github.com/gustavofonseca/oai-pmh/internal/oai"
)

const (
	oaiDCNamespace = "http://www.openarchives.org/OAI/2.0/oai_dc/"
	oaiDCSchema    = "http://www.openarchives.org/OAI/2.0/oai_dc.xsd"
	dcNamespace    = "http://purl.org/dc/elements/1.1/"
	xsiNamespace   = "http://www.w3.org/2001/XMLSchema-instance"

	// openAccessRights is the default access-level statement the driver
	// augmenter applies to resources without an explicit rights value.
	openAccessRights = "info:eu-repo/semantics/openAccess"
)

// OAIDC describes the mandatory Dublin Core format.
var OAIDC = oai.MetadataFormat{
	MetadataPrefix:    "oai_dc",
	Schema:            oaiDCSchema,
	MetadataNamespace: oaiDCNamespace,
}

// OAIDCDriver is the DRIVER-flavored Dublin Core format: the same schema,
// rendered from resources run through DriverAugmenter.
var OAIDCDriver = oai.MetadataFormat{
	MetadataPrefix:    "oai_dc_driver",
	Schema:            oaiDCSchema,
	MetadataNamespace: oaiDCNamespace,
}

// MakeOAIDC renders the <metadata> payload for a resource as an
// oai_dc:dc element with dc:* children in canonical order.
func MakeOAIDC(res oai.Resource) *etree.Element {
	metadata := etree.NewElement("metadata")
	dc := metadata.CreateElement("oai_dc:dc")
	dc.CreateAttr("xmlns:oai_dc", oaiDCNamespace)
	dc.CreateAttr("xmlns:dc", dcNamespace)
	dc.CreateAttr("xmlns:xsi", xsiNamespace)
	dc.CreateAttr("xsi:schemaLocation", oaiDCNamespace+" "+oaiDCSchema)

	addLangValues(dc, "dc:title", res.Title)
	addValues(dc, "dc:creator", res.Creator)
	addLangValues(dc, "dc:subject", res.Subject)
	addLangValues(dc, "dc:description", res.Description)
	addValues(dc, "dc:publisher", res.Publisher)
	addValues(dc, "dc:contributor", res.Contributor)
	addValues(dc, "dc:date", res.Date)
	addValues(dc, "dc:type", res.Type)
	addValues(dc, "dc:format", res.Format)
	addValues(dc, "dc:identifier", res.Identifier)
	addValues(dc, "dc:source", res.Source)
	addValues(dc, "dc:language", res.Language)
	addValues(dc, "dc:relation", res.Relation)
	addValues(dc, "dc:rights", res.Rights)

	return metadata
}

// DriverAugmenter defaults the rights statement to open access when the
// resource carries none, per the DRIVER guidelines.
func DriverAugmenter(res oai.Resource) oai.Resource {
	if len(res.Rights) > 0 {
		return res
	}
	augmented := res
	augmented.Rights = []string{openAccessRights}
	return augmented
}

// DefaultRegistry returns the registry the server ships with: oai_dc and
// its DRIVER variant.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	registry.Add(OAIDC, MakeOAIDC, nil)
	registry.Add(OAIDCDriver, MakeOAIDC, DriverAugmenter)
	return registry
}

func addValues(parent *etree.Element, tag string, values []string) {
	for _, value := range values {
		parent.CreateElement(tag).SetText(value)
	}
}

func addLangValues(parent *etree.Element, tag string, values []oai.LangValue) {
	for _, lv := range values {
		elem := parent.CreateElement(tag)
		if lv.Lang != "" {
			elem.CreateAttr("xml:lang", lv.Lang)
		}
		elem.SetText(lv.Value)
	}
}
