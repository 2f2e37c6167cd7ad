// Package formats holds the metadata-format registry: the mapping from a
// metadata prefix to the format descriptor, the formatter that renders a
// resource's metadata payload, and the augmenter that adjusts a resource
// before rendering.
package formats

import (
	"github.com/beevik/etree"

	"github.com/gustavofonseca/oai-pmh/internal/oai"
)

// Formatter renders the metadata payload element for one resource.
type Formatter func(oai.Resource) *etree.Element

// Augmenter returns a copy of the resource adjusted for a specific
// format. Augmenters never mutate their input.
type Augmenter func(oai.Resource) oai.Resource

// Entry ties a format descriptor to its formatter and augmenter.
type Entry struct {
	Meta    oai.MetadataFormat
	Format  Formatter
	Augment Augmenter
}

// Registry maps metadata prefixes to entries. It is populated at startup
// and read-only afterwards, so concurrent reads need no locking.
type Registry struct {
	order   []string
	entries map[string]Entry
}

// NewRegistry creates an empty format registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Add registers a format under its prefix. A nil augmenter means
// identity. Registration order is preserved in All.
func (r *Registry) Add(meta oai.MetadataFormat, format Formatter, augment Augmenter) {
	if augment == nil {
		augment = func(res oai.Resource) oai.Resource { return res }
	}
	if _, dup := r.entries[meta.MetadataPrefix]; !dup {
		r.order = append(r.order, meta.MetadataPrefix)
	}
	r.entries[meta.MetadataPrefix] = Entry{Meta: meta, Format: format, Augment: augment}
}

// Get returns the entry registered under prefix.
func (r *Registry) Get(prefix string) (Entry, bool) {
	entry, ok := r.entries[prefix]
	return entry, ok
}

// All returns the registered format descriptors in registration order.
func (r *Registry) All() []oai.MetadataFormat {
	formats := make([]oai.MetadataFormat, 0, len(r.order))
	for _, prefix := range r.order {
		formats = append(formats, r.entries[prefix].Meta)
	}
	return formats
}
