// Package datastore defines the record-storage capability the repository
// engine consumes, plus the two implementations: an in-memory store for
// tests and tooling, and the SQLite store used in production.
package datastore

import (
	"context"
	"errors"

	"github.com/gustavofonseca/oai-pmh/internal/oai"
)

// ErrNotFound reports a lookup that matched nothing.
var ErrNotFound = errors.New("does not exist")

// ListQuery bounds a single listing call. From/Until are inclusive
// day-granularity datestamps; an empty bound is open. SetSpec, when
// non-empty, restricts the scan to resources carrying that set.
type ListQuery struct {
	Offset  int
	Count   int
	From    string
	Until   string
	SetSpec string
}

// View narrows a ListQuery before it runs. Views are produced by the sets
// registry: resolving a set name yields the View that scopes the query to
// that set. A nil View is the identity.
type View func(*ListQuery)

// SetView returns a View restricting the scan to resources in setSpec.
func SetView(setSpec string) View {
	return func(q *ListQuery) {
		q.SetSpec = setSpec
	}
}

// Journal is a publication from which dynamic sets are derived: one set
// per journal, speced by its lead ISSN.
type Journal struct {
	Title    string `json:"title" yaml:"title"`
	LeadISSN string `json:"lead_issn" yaml:"lead_issn"`
}

// DataStore encapsulates access to the record backend.
//
// List is restartable per call: no cursor is retained server-side, the
// offset/count window fully determines the page. Results are ordered by
// (datestamp, ridentifier) ascending so identical queries return
// identical pages.
type DataStore interface {
	// Add stores a resource, replacing any previous one with the same
	// ridentifier.
	Add(ctx context.Context, res oai.Resource) error

	// Get retrieves the resource for ridentifier, or ErrNotFound.
	Get(ctx context.Context, ridentifier string) (oai.Resource, error)

	// List returns one bounded page of resources matching q, optionally
	// narrowed by view.
	List(ctx context.Context, q ListQuery, view View) ([]oai.Resource, error)

	// AddJournal registers a journal for dynamic set derivation.
	AddJournal(ctx context.Context, j Journal) error

	// GetJournal retrieves a journal by lead ISSN, or ErrNotFound.
	GetJournal(ctx context.Context, issn string) (Journal, error)

	// ListJournals returns one offset/count window of journals ordered
	// by lead ISSN.
	ListJournals(ctx context.Context, offset, count int) ([]Journal, error)
}
