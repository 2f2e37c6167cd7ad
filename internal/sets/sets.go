// Package sets resolves named views over the record space. A registry
// combines statically declared sets with dynamic ones derived from the
// datastore's journals: one set per journal, speced by its lead ISSN.
package sets

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/gustavofonseca/oai-pmh/internal/datastore"
	"github.com/gustavofonseca/oai-pmh/internal/oai"
)

// ErrNoSuchSet reports a set spec that resolves to neither a static set
// nor a journal. The engine treats it as a malformed request, not a
// server fault.
var ErrNoSuchSet = errors.New("set does not exist")

// Registry is the named-view capability the repository engine consumes.
type Registry interface {
	// List returns one offset/count window of the combined static and
	// dynamic sets, static sets first.
	List(ctx context.Context, offset, count int) ([]oai.Set, error)

	// GetView resolves a set spec into the query filter that scopes
	// listings to it, or ErrNoSuchSet.
	GetView(ctx context.Context, setSpec string) (datastore.View, error)
}

// registry implements Registry on top of a DataStore. Static entries are
// fixed at construction; dynamic entries are read from the journals table
// on every call, so newly ingested journals surface without restarts.
type registry struct {
	ds     datastore.DataStore
	static []staticEntry
	byName map[string]datastore.View
}

type staticEntry struct {
	set  oai.Set
	view datastore.View
}

// New creates a Registry over ds with the given static sets. Static sets
// are ordered by name using locale-independent collation so listings are
// stable across environments.
func New(ds datastore.DataStore, static []oai.Set) Registry {
	entries := make([]staticEntry, len(static))
	byName := make(map[string]datastore.View, len(static))
	for i, s := range static {
		view := datastore.SetView(s.SetSpec)
		entries[i] = staticEntry{set: s, view: view}
		byName[s.SetSpec] = view
	}

	coll := collate.New(language.Und)
	slices.SortStableFunc(entries, func(a, b staticEntry) int {
		return coll.CompareString(a.set.SetName, b.set.SetName)
	})

	return &registry{ds: ds, static: entries, byName: byName}
}

// List implements Registry.
func (r *registry) List(ctx context.Context, offset, count int) ([]oai.Set, error) {
	sets := []oai.Set{}
	if offset < len(r.static) {
		end := offset + count
		if end > len(r.static) {
			end = len(r.static)
		}
		for _, entry := range r.static[offset:end] {
			sets = append(sets, entry.set)
		}
	}

	if len(sets) < count {
		journals, err := r.ds.ListJournals(ctx,
			translateVirtualOffset(len(r.static), offset), count-len(sets))
		if err != nil {
			return nil, fmt.Errorf("list dynamic sets: %w", err)
		}
		for _, j := range journals {
			sets = append(sets, journalSet(j))
		}
	}

	return sets, nil
}

// GetView implements Registry. Static sets win over journal-derived ones
// with the same spec.
func (r *registry) GetView(ctx context.Context, setSpec string) (datastore.View, error) {
	if view, ok := r.byName[setSpec]; ok {
		return view, nil
	}

	_, err := r.ds.GetJournal(ctx, setSpec)
	if errors.Is(err, datastore.ErrNotFound) {
		return nil, ErrNoSuchSet
	}
	if err != nil {
		return nil, fmt.Errorf("resolve set %q: %w", setSpec, err)
	}
	return datastore.SetView(setSpec), nil
}

// translateVirtualOffset discards the interval consumed by the static
// sets, yielding the offset to use against the dynamic ones.
func translateVirtualOffset(size, offset int) int {
	real := offset - size
	if real <= 0 {
		return 0
	}
	return real
}

func journalSet(j datastore.Journal) oai.Set {
	return oai.Set{SetSpec: j.LeadISSN, SetName: j.Title}
}
