package datastore

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/gustavofonseca/oai-pmh/internal/oai"
)

// InMemory is a map-backed DataStore. It backs tests and the one-shot CLI
// tooling; it is not meant to hold production-sized collections.
type InMemory struct {
	mu        sync.RWMutex
	resources map[string]oai.Resource
	journals  map[string]Journal
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{
		resources: make(map[string]oai.Resource),
		journals:  make(map[string]Journal),
	}
}

// Add implements DataStore.
func (m *InMemory) Add(_ context.Context, res oai.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources[res.RIdentifier] = res
	return nil
}

// Get implements DataStore.
func (m *InMemory) Get(_ context.Context, ridentifier string) (oai.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res, ok := m.resources[ridentifier]
	if !ok {
		return oai.Resource{}, ErrNotFound
	}
	return res, nil
}

// List implements DataStore. Both date bounds are inclusive, so the
// year-capped windows the cursor derives tile the full range with no
// skipped or duplicated records.
func (m *InMemory) List(_ context.Context, q ListQuery, view View) ([]oai.Resource, error) {
	if view != nil {
		view(&q)
	}

	m.mu.RLock()
	matched := make([]oai.Resource, 0, len(m.resources))
	for _, res := range m.resources {
		if q.From != "" && res.Datestamp < q.From {
			continue
		}
		if q.Until != "" && res.Datestamp > q.Until {
			continue
		}
		if q.SetSpec != "" && !slices.Contains(res.SetSpec, q.SetSpec) {
			continue
		}
		matched = append(matched, res)
	}
	m.mu.RUnlock()

	slices.SortFunc(matched, func(a, b oai.Resource) int {
		if c := strings.Compare(a.Datestamp, b.Datestamp); c != 0 {
			return c
		}
		return strings.Compare(a.RIdentifier, b.RIdentifier)
	})

	return window(matched, q.Offset, q.Count), nil
}

// AddJournal implements DataStore.
func (m *InMemory) AddJournal(_ context.Context, j Journal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journals[j.LeadISSN] = j
	return nil
}

// GetJournal implements DataStore.
func (m *InMemory) GetJournal(_ context.Context, issn string) (Journal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.journals[issn]
	if !ok {
		return Journal{}, ErrNotFound
	}
	return j, nil
}

// ListJournals implements DataStore.
func (m *InMemory) ListJournals(_ context.Context, offset, count int) ([]Journal, error) {
	m.mu.RLock()
	journals := make([]Journal, 0, len(m.journals))
	for _, j := range m.journals {
		journals = append(journals, j)
	}
	m.mu.RUnlock()

	slices.SortFunc(journals, func(a, b Journal) int {
		return strings.Compare(a.LeadISSN, b.LeadISSN)
	})

	return window(journals, offset, count), nil
}

// window slices one offset/count page out of items, clamping at the ends.
func window[T any](items []T, offset, count int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + count
	if count <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
