package sets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustavofonseca/oai-pmh/internal/datastore"
	"github.com/gustavofonseca/oai-pmh/internal/oai"
)

func seedRegistry(t *testing.T) Registry {
	t.Helper()
	ds := datastore.NewInMemory()
	ctx := context.Background()

	require.NoError(t, ds.AddJournal(ctx, datastore.Journal{
		Title: "Memórias do Instituto Oswaldo Cruz", LeadISSN: "0074-0276"}))
	require.NoError(t, ds.AddJournal(ctx, datastore.Journal{
		Title: "Anais da Academia Brasileira de Ciências", LeadISSN: "0001-3765"}))

	require.NoError(t, ds.Add(ctx, oai.Resource{
		RIdentifier: "oai:books:a", Datestamp: "2012-01-01", SetSpec: []string{"books"}}))
	require.NoError(t, ds.Add(ctx, oai.Resource{
		RIdentifier: "oai:art:b", Datestamp: "2012-02-01", SetSpec: []string{"0074-0276"}}))

	return New(ds, []oai.Set{
		{SetSpec: "reviews", SetName: "Review articles"},
		{SetSpec: "books", SetName: "Books"},
	})
}

func TestList_StaticSetsFirstSortedByName(t *testing.T) {
	reg := seedRegistry(t)

	sets, err := reg.List(context.Background(), 0, 10)
	require.NoError(t, err)

	require.Len(t, sets, 4)
	assert.Equal(t, "Books", sets[0].SetName)
	assert.Equal(t, "Review articles", sets[1].SetName)
	// Dynamic sets follow, ordered by lead ISSN.
	assert.Equal(t, "0001-3765", sets[2].SetSpec)
	assert.Equal(t, "0074-0276", sets[3].SetSpec)
}

func TestList_WindowSpansStaticAndDynamic(t *testing.T) {
	reg := seedRegistry(t)

	sets, err := reg.List(context.Background(), 1, 2)
	require.NoError(t, err)

	require.Len(t, sets, 2)
	assert.Equal(t, "reviews", sets[0].SetSpec)
	assert.Equal(t, "0001-3765", sets[1].SetSpec)
}

func TestList_OffsetPastStaticReachesDynamic(t *testing.T) {
	reg := seedRegistry(t)

	sets, err := reg.List(context.Background(), 3, 10)
	require.NoError(t, err)

	require.Len(t, sets, 1)
	assert.Equal(t, "0074-0276", sets[0].SetSpec)
}

func TestList_OffsetPastEverything(t *testing.T) {
	reg := seedRegistry(t)

	sets, err := reg.List(context.Background(), 50, 10)
	require.NoError(t, err)
	assert.Empty(t, sets)
}

func TestGetView_StaticSet(t *testing.T) {
	reg := seedRegistry(t)
	ds := datastore.NewInMemory()
	ctx := context.Background()
	require.NoError(t, ds.Add(ctx, oai.Resource{
		RIdentifier: "oai:books:a", Datestamp: "2012-01-01", SetSpec: []string{"books"}}))
	require.NoError(t, ds.Add(ctx, oai.Resource{
		RIdentifier: "oai:art:b", Datestamp: "2012-02-01"}))

	view, err := reg.GetView(ctx, "books")
	require.NoError(t, err)

	page, err := ds.List(ctx, datastore.ListQuery{Count: 10}, view)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "oai:books:a", page[0].RIdentifier)
}

func TestGetView_JournalDerivedSet(t *testing.T) {
	reg := seedRegistry(t)

	view, err := reg.GetView(context.Background(), "0074-0276")
	require.NoError(t, err)
	assert.NotNil(t, view)
}

func TestGetView_UnknownSet(t *testing.T) {
	reg := seedRegistry(t)

	_, err := reg.GetView(context.Background(), "9999-9999")
	assert.ErrorIs(t, err, ErrNoSuchSet)
}
