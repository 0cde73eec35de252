package books

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookbuddy/go-services/internal/docstore"
	"github.com/bookbuddy/go-services/internal/kv"
	"github.com/bookbuddy/go-services/internal/models"
)

func setup(t *testing.T) (*Service, docstore.Store) {
	t.Helper()
	kvs, err := kv.NewFileStore(t.TempDir())
	require.NoError(t, err)
	store, err := docstore.NewLocalStore(context.Background(), kvs, "bookbuddy")
	require.NoError(t, err)
	return NewService(store), store
}

func TestAllReturnsSeededCatalog(t *testing.T) {
	svc, _ := setup(t)

	got := svc.All(context.Background())
	require.Len(t, got, len(docstore.SeedBooks()))
	for _, b := range got {
		require.NotEmpty(t, b.ID)
		require.NotEmpty(t, b.Title)
		require.Equal(t, models.BookAvailable, b.Status)
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	_, err := store.Add(ctx, docstore.Collection(docstore.CollectionBooks), docstore.Fields{
		"title": "Dune", "author": "Frank Herbert", "status": models.BookAvailable,
	})
	require.NoError(t, err)
	_, err = store.Add(ctx, docstore.Collection(docstore.CollectionBooks), docstore.Fields{
		"title": "Foundation", "author": "Isaac Asimov", "status": models.BookAvailable,
	})
	require.NoError(t, err)

	got := svc.Search(ctx, "dune")
	require.Len(t, got, 1)
	require.Equal(t, "Dune", got[0].Title)

	got = svc.Search(ctx, "  DUNE  ")
	require.Len(t, got, 1, "term is trimmed and lowercased")
}

func TestSearchMatchesAnyOfTitleAuthorDescription(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	_, err := store.Add(ctx, docstore.Collection(docstore.CollectionBooks), docstore.Fields{
		"title": "Untitled", "author": "Ursula K. Le Guin", "status": models.BookAvailable,
	})
	require.NoError(t, err)

	got := svc.Search(ctx, "le guin")
	require.Len(t, got, 1)
	require.Equal(t, "Ursula K. Le Guin", got[0].Author)

	// description matches too; the seeded Hatchet mentions the wilderness
	got = svc.Search(ctx, "wilderness")
	require.Len(t, got, 1)
	require.Equal(t, "Hatchet", got[0].Title)
}

func TestSearchEmptyTermReturnsEverything(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	all := svc.All(ctx)
	require.Equal(t, all, svc.Search(ctx, ""))
	require.Equal(t, all, svc.Search(ctx, "   "))
}

// failingStore simulates a broken backend for the degraded read path.
type failingStore struct{}

var errBroken = errors.New("backend exploded")

func (failingStore) Add(context.Context, docstore.CollectionRef, docstore.Fields) (string, error) {
	return "", errBroken
}
func (failingStore) Get(context.Context, docstore.DocRef) (docstore.DocumentSnapshot, error) {
	return docstore.DocumentSnapshot{}, errBroken
}
func (failingStore) GetAll(context.Context, docstore.Query) (docstore.QuerySnapshot, error) {
	return docstore.QuerySnapshot{}, errBroken
}
func (failingStore) Update(context.Context, docstore.DocRef, docstore.Fields) error {
	return errBroken
}
func (failingStore) Delete(context.Context, docstore.DocRef) error {
	return errBroken
}

func TestReadPathSwallowsFailures(t *testing.T) {
	svc := NewService(failingStore{})
	ctx := context.Background()

	require.Empty(t, svc.All(ctx))
	require.Empty(t, svc.Search(ctx, "dune"))
}
