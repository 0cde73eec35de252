package requests

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

func addBook(t *testing.T, store docstore.Store, title string) string {
	t.Helper()
	id, err := store.Add(context.Background(), docstore.Collection(docstore.CollectionBooks), docstore.Fields{
		"title":  title,
		"status": models.BookAvailable,
	})
	require.NoError(t, err)
	return id
}

func getBook(t *testing.T, store docstore.Store, id string) docstore.Fields {
	t.Helper()
	snap, err := store.Get(context.Background(), docstore.Doc(docstore.CollectionBooks, id))
	require.NoError(t, err)
	require.True(t, snap.Exists())
	return snap.Data()
}

func TestCreateValidation(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	var verr *ValidationError

	_, err := svc.Create(ctx, CreateInput{RequesterID: "u1", DonorID: "u2"})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "bookId", verr.Field)

	_, err = svc.Create(ctx, CreateInput{BookID: "b1", DonorID: "u2"})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "requesterId", verr.Field)

	_, err = svc.Create(ctx, CreateInput{BookID: "b1", RequesterID: "u1"})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "donorId", verr.Field)
}

func TestCreateMarksBookRequested(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	bookID := addBook(t, store, "Dune")

	reqID, err := svc.Create(ctx, CreateInput{BookID: bookID, RequesterID: "u1", DonorID: "u2"})
	require.NoError(t, err)
	require.NotEmpty(t, reqID)

	book := getBook(t, store, bookID)
	require.Equal(t, models.BookRequested, book["status"])
	require.Equal(t, reqID, book["requestId"])

	snap, err := store.Get(ctx, docstore.Doc(docstore.CollectionRequests, reqID))
	require.NoError(t, err)
	require.True(t, snap.Exists())
	require.Equal(t, models.RequestPending, snap.Data()["status"])
}

func TestCreateWithMissingBookStillSucceeds(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	reqID, err := svc.Create(ctx, CreateInput{BookID: "ghost-book", RequesterID: "u1", DonorID: "u2"})
	require.NoError(t, err)
	require.NotEmpty(t, reqID)

	snap, err := store.Get(ctx, docstore.Doc(docstore.CollectionRequests, reqID))
	require.NoError(t, err)
	require.True(t, snap.Exists(), "request exists even though its book does not")

	// no book was created or mutated as a side effect
	ghost, err := store.Get(ctx, docstore.Doc(docstore.CollectionBooks, "ghost-book"))
	require.NoError(t, err)
	require.False(t, ghost.Exists())
}

func TestApproveReservesBook(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	bookID := addBook(t, store, "Dune")
	reqID, err := svc.Create(ctx, CreateInput{BookID: bookID, RequesterID: "u1", DonorID: "u2"})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, reqID, models.RequestApproved))

	snap, err := store.Get(ctx, docstore.Doc(docstore.CollectionRequests, reqID))
	require.NoError(t, err)
	require.Equal(t, models.RequestApproved, snap.Data()["status"])
	require.NotEmpty(t, snap.Data()["updatedAt"])

	book := getBook(t, store, bookID)
	require.Equal(t, models.BookReserved, book["status"])
	require.Equal(t, reqID, book["requestId"], "approval leaves the back-reference in place")
}

func TestCompleteChecksBookOut(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	bookID := addBook(t, store, "Hatchet")
	reqID, err := svc.Create(ctx, CreateInput{BookID: bookID, RequesterID: "u1", DonorID: "u2"})
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(ctx, reqID, models.RequestApproved))

	require.NoError(t, svc.UpdateStatus(ctx, reqID, models.RequestCompleted))

	book := getBook(t, store, bookID)
	require.Equal(t, models.BookCheckedOut, book["status"])
}

func TestCancelFreesBook(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	bookID := addBook(t, store, "Holes")
	reqID, err := svc.Create(ctx, CreateInput{BookID: bookID, RequesterID: "u1", DonorID: "u2"})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, reqID))

	snap, err := store.Get(ctx, docstore.Doc(docstore.CollectionRequests, reqID))
	require.NoError(t, err)
	require.Equal(t, models.RequestCancelled, snap.Data()["status"])

	book := getBook(t, store, bookID)
	require.Equal(t, models.BookAvailable, book["status"])
	require.Nil(t, book["requestId"], "back-reference cleared")
}

func TestRejectFreesBook(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	bookID := addBook(t, store, "The Giver")
	reqID, err := svc.Create(ctx, CreateInput{BookID: bookID, RequesterID: "u1", DonorID: "u2"})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, reqID, models.RequestRejected))

	book := getBook(t, store, bookID)
	require.Equal(t, models.BookAvailable, book["status"])
	require.Nil(t, book["requestId"])
}

func TestUpdateStatusUnknownRequest(t *testing.T) {
	svc, _ := setup(t)

	err := svc.UpdateStatus(context.Background(), "no-such-request", models.RequestApproved)
	require.True(t, errors.Is(err, docstore.ErrNotFound))
}

func TestUnrecognizedStatusSkipsBookSideEffect(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	bookID := addBook(t, store, "A Wrinkle in Time")
	reqID, err := svc.Create(ctx, CreateInput{BookID: bookID, RequesterID: "u1", DonorID: "u2"})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, reqID, "on_hold"))

	snap, err := store.Get(ctx, docstore.Doc(docstore.CollectionRequests, reqID))
	require.NoError(t, err)
	require.Equal(t, "on_hold", snap.Data()["status"], "the request record takes any status")

	book := getBook(t, store, bookID)
	require.Equal(t, models.BookRequested, book["status"], "the book is left alone")
}

func TestForUserPartitionsByRole(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	b1 := addBook(t, store, "Dune")
	b2 := addBook(t, store, "Foundation")
	b3 := addBook(t, store, "Hyperion")

	r1, err := svc.Create(ctx, CreateInput{BookID: b1, RequesterID: "alice", DonorID: "bob"})
	require.NoError(t, err)
	r2, err := svc.Create(ctx, CreateInput{BookID: b2, RequesterID: "carol", DonorID: "alice"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{BookID: b3, RequesterID: "carol", DonorID: "bob"})
	require.NoError(t, err)

	got, err := svc.ForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got.Made, 1)
	require.Equal(t, r1, got.Made[0].ID)
	require.Equal(t, "bob", got.Made[0].DonorID)
	require.Len(t, got.Received, 1)
	require.Equal(t, r2, got.Received[0].ID)
	require.Equal(t, "carol", got.Received[0].RequesterID)
}

func TestForUserValidation(t *testing.T) {
	svc, _ := setup(t)

	var verr *ValidationError
	_, err := svc.ForUser(context.Background(), "")
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "userId", verr.Field)
}
