// Package requests orchestrates the loan request lifecycle and keeps the
// requests and books collections consistent under status transitions.
//
// There is no cross-collection transaction in either store backend. A
// request whose book disappears between steps is tolerated and reported,
// not rolled back; this soft consistency is inherited from the source
// system and is deliberate.
package requests

import (
	"context"
	"fmt"
	"sync"

	"github.com/bookbuddy/go-services/internal/docstore"
	"github.com/bookbuddy/go-services/internal/models"
	"github.com/bookbuddy/go-services/pkg/logger"
	"github.com/bookbuddy/go-services/pkg/metrics"
)

// ValidationError reports a required input field that was missing. It is
// raised before any I/O.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "missing required field: " + e.Field
}

// Service is the request lifecycle manager.
type Service struct {
	store docstore.Store
}

func NewService(store docstore.Store) *Service {
	return &Service{store: store}
}

// CreateInput carries the data for a new loan request.
type CreateInput struct {
	BookID      string
	RequesterID string
	DonorID     string
	Message     string
}

// Create adds a pending request and, when the referenced book exists, marks
// the book as requested and stamps it with the new request id. A missing
// book does not fail the call: the request stands and the gap is logged.
func (s *Service) Create(ctx context.Context, in CreateInput) (string, error) {
	switch {
	case in.BookID == "":
		return "", &ValidationError{Field: "bookId"}
	case in.RequesterID == "":
		return "", &ValidationError{Field: "requesterId"}
	case in.DonorID == "":
		return "", &ValidationError{Field: "donorId"}
	}

	id, err := s.store.Add(ctx, docstore.Collection(docstore.CollectionRequests), docstore.Fields{
		"bookId":      in.BookID,
		"requesterId": in.RequesterID,
		"donorId":     in.DonorID,
		"message":     in.Message,
		"status":      models.RequestPending,
	})
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	bookRef := docstore.Doc(docstore.CollectionBooks, in.BookID)
	snap, err := s.store.Get(ctx, bookRef)
	if err != nil {
		return "", err
	}
	if !snap.Exists() {
		logger.Infof("book %s not found; request %s created without a book update", in.BookID, id)
		metrics.OrphanedRequests.Inc()
		return id, nil
	}

	if err := s.store.Update(ctx, bookRef, docstore.Fields{
		"status":    models.BookRequested,
		"requestId": id,
	}); err != nil {
		return "", err
	}
	return id, nil
}

// UserRequests partitions a user's requests by role. The same request can
// appear in both slices if a user is somehow requester and donor at once;
// nothing prevents that here.
type UserRequests struct {
	Made     []models.Request
	Received []models.Request
}

// ForUser fetches the requests the user made and the ones they received,
// running the two queries concurrently.
func (s *Service) ForUser(ctx context.Context, userID string) (*UserRequests, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "userId"}
	}

	col := docstore.Collection(docstore.CollectionRequests)
	var (
		wg                sync.WaitGroup
		made, received    []models.Request
		madeErr, recvdErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		made, madeErr = s.queryRequests(ctx, docstore.NewQuery(col, docstore.Where("requesterId", "==", userID)))
	}()
	go func() {
		defer wg.Done()
		received, recvdErr = s.queryRequests(ctx, docstore.NewQuery(col, docstore.Where("donorId", "==", userID)))
	}()
	wg.Wait()

	if madeErr != nil {
		return nil, madeErr
	}
	if recvdErr != nil {
		return nil, recvdErr
	}
	return &UserRequests{Made: made, Received: received}, nil
}

func (s *Service) queryRequests(ctx context.Context, q docstore.Query) ([]models.Request, error) {
	snap, err := s.store.GetAll(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]models.Request, 0, snap.Size)
	for _, d := range snap.Docs {
		r, err := models.FromFields[models.Request](d.Data())
		if err != nil {
			return nil, fmt.Errorf("decode request %s: %w", d.ID, err)
		}
		r.ID = d.ID
		out = append(out, r)
	}
	return out, nil
}

// UpdateStatus writes the new request status, then applies the book side
// effect: approved reserves the book, completed checks it out, rejected and
// cancelled free it and clear its request back-reference. A status outside
// the known set updates the request record only; this gap matches the
// source behavior and stays.
func (s *Service) UpdateStatus(ctx context.Context, requestID, newStatus string) error {
	reqRef := docstore.Doc(docstore.CollectionRequests, requestID)
	snap, err := s.store.Get(ctx, reqRef)
	if err != nil {
		return err
	}
	if !snap.Exists() {
		return fmt.Errorf("request %s: %w", requestID, docstore.ErrNotFound)
	}
	req, err := models.FromFields[models.Request](snap.Data())
	if err != nil {
		return fmt.Errorf("decode request %s: %w", requestID, err)
	}

	if err := s.store.Update(ctx, reqRef, docstore.Fields{"status": newStatus}); err != nil {
		return err
	}
	metrics.RequestTransitions.WithLabelValues(newStatus).Inc()

	// The book is addressed by the stored bookId without re-checking that
	// it still exists; a missing book surfaces as the store's not-found.
	bookRef := docstore.Doc(docstore.CollectionBooks, req.BookID)
	switch newStatus {
	case models.RequestApproved:
		return s.store.Update(ctx, bookRef, docstore.Fields{"status": models.BookReserved})
	case models.RequestCompleted:
		return s.store.Update(ctx, bookRef, docstore.Fields{"status": models.BookCheckedOut})
	case models.RequestRejected, models.RequestCancelled:
		return s.store.Update(ctx, bookRef, docstore.Fields{
			"status":    models.BookAvailable,
			"requestId": nil,
		})
	}
	return nil
}

// Cancel is the requester-side convenience wrapper around UpdateStatus.
func (s *Service) Cancel(ctx context.Context, requestID string) error {
	return s.UpdateStatus(ctx, requestID, models.RequestCancelled)
}
