// Package books is the read-only catalog facade used by listing and search
// views.
package books

import (
	"context"
	"strings"

	"github.com/bookbuddy/go-services/internal/docstore"
	"github.com/bookbuddy/go-services/internal/models"
	"github.com/bookbuddy/go-services/pkg/logger"
)

type Service struct {
	store docstore.Store
}

func NewService(store docstore.Store) *Service {
	return &Service{store: store}
}

// All returns every book in the catalog. Any underlying failure degrades to
// an empty result: a listing view showing nothing beats one that crashes.
func (s *Service) All(ctx context.Context) []models.Book {
	snap, err := s.store.GetAll(ctx, docstore.Collection(docstore.CollectionBooks).All())
	if err != nil {
		logger.Errorf("list books: %v", err)
		return []models.Book{}
	}
	out := make([]models.Book, 0, snap.Size)
	for _, d := range snap.Docs {
		b, err := models.FromFields[models.Book](d.Data())
		if err != nil {
			logger.Warnf("skipping undecodable book %s: %v", d.ID, err)
			continue
		}
		b.ID = d.ID
		out = append(out, b)
	}
	return out
}

// Search filters the catalog by a case-insensitive substring match over
// title, author and description. An empty or whitespace term returns the
// whole catalog. The match runs client-side over the full result set; there
// is no indexed search in either backend.
func (s *Service) Search(ctx context.Context, term string) []models.Book {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return s.All(ctx)
	}

	matched := []models.Book{}
	for _, b := range s.All(ctx) {
		if strings.Contains(strings.ToLower(b.Title), term) ||
			strings.Contains(strings.ToLower(b.Author), term) ||
			strings.Contains(strings.ToLower(b.Description), term) {
			matched = append(matched, b)
		}
	}
	return matched
}
