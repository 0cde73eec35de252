package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/bookbuddy/go-services/internal/kv"
	"github.com/bookbuddy/go-services/pkg/logger"
	"github.com/bookbuddy/go-services/pkg/metrics"
)

// LocalStore is the device-local emulation of the hosted document database.
// Each collection is one serialized snapshot in the key/value store under
// "<namespace>_<collection>"; every mutation loads the snapshot, rewrites it
// and saves it back whole.
//
// A single mutex serializes operations. Two LocalStore instances over the
// same key/value data are last-writer-wins at snapshot granularity: there is
// no document-level locking and no optimistic concurrency. This is only
// acceptable because the surrounding system is single-user, single-device;
// it is NOT safe for multi-writer use.
type LocalStore struct {
	mu        sync.Mutex
	kv        kv.Store
	namespace string
}

// NewLocalStore wires the emulation to a key/value store. On the first ever
// use of a namespace the books collection is bootstrapped from the embedded
// seed catalog; later constructions find the snapshot key and never re-seed,
// even if every book has been deleted since.
func NewLocalStore(ctx context.Context, kvs kv.Store, namespace string) (*LocalStore, error) {
	if namespace == "" {
		namespace = "bookbuddy"
	}
	s := &LocalStore{kv: kvs, namespace: namespace}
	if err := s.seedBooks(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *LocalStore) key(collection string) string {
	return s.namespace + "_" + collection
}

func (s *LocalStore) seedBooks(ctx context.Context) error {
	key := s.key(CollectionBooks)
	_, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("probe %s: %w", key, err)
	}
	if ok {
		return nil
	}
	books := SeedBooks()
	if err := s.save(ctx, CollectionBooks, books); err != nil {
		return fmt.Errorf("seed books: %w", err)
	}
	metrics.SeededCollections.Inc()
	logger.Infof("seeded %s with %d starter books", key, len(books))
	return nil
}

func (s *LocalStore) load(ctx context.Context, collection string) ([]Fields, error) {
	raw, ok, err := s.kv.Get(ctx, s.key(collection))
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Fields{}, nil
	}
	var docs []Fields
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		return nil, fmt.Errorf("corrupt snapshot for %s: %w", collection, err)
	}
	return docs, nil
}

func (s *LocalStore) save(ctx context.Context, collection string, docs []Fields) error {
	b, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encode snapshot for %s: %w", collection, err)
	}
	return s.kv.Set(ctx, s.key(collection), string(b))
}

func (s *LocalStore) Add(ctx context.Context, col CollectionRef, data Fields) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.StoreOperations.WithLabelValues("add", "local").Inc()

	docs, err := s.load(ctx, col.Name)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("add", "local").Inc()
		return "", err
	}

	doc := cloneFields(data)
	doc[FieldID] = nextID()
	doc[FieldCreatedAt] = timestamp()
	docs = append(docs, doc)

	if err := s.save(ctx, col.Name, docs); err != nil {
		metrics.StoreErrors.WithLabelValues("add", "local").Inc()
		return "", err
	}
	return doc[FieldID].(string), nil
}

func (s *LocalStore) Get(ctx context.Context, ref DocRef) (DocumentSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.StoreOperations.WithLabelValues("get", "local").Inc()

	docs, err := s.load(ctx, ref.Collection)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("get", "local").Inc()
		return DocumentSnapshot{}, err
	}
	for _, doc := range docs {
		if doc[FieldID] == ref.ID {
			return DocumentSnapshot{ID: ref.ID, fields: doc}, nil
		}
	}
	return DocumentSnapshot{ID: ref.ID}, nil
}

func (s *LocalStore) GetAll(ctx context.Context, q Query) (QuerySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.StoreOperations.WithLabelValues("list", "local").Inc()

	docs, err := s.load(ctx, q.Collection.Name)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("list", "local").Inc()
		return QuerySnapshot{}, err
	}

	snaps := make([]DocumentSnapshot, 0, len(docs))
	for _, doc := range docs {
		if !matchFilters(doc, q.Filters) {
			continue
		}
		id, _ := doc[FieldID].(string)
		snaps = append(snaps, DocumentSnapshot{ID: id, fields: doc})
	}
	return QuerySnapshot{Docs: snaps, Empty: len(snaps) == 0, Size: len(snaps)}, nil
}

func (s *LocalStore) Update(ctx context.Context, ref DocRef, data Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.StoreOperations.WithLabelValues("update", "local").Inc()

	docs, err := s.load(ctx, ref.Collection)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("update", "local").Inc()
		return err
	}
	for i, doc := range docs {
		if doc[FieldID] != ref.ID {
			continue
		}
		merged := cloneFields(doc)
		for k, v := range data {
			merged[k] = v
		}
		merged[FieldUpdatedAt] = timestamp()
		docs[i] = merged
		if err := s.save(ctx, ref.Collection, docs); err != nil {
			metrics.StoreErrors.WithLabelValues("update", "local").Inc()
			return err
		}
		return nil
	}
	return ErrNotFound
}

func (s *LocalStore) Delete(ctx context.Context, ref DocRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.StoreOperations.WithLabelValues("delete", "local").Inc()

	docs, err := s.load(ctx, ref.Collection)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("delete", "local").Inc()
		return err
	}
	kept := docs[:0]
	for _, doc := range docs {
		if doc[FieldID] != ref.ID {
			kept = append(kept, doc)
		}
	}
	// deleting a missing id is a no-op, not an error
	if err := s.save(ctx, ref.Collection, kept); err != nil {
		metrics.StoreErrors.WithLabelValues("delete", "local").Inc()
		return err
	}
	return nil
}
