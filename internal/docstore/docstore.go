// Package docstore is the document database boundary of BookBuddy.
//
// It exposes the same surface regardless of which backend is active: the
// hosted document database (Mongo) or the device-local emulation persisting
// whole-collection snapshots through a key/value store. Calling code is
// agnostic to the choice; the two implementations are observationally
// equivalent for every operation of the Store interface.
package docstore

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"sync"
	"time"
)

// Collection names used by the services. Fixed, not configurable per call.
const (
	CollectionBooks    = "books"
	CollectionRequests = "requests"
)

// System-assigned field names. Callers never set these; the store does.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

var (
	// ErrNotFound is returned when an operation requires the target
	// document to exist (Update). Reads report absence via the snapshot.
	ErrNotFound = errors.New("document not found")

	// ErrBackendUnavailable is returned once, at store construction, when
	// the selected persistence backend cannot be initialized.
	ErrBackendUnavailable = errors.New("document store backend unavailable")
)

// Fields is the raw field map of a document.
type Fields map[string]any

// CollectionRef addresses a collection. It carries no data.
type CollectionRef struct {
	Name string
}

func Collection(name string) CollectionRef {
	return CollectionRef{Name: name}
}

// DocRef addresses a single document within a collection.
type DocRef struct {
	Collection string
	ID         string
}

func Doc(collection, id string) DocRef {
	return DocRef{Collection: collection, ID: id}
}

// Filter is a single query predicate. Operators: ==, !=, >, <.
// An unrecognized operator matches every document; the engine is
// permissive by design and this carries over from the source system.
type Filter struct {
	Field string
	Op    string
	Value any
}

func Where(field, op string, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// Query is a collection reference plus AND-combined filters. A query with
// no filters matches the whole collection. Queries are stateless values;
// evaluating one never mutates the store.
type Query struct {
	Collection CollectionRef
	Filters    []Filter
}

func NewQuery(ref CollectionRef, filters ...Filter) Query {
	return Query{Collection: ref, Filters: filters}
}

// All is shorthand for the query matching every document of the collection.
func (c CollectionRef) All() Query {
	return NewQuery(c)
}

// DocumentSnapshot is a point-in-time read result. Absence is a valid,
// observable state, not an error.
type DocumentSnapshot struct {
	ID     string
	fields Fields
}

func (s DocumentSnapshot) Exists() bool {
	return s.fields != nil
}

// Data returns the document fields, or nil when the document does not exist.
func (s DocumentSnapshot) Data() Fields {
	return s.fields
}

// QuerySnapshot is the result of evaluating a query, in collection order.
type QuerySnapshot struct {
	Docs  []DocumentSnapshot
	Empty bool
	Size  int
}

// Store is the document store contract shared by both backends.
type Store interface {
	// Add appends a new document with a store-assigned unique id and
	// createdAt stamp and returns the id. The caller's map is not mutated.
	Add(ctx context.Context, col CollectionRef, data Fields) (string, error)

	// Get reads a single document. A missing document yields a snapshot
	// with Exists() == false and a nil error.
	Get(ctx context.Context, ref DocRef) (DocumentSnapshot, error)

	// GetAll evaluates a query. Filters apply in sequence, logical AND.
	GetAll(ctx context.Context, q Query) (QuerySnapshot, error)

	// Update shallow-merges data over the existing fields and stamps
	// updatedAt. Returns ErrNotFound when the document is absent.
	Update(ctx context.Context, ref DocRef, data Fields) error

	// Delete removes the document if present. Absence is a no-op.
	Delete(ctx context.Context, ref DocRef) error
}

var (
	idMu   sync.Mutex
	lastID int64
)

// nextID derives a unique document id from the wall clock, in the same
// decimal shape the source system assigns. Concurrent calls within one
// process are disambiguated by bumping past the previous id.
func nextID() string {
	idMu.Lock()
	defer idMu.Unlock()
	now := time.Now().UnixNano()
	if now <= lastID {
		now = lastID + 1
	}
	lastID = now
	return strconv.FormatInt(now, 10)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// matchFilters reports whether a document survives every filter.
func matchFilters(doc Fields, filters []Filter) bool {
	for _, f := range filters {
		if !matchFilter(doc, f) {
			return false
		}
	}
	return true
}

func matchFilter(doc Fields, f Filter) bool {
	v, ok := doc[f.Field]
	switch f.Op {
	case "==":
		return ok && looseEqual(v, f.Value)
	case "!=":
		return !ok || !looseEqual(v, f.Value)
	case ">":
		return ok && looseLess(f.Value, v)
	case "<":
		return ok && looseLess(v, f.Value)
	}
	// unknown operators match everything
	return true
}

// looseEqual compares across the numeric types JSON and BSON decoding
// produce (int, int32, int64, float64).
func looseEqual(a, b any) bool {
	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if aok && bok {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func looseLess(a, b any) bool {
	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if aok && bok {
		return fa < fb
	}
	sa, aok := a.(string)
	sb, bok := b.(string)
	if aok && bok {
		return sa < sb
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func cloneFields(f Fields) Fields {
	out := make(Fields, len(f)+2)
	for k, v := range f {
		out[k] = v
	}
	return out
}
