package models

import (
	"encoding/json"
	"fmt"

	"github.com/bookbuddy/go-services/internal/docstore"
)

// FromFields decodes a raw document into a typed model through its JSON
// tags. The store keeps untyped field maps; typing happens only at this
// boundary.
func FromFields[T any](fields docstore.Fields) (T, error) {
	var out T
	b, err := json.Marshal(fields)
	if err != nil {
		return out, fmt.Errorf("encode fields: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("decode into %T: %w", out, err)
	}
	return out, nil
}

// ToFields converts a typed model into the raw field map the store expects.
func ToFields(v any) (docstore.Fields, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	var fields docstore.Fields
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return fields, nil
}
