// Package kv provides the string key/value store behind the local document
// store emulation. Values are whole-collection snapshots; a write replaces
// the previous value in a single operation.
package kv

import "context"

// Store is a persistent string-keyed store. Get reports ok=false when the
// key has never been written. Implementations assume a single logical writer.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}
