package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("not found")

// Record is a stored value and the key it was found under. Data holds the
// value's JSON payload exactly as persisted.
type Record struct {
	Key  string
	Data []byte
}

// KV is the key-value contract every handler is written against: point
// get/put/delete plus prefix scans. Put replaces the stored value wholesale;
// merge semantics belong to callers. There is no multi-key atomicity:
// invariants spanning two keys are maintained by sequential writes, and a
// crash between them leaves the store inconsistent until a later write
// touches the same entities.
type KV interface {
	Get(ctx context.Context, key string, out any) error
	Put(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	ScanPrefix(ctx context.Context, prefix string) ([]Record, error)
}
