package api

import (
	"context"

	"studioflow-api/domain"
	"studioflow-api/storage"
)

// Store is the slice of the key-value contract handlers depend on. Every
// implementation in the storage package satisfies it.
type Store interface {
	Get(ctx context.Context, key string, out any) error
	Put(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	ScanPrefix(ctx context.Context, prefix string) ([]storage.Record, error)
}

// Authenticator resolves a bearer credential to a verified caller id.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}

// Publisher fans recorded activity out to downstream consumers. May be nil
// when no queue is configured.
type Publisher interface {
	Publish(ctx context.Context, act domain.Activity) error
}

// Deduper tracks idempotency keys for create operations.
type Deduper interface {
	// Add records the idempotency key and returns true if it was newly added.
	Add(ctx context.Context, userID, key string) (bool, error)
	// Remove deletes a previously added key, used when the create fails.
	Remove(ctx context.Context, userID, key string) error
}
