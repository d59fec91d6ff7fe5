package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that have already been handled so a
// repeated client submission is not applied twice
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release forgets a key, used when the guarded request failed
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
