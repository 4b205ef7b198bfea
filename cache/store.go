package cache

import (
	"context"
	"time"

	"github.com/goliatone/go-menu-cache/internal/cacheinfra"
)

var (
	// ErrClosed is returned by a Store after Close.
	ErrClosed = cacheinfra.ErrClosed
	// ErrUnavailable is returned when the backend cannot be reached.
	ErrUnavailable = cacheinfra.ErrUnavailable
)

// Store is the minimal read-through cache capability set.
// Values are serialized text; implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value under key. A missing or expired key reports
	// ok=false with a nil error.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key for ttl, overwriting silently. A non-positive
	// ttl uses the store default.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key; removing an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the underlying resources. It is idempotent.
	Close() error
}

// KeySerializer builds a cache key from an entity kind + its scoping ids.
// It is responsible for producing stable keys across calls and processes.
type KeySerializer interface {
	SerializeKey(kind string, args ...any) string
}
