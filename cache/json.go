package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// GetJSON reads key from store and decodes it into T.
// A miss returns ok=false and a nil error; a value that does not decode is
// reported as an error so callers can drop it.
func GetJSON[T any](ctx context.Context, store Store, key string) (T, bool, error) {
	var zero T

	raw, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}

	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return zero, false, fmt.Errorf("cache: decode %q: %w", key, err)
	}
	return out, true, nil
}

// SetJSON encodes v and stores it under key for ttl.
func SetJSON(ctx context.Context, store Store, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode %q: %w", key, err)
	}
	return store.Set(ctx, key, string(raw), ttl)
}
