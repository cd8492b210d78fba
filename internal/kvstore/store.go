package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no value is stored under the requested key.
	ErrNotFound = errors.New("kvstore: not found")
)

// Store persists opaque JSON blobs keyed by string. Writes are
// last-write-wins per key; no other invariant is guaranteed.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// GetJSON loads and decodes the value stored under key. A missing key or an
// undecodable payload yields the provided fallback with a nil error, so
// callers always receive a usable value; only backend failures are reported.
func GetJSON[T any](ctx context.Context, store Store, key string, fallback T) (T, error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fallback, nil
		}
		return fallback, fmt.Errorf("kvstore: get %q: %w", key, err)
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return fallback, nil
	}
	return value, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, store Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kvstore: encode %q: %w", key, err)
	}
	if err := store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("kvstore: set %q: %w", key, err)
	}
	return nil
}
