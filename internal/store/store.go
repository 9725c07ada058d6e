package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store is a process-wide key-value store for local UI state.
//
// Values are opaque bytes (JSON by convention) and every Set overwrites the
// whole value. There is no transaction spanning a read and a following
// write; callers serialize read-modify-write cycles themselves.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists all keys starting with prefix in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// GetJSON loads key and decodes it into v. It reports false when the key is
// absent, in which case v is left untouched.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
