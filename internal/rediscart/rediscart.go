// Package rediscart implements the fast cart on top of Redis lists. Each
// user's cart lives under a single key holding JSON-encoded entries.
package rediscart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mybooks/storefront/internal/domain/cart"
)

var _ cart.FastStore = (*Store)(nil)

// Store implements cart.FastStore backed by a Redis list per key.
type Store struct {
	rdb *redis.Client
}

// NewStore returns a Store that uses the given client.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Key returns the fast-cart key for a user.
func Key(userID int64) string {
	return fmt.Sprintf("cart:%d", userID)
}

// Range returns all entries under key in insertion order. A missing key
// yields an empty slice.
func (s *Store) Range(ctx context.Context, key string) ([]cart.Detail, error) {
	raw, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("ranging cart key %q: %w", key, err)
	}

	details := make([]cart.Detail, 0, len(raw))
	for _, item := range raw {
		var d cart.Detail
		if err := json.Unmarshal([]byte(item), &d); err != nil {
			return nil, fmt.Errorf("decoding cart entry under %q: %w", key, err)
		}
		details = append(details, d)
	}
	return details, nil
}

// Push appends one entry to the tail of the list at key.
func (s *Store) Push(ctx context.Context, key string, d cart.Detail) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding cart entry for %q: %w", key, err)
	}
	if err := s.rdb.RPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("pushing cart entry to %q: %w", key, err)
	}
	return nil
}

// Delete removes the key entirely. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("deleting cart key %q: %w", key, err)
	}
	return nil
}
