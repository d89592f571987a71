package core

import (
	"context"
	"time"
)

// Cache stores JSON-serializable values for a limited time.
type Cache interface {
	// Get decodes the value stored under key into dst; it reports false on a miss.
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
