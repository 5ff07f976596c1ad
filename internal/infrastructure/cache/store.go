package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented key-value cache with expiration
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}
