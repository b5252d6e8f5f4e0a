package cache

import (
	"context"
	"time"
)

// NoopCache stores nothing: every Get misses and every Set is discarded.
// Installed when caching is disabled so read paths always fetch fresh data.
type NoopCache[T any] struct{}

var _ Cache[string] = (*NoopCache[string])(nil)

func NewNoopCache[T any]() *NoopCache[T] {
	return &NoopCache[T]{}
}

func (c *NoopCache[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T
	return zero, ErrCacheMiss
}

func (c *NoopCache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	return nil
}

func (c *NoopCache[T]) Delete(ctx context.Context, key string) error {
	return nil
}

func (c *NoopCache[T]) Close() error {
	return nil
}

func (c *NoopCache[T]) Health(ctx context.Context) error {
	return nil
}
