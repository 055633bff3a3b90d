package store

import (
	"context"
	"time"
)

// ScopedStore prefixes every key of an inner store, so several projects can
// share one Redis database without colliding.
//
//	s := NewScopedStore(redisStore, "vastmap:")
type ScopedStore struct {
	inner  Store
	prefix string
}

// NewScopedStore creates a store that prepends prefix to all keys.
// A nil inner store is replaced by a NullStore.
func NewScopedStore(inner Store, prefix string) Store {
	if inner == nil {
		inner = NewNullStore()
	}
	return &ScopedStore{inner: inner, prefix: prefix}
}

// Get reads the prefixed key.
func (s *ScopedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

// Put writes the prefixed key.
func (s *ScopedStore) Put(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Put(ctx, s.prefix+key, data, ttl)
}

// Delete removes the prefixed key.
func (s *ScopedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Name returns the inner backend's name.
func (s *ScopedStore) Name() string { return s.inner.Name() }

// Close closes the inner store.
func (s *ScopedStore) Close() error { return s.inner.Close() }
