// Package store persists published TMAP documents.
//
// A [Store] is a small key/value interface with three implementations:
// [FileStore] for local use, [RedisStore] for sharing documents between
// machines, and [NullStore] when publishing is disabled. Keys are derived
// from the content hash of the source document plus the layout parameters
// (see [DocumentKey]), so re-publishing the same input overwrites the same
// entry.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Backend names accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// ErrUnknownBackend is returned by [Open] for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// Store is a key/value store for serialized documents.
type Store interface {
	// Get returns the data stored at key. The boolean is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores data at key; a positive ttl expires the entry.
	Put(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Name identifies the backend in logs and hooks.
	Name() string
	// Close releases backend resources.
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Dir      string
	RedisURL string
	Prefix   string
}

// Open returns the store described by opts.
func Open(opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch opts.Backend {
	case "", BackendNone:
		return NewNullStore(), nil
	case BackendFile:
		s, err = NewFileStore(opts.Dir)
	case BackendRedis:
		s, err = NewRedisStore(RedisOptions{URL: opts.RedisURL})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	if opts.Prefix != "" {
		s = NewScopedStore(s, opts.Prefix)
	}
	return s, nil
}
