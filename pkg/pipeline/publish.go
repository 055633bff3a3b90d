package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/vastmap/pkg/errors"
	"github.com/matzehuels/vastmap/pkg/store"
	"github.com/matzehuels/vastmap/pkg/tmap"
)

// Publish stores the result's TMAP document and returns its key.
func Publish(ctx context.Context, s store.Store, result *Result, ttl time.Duration) (string, error) {
	data, ok := result.Artifacts[FormatJSON]
	if !ok {
		return "", errors.New(errors.ErrCodeInternal, "result has no json artifact")
	}
	key := result.StoreKey()
	if err := s.Put(ctx, key, data, ttl); err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "publish to %s store", s.Name())
	}
	return key, nil
}

// Fetch loads a published document.
func Fetch(ctx context.Context, s store.Store, key string) (*tmap.Document, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read from %s store", s.Name())
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "document %s not found", key)
	}
	return tmap.Unmarshal(data)
}
