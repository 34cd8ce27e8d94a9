package repository

import (
	"context"
	"errors"
	"time"

	"GlyphCore/internal/domain/models"
	"GlyphCore/pkg/cache"
)

// SignalCache stores classified signals by series fingerprint. Only the
// classification is stored; callers rebind the series on a hit.
type SignalCache struct {
	store cache.Service
	ttl   time.Duration
}

func NewSignalCache(store cache.Service, ttl time.Duration) *SignalCache {
	if store == nil {
		store = cache.Nop{}
	}
	return &SignalCache{store: store, ttl: ttl}
}

// Key fingerprints a series together with the thresholds it is classified
// under.
func (c *SignalCache) Key(values []float64, labels []string, salt interface{}) string {
	return cache.GenerateKey("signal", cache.HashParts(values, labels, salt))
}

// Get returns the cached signal and true, or false on a miss. Backend errors
// count as misses.
func (c *SignalCache) Get(ctx context.Context, key string) (models.Signal, bool, error) {
	var sig models.Signal
	err := c.store.Get(ctx, key, &sig)
	switch {
	case err == nil:
		return sig, true, nil
	case errors.Is(err, cache.ErrCacheMiss):
		return models.Signal{}, false, nil
	default:
		return models.Signal{}, false, err
	}
}

func (c *SignalCache) Set(ctx context.Context, key string, sig models.Signal) error {
	return c.store.Set(ctx, key, sig, c.ttl)
}

func (c *SignalCache) Close() error { return c.store.Close() }
