package grpc

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// FetchFunc computes a value on a cache miss.
type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	cacheWriteTimeout = 5 * time.Second
	maxTTLJitter      = 15 * time.Second
)

// addTTLJitter spreads the expiry of entries written together over
// ±maxTTLJitter. TTLs too short to absorb the jitter are returned unchanged.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= maxTTLJitter {
		return ttl
	}
	return ttl + rand.N(2*maxTTLJitter) - maxTTLJitter
}

// cacheLookup reads key into a T. Errors other than redis.Nil are logged and
// count as a miss.
func cacheLookup[T any](ctx context.Context, c Cacher, key string, logger *zap.Logger) (T, bool) {
	var cached T
	err := c.Get(ctx, key, &cached)
	switch {
	case err == nil:
		logger.Debug("cache hit", zap.String("key", key))
		return cached, true
	case errors.Is(err, redis.Nil):
		logger.Debug("cache miss", zap.String("key", key))
	default:
		logger.Warn("cache read failed, recomputing", zap.String("key", key), zap.Error(err))
	}
	var zero T
	return zero, false
}

// storeAsync writes v under key without holding up the caller.
func storeAsync(c Cacher, key string, v any, ttl time.Duration, logger *zap.Logger) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()

		ttl := addTTLJitter(ttl)
		if err := c.Set(ctx, key, v, ttl); err != nil {
			logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
			return
		}
		logger.Debug("cache populated", zap.String("key", key), zap.Duration("ttl", ttl))
	}()
}

// FindAndCache returns the value cached under key, or computes it with fn.
// Concurrent misses on one key share a single fn call and only successful
// results are stored. Keys address immutable inputs, so entries are never
// refreshed in place.
func FindAndCache[T any](
	ctx context.Context,
	c Cacher,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}

	if cached, ok := cacheLookup[T](ctx, c, key, logger); ok {
		return cached, nil
	}

	v, err, shared := sf.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			logger.Error("fetch failed", zap.String("key", key), zap.Error(err))
			return nil, err
		}
		storeAsync(c, key, value, ttl, logger)
		return value, nil
	})
	if err != nil {
		return zero, err
	}
	if shared {
		logger.Debug("singleflight shared result", zap.String("key", key))
	}

	value, ok := v.(T)
	if !ok {
		logger.Error("singleflight type mismatch", zap.String("key", key))
		return zero, fmt.Errorf("type mismatch for key %q: got %T", key, v)
	}
	return value, nil
}
