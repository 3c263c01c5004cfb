package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const asyncTimeout = 200 * time.Millisecond

// AsyncCacheSet actualiza caché en background sin bloquear
func AsyncCacheSet(cache Cache, key string, value interface{}, ttl time.Duration, log *zap.Logger) {
	if cache == nil {
		return
	}

	go func() {
		// Contexto propio: la petición original puede haber terminado ya.
		cacheCtx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()

		if err := cache.Set(cacheCtx, key, value, ttl); err != nil {
			log.Warn("Cache update failed", zap.String("key", key), zap.Error(err))
		}
	}()
}

// AsyncCacheDelete elimina de caché en background
func AsyncCacheDelete(cache Cache, key string, log *zap.Logger) {
	if cache == nil {
		return
	}

	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()

		if err := cache.Delete(cacheCtx, key); err != nil {
			log.Warn("Cache deletion failed", zap.String("key", key), zap.Error(err))
		}
	}()
}

// ReadThrough implementa cache-aside: intenta la caché y, si falla, llama a
// load y guarda el resultado en background. Un error de la caché se trata
// como un miss.
func ReadThrough[T any](ctx context.Context, cache Cache, key string, ttl time.Duration, log *zap.Logger, load func(ctx context.Context) (*T, error)) (*T, error) {
	if cache != nil {
		var hit T
		ok, err := cache.Get(ctx, key, &hit)
		if err != nil {
			log.Debug("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		if ok {
			return &hit, nil
		}
	}

	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	AsyncCacheSet(cache, key, v, ttl, log)
	return v, nil
}
