package ledger

import (
	"context"
	"sync"
)

// generationCache envuelve el cache de proyecciones con un contador que avanza en cada
// Invalidate. Una proyección construida antes de una escritura confirmada no se guarda
// si la invalidación llegó mientras se construía.
type generationCache struct {
	ProjectionCache
	mu  sync.Mutex
	gen uint64
}

func newGenerationCache(cache ProjectionCache) *generationCache {
	if gc, ok := cache.(*generationCache); ok {
		return gc
	}
	if cache == nil {
		cache = NopCache{}
	}
	return &generationCache{ProjectionCache: cache}
}

// Generation valor actual del contador; tomarlo antes de leer el ledger.
func (c *generationCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Invalidate avanza el contador y borra las proyecciones.
func (c *generationCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	return c.ProjectionCache.Invalidate(ctx)
}

// SetIfCurrent guarda value solo si no hubo invalidaciones desde gen.
func (c *generationCache) SetIfCurrent(ctx context.Context, gen uint64, key string, value any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false, nil
	}
	return true, c.ProjectionCache.Set(ctx, key, value)
}
