package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
)

var _ ledger.ProjectionCache = (*Cache)(nil)

// Cache proyecciones serializadas en JSON con expiración.
type Cache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewCache construye el cache con el TTL de las proyecciones.
func NewCache(rdb *goredis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get devuelve false si la clave no existe.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

// Invalidate borra todas las proyecciones.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, ledger.ProjectionKeys...).Err()
}
