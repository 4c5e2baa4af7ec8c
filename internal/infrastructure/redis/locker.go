package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

var _ ledger.DocumentLocker = (*Locker)(nil)

// LockKey clave del lock distribuido de un documento.
func LockKey(documentKey string) string {
	return "lock:ledger:doc:" + documentKey
}

// Locker lock distribuido por documento con redislock.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
	log    zerolog.Logger
}

// NewLocker construye el locker. ttl es la vida máxima del lock; se reintenta hasta ttl/2.
func NewLocker(rdb *goredis.Client, ttl time.Duration, log zerolog.Logger) *Locker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Locker{client: redislock.New(rdb), ttl: ttl, wait: ttl / 2, log: log}
}

// Lock obtiene el lock del documento o devuelve ErrConcurrentModification si sigue ocupado.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	const backoff = 50 * time.Millisecond
	retries := int(l.wait / backoff)
	lock, err := l.client.Obtain(ctx, LockKey(key), l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(backoff), retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("lock documento %s: %w", key, domain.ErrConcurrentModification)
	}
	if err != nil {
		return nil, fmt.Errorf("lock documento %s: %w", key, err)
	}
	return func() {
		// context propio: el del request puede estar cancelado al liberar.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("document", key).Msg("liberar lock de documento")
		}
	}, nil
}
