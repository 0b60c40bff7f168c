// Package lock bloqueo distribuido del alcance de numeración sobre Redis (bsm/redislock).
// Complementa el SELECT FOR UPDATE de PostgreSQL cuando varias instancias comparten la base.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/pharmadist-core/internal/application/sequence"
	"github.com/jhoicas/pharmadist-core/internal/domain"
	"github.com/jhoicas/pharmadist-core/pkg/config"
	"github.com/jhoicas/pharmadist-core/pkg/logger"
)

var _ sequence.ScopeLocker = (*RedisLocker)(nil)

const retryBackoff = 50 * time.Millisecond

// RedisLocker implementa sequence.ScopeLocker.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewClient abre el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// NewRedisLocker construye el locker; ttl acota cuánto puede durar una asignación.
func NewRedisLocker(rdb redis.UniversalClient, ttl time.Duration, log *logger.Logger) *RedisLocker {
	if log == nil {
		log = logger.Nop()
	}
	return &RedisLocker{client: redislock.New(rdb), ttl: ttl, log: log.Component("lock")}
}

// Lock espera el candado hasta que ctx venza. Si no se obtiene devuelve ErrNumberingConflict
// (transitorio: el llamador puede reintentar el ensamble).
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lk, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(retryBackoff),
	})
	switch {
	case errors.Is(err, redislock.ErrNotObtained), errors.Is(err, context.DeadlineExceeded):
		l.log.Warn().Str("key", key).Msg("no se obtuvo el candado de numeración")
		return nil, fmt.Errorf("lock %s: %w", key, domain.ErrNumberingConflict)
	case err != nil:
		return nil, fmt.Errorf("lock %s: %w", key, err)
	}

	return func() {
		// El ctx de la petición puede estar cancelado al liberar.
		if err := lk.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("key", key).Msg("error liberando candado de numeración")
		}
	}, nil
}
