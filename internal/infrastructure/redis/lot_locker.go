package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Inventario-lotes/internal/application/ports"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

var _ ports.LotLocker = (*LotLocker)(nil)

const (
	keyPrefix    = "lock:lot:"
	retryBackoff = 25 * time.Millisecond
)

// LotLocker candado por lote compartido entre réplicas de la API (bsm/redislock).
// El TTL libera el candado si el proceso muere con él tomado.
type LotLocker struct {
	client  *redislock.Client
	timeout time.Duration
	ttl     time.Duration
	log     *logger.Logger
}

// NewLotLocker timeout acota la espera; el TTL es 10 veces el timeout (mínimo 30s).
func NewLotLocker(rdb goredis.UniversalClient, timeout time.Duration, log *logger.Logger) *LotLocker {
	ttl := 10 * timeout
	if ttl < 30*time.Second {
		ttl = 30 * time.Second
	}
	return &LotLocker{client: redislock.New(rdb), timeout: timeout, ttl: ttl, log: log}
}

// Lock obtiene el candado del lote reintentando cada retryBackoff hasta el timeout.
func (l *LotLocker) Lock(ctx context.Context, lotID string) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	lock, err := l.client.Obtain(waitCtx, keyPrefix+lotID, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(retryBackoff),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.NewStateError("lote en bodega", lotID, "bloqueado", domain.ErrBusy)
		}
		return nil, fmt.Errorf("obtener candado del lote %s: %w", lotID, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			relCtx, relCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer relCancel()
			if err := lock.Release(relCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				l.log.Warn().Err(err).Str("lot_id", lotID).Msg("no se pudo liberar el candado del lote")
			}
		})
	}, nil
}
