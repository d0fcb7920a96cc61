package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/application/ports"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
)

var _ ports.LotLocker = (*LotLocker)(nil)

type lotLock struct {
	ch   chan struct{}
	refs int
}

// LotLocker candado por lote dentro del proceso. Sirve con una sola réplica de la API;
// con varias se usa el adaptador de Redis.
type LotLocker struct {
	timeout time.Duration

	mu    sync.Mutex
	locks map[string]*lotLock
}

// NewLotLocker crea el candado; timeout 0 = esperar hasta que ctx termine.
func NewLotLocker(timeout time.Duration) *LotLocker {
	return &LotLocker{timeout: timeout, locks: map[string]*lotLock{}}
}

// Lock espera el candado del lote. Vencido el timeout devuelve domain.ErrBusy.
func (l *LotLocker) Lock(ctx context.Context, lotID string) (func(), error) {
	l.mu.Lock()
	lk, ok := l.locks[lotID]
	if !ok {
		lk = &lotLock{ch: make(chan struct{}, 1)}
		l.locks[lotID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	select {
	case lk.ch <- struct{}{}:
	case <-ctx.Done():
		l.forget(lotID, lk)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, domain.ErrBusy
		}
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lk.ch
			l.forget(lotID, lk)
		})
	}, nil
}

func (l *LotLocker) forget(lotID string, lk *lotLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, lotID)
	}
}
