package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Inventario-lotes/internal/application/retry"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
)

var fast = retry.Policy{Attempts: 3, Backoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}

func TestDo_ReintentaConflictos(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), fast, func(context.Context) error {
		calls++
		if calls < 3 {
			return domain.ErrConflict
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_AgotaIntentosYDevuelveUltimoError(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), fast, func(context.Context) error {
		calls++
		return domain.ErrBusy
	})
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.Equal(t, 3, calls)
}

func TestDo_NoReintentaErroresDeNegocio(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), fast, func(context.Context) error {
		calls++
		return domain.ErrInsufficientStock
	})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 1, calls)
}

func TestDo_RespetaContexto(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry.Do(ctx, retry.Policy{Attempts: 5, Backoff: time.Hour}, func(context.Context) error {
		calls++
		cancel()
		return domain.ErrBusy
	})
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.Equal(t, 1, calls)
}

func TestPolicy_DelayConTope(t *testing.T) {
	p := retry.Policy{Backoff: 10 * time.Millisecond, MaxBackoff: 35 * time.Millisecond}
	assert.Equal(t, 10*time.Millisecond, p.Delay(1))
	assert.Equal(t, 20*time.Millisecond, p.Delay(2))
	assert.Equal(t, 35*time.Millisecond, p.Delay(3))
	assert.Equal(t, 35*time.Millisecond, p.Delay(40))
}
