// Package retry reintenta operaciones que fallaron por concurrencia (domain.ErrConflict, domain.ErrBusy)
// con espera exponencial acotada.
package retry

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
)

// Policy política de reintentos. Attempts cuenta el primer intento.
type Policy struct {
	Attempts   int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

// DefaultPolicy 3 intentos, 50ms, tope 1s.
var DefaultPolicy = Policy{Attempts: 3, Backoff: 50 * time.Millisecond, MaxBackoff: time.Second}

// NoRetry un solo intento.
var NoRetry = Policy{Attempts: 1}

// Delay espera antes del intento attempt (1 = primer reintento): base * 2^(attempt-1), con tope.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 0 || p.Backoff <= 0 {
		return p.Backoff
	}
	d := p.Backoff << (attempt - 1)
	if p.MaxBackoff > 0 && (d > p.MaxBackoff || d <= 0) {
		return p.MaxBackoff
	}
	return d
}

// Do ejecuta fn y la repite mientras devuelva un error reintentable, hasta agotar los intentos
// o el contexto. Devuelve el último error.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			timer := time.NewTimer(p.Delay(i))
			select {
			case <-ctx.Done():
				timer.Stop()
				return err
			case <-timer.C:
			}
		}
		err = fn(ctx)
		if err == nil || !domain.IsRetryable(err) {
			return err
		}
	}
	return err
}
