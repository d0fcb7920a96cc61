package ports

import "context"

// LotLocker serializa las mutaciones de un mismo lote en bodega entre requests
// (y entre réplicas cuando el adaptador es Redis).
// Lock espera como máximo el timeout configurado o hasta que ctx termine; si no obtiene
// el candado devuelve domain.ErrBusy. La función unlock libera el candado y es idempotente.
type LotLocker interface {
	Lock(ctx context.Context, lotID string) (unlock func(), err error)
}
