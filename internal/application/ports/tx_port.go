package ports

import (
	"context"

	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y ninguna escritura queda aplicada.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
	// RunReadOnly abre una transacción de solo lectura con una foto consistente (REPEATABLE READ)
	// que no bloquea a los escritores.
	RunReadOnly(ctx context.Context, fn func(repos repository.Repos) error) error
}
