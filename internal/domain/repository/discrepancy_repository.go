package repository

import (
	"context"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// DiscrepancyRepository registro de solo inserción de correcciones manuales.
type DiscrepancyRepository interface {
	Create(ctx context.Context, d *entity.Discrepancy) error
	ListByLot(ctx context.Context, lotID string) ([]*entity.Discrepancy, error)
}
