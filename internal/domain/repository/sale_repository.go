package repository

import (
	"context"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// SaleFilter filtros del listado de ventas.
type SaleFilter struct {
	LotID         string
	WarehouseID   string
	PaymentStatus string
	Limit         int
	Offset        int
}

// SaleRepository puerto de ventas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate bloquea la fila de la venta (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	Update(ctx context.Context, sale *entity.Sale) error
	List(ctx context.Context, f SaleFilter) ([]*entity.Sale, error)
	// ListOpenClaims ventas no canceladas y aún no descontadas de los lotes indicados.
	ListOpenClaims(ctx context.Context, lotIDs []string) ([]entity.Claim, error)
}
