package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// ShipmentFilter filtros del listado de lotes en tránsito.
// OverdueAt, si se indica, deja solo los vencidos a esa fecha (esperado < OverdueAt y no final).
type ShipmentFilter struct {
	WarehouseID string
	TemplateID  string
	Status      string
	OverdueAt   *time.Time
	Limit       int
	Offset      int
}

// LotInTransitRepository puerto de los lotes pedidos o en camino.
type LotInTransitRepository interface {
	Create(ctx context.Context, lot *entity.LotInTransit) error
	GetByID(ctx context.Context, id string) (*entity.LotInTransit, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.LotInTransit, error)
	Update(ctx context.Context, lot *entity.LotInTransit) error
	List(ctx context.Context, f ShipmentFilter) ([]*entity.LotInTransit, error)
}

// LotFilter filtros del listado de lotes en bodega.
type LotFilter struct {
	WarehouseID string
	TemplateID  string
	Producer    string
	OnlyActive  bool
	Limit       int // 0 = sin límite (agregado de stock)
	Offset      int
}

// LotOnHandRepository puerto de los lotes en bodega.
type LotOnHandRepository interface {
	Create(ctx context.Context, lot *entity.LotOnHand) error
	GetByID(ctx context.Context, id string) (*entity.LotOnHand, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.LotOnHand, error)
	// UpdateQuantity escribe la cantidad solo si la versión guardada es expectedVersion,
	// e incrementa la versión. Sin fila afectada devuelve domain.ErrConflict.
	UpdateQuantity(ctx context.Context, id string, quantity, expectedVersion int64) (newVersion int64, err error)
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, f LotFilter) ([]*entity.LotOnHand, error)
}
