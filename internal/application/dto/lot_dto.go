package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotFilterRequest filtros de GET /api/lots.
type LotFilterRequest struct {
	WarehouseID string `query:"warehouse_id"`
	TemplateID  string `query:"template_id"`
	Producer    string `query:"producer"`
}

// AdjustLotRequest ajuste manual de cantidad; Version es la que el cliente leyó.
type AdjustLotRequest struct {
	Quantity int64  `json:"quantity" validate:"min=0"`
	Version  int64  `json:"version" validate:"min=1"`
	Reason   string `json:"reason" validate:"omitempty,max=500"`
}

// LotResponse salida de un lote en bodega.
type LotResponse struct {
	ID               string           `json:"id"`
	TemplateID       string           `json:"template_id"`
	WarehouseID      string           `json:"warehouse_id"`
	Producer         string           `json:"producer"`
	Name             string           `json:"name"`
	Attributes       map[string]any   `json:"attributes"`
	Quantity         int64            `json:"quantity"`
	CalculatedVolume *decimal.Decimal `json:"calculated_volume"`
	TotalVolume      decimal.Decimal  `json:"total_volume"`
	IsActive         bool             `json:"is_active"`
	SourceLotID      string           `json:"source_lot_id,omitempty"`
	Version          int64            `json:"version"`
	ReceivedAt       *time.Time       `json:"received_at,omitempty"`
	CreatedBy        string           `json:"created_by"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// LotListResponse lista paginada de lotes en bodega.
type LotListResponse struct {
	Items []LotResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}
