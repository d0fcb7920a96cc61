package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateShipmentRequest entrada para registrar un lote pedido o en camino.
type CreateShipmentRequest struct {
	TemplateID          string         `json:"template_id" validate:"required"`
	WarehouseID         string         `json:"warehouse_id" validate:"required"`
	Producer            string         `json:"producer" validate:"required,max=200"`
	Name                string         `json:"name" validate:"omitempty,max=200"`
	Attributes          map[string]any `json:"attributes"`
	Quantity            int64          `json:"quantity" validate:"min=0"`
	Status              string         `json:"status" validate:"omitempty,oneof=ordered in_transit arrived"`
	ShippedAt           *time.Time     `json:"shipped_at"`
	ExpectedArrivalDate *time.Time     `json:"expected_arrival_date"`
	Notes               string         `json:"notes" validate:"omitempty,max=1000"`
}

// UpdateShipmentStatusRequest cambio de estado de un lote en tránsito.
type UpdateShipmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CorrectShipmentRequest corrección manual de cantidad con motivo (genera discrepancia).
type CorrectShipmentRequest struct {
	Quantity int64  `json:"quantity" validate:"min=0"`
	Reason   string `json:"reason" validate:"required,max=500"`
}

// ShipmentFilterRequest filtros de GET /api/shipments.
type ShipmentFilterRequest struct {
	WarehouseID string `query:"warehouse_id"`
	TemplateID  string `query:"template_id"`
	Status      string `query:"status"`
	Overdue     bool   `query:"overdue"`
}

// ShipmentResponse salida de un lote en tránsito.
type ShipmentResponse struct {
	ID                  string           `json:"id"`
	TemplateID          string           `json:"template_id"`
	WarehouseID         string           `json:"warehouse_id"`
	Producer            string           `json:"producer"`
	Name                string           `json:"name"`
	Attributes          map[string]any   `json:"attributes"`
	Quantity            int64            `json:"quantity"`
	CalculatedVolume    *decimal.Decimal `json:"calculated_volume"`
	Status              string           `json:"status"`
	IsActive            bool             `json:"is_active"`
	IsOverdue           bool             `json:"is_overdue"`
	ShippedAt           *time.Time       `json:"shipped_at,omitempty"`
	ExpectedArrivalDate *time.Time       `json:"expected_arrival_date,omitempty"`
	ActualArrivalDate   *time.Time       `json:"actual_arrival_date,omitempty"`
	ReceivedLotID       string           `json:"received_lot_id,omitempty"`
	Notes               string           `json:"notes,omitempty"`
	CreatedBy           string           `json:"created_by"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// ShipmentListResponse lista paginada de lotes en tránsito.
type ShipmentListResponse struct {
	Items []ShipmentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
