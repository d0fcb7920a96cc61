package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote en tránsito.
const (
	LotStatusOrdered   = "ordered"
	LotStatusInTransit = "in_transit"
	LotStatusArrived   = "arrived"
	LotStatusReceived  = "received"  // final: generó un lote en bodega
	LotStatusCancelled = "cancelled" // final: no generó lote en bodega
)

// LotStatuses estados válidos, en el orden del flujo.
var LotStatuses = []string{
	LotStatusOrdered, LotStatusInTransit, LotStatusArrived, LotStatusReceived, LotStatusCancelled,
}

// LotInTransit lote pedido o en camino a una bodega.
// CalculatedVolume es el volumen por unidad, no por lote.
type LotInTransit struct {
	ID                  string
	TemplateID          string
	WarehouseID         string
	Producer            string
	Name                string
	Attributes          AttributeValues
	Quantity            int64
	CalculatedVolume    *decimal.Decimal
	Status              string
	IsActive            bool
	ShippedAt           *time.Time
	ExpectedArrivalDate *time.Time
	ActualArrivalDate   *time.Time
	ReceivedLotID       string // lote en bodega generado al recibir
	Notes               string
	CreatedBy           string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsTerminal indica si el lote ya no admite transiciones.
func (l *LotInTransit) IsTerminal() bool {
	return l.Status == LotStatusReceived || l.Status == LotStatusCancelled
}

// CanBeReceived el lote está activo y en camino o llegado.
func (l *LotInTransit) CanBeReceived() bool {
	return l.IsActive && (l.Status == LotStatusArrived || l.Status == LotStatusInTransit)
}

// IsOverdue la fecha esperada de llegada ya pasó y el lote no está en estado final.
func (l *LotInTransit) IsOverdue(now time.Time) bool {
	if l.ExpectedArrivalDate == nil || l.IsTerminal() {
		return false
	}
	return l.ExpectedArrivalDate.Before(now)
}

// LotOnHand lote físicamente en bodega (tabla lots_on_hand).
// Quantity son las unidades que quedan; las ventas procesadas ya están descontadas.
// Version se incrementa en cada cambio de cantidad (control optimista).
type LotOnHand struct {
	ID               string
	TemplateID       string
	WarehouseID      string
	Producer         string
	Name             string
	Attributes       AttributeValues
	Quantity         int64
	CalculatedVolume *decimal.Decimal
	IsActive         bool
	SourceLotID      string // lote en tránsito de origen (vacío si se creó a mano)
	Version          int64
	ReceivedAt       *time.Time
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TotalVolume volumen del lote completo (nil se toma como cero).
func (l *LotOnHand) TotalVolume() decimal.Decimal {
	if l.CalculatedVolume == nil {
		return decimal.Zero
	}
	return l.CalculatedVolume.Mul(decimal.NewFromInt(l.Quantity))
}
