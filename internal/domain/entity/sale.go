package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pago.
const (
	PaymentStatusPending       = "pending"
	PaymentStatusPaid          = "paid"
	PaymentStatusPartiallyPaid = "partially_paid"
	PaymentStatusCancelled     = "cancelled"
)

// Estados de entrega.
const (
	DeliveryStatusPending    = "pending"
	DeliveryStatusInProgress = "in_progress"
	DeliveryStatusDelivered  = "delivered"
	DeliveryStatusCancelled  = "cancelled"
)

// Sale venta contra un único lote en bodega.
// StockApplied indica si la cantidad ya se descontó del lote; mientras es false,
// la venta es un reclamo abierto que el agregador de stock resta del disponible.
type Sale struct {
	ID              string
	LotID           string
	WarehouseID     string
	CustomerName    string
	Quantity        int64
	UnitPrice       decimal.Decimal
	VATRate         decimal.Decimal // porcentaje, ej. 19
	PriceWithoutVAT decimal.Decimal
	VATAmount       decimal.Decimal
	TotalPrice      decimal.Decimal
	PaymentStatus   string
	DeliveryStatus  string
	StockApplied    bool
	SaleDate        time.Time
	DeliveryDate    *time.Time
	CancelledAt     *time.Time
	Notes           string
	CreatedBy       string
	ProcessedBy     string
	CancelledBy     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsCancelled la venta fue anulada.
func (s *Sale) IsCancelled() bool {
	return s.PaymentStatus == PaymentStatusCancelled
}

// IsOpenClaim la venta reclama cantidad que aún no se descontó del lote.
func (s *Sale) IsOpenClaim() bool {
	return !s.IsCancelled() && !s.StockApplied
}

// Claim cantidad que la venta resta del lote mientras no esté cancelada.
type Claim struct {
	SaleID   string
	LotID    string
	Quantity int64
}
