package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest entrada para registrar una venta pendiente contra un lote en bodega.
type CreateSaleRequest struct {
	LotID        string          `json:"lot_id" validate:"required"`
	CustomerName string          `json:"customer_name" validate:"omitempty,max=200"`
	Quantity     int64           `json:"quantity" validate:"required,min=1"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	VATRate      decimal.Decimal `json:"vat_rate"`
	SaleDate     *time.Time      `json:"sale_date"`
	Notes        string          `json:"notes" validate:"omitempty,max=1000"`
}

// UpdateSaleRequest cambios de una venta pendiente; recalcula precios.
type UpdateSaleRequest struct {
	Quantity     *int64           `json:"quantity" validate:"omitempty,min=1"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	VATRate      *decimal.Decimal `json:"vat_rate"`
	CustomerName *string          `json:"customer_name" validate:"omitempty,max=200"`
	Notes        *string          `json:"notes" validate:"omitempty,max=1000"`
}

// UpdateSaleStatusRequest cambio de estado de pago o de entrega.
type UpdateSaleStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SaleFilterRequest filtros de GET /api/sales.
type SaleFilterRequest struct {
	LotID         string `query:"lot_id"`
	WarehouseID   string `query:"warehouse_id"`
	PaymentStatus string `query:"payment_status"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID              string          `json:"id"`
	LotID           string          `json:"lot_id"`
	WarehouseID     string          `json:"warehouse_id"`
	CustomerName    string          `json:"customer_name,omitempty"`
	Quantity        int64           `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	VATRate         decimal.Decimal `json:"vat_rate"`
	PriceWithoutVAT decimal.Decimal `json:"price_without_vat"`
	VATAmount       decimal.Decimal `json:"vat_amount"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	PaymentStatus   string          `json:"payment_status"`
	DeliveryStatus  string          `json:"delivery_status"`
	StockApplied    bool            `json:"stock_applied"`
	SaleDate        time.Time       `json:"sale_date"`
	DeliveryDate    *time.Time      `json:"delivery_date,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedBy       string          `json:"created_by"`
	ProcessedBy     string          `json:"processed_by,omitempty"`
	CancelledBy     string          `json:"cancelled_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
