package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordDiscrepancyRequest registro de una corrección manual (valores antes/después).
type RecordDiscrepancyRequest struct {
	LotID       string           `json:"lot_id" validate:"required"`
	Reason      string           `json:"reason" validate:"required,max=500"`
	OldQuantity *int64           `json:"old_quantity" validate:"omitempty,min=0"`
	NewQuantity *int64           `json:"new_quantity" validate:"omitempty,min=0"`
	OldColor    string           `json:"old_color" validate:"omitempty,max=100"`
	NewColor    string           `json:"new_color" validate:"omitempty,max=100"`
	OldSize     string           `json:"old_size" validate:"omitempty,max=100"`
	NewSize     string           `json:"new_size" validate:"omitempty,max=100"`
	OldWeight   *decimal.Decimal `json:"old_weight"`
	NewWeight   *decimal.Decimal `json:"new_weight"`
}

// DiscrepancyResponse salida de una discrepancia.
type DiscrepancyResponse struct {
	ID          string           `json:"id"`
	LotID       string           `json:"lot_id"`
	Reason      string           `json:"reason"`
	OldQuantity *int64           `json:"old_quantity,omitempty"`
	NewQuantity *int64           `json:"new_quantity,omitempty"`
	OldColor    string           `json:"old_color,omitempty"`
	NewColor    string           `json:"new_color,omitempty"`
	OldSize     string           `json:"old_size,omitempty"`
	NewSize     string           `json:"new_size,omitempty"`
	OldWeight   *decimal.Decimal `json:"old_weight,omitempty"`
	NewWeight   *decimal.Decimal `json:"new_weight,omitempty"`
	CreatedBy   string           `json:"created_by"`
	CreatedAt   time.Time        `json:"created_at"`
}
