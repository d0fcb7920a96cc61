package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Discrepancy registro de auditoría de una corrección manual a un lote en tránsito.
// Solo se inserta; nunca se modifica ni se borra.
type Discrepancy struct {
	ID          string
	LotID       string
	Reason      string
	OldQuantity *int64
	NewQuantity *int64
	OldColor    string
	NewColor    string
	OldSize     string
	NewSize     string
	OldWeight   *decimal.Decimal
	NewWeight   *decimal.Decimal
	CreatedBy   string
	CreatedAt   time.Time
}
