package entity

import "time"

// Warehouse bodega donde llegan los lotes y desde donde se venden.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
