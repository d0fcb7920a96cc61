package dto

import "github.com/shopspring/decimal"

// StockQueryRequest filtros de GET /api/stock.
type StockQueryRequest struct {
	WarehouseID  string `query:"warehouse_id"`
	TemplateID   string `query:"template_id"`
	Producer     string `query:"producer"`
	IncludeEmpty bool   `query:"include_empty"`
}

// StockGroupResponse stock disponible de una clave (plantilla, bodega, productor, nombre).
// AvailableQuantity nunca es negativo; TotalQuantity conserva el signo.
type StockGroupResponse struct {
	TemplateID        string          `json:"template_id"`
	TemplateName      string          `json:"template_name"`
	Unit              string          `json:"unit"`
	WarehouseID       string          `json:"warehouse_id"`
	Producer          string          `json:"producer"`
	Name              string          `json:"name"`
	LotCount          int             `json:"lot_count"`
	LotIDs            []string        `json:"lot_ids"`
	LotQuantity       int64           `json:"lot_quantity"`
	ClaimedQuantity   int64           `json:"claimed_quantity"`
	TotalQuantity     int64           `json:"total_quantity"`
	AvailableQuantity int64           `json:"available_quantity"`
	TotalVolume       decimal.Decimal `json:"total_volume"`
	AverageVolume     decimal.Decimal `json:"average_volume"`
}

// StockIntegrityResponse grupos cuyo total con signo es negativo.
type StockIntegrityResponse struct {
	OK     bool                 `json:"ok"`
	Groups []StockGroupResponse `json:"negative_groups"`
}
