package entity

import "github.com/shopspring/decimal"

// StockKey clave de agrupación del stock: (plantilla, bodega, productor, nombre).
type StockKey struct {
	TemplateID  string
	WarehouseID string
	Producer    string
	Name        string
}

// StockGroup proyección de lectura del stock disponible de una clave.
// TotalQuantity conserva el signo (puede ser negativo si hay reclamos de más);
// AvailableQuantity es el valor recortado a cero que se muestra.
type StockGroup struct {
	StockKey
	TemplateName      string
	Unit              string
	LotIDs            []string
	LotQuantity       int64 // Σ cantidad de los lotes
	ClaimedQuantity   int64 // Σ reclamos abiertos
	TotalQuantity     int64
	AvailableQuantity int64
	TotalVolume       decimal.Decimal
	AverageVolume     decimal.Decimal // volumen por unidad ponderado por cantidad
}
