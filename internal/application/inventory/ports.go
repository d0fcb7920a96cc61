package inventory

import (
	"context"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// StockExporter puerto de salida para exportar el stock agrupado (XLSX).
type StockExporter interface {
	ExportStock(ctx context.Context, groups []entity.StockGroup) ([]byte, error)
}
