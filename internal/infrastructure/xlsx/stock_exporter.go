// Package xlsx exporta el stock agrupado a Excel (excelize).
package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

var _ inventory.StockExporter = (*StockExporter)(nil)

const sheetName = "Stock"

var headings = []string{
	"Plantilla", "Bodega", "Productor", "Nombre", "Unidad", "Lotes",
	"Cantidad en lotes", "Reservado", "Disponible", "Volumen total", "Volumen promedio",
}

// StockExporter escribe una fila por grupo de stock.
type StockExporter struct{}

// NewStockExporter construye el exportador.
func NewStockExporter() *StockExporter { return &StockExporter{} }

// ExportStock devuelve el libro XLSX en memoria.
func (e *StockExporter) ExportStock(_ context.Context, groups []entity.StockGroup) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"00467F"}},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}

	for i, h := range headings {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("xlsx: encabezado: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headings), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, header); err != nil {
		return nil, fmt.Errorf("xlsx: estilo encabezado: %w", err)
	}

	for i, g := range groups {
		values := []any{
			nonEmpty(g.TemplateName, g.TemplateID), g.WarehouseID, g.Producer, g.Name, g.Unit,
			strings.Join(g.LotIDs, ", "),
			g.LotQuantity, g.ClaimedQuantity, g.AvailableQuantity,
			g.TotalVolume.InexactFloat64(), g.AverageVolume.InexactFloat64(),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("xlsx: fila %d: %w", i+2, err)
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("xlsx: fijar encabezado: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
