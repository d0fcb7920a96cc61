package xlsx_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/xlsx"
)

func TestExportStock(t *testing.T) {
	groups := []entity.StockGroup{{
		StockKey:          entity.StockKey{TemplateID: "tpl", WarehouseID: "wh-1", Producer: "Aserrío Norte", Name: "Boards Pino 2x3x4"},
		TemplateName:      "Boards",
		Unit:              "m³",
		LotIDs:            []string{"l1", "l2"},
		LotQuantity:       15,
		ClaimedQuantity:   3,
		TotalQuantity:     12,
		AvailableQuantity: 12,
		TotalVolume:       decimal.RequireFromString("360"),
		AverageVolume:     decimal.RequireFromString("24"),
	}}

	out, err := xlsx.NewStockExporter().ExportStock(context.Background(), groups)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Stock")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Plantilla", rows[0][0])
	assert.Equal(t, "Boards", rows[1][0])
	assert.Equal(t, "l1, l2", rows[1][5])
	assert.Equal(t, "12", rows[1][8])
	assert.Equal(t, "360", rows[1][9])
}
