package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsales "github.com/jhoicas/Inventario-lotes/internal/application/sales"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1.234.567,50", formatNumber(decimal.RequireFromString("1234567.5"), 2))
	assert.Equal(t, "-1.234.567", formatNumber(decimal.RequireFromString("-1234567.4"), 0))
	assert.Equal(t, "0,125", formatNumber(decimal.RequireFromString("0.125"), 3))
}

func TestGenerateSaleNote(t *testing.T) {
	vol := decimal.RequireFromString("0.024")
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	note := appsales.SaleNote{
		Sale: &entity.Sale{
			ID: "0f8a2c1e-1111-2222-3333-444455556666", LotID: "lot-1", CustomerName: "Ferretería El Roble",
			Quantity: 3, UnitPrice: decimal.NewFromInt(1000), VATRate: decimal.NewFromInt(19),
			PriceWithoutVAT: decimal.NewFromInt(3000), VATAmount: decimal.NewFromInt(570), TotalPrice: decimal.NewFromInt(3570),
			PaymentStatus: entity.PaymentStatusPaid, DeliveryStatus: entity.DeliveryStatusDelivered,
			SaleDate: now, DeliveryDate: &now,
		},
		Lot: &entity.LotOnHand{
			ID: "lot-1", Name: "Boards Pino 2x3x4", Producer: "Aserrío Norte", CalculatedVolume: &vol,
			Attributes: entity.AttributeValues{
				"species": entity.SelectValue(0, "Pino"),
				"length":  entity.NumberValue(decimal.NewFromInt(2)),
			},
		},
		Warehouse: &entity.Warehouse{Name: "Central", Address: "Calle 1"},
	}

	out, err := NewMarotoPDFGenerator().GenerateSaleNote(context.Background(), note)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewMarotoPDFGenerator().GenerateSaleNote(context.Background(), appsales.SaleNote{})
	assert.Error(t, err)
}

func TestAttributeLine_SinPlantillaOrdenAlfabetico(t *testing.T) {
	note := appsales.SaleNote{Lot: &entity.LotOnHand{Attributes: entity.AttributeValues{
		"species": entity.TextValue("Roble"),
		"length":  entity.NumberValue(decimal.NewFromInt(4)),
	}}}
	assert.Equal(t, "length: 4   |   species: Roble", attributeLine(note))
}
