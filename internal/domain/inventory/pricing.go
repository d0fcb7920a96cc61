package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// MoneyPlaces decimales de los montos calculados.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// ComputePrices recalcula subtotal, IVA y total de la venta:
// subtotal = precio unitario × cantidad; IVA = subtotal × tasa/100; total = subtotal + IVA.
func ComputePrices(sale *entity.Sale) {
	sale.PriceWithoutVAT = sale.UnitPrice.Mul(decimal.NewFromInt(sale.Quantity)).Round(MoneyPlaces)
	sale.VATAmount = sale.PriceWithoutVAT.Mul(sale.VATRate).Div(hundred).Round(MoneyPlaces)
	sale.TotalPrice = sale.PriceWithoutVAT.Add(sale.VATAmount)
}
