package inventory

import "github.com/shopspring/decimal"

// WeightedAverage promedio ponderado de un valor por unidad al sumar dos conjuntos (servicio de dominio).
// Promedio = ((CantActual * ValorActual) + (CantEntrada * ValorEntrada)) / (CantActual + CantEntrada)
func WeightedAverage(qtyActual, valueActual, qtyIn, valueIn decimal.Decimal) decimal.Decimal {
	sum := qtyActual.Add(qtyIn)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := qtyActual.Mul(valueActual).Add(qtyIn.Mul(valueIn))
	return num.Div(sum)
}
