package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// AggregateStock agrupa los lotes en bodega por (plantilla, bodega, productor, nombre) y descuenta
// los reclamos abiertos (ventas no canceladas cuya cantidad aún no salió del lote).
// Las ventas procesadas ya están descontadas en lot.Quantity, por eso no se restan otra vez.
// Con includeEmpty=false se omiten los grupos con total ≤ 0.
func AggregateStock(lots []*entity.LotOnHand, claims []entity.Claim, includeEmpty bool) []entity.StockGroup {
	claimedByLot := make(map[string]int64, len(claims))
	for _, c := range claims {
		claimedByLot[c.LotID] += c.Quantity
	}

	groups := make(map[entity.StockKey]*entity.StockGroup)
	var order []entity.StockKey
	for _, lot := range lots {
		key := entity.StockKey{
			TemplateID:  lot.TemplateID,
			WarehouseID: lot.WarehouseID,
			Producer:    lot.Producer,
			Name:        lot.Name,
		}
		g, ok := groups[key]
		if !ok {
			g = &entity.StockGroup{StockKey: key, TotalVolume: decimal.Zero, AverageVolume: decimal.Zero}
			groups[key] = g
			order = append(order, key)
		}
		var unitVolume decimal.Decimal
		if lot.CalculatedVolume != nil {
			unitVolume = *lot.CalculatedVolume
		}
		g.AverageVolume = WeightedAverage(
			decimal.NewFromInt(g.LotQuantity), g.AverageVolume,
			decimal.NewFromInt(lot.Quantity), unitVolume,
		)
		g.LotIDs = append(g.LotIDs, lot.ID)
		g.LotQuantity += lot.Quantity
		g.ClaimedQuantity += claimedByLot[lot.ID]
		g.TotalVolume = g.TotalVolume.Add(lot.TotalVolume())
	}

	sort.Slice(order, func(i, j int) bool { return lessKey(order[i], order[j]) })

	out := make([]entity.StockGroup, 0, len(order))
	for _, key := range order {
		g := groups[key]
		g.TotalQuantity = g.LotQuantity - g.ClaimedQuantity
		g.AvailableQuantity = clamp(g.TotalQuantity)
		if !includeEmpty && g.TotalQuantity <= 0 {
			continue
		}
		out = append(out, *g)
	}
	return out
}

// NegativeGroups grupos cuyo total con signo es negativo (reclamos por encima de lo que hay).
func NegativeGroups(groups []entity.StockGroup) []entity.StockGroup {
	var out []entity.StockGroup
	for _, g := range groups {
		if g.TotalQuantity < 0 {
			out = append(out, g)
		}
	}
	return out
}

func clamp(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

func lessKey(a, b entity.StockKey) bool {
	if a.TemplateID != b.TemplateID {
		return a.TemplateID < b.TemplateID
	}
	if a.WarehouseID != b.WarehouseID {
		return a.WarehouseID < b.WarehouseID
	}
	if a.Producer != b.Producer {
		return a.Producer < b.Producer
	}
	return a.Name < b.Name
}
