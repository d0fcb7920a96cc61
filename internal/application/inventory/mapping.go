package inventory

import (
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

func toShipmentResponse(l *entity.LotInTransit, now time.Time) *dto.ShipmentResponse {
	if l == nil {
		return nil
	}
	return &dto.ShipmentResponse{
		ID:                  l.ID,
		TemplateID:          l.TemplateID,
		WarehouseID:         l.WarehouseID,
		Producer:            l.Producer,
		Name:                l.Name,
		Attributes:          l.Attributes.Plain(),
		Quantity:            l.Quantity,
		CalculatedVolume:    l.CalculatedVolume,
		Status:              l.Status,
		IsActive:            l.IsActive,
		IsOverdue:           l.IsOverdue(now),
		ShippedAt:           l.ShippedAt,
		ExpectedArrivalDate: l.ExpectedArrivalDate,
		ActualArrivalDate:   l.ActualArrivalDate,
		ReceivedLotID:       l.ReceivedLotID,
		Notes:               l.Notes,
		CreatedBy:           l.CreatedBy,
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
}

func toLotResponse(l *entity.LotOnHand) *dto.LotResponse {
	if l == nil {
		return nil
	}
	return &dto.LotResponse{
		ID:               l.ID,
		TemplateID:       l.TemplateID,
		WarehouseID:      l.WarehouseID,
		Producer:         l.Producer,
		Name:             l.Name,
		Attributes:       l.Attributes.Plain(),
		Quantity:         l.Quantity,
		CalculatedVolume: l.CalculatedVolume,
		TotalVolume:      l.TotalVolume(),
		IsActive:         l.IsActive,
		SourceLotID:      l.SourceLotID,
		Version:          l.Version,
		ReceivedAt:       l.ReceivedAt,
		CreatedBy:        l.CreatedBy,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

func toDiscrepancyResponse(d *entity.Discrepancy) *dto.DiscrepancyResponse {
	return &dto.DiscrepancyResponse{
		ID:          d.ID,
		LotID:       d.LotID,
		Reason:      d.Reason,
		OldQuantity: d.OldQuantity,
		NewQuantity: d.NewQuantity,
		OldColor:    d.OldColor,
		NewColor:    d.NewColor,
		OldSize:     d.OldSize,
		NewSize:     d.NewSize,
		OldWeight:   d.OldWeight,
		NewWeight:   d.NewWeight,
		CreatedBy:   d.CreatedBy,
		CreatedAt:   d.CreatedAt,
	}
}

func toStockGroupResponse(g entity.StockGroup) dto.StockGroupResponse {
	return dto.StockGroupResponse{
		TemplateID:        g.TemplateID,
		TemplateName:      g.TemplateName,
		Unit:              g.Unit,
		WarehouseID:       g.WarehouseID,
		Producer:          g.Producer,
		Name:              g.Name,
		LotCount:          len(g.LotIDs),
		LotIDs:            g.LotIDs,
		LotQuantity:       g.LotQuantity,
		ClaimedQuantity:   g.ClaimedQuantity,
		TotalQuantity:     g.TotalQuantity,
		AvailableQuantity: g.AvailableQuantity,
		TotalVolume:       g.TotalVolume,
		AverageVolume:     g.AverageVolume,
	}
}
