// Package inventory contiene las reglas puras del libro de lotes, las ventas y el agregado de stock.
// Las funciones mutan las entidades recibidas; la persistencia y los bloqueos son de la capa de aplicación.
package inventory

import (
	"strconv"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// IsValidLotStatus indica si status es uno de los cinco estados del lote en tránsito.
func IsValidLotStatus(status string) bool {
	for _, s := range entity.LotStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// TransitionLot cambia el estado de un lote en tránsito.
// El paso a received no se hace aquí (ver ReceiveLot): genera el lote en bodega.
func TransitionLot(lot *entity.LotInTransit, status string, now time.Time) error {
	if !IsValidLotStatus(status) {
		return domain.NewStateError("lote en tránsito", lot.ID, lot.Status, domain.ErrInvalidStatus)
	}
	if lot.IsTerminal() {
		return domain.NewStateError("lote en tránsito", lot.ID, lot.Status, domain.ErrAlreadyTerminal)
	}
	if status == entity.LotStatusReceived {
		return domain.NewStateError("lote en tránsito", lot.ID, lot.Status, domain.ErrNotReceivable)
	}
	switch status {
	case entity.LotStatusInTransit:
		if lot.ShippedAt == nil {
			lot.ShippedAt = &now
		}
	case entity.LotStatusArrived:
		lot.ActualArrivalDate = &now
	}
	lot.Status = status
	lot.UpdatedAt = now
	return nil
}

// ReceiveLot marca el lote en tránsito como recibido y devuelve el lote en bodega que lo reemplaza,
// con la misma plantilla, bodega, productor, nombre, atributos, cantidad y volumen.
func ReceiveLot(lot *entity.LotInTransit, onHandID, actorID string, now time.Time) (*entity.LotOnHand, error) {
	if lot.IsTerminal() {
		return nil, domain.NewStateError("lote en tránsito", lot.ID, lot.Status, domain.ErrAlreadyTerminal)
	}
	if !lot.CanBeReceived() {
		return nil, domain.NewStateError("lote en tránsito", lot.ID, lot.Status, domain.ErrNotReceivable)
	}
	volume := lot.CalculatedVolume
	if volume != nil {
		v := *volume
		volume = &v
	}
	onHand := &entity.LotOnHand{
		ID:               onHandID,
		TemplateID:       lot.TemplateID,
		WarehouseID:      lot.WarehouseID,
		Producer:         lot.Producer,
		Name:             lot.Name,
		Attributes:       lot.Attributes.Clone(),
		Quantity:         lot.Quantity,
		CalculatedVolume: volume,
		IsActive:         true,
		SourceLotID:      lot.ID,
		Version:          1,
		ReceivedAt:       &now,
		CreatedBy:        actorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	lot.Status = entity.LotStatusReceived
	lot.ActualArrivalDate = &now
	lot.ReceivedLotID = onHandID
	lot.UpdatedAt = now
	return onHand, nil
}

// CorrectLotQuantity corrige la cantidad de un lote en tránsito no final y devuelve la discrepancia
// que debe registrarse junto con el cambio.
func CorrectLotQuantity(lot *entity.LotInTransit, newQty int64, reason, discrepancyID, actorID string, now time.Time) (*entity.Discrepancy, error) {
	if lot.IsTerminal() {
		return nil, domain.NewStateError("lote en tránsito", lot.ID, lot.Status, domain.ErrAlreadyTerminal)
	}
	if newQty < 0 || reason == "" {
		return nil, domain.ErrInvalidInput
	}
	oldQty := lot.Quantity
	lot.Quantity = newQty
	lot.UpdatedAt = now
	return &entity.Discrepancy{
		ID:          discrepancyID,
		LotID:       lot.ID,
		Reason:      reason,
		OldQuantity: &oldQty,
		NewQuantity: &newQty,
		CreatedBy:   actorID,
		CreatedAt:   now,
	}, nil
}

// AdjustOnHandQuantity ajuste manual de la cantidad de un lote en bodega.
// expectedVersion debe coincidir con la versión leída por el cliente.
func AdjustOnHandQuantity(lot *entity.LotOnHand, newQty, expectedVersion int64, now time.Time) error {
	if newQty < 0 {
		return domain.ErrInvalidInput
	}
	if lot.Version != expectedVersion {
		return domain.NewStateError("lote en bodega", lot.ID, "versión "+strconv.FormatInt(lot.Version, 10), domain.ErrConflict)
	}
	lot.Quantity = newQty
	lot.UpdatedAt = now
	return nil
}
