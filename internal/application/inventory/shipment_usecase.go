package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/application/ports"
	"github.com/jhoicas/Inventario-lotes/internal/application/retry"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/Inventario-lotes/internal/domain/template"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

// ShipmentUseCase casos de uso del libro de lotes en tránsito: alta, cambios de estado,
// recepción atómica a bodega, correcciones y registro de discrepancias.
type ShipmentUseCase struct {
	tx     ports.TxRunner
	repos  repository.Repos // lecturas fuera de transacción
	policy retry.Policy
	log    *logger.Logger
	now    func() time.Time
}

// NewShipmentUseCase construye el caso de uso.
func NewShipmentUseCase(tx ports.TxRunner, repos repository.Repos, policy retry.Policy, log *logger.Logger) *ShipmentUseCase {
	return &ShipmentUseCase{tx: tx, repos: repos, policy: policy, log: log, now: time.Now}
}

// Create registra un lote pedido o en camino. Valida los atributos contra la plantilla,
// deriva el nombre si viene vacío y calcula el volumen por unidad con la fórmula.
func (uc *ShipmentUseCase) Create(ctx context.Context, actorID string, in dto.CreateShipmentRequest) (*dto.ShipmentResponse, error) {
	status := in.Status
	if status == "" {
		status = entity.LotStatusOrdered
	}
	if status != entity.LotStatusOrdered && status != entity.LotStatusInTransit && status != entity.LotStatusArrived {
		return nil, domain.ErrInvalidStatus
	}
	if in.Quantity < 0 || strings.TrimSpace(in.Producer) == "" {
		return nil, domain.ErrInvalidInput
	}

	now := uc.now()
	lot := &entity.LotInTransit{
		ID:                  uuid.New().String(),
		TemplateID:          in.TemplateID,
		WarehouseID:         in.WarehouseID,
		Producer:            strings.TrimSpace(in.Producer),
		Name:                strings.TrimSpace(in.Name),
		Quantity:            in.Quantity,
		Status:              status,
		IsActive:            true,
		ShippedAt:           in.ShippedAt,
		ExpectedArrivalDate: in.ExpectedArrivalDate,
		Notes:               in.Notes,
		CreatedBy:           actorID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if status == entity.LotStatusArrived {
		lot.ActualArrivalDate = &now
	}
	if status == entity.LotStatusInTransit && lot.ShippedAt == nil {
		lot.ShippedAt = &now
	}

	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		tpl, err := r.Templates.GetByID(ctx, in.TemplateID)
		if err != nil {
			return err
		}
		if tpl == nil {
			return domain.ErrNotFound
		}
		if !tpl.IsActive {
			return domain.NewStateError("plantilla", tpl.ID, "inactiva", domain.ErrInvalidInput)
		}
		wh, err := r.Warehouses.GetByID(ctx, in.WarehouseID)
		if err != nil {
			return err
		}
		if wh == nil {
			return domain.ErrNotFound
		}
		values, err := template.ParseAttributes(tpl, in.Attributes)
		if err != nil {
			return err
		}
		volume, err := template.ComputeVolume(tpl, values)
		if err != nil {
			return err
		}
		lot.Attributes = values
		lot.CalculatedVolume = volume
		if lot.Name == "" {
			lot.Name = template.DeriveLotName(tpl, values)
		}
		return r.InTransit.Create(ctx, lot)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("lot_id", lot.ID).
		Str("actor", actorID).
		Int64("quantity", lot.Quantity).
		Str("status", lot.Status).
		Msg("lote en tránsito registrado")
	return toShipmentResponse(lot, now), nil
}

// GetByID obtiene un lote en tránsito.
func (uc *ShipmentUseCase) GetByID(ctx context.Context, id string) (*dto.ShipmentResponse, error) {
	lot, err := uc.repos.InTransit.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, nil
	}
	return toShipmentResponse(lot, uc.now()), nil
}

// List lista lotes en tránsito; con Overdue solo los vencidos a la fecha actual.
func (uc *ShipmentUseCase) List(ctx context.Context, in dto.ShipmentFilterRequest, limit, offset int) (*dto.ShipmentListResponse, error) {
	now := uc.now()
	f := repository.ShipmentFilter{
		WarehouseID: in.WarehouseID,
		TemplateID:  in.TemplateID,
		Status:      in.Status,
		Limit:       limit,
		Offset:      offset,
	}
	if in.Overdue {
		f.OverdueAt = &now
	}
	list, err := uc.repos.InTransit.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ShipmentResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toShipmentResponse(l, now))
	}
	return &dto.ShipmentListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// UpdateStatus cambia el estado del lote. Pedir received equivale a Receive, para que nunca
// exista un lote recibido sin su lote en bodega.
func (uc *ShipmentUseCase) UpdateStatus(ctx context.Context, actorID, id, status string) (*dto.ShipmentResponse, error) {
	if status == entity.LotStatusReceived {
		if _, err := uc.Receive(ctx, actorID, id); err != nil {
			return nil, err
		}
		return uc.GetByID(ctx, id)
	}
	if !inventory.IsValidLotStatus(status) {
		return nil, domain.NewStateError("lote en tránsito", id, "", domain.ErrInvalidStatus)
	}

	var lot *entity.LotInTransit
	err := retry.Do(ctx, uc.policy, func(ctx context.Context) error {
		return uc.tx.Run(ctx, func(r repository.Repos) error {
			var err error
			lot, err = r.InTransit.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if lot == nil {
				return domain.ErrNotFound
			}
			if err := inventory.TransitionLot(lot, status, uc.now()); err != nil {
				return err
			}
			return r.InTransit.Update(ctx, lot)
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("lot_id", id).Str("actor", actorID).Str("status", status).Msg("estado de lote actualizado")
	return toShipmentResponse(lot, uc.now()), nil
}

// Cancel pasa el lote a cancelled (final, sin lote en bodega).
func (uc *ShipmentUseCase) Cancel(ctx context.Context, actorID, id string) (*dto.ShipmentResponse, error) {
	return uc.UpdateStatus(ctx, actorID, id, entity.LotStatusCancelled)
}

// Receive recibe el lote en bodega: en una sola transacción bloquea el lote en tránsito,
// crea el lote en bodega y marca el de tránsito como received. Si algo falla no queda ninguno de los dos cambios.
func (uc *ShipmentUseCase) Receive(ctx context.Context, actorID, id string) (*dto.LotResponse, error) {
	var onHand *entity.LotOnHand
	err := retry.Do(ctx, uc.policy, func(ctx context.Context) error {
		return uc.tx.Run(ctx, func(r repository.Repos) error {
			lot, err := r.InTransit.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if lot == nil {
				return domain.ErrNotFound
			}
			onHand, err = inventory.ReceiveLot(lot, uuid.New().String(), actorID, uc.now())
			if err != nil {
				return err
			}
			if err := r.OnHand.Create(ctx, onHand); err != nil {
				return err
			}
			return r.InTransit.Update(ctx, lot)
		})
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("lot_id", id).Str("actor", actorID).Msg("recepción de lote rechazada")
		return nil, err
	}
	uc.log.Info().
		Str("lot_id", id).
		Str("on_hand_id", onHand.ID).
		Str("actor", actorID).
		Int64("quantity", onHand.Quantity).
		Msg("lote recibido en bodega")
	return toLotResponse(onHand), nil
}

// Correct corrige la cantidad de un lote en tránsito no final y registra la discrepancia
// en la misma transacción.
func (uc *ShipmentUseCase) Correct(ctx context.Context, actorID, id string, in dto.CorrectShipmentRequest) (*dto.DiscrepancyResponse, error) {
	var d *entity.Discrepancy
	err := retry.Do(ctx, uc.policy, func(ctx context.Context) error {
		return uc.tx.Run(ctx, func(r repository.Repos) error {
			lot, err := r.InTransit.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if lot == nil {
				return domain.ErrNotFound
			}
			d, err = inventory.CorrectLotQuantity(lot, in.Quantity, strings.TrimSpace(in.Reason), uuid.New().String(), actorID, uc.now())
			if err != nil {
				return err
			}
			if err := r.InTransit.Update(ctx, lot); err != nil {
				return err
			}
			return r.Discrepancies.Create(ctx, d)
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("lot_id", id).
		Str("actor", actorID).
		Int64("old_quantity", *d.OldQuantity).
		Int64("new_quantity", *d.NewQuantity).
		Msg("cantidad de lote corregida")
	return toDiscrepancyResponse(d), nil
}

// RecordDiscrepancy agrega un registro de auditoría (antes/después) de un lote en tránsito.
// Es solo inserción: no depende del estado del lote.
func (uc *ShipmentUseCase) RecordDiscrepancy(ctx context.Context, actorID string, in dto.RecordDiscrepancyRequest) (*dto.DiscrepancyResponse, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, domain.ErrInvalidInput
	}
	lot, err := uc.repos.InTransit.GetByID(ctx, in.LotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	d := &entity.Discrepancy{
		ID:          uuid.New().String(),
		LotID:       in.LotID,
		Reason:      strings.TrimSpace(in.Reason),
		OldQuantity: in.OldQuantity,
		NewQuantity: in.NewQuantity,
		OldColor:    in.OldColor,
		NewColor:    in.NewColor,
		OldSize:     in.OldSize,
		NewSize:     in.NewSize,
		OldWeight:   in.OldWeight,
		NewWeight:   in.NewWeight,
		CreatedBy:   actorID,
		CreatedAt:   uc.now(),
	}
	if err := uc.repos.Discrepancies.Create(ctx, d); err != nil {
		return nil, err
	}
	uc.log.Info().Str("lot_id", in.LotID).Str("actor", actorID).Str("discrepancy_id", d.ID).Msg("discrepancia registrada")
	return toDiscrepancyResponse(d), nil
}

// ListDiscrepancies discrepancias de un lote, de la más antigua a la más reciente.
func (uc *ShipmentUseCase) ListDiscrepancies(ctx context.Context, lotID string) ([]dto.DiscrepancyResponse, error) {
	list, err := uc.repos.Discrepancies.ListByLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DiscrepancyResponse, 0, len(list))
	for _, d := range list {
		out = append(out, *toDiscrepancyResponse(d))
	}
	return out, nil
}
