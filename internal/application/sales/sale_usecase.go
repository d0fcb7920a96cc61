package sales

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
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

// SaleUseCase ventas contra lotes en bodega.
// Procesar y cancelar mueven cantidad del lote: toman el candado del lote, bloquean las filas
// (venta y luego lote) y escriben el lote con chequeo de versión. Los conflictos se reintentan
// según la política configurada.
type SaleUseCase struct {
	tx     ports.TxRunner
	repos  repository.Repos
	locker ports.LotLocker
	policy retry.Policy
	log    *logger.Logger
	now    func() time.Time
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(tx ports.TxRunner, repos repository.Repos, locker ports.LotLocker, policy retry.Policy, log *logger.Logger) *SaleUseCase {
	return &SaleUseCase{tx: tx, repos: repos, locker: locker, policy: policy, log: log, now: time.Now}
}

// Create registra una venta pendiente. La cantidad no puede superar la del lote en este momento;
// el stock no se descuenta hasta Process.
func (uc *SaleUseCase) Create(ctx context.Context, actorID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	now := uc.now()
	sale := &entity.Sale{
		ID:           uuid.New().String(),
		CustomerName: strings.TrimSpace(in.CustomerName),
		Quantity:     in.Quantity,
		UnitPrice:    in.UnitPrice,
		VATRate:      in.VATRate,
		Notes:        in.Notes,
		CreatedBy:    actorID,
	}
	if in.SaleDate != nil {
		sale.SaleDate = *in.SaleDate
	}
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		lot, err := r.OnHand.GetByID(ctx, in.LotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrNotFound
		}
		if err := inventory.NewSale(lot, sale, now); err != nil {
			return err
		}
		return r.Sales.Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("lot_id", sale.LotID).
		Str("actor", actorID).
		Int64("quantity", sale.Quantity).
		Str("total", sale.TotalPrice.StringFixed(inventory.MoneyPlaces)).
		Msg("venta registrada")
	return toSaleResponse(sale), nil
}

// GetByID obtiene una venta; (nil, nil) si no existe.
func (uc *SaleUseCase) GetByID(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.repos.Sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale), nil
}

// List lista ventas con filtros.
func (uc *SaleUseCase) List(ctx context.Context, in dto.SaleFilterRequest, limit, offset int) (*dto.SaleListResponse, error) {
	list, err := uc.repos.Sales.List(ctx, repository.SaleFilter{
		LotID:         in.LotID,
		WarehouseID:   in.WarehouseID,
		PaymentStatus: in.PaymentStatus,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSaleResponse(s))
	}
	return &dto.SaleListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

// Update cambia una venta pendiente y recalcula precios.
func (uc *SaleUseCase) Update(ctx context.Context, actorID, id string, in dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	var sale *entity.Sale
	err := retry.Do(ctx, uc.policy, func(ctx context.Context) error {
		return uc.tx.Run(ctx, func(r repository.Repos) error {
			var err error
			sale, err = r.Sales.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if sale == nil {
				return domain.ErrNotFound
			}
			lot, err := r.OnHand.GetByID(ctx, sale.LotID)
			if err != nil {
				return err
			}
			if lot == nil {
				return domain.ErrNotFound
			}
			if err := inventory.UpdatePendingSale(lot, sale, in.Quantity, in.UnitPrice, in.VATRate, uc.now()); err != nil {
				return err
			}
			if in.CustomerName != nil {
				sale.CustomerName = strings.TrimSpace(*in.CustomerName)
			}
			if in.Notes != nil {
				sale.Notes = *in.Notes
			}
			return r.Sales.Update(ctx, sale)
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sale_id", id).Str("actor", actorID).Int64("quantity", sale.Quantity).Msg("venta actualizada")
	return toSaleResponse(sale), nil
}

// Process descuenta la venta del lote y la marca pagada y entregada.
// Con stock insuficiente no hay ningún efecto (ErrInsufficientStock).
func (uc *SaleUseCase) Process(ctx context.Context, actorID, id string) (*dto.SaleResponse, error) {
	sale, err := uc.mutateLot(ctx, id, func(sale *entity.Sale, lot *entity.LotOnHand) (bool, error) {
		if err := inventory.ProcessSale(lot, sale, actorID, uc.now()); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("sale_id", id).Str("actor", actorID).Msg("procesamiento de venta rechazado")
		return nil, err
	}
	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("lot_id", sale.LotID).
		Str("actor", actorID).
		Int64("quantity", sale.Quantity).
		Msg("venta procesada")
	return toSaleResponse(sale), nil
}

// Cancel anula la venta; si ya estaba descontada devuelve la cantidad al lote.
// Cancelar dos veces devuelve ErrAlreadyCancelled y nunca acredita dos veces.
func (uc *SaleUseCase) Cancel(ctx context.Context, actorID, id string) (*dto.SaleResponse, error) {
	var credited int64
	sale, err := uc.mutateLot(ctx, id, func(sale *entity.Sale, lot *entity.LotOnHand) (bool, error) {
		var err error
		credited, err = inventory.CancelSale(lot, sale, actorID, uc.now())
		if err != nil {
			return false, err
		}
		return credited > 0, nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("lot_id", sale.LotID).
		Str("actor", actorID).
		Int64("credited", credited).
		Msg("venta cancelada")
	return toSaleResponse(sale), nil
}

// mutateLot ejecuta fn con la venta y su lote bloqueados. Si fn indica que la cantidad del lote
// cambió, se escribe con chequeo de versión; la venta se guarda siempre.
func (uc *SaleUseCase) mutateLot(ctx context.Context, saleID string, fn func(sale *entity.Sale, lot *entity.LotOnHand) (bool, error)) (*entity.Sale, error) {
	current, err := uc.repos.Sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	lotID := current.LotID

	var sale *entity.Sale
	err = retry.Do(ctx, uc.policy, func(ctx context.Context) error {
		unlock, err := uc.locker.Lock(ctx, lotID)
		if err != nil {
			return err
		}
		defer unlock()

		return uc.tx.Run(ctx, func(r repository.Repos) error {
			s, err := r.Sales.GetForUpdate(ctx, saleID)
			if err != nil {
				return err
			}
			if s == nil {
				return domain.ErrNotFound
			}
			lot, err := r.OnHand.GetForUpdate(ctx, lotID)
			if err != nil {
				return err
			}
			if lot == nil {
				return domain.ErrNotFound
			}
			version := lot.Version
			changed, err := fn(s, lot)
			if err != nil {
				return err
			}
			if changed {
				if _, err := r.OnHand.UpdateQuantity(ctx, lot.ID, lot.Quantity, version); err != nil {
					return err
				}
			}
			if err := r.Sales.Update(ctx, s); err != nil {
				return err
			}
			sale = s
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// UpdatePaymentStatus cambia el estado de pago de una venta pendiente (pending / partially_paid).
func (uc *SaleUseCase) UpdatePaymentStatus(ctx context.Context, actorID, id, status string) (*dto.SaleResponse, error) {
	return uc.updateStatus(ctx, actorID, id, func(s *entity.Sale) error {
		return inventory.SetPaymentStatus(s, status, uc.now())
	})
}

// UpdateDeliveryStatus cambia el estado de entrega de una venta pendiente (pending / in_progress).
func (uc *SaleUseCase) UpdateDeliveryStatus(ctx context.Context, actorID, id, status string) (*dto.SaleResponse, error) {
	return uc.updateStatus(ctx, actorID, id, func(s *entity.Sale) error {
		return inventory.SetDeliveryStatus(s, status, uc.now())
	})
}

func (uc *SaleUseCase) updateStatus(ctx context.Context, actorID, id string, apply func(s *entity.Sale) error) (*dto.SaleResponse, error) {
	var sale *entity.Sale
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		var err error
		sale, err = r.Sales.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if err := apply(sale); err != nil {
			return err
		}
		return r.Sales.Update(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("sale_id", id).
		Str("actor", actorID).
		Str("payment_status", sale.PaymentStatus).
		Str("delivery_status", sale.DeliveryStatus).
		Msg("estado de venta actualizado")
	return toSaleResponse(sale), nil
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	if s == nil {
		return nil
	}
	return &dto.SaleResponse{
		ID:              s.ID,
		LotID:           s.LotID,
		WarehouseID:     s.WarehouseID,
		CustomerName:    s.CustomerName,
		Quantity:        s.Quantity,
		UnitPrice:       s.UnitPrice,
		VATRate:         s.VATRate,
		PriceWithoutVAT: s.PriceWithoutVAT,
		VATAmount:       s.VATAmount,
		TotalPrice:      s.TotalPrice,
		PaymentStatus:   s.PaymentStatus,
		DeliveryStatus:  s.DeliveryStatus,
		StockApplied:    s.StockApplied,
		SaleDate:        s.SaleDate,
		DeliveryDate:    s.DeliveryDate,
		CancelledAt:     s.CancelledAt,
		Notes:           s.Notes,
		CreatedBy:       s.CreatedBy,
		ProcessedBy:     s.ProcessedBy,
		CancelledBy:     s.CancelledBy,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
