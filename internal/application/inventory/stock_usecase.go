package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/application/ports"
	"github.com/jhoicas/Inventario-lotes/internal/application/retry"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

// StockUseCase lotes en bodega y stock agrupado: consulta, integridad, exportación y ajustes manuales.
type StockUseCase struct {
	tx       ports.TxRunner
	repos    repository.Repos
	locker   ports.LotLocker
	exporter StockExporter
	policy   retry.Policy
	log      *logger.Logger
	now      func() time.Time
}

// NewStockUseCase construye el caso de uso. exporter puede ser nil si no se expone la exportación.
func NewStockUseCase(tx ports.TxRunner, repos repository.Repos, locker ports.LotLocker, exporter StockExporter, policy retry.Policy, log *logger.Logger) *StockUseCase {
	return &StockUseCase{
		tx:       tx,
		repos:    repos,
		locker:   locker,
		exporter: exporter,
		policy:   policy,
		log:      log,
		now:      time.Now,
	}
}

// QueryAvailableStock agrupa los lotes activos en bodega y descuenta los reclamos abiertos.
// Lotes y ventas se leen en la misma foto (transacción de solo lectura).
func (uc *StockUseCase) QueryAvailableStock(ctx context.Context, in dto.StockQueryRequest) ([]dto.StockGroupResponse, error) {
	groups, err := uc.aggregate(ctx, in, in.IncludeEmpty)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockGroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, toStockGroupResponse(g))
	}
	return out, nil
}

// Integrity reporta los grupos cuyo total con signo es negativo (reclamos por encima del stock).
func (uc *StockUseCase) Integrity(ctx context.Context, in dto.StockQueryRequest) (*dto.StockIntegrityResponse, error) {
	groups, err := uc.aggregate(ctx, in, true)
	if err != nil {
		return nil, err
	}
	negative := inventory.NegativeGroups(groups)
	resp := &dto.StockIntegrityResponse{OK: len(negative) == 0, Groups: make([]dto.StockGroupResponse, 0, len(negative))}
	for _, g := range negative {
		resp.Groups = append(resp.Groups, toStockGroupResponse(g))
		uc.log.Warn().
			Str("template_id", g.TemplateID).
			Str("warehouse_id", g.WarehouseID).
			Str("producer", g.Producer).
			Int64("total_quantity", g.TotalQuantity).
			Msg("grupo de stock con total negativo")
	}
	return resp, nil
}

// Export genera el XLSX del stock disponible. Devuelve el contenido y un nombre de archivo sugerido.
func (uc *StockUseCase) Export(ctx context.Context, in dto.StockQueryRequest) ([]byte, string, error) {
	if uc.exporter == nil {
		return nil, "", errors.New("exportación de stock no configurada")
	}
	groups, err := uc.aggregate(ctx, in, in.IncludeEmpty)
	if err != nil {
		return nil, "", err
	}
	data, err := uc.exporter.ExportStock(ctx, groups)
	if err != nil {
		return nil, "", fmt.Errorf("exportar stock: %w", err)
	}
	return data, fmt.Sprintf("stock_%s.xlsx", uc.now().Format("20060102_1504")), nil
}

func (uc *StockUseCase) aggregate(ctx context.Context, in dto.StockQueryRequest, includeEmpty bool) ([]entity.StockGroup, error) {
	var groups []entity.StockGroup
	err := uc.tx.RunReadOnly(ctx, func(r repository.Repos) error {
		lots, err := r.OnHand.List(ctx, repository.LotFilter{
			WarehouseID: in.WarehouseID,
			TemplateID:  in.TemplateID,
			Producer:    strings.TrimSpace(in.Producer),
			OnlyActive:  true,
		})
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(lots))
		for _, l := range lots {
			ids = append(ids, l.ID)
		}
		var claims []entity.Claim
		if len(ids) > 0 {
			claims, err = r.Sales.ListOpenClaims(ctx, ids)
			if err != nil {
				return err
			}
		}
		groups = inventory.AggregateStock(lots, claims, includeEmpty)

		templates := make(map[string]*entity.ProductTemplate)
		for i := range groups {
			id := groups[i].TemplateID
			tpl, ok := templates[id]
			if !ok {
				tpl, err = r.Templates.GetByID(ctx, id)
				if err != nil {
					return err
				}
				templates[id] = tpl
			}
			if tpl != nil {
				groups[i].TemplateName = tpl.Name
				groups[i].Unit = tpl.Unit
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// ListLots lista lotes en bodega.
func (uc *StockUseCase) ListLots(ctx context.Context, in dto.LotFilterRequest, onlyActive bool, limit, offset int) (*dto.LotListResponse, error) {
	list, err := uc.repos.OnHand.List(ctx, repository.LotFilter{
		WarehouseID: in.WarehouseID,
		TemplateID:  in.TemplateID,
		Producer:    strings.TrimSpace(in.Producer),
		OnlyActive:  onlyActive,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.LotResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLotResponse(l))
	}
	return &dto.LotListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

// GetLot obtiene un lote en bodega.
func (uc *StockUseCase) GetLot(ctx context.Context, id string) (*dto.LotResponse, error) {
	lot, err := uc.repos.OnHand.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toLotResponse(lot), nil
}

// AdjustLotQuantity fija la cantidad de un lote en bodega (conteo físico). El cliente envía la
// versión que leyó: si el lote cambió entretanto se devuelve ErrConflict.
func (uc *StockUseCase) AdjustLotQuantity(ctx context.Context, actorID, id string, in dto.AdjustLotRequest) (*dto.LotResponse, error) {
	var (
		lot *entity.LotOnHand
		old int64
	)
	err := retry.Do(ctx, uc.policy, func(ctx context.Context) error {
		unlock, err := uc.locker.Lock(ctx, id)
		if err != nil {
			return err
		}
		defer unlock()

		return uc.tx.Run(ctx, func(r repository.Repos) error {
			lot, err = r.OnHand.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if lot == nil {
				return domain.ErrNotFound
			}
			old = lot.Quantity
			if err := inventory.AdjustOnHandQuantity(lot, in.Quantity, in.Version, uc.now()); err != nil {
				return err
			}
			v, err := r.OnHand.UpdateQuantity(ctx, lot.ID, lot.Quantity, in.Version)
			if err != nil {
				return err
			}
			lot.Version = v
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("lot_id", id).
		Str("actor", actorID).
		Int64("old_quantity", old).
		Int64("new_quantity", lot.Quantity).
		Int64("version", lot.Version).
		Str("reason", in.Reason).
		Msg("cantidad de lote ajustada")
	return toLotResponse(lot), nil
}

// SetLotActive activa o desactiva un lote en bodega. Un lote inactivo no se vende
// ni cuenta en el stock disponible.
func (uc *StockUseCase) SetLotActive(ctx context.Context, actorID, id string, active bool) (*dto.LotResponse, error) {
	var lot *entity.LotOnHand
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		var err error
		lot, err = r.OnHand.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrNotFound
		}
		if err := r.OnHand.SetActive(ctx, id, active); err != nil {
			return err
		}
		lot.IsActive = active
		lot.UpdatedAt = uc.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("lot_id", id).Str("actor", actorID).Bool("active", active).Msg("estado activo de lote actualizado")
	return toLotResponse(lot), nil
}
