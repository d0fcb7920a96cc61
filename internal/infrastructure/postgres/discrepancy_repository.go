package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

var _ repository.DiscrepancyRepository = (*DiscrepancyRepo)(nil)

// DiscrepancyRepo registro de correcciones (discrepancies). Solo INSERT y SELECT.
type DiscrepancyRepo struct {
	q Querier
}

// NewDiscrepancyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDiscrepancyRepository(q Querier) *DiscrepancyRepo {
	return &DiscrepancyRepo{q: q}
}

// Create inserta una discrepancia.
func (r *DiscrepancyRepo) Create(ctx context.Context, d *entity.Discrepancy) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO discrepancies (id, lot_id, reason, old_quantity, new_quantity, old_color, new_color,
			old_size, new_size, old_weight, new_weight, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		d.ID, d.LotID, d.Reason, d.OldQuantity, d.NewQuantity, d.OldColor, d.NewColor,
		d.OldSize, d.NewSize, d.OldWeight, d.NewWeight, d.CreatedBy, d.CreatedAt,
	)
	if err != nil {
		return dbError("insert discrepancy", err)
	}
	return nil
}

// ListByLot discrepancias de un lote, más antiguas primero.
func (r *DiscrepancyRepo) ListByLot(ctx context.Context, lotID string) ([]*entity.Discrepancy, error) {
	ds := from("discrepancies").
		Select("id", "lot_id", "reason", "old_quantity", "new_quantity", "old_color", "new_color",
			"old_size", "new_size", "old_weight", "new_weight", "created_by", "created_at").
		Where(goqu.Ex{"lot_id": lotID}).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc())
	sql, args, err := toSQL(ds)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbError("list discrepancies", err)
	}
	defer rows.Close()
	var list []*entity.Discrepancy
	for rows.Next() {
		var d entity.Discrepancy
		if err := rows.Scan(&d.ID, &d.LotID, &d.Reason, &d.OldQuantity, &d.NewQuantity, &d.OldColor, &d.NewColor,
			&d.OldSize, &d.NewSize, &d.OldWeight, &d.NewWeight, &d.CreatedBy, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan discrepancy: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}
