package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

var (
	_ repository.LotInTransitRepository = (*LotInTransitRepo)(nil)
	_ repository.LotOnHandRepository    = (*LotOnHandRepo)(nil)
)

// ── Lotes en tránsito ────────────────────────────────────────────────────────

var inTransitColumns = []any{
	"id", "template_id", "warehouse_id", "producer", "name", "attributes", "quantity", "calculated_volume",
	"status", "is_active", "shipped_at", "expected_arrival_date", "actual_arrival_date", "received_lot_id",
	"notes", "created_by", "created_at", "updated_at",
}

// LotInTransitRepo lotes pedidos o en camino (lots_in_transit).
type LotInTransitRepo struct {
	q Querier
}

// NewLotInTransitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotInTransitRepository(q Querier) *LotInTransitRepo {
	return &LotInTransitRepo{q: q}
}

// Create persiste un lote en tránsito.
func (r *LotInTransitRepo) Create(ctx context.Context, l *entity.LotInTransit) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO lots_in_transit (id, template_id, warehouse_id, producer, name, attributes, quantity, calculated_volume,
			status, is_active, shipped_at, expected_arrival_date, actual_arrival_date, received_lot_id, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		l.ID, l.TemplateID, l.WarehouseID, l.Producer, l.Name, attributesOrEmpty(l.Attributes), l.Quantity, l.CalculatedVolume,
		l.Status, l.IsActive, l.ShippedAt, l.ExpectedArrivalDate, l.ActualArrivalDate, nullString(l.ReceivedLotID),
		l.Notes, l.CreatedBy, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return dbError("insert lot in transit", err)
	}
	return nil
}

// GetByID obtiene un lote en tránsito; (nil, nil) si no existe.
func (r *LotInTransitRepo) GetByID(ctx context.Context, id string) (*entity.LotInTransit, error) {
	return r.get(ctx, from("lots_in_transit").Select(inTransitColumns...).Where(goqu.Ex{"id": id}))
}

// GetForUpdate obtiene el lote bloqueando la fila hasta el fin de la transacción.
func (r *LotInTransitRepo) GetForUpdate(ctx context.Context, id string) (*entity.LotInTransit, error) {
	return r.get(ctx, from("lots_in_transit").Select(inTransitColumns...).Where(goqu.Ex{"id": id}).ForUpdate(exp.Wait))
}

func (r *LotInTransitRepo) get(ctx context.Context, ds *goqu.SelectDataset) (*entity.LotInTransit, error) {
	sql, args, err := toSQL(ds)
	if err != nil {
		return nil, err
	}
	l, err := scanInTransit(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dbError("get lot in transit", err)
	}
	return l, nil
}

// Update guarda estado, cantidad, fechas y lote recibido.
func (r *LotInTransitRepo) Update(ctx context.Context, l *entity.LotInTransit) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE lots_in_transit SET name = $2, attributes = $3, quantity = $4, calculated_volume = $5, status = $6,
			is_active = $7, shipped_at = $8, expected_arrival_date = $9, actual_arrival_date = $10,
			received_lot_id = $11, notes = $12, updated_at = $13
		WHERE id = $1`,
		l.ID, l.Name, attributesOrEmpty(l.Attributes), l.Quantity, l.CalculatedVolume, l.Status,
		l.IsActive, l.ShippedAt, l.ExpectedArrivalDate, l.ActualArrivalDate,
		nullString(l.ReceivedLotID), l.Notes, l.UpdatedAt,
	)
	if err != nil {
		return dbError("update lot in transit", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista lotes en tránsito, más recientes primero.
func (r *LotInTransitRepo) List(ctx context.Context, f repository.ShipmentFilter) ([]*entity.LotInTransit, error) {
	ds := from("lots_in_transit").Select(inTransitColumns...).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Asc())
	ex := goqu.Ex{}
	if f.WarehouseID != "" {
		ex["warehouse_id"] = f.WarehouseID
	}
	if f.TemplateID != "" {
		ex["template_id"] = f.TemplateID
	}
	if f.Status != "" {
		ex["status"] = f.Status
	}
	if len(ex) > 0 {
		ds = ds.Where(ex)
	}
	if f.OverdueAt != nil {
		ds = ds.Where(
			goqu.C("expected_arrival_date").Lt(*f.OverdueAt),
			goqu.C("status").NotIn(entity.LotStatusReceived, entity.LotStatusCancelled),
		)
	}
	sql, args, err := toSQL(paginate(ds, f.Limit, f.Offset))
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbError("list lots in transit", err)
	}
	defer rows.Close()
	var list []*entity.LotInTransit
	for rows.Next() {
		l, err := scanInTransit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot in transit: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func scanInTransit(row pgx.Row) (*entity.LotInTransit, error) {
	var (
		l        entity.LotInTransit
		received *string
	)
	err := row.Scan(&l.ID, &l.TemplateID, &l.WarehouseID, &l.Producer, &l.Name, &l.Attributes, &l.Quantity,
		&l.CalculatedVolume, &l.Status, &l.IsActive, &l.ShippedAt, &l.ExpectedArrivalDate, &l.ActualArrivalDate,
		&received, &l.Notes, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.ReceivedLotID = fromNull(received)
	return &l, nil
}

// ── Lotes en bodega ──────────────────────────────────────────────────────────

var onHandColumns = []any{
	"id", "template_id", "warehouse_id", "producer", "name", "attributes", "quantity", "calculated_volume",
	"is_active", "source_lot_id", "version", "received_at", "created_by", "created_at", "updated_at",
}

// LotOnHandRepo lotes en bodega (lots_on_hand) con versión para escrituras optimistas.
type LotOnHandRepo struct {
	q Querier
}

// NewLotOnHandRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotOnHandRepository(q Querier) *LotOnHandRepo {
	return &LotOnHandRepo{q: q}
}

// Create persiste un lote en bodega. source_lot_id es único: un lote en tránsito genera a lo sumo uno.
func (r *LotOnHandRepo) Create(ctx context.Context, l *entity.LotOnHand) error {
	if l.Version == 0 {
		l.Version = 1
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO lots_on_hand (id, template_id, warehouse_id, producer, name, attributes, quantity, calculated_volume,
			is_active, source_lot_id, version, received_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		l.ID, l.TemplateID, l.WarehouseID, l.Producer, l.Name, attributesOrEmpty(l.Attributes), l.Quantity, l.CalculatedVolume,
		l.IsActive, nullString(l.SourceLotID), l.Version, l.ReceivedAt, l.CreatedBy, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return dbError("insert lot on hand", err)
	}
	return nil
}

// GetByID obtiene un lote en bodega; (nil, nil) si no existe.
func (r *LotOnHandRepo) GetByID(ctx context.Context, id string) (*entity.LotOnHand, error) {
	return r.get(ctx, from("lots_on_hand").Select(onHandColumns...).Where(goqu.Ex{"id": id}))
}

// GetForUpdate obtiene el lote bloqueando la fila; vencido lock_timeout devuelve domain.ErrBusy.
func (r *LotOnHandRepo) GetForUpdate(ctx context.Context, id string) (*entity.LotOnHand, error) {
	return r.get(ctx, from("lots_on_hand").Select(onHandColumns...).Where(goqu.Ex{"id": id}).ForUpdate(exp.Wait))
}

func (r *LotOnHandRepo) get(ctx context.Context, ds *goqu.SelectDataset) (*entity.LotOnHand, error) {
	sql, args, err := toSQL(ds)
	if err != nil {
		return nil, err
	}
	l, err := scanOnHand(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dbError("get lot on hand", err)
	}
	return l, nil
}

// UpdateQuantity escribe la cantidad si la versión no cambió e incrementa la versión.
func (r *LotOnHandRepo) UpdateQuantity(ctx context.Context, id string, quantity, expectedVersion int64) (int64, error) {
	var version int64
	err := r.q.QueryRow(ctx, `
		UPDATE lots_on_hand SET quantity = $2, version = version + 1, updated_at = $4
		WHERE id = $1 AND version = $3
		RETURNING version`,
		id, quantity, expectedVersion, time.Now(),
	).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.NewStateError("lote en bodega", id, fmt.Sprintf("versión distinta de %d", expectedVersion), domain.ErrConflict)
		}
		return 0, dbError("update lot quantity", err)
	}
	return version, nil
}

// SetActive activa o desactiva el lote.
func (r *LotOnHandRepo) SetActive(ctx context.Context, id string, active bool) error {
	cmd, err := r.q.Exec(ctx, `UPDATE lots_on_hand SET is_active = $2, updated_at = $3 WHERE id = $1`, id, active, time.Now())
	if err != nil {
		return dbError("update lot active", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista lotes en bodega, más recientes primero. Limit 0 trae todos (agregado de stock).
func (r *LotOnHandRepo) List(ctx context.Context, f repository.LotFilter) ([]*entity.LotOnHand, error) {
	ds := from("lots_on_hand").Select(onHandColumns...).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Asc())
	ex := goqu.Ex{}
	if f.WarehouseID != "" {
		ex["warehouse_id"] = f.WarehouseID
	}
	if f.TemplateID != "" {
		ex["template_id"] = f.TemplateID
	}
	if f.OnlyActive {
		ex["is_active"] = true
	}
	if len(ex) > 0 {
		ds = ds.Where(ex)
	}
	if f.Producer != "" {
		ds = ds.Where(goqu.C("producer").ILike(f.Producer))
	}
	sql, args, err := toSQL(paginate(ds, f.Limit, f.Offset))
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbError("list lots on hand", err)
	}
	defer rows.Close()
	var list []*entity.LotOnHand
	for rows.Next() {
		l, err := scanOnHand(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot on hand: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func scanOnHand(row pgx.Row) (*entity.LotOnHand, error) {
	var (
		l      entity.LotOnHand
		source *string
	)
	err := row.Scan(&l.ID, &l.TemplateID, &l.WarehouseID, &l.Producer, &l.Name, &l.Attributes, &l.Quantity,
		&l.CalculatedVolume, &l.IsActive, &source, &l.Version, &l.ReceivedAt, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.SourceLotID = fromNull(source)
	return &l, nil
}

// attributesOrEmpty la columna attributes es NOT NULL; un mapa nil se guarda como {}.
func attributesOrEmpty(vs entity.AttributeValues) entity.AttributeValues {
	if vs == nil {
		return entity.AttributeValues{}
	}
	return vs
}
