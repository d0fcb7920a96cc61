package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

var saleColumns = []any{
	"id", "lot_id", "warehouse_id", "customer_name", "quantity", "unit_price", "vat_rate", "price_without_vat",
	"vat_amount", "total_price", "payment_status", "delivery_status", "stock_applied", "sale_date", "delivery_date",
	"cancelled_at", "notes", "created_by", "processed_by", "cancelled_by", "created_at", "updated_at",
}

// SaleRepo implementación del puerto SaleRepository sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste una venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales (id, lot_id, warehouse_id, customer_name, quantity, unit_price, vat_rate, price_without_vat,
			vat_amount, total_price, payment_status, delivery_status, stock_applied, sale_date, delivery_date,
			cancelled_at, notes, created_by, processed_by, cancelled_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		s.ID, s.LotID, s.WarehouseID, s.CustomerName, s.Quantity, s.UnitPrice, s.VATRate, s.PriceWithoutVAT,
		s.VATAmount, s.TotalPrice, s.PaymentStatus, s.DeliveryStatus, s.StockApplied, s.SaleDate, s.DeliveryDate,
		s.CancelledAt, s.Notes, s.CreatedBy, s.ProcessedBy, s.CancelledBy, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return dbError("insert sale", err)
	}
	return nil
}

// GetByID obtiene una venta; (nil, nil) si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, from("sales").Select(saleColumns...).Where(goqu.Ex{"id": id}))
}

// GetForUpdate obtiene la venta bloqueando la fila.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, from("sales").Select(saleColumns...).Where(goqu.Ex{"id": id}).ForUpdate(exp.Wait))
}

func (r *SaleRepo) get(ctx context.Context, ds *goqu.SelectDataset) (*entity.Sale, error) {
	sql, args, err := toSQL(ds)
	if err != nil {
		return nil, err
	}
	s, err := scanSale(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dbError("get sale", err)
	}
	return s, nil
}

// Update guarda todos los campos mutables de la venta.
func (r *SaleRepo) Update(ctx context.Context, s *entity.Sale) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE sales SET customer_name = $2, quantity = $3, unit_price = $4, vat_rate = $5, price_without_vat = $6,
			vat_amount = $7, total_price = $8, payment_status = $9, delivery_status = $10, stock_applied = $11,
			delivery_date = $12, cancelled_at = $13, notes = $14, processed_by = $15, cancelled_by = $16, updated_at = $17
		WHERE id = $1`,
		s.ID, s.CustomerName, s.Quantity, s.UnitPrice, s.VATRate, s.PriceWithoutVAT,
		s.VATAmount, s.TotalPrice, s.PaymentStatus, s.DeliveryStatus, s.StockApplied,
		s.DeliveryDate, s.CancelledAt, s.Notes, s.ProcessedBy, s.CancelledBy, s.UpdatedAt,
	)
	if err != nil {
		return dbError("update sale", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista ventas, más recientes primero.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	ds := from("sales").Select(saleColumns...).Order(goqu.C("sale_date").Desc(), goqu.C("id").Asc())
	ex := goqu.Ex{}
	if f.LotID != "" {
		ex["lot_id"] = f.LotID
	}
	if f.WarehouseID != "" {
		ex["warehouse_id"] = f.WarehouseID
	}
	if f.PaymentStatus != "" {
		ex["payment_status"] = f.PaymentStatus
	}
	if len(ex) > 0 {
		ds = ds.Where(ex)
	}
	sql, args, err := toSQL(paginate(ds, f.Limit, f.Offset))
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbError("list sales", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// ListOpenClaims ventas no canceladas y aún no descontadas de los lotes indicados.
// Usa el índice parcial sales_open_claims_idx.
func (r *SaleRepo) ListOpenClaims(ctx context.Context, lotIDs []string) ([]entity.Claim, error) {
	if len(lotIDs) == 0 {
		return nil, nil
	}
	ds := from("sales").Select("id", "lot_id", "quantity").
		Where(
			goqu.Ex{"lot_id": lotIDs, "stock_applied": false},
			goqu.C("payment_status").Neq(entity.PaymentStatusCancelled),
		).
		Order(goqu.C("id").Asc())
	sql, args, err := toSQL(ds)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbError("list open claims", err)
	}
	defer rows.Close()
	var claims []entity.Claim
	for rows.Next() {
		var c entity.Claim
		if err := rows.Scan(&c.SaleID, &c.LotID, &c.Quantity); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(&s.ID, &s.LotID, &s.WarehouseID, &s.CustomerName, &s.Quantity, &s.UnitPrice, &s.VATRate,
		&s.PriceWithoutVAT, &s.VATAmount, &s.TotalPrice, &s.PaymentStatus, &s.DeliveryStatus, &s.StockApplied,
		&s.SaleDate, &s.DeliveryDate, &s.CancelledAt, &s.Notes, &s.CreatedBy, &s.ProcessedBy, &s.CancelledBy,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
