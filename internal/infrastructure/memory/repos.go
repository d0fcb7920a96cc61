package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

var (
	_ repository.TemplateRepository     = (*TemplateRepo)(nil)
	_ repository.LotInTransitRepository = (*LotInTransitRepo)(nil)
	_ repository.LotOnHandRepository    = (*LotOnHandRepo)(nil)
	_ repository.SaleRepository         = (*SaleRepo)(nil)
	_ repository.DiscrepancyRepository  = (*DiscrepancyRepo)(nil)
	_ repository.WarehouseRepository    = (*WarehouseRepo)(nil)
	_ repository.UserRepository         = (*UserRepo)(nil)
)

// page aplica limit/offset; limit 0 = sin límite.
func page[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// ── Plantillas ───────────────────────────────────────────────────────────────

// TemplateRepo plantillas en memoria.
type TemplateRepo struct{ t *txn }

func cloneTemplate(t *entity.ProductTemplate) *entity.ProductTemplate {
	c := *t
	c.Attributes = make([]entity.ProductAttribute, len(t.Attributes))
	for i, a := range t.Attributes {
		a.Options = append([]string(nil), a.Options...)
		c.Attributes[i] = a
	}
	return &c
}

func (r *TemplateRepo) Create(ctx context.Context, t *entity.ProductTemplate) error {
	return r.t.write(ctx, func(st *state) error {
		if _, ok := st.templates[t.ID]; ok {
			return domain.ErrDuplicate
		}
		st.templates[t.ID] = cloneTemplate(t)
		return nil
	})
}

func (r *TemplateRepo) GetByID(_ context.Context, id string) (*entity.ProductTemplate, error) {
	t, ok := r.t.read().templates[id]
	if !ok {
		return nil, nil
	}
	return cloneTemplate(t), nil
}

func (r *TemplateRepo) Update(ctx context.Context, t *entity.ProductTemplate) error {
	return r.t.write(ctx, func(st *state) error {
		if _, ok := st.templates[t.ID]; !ok {
			return domain.ErrNotFound
		}
		st.templates[t.ID] = cloneTemplate(t)
		return nil
	})
}

func (r *TemplateRepo) List(_ context.Context, f repository.TemplateFilter) ([]*entity.ProductTemplate, error) {
	var out []*entity.ProductTemplate
	for _, t := range r.t.read().templates {
		if f.OnlyActive && !t.IsActive {
			continue
		}
		out = append(out, cloneTemplate(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

// ── Lotes en tránsito ────────────────────────────────────────────────────────

// LotInTransitRepo lotes en tránsito en memoria.
type LotInTransitRepo struct{ t *txn }

func cloneInTransit(l *entity.LotInTransit) *entity.LotInTransit {
	c := *l
	c.Attributes = l.Attributes.Clone()
	return &c
}

func (r *LotInTransitRepo) Create(ctx context.Context, lot *entity.LotInTransit) error {
	return r.t.write(ctx, func(st *state) error {
		if _, ok := st.inTransit[lot.ID]; ok {
			return domain.ErrDuplicate
		}
		st.inTransit[lot.ID] = cloneInTransit(lot)
		return nil
	})
}

func (r *LotInTransitRepo) GetByID(_ context.Context, id string) (*entity.LotInTransit, error) {
	l, ok := r.t.read().inTransit[id]
	if !ok {
		return nil, nil
	}
	return cloneInTransit(l), nil
}

// GetForUpdate igual que GetByID: las transacciones de escritura ya se ejecutan de a una.
func (r *LotInTransitRepo) GetForUpdate(ctx context.Context, id string) (*entity.LotInTransit, error) {
	return r.GetByID(ctx, id)
}

func (r *LotInTransitRepo) Update(ctx context.Context, lot *entity.LotInTransit) error {
	return r.t.write(ctx, func(st *state) error {
		if _, ok := st.inTransit[lot.ID]; !ok {
			return domain.ErrNotFound
		}
		st.inTransit[lot.ID] = cloneInTransit(lot)
		return nil
	})
}

func (r *LotInTransitRepo) List(_ context.Context, f repository.ShipmentFilter) ([]*entity.LotInTransit, error) {
	var out []*entity.LotInTransit
	for _, l := range r.t.read().inTransit {
		if f.WarehouseID != "" && l.WarehouseID != f.WarehouseID {
			continue
		}
		if f.TemplateID != "" && l.TemplateID != f.TemplateID {
			continue
		}
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if f.OverdueAt != nil && !l.IsOverdue(*f.OverdueAt) {
			continue
		}
		out = append(out, cloneInTransit(l))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

// ── Lotes en bodega ──────────────────────────────────────────────────────────

// LotOnHandRepo lotes en bodega en memoria.
type LotOnHandRepo struct{ t *txn }

func cloneOnHand(l *entity.LotOnHand) *entity.LotOnHand {
	c := *l
	c.Attributes = l.Attributes.Clone()
	return &c
}

func (r *LotOnHandRepo) Create(ctx context.Context, lot *entity.LotOnHand) error {
	return r.t.write(ctx, func(st *state) error {
		if _, ok := st.onHand[lot.ID]; ok {
			return domain.ErrDuplicate
		}
		c := cloneOnHand(lot)
		if c.Version == 0 {
			c.Version = 1
		}
		st.onHand[lot.ID] = c
		return nil
	})
}

func (r *LotOnHandRepo) GetByID(_ context.Context, id string) (*entity.LotOnHand, error) {
	l, ok := r.t.read().onHand[id]
	if !ok {
		return nil, nil
	}
	return cloneOnHand(l), nil
}

// GetForUpdate igual que GetByID: las transacciones de escritura ya se ejecutan de a una.
func (r *LotOnHandRepo) GetForUpdate(ctx context.Context, id string) (*entity.LotOnHand, error) {
	return r.GetByID(ctx, id)
}

func (r *LotOnHandRepo) UpdateQuantity(ctx context.Context, id string, quantity, expectedVersion int64) (int64, error) {
	var version int64
	err := r.t.write(ctx, func(st *state) error {
		l, ok := st.onHand[id]
		if !ok || l.Version != expectedVersion {
			return domain.ErrConflict
		}
		c := cloneOnHand(l)
		c.Quantity = quantity
		c.Version++
		c.UpdatedAt = time.Now()
		st.onHand[id] = c
		version = c.Version
		return nil
	})
	return version, err
}

func (r *LotOnHandRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.t.write(ctx, func(st *state) error {
		l, ok := st.onHand[id]
		if !ok {
			return domain.ErrNotFound
		}
		c := cloneOnHand(l)
		c.IsActive = active
		c.UpdatedAt = time.Now()
		st.onHand[id] = c
		return nil
	})
}

func (r *LotOnHandRepo) List(_ context.Context, f repository.LotFilter) ([]*entity.LotOnHand, error) {
	var out []*entity.LotOnHand
	for _, l := range r.t.read().onHand {
		if f.WarehouseID != "" && l.WarehouseID != f.WarehouseID {
			continue
		}
		if f.TemplateID != "" && l.TemplateID != f.TemplateID {
			continue
		}
		if f.Producer != "" && !strings.EqualFold(l.Producer, f.Producer) {
			continue
		}
		if f.OnlyActive && !l.IsActive {
			continue
		}
		out = append(out, cloneOnHand(l))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

// ── Ventas ───────────────────────────────────────────────────────────────────

// SaleRepo ventas en memoria.
type SaleRepo struct{ t *txn }

func cloneSale(s *entity.Sale) *entity.Sale {
	c := *s
	return &c
}

func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	return r.t.write(ctx, func(st *state) error {
		if _, ok := st.sales[sale.ID]; ok {
			return domain.ErrDuplicate
		}
		st.sales[sale.ID] = cloneSale(sale)
		return nil
	})
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	s, ok := r.t.read().sales[id]
	if !ok {
		return nil, nil
	}
	return cloneSale(s), nil
}

// GetForUpdate igual que GetByID: las transacciones de escritura ya se ejecutan de a una.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *SaleRepo) Update(ctx context.Context, sale *entity.Sale) error {
	return r.t.write(ctx, func(st *state) error {
		if _, ok := st.sales[sale.ID]; !ok {
			return domain.ErrNotFound
		}
		st.sales[sale.ID] = cloneSale(sale)
		return nil
	})
}

func (r *SaleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, s := range r.t.read().sales {
		if f.LotID != "" && s.LotID != f.LotID {
			continue
		}
		if f.WarehouseID != "" && s.WarehouseID != f.WarehouseID {
			continue
		}
		if f.PaymentStatus != "" && s.PaymentStatus != f.PaymentStatus {
			continue
		}
		out = append(out, cloneSale(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SaleDate.Equal(out[j].SaleDate) {
			return out[i].SaleDate.After(out[j].SaleDate)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r *SaleRepo) ListOpenClaims(_ context.Context, lotIDs []string) ([]entity.Claim, error) {
	want := make(map[string]struct{}, len(lotIDs))
	for _, id := range lotIDs {
		want[id] = struct{}{}
	}
	var out []entity.Claim
	for _, s := range r.t.read().sales {
		if _, ok := want[s.LotID]; !ok || !s.IsOpenClaim() {
			continue
		}
		out = append(out, entity.Claim{SaleID: s.ID, LotID: s.LotID, Quantity: s.Quantity})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SaleID < out[j].SaleID })
	return out, nil
}

// ── Discrepancias ────────────────────────────────────────────────────────────

// DiscrepancyRepo discrepancias en memoria.
type DiscrepancyRepo struct{ t *txn }

func (r *DiscrepancyRepo) Create(ctx context.Context, d *entity.Discrepancy) error {
	return r.t.write(ctx, func(st *state) error {
		c := *d
		st.discrepancies[d.LotID] = append(st.discrepancies[d.LotID], &c)
		return nil
	})
}

func (r *DiscrepancyRepo) ListByLot(_ context.Context, lotID string) ([]*entity.Discrepancy, error) {
	list := r.t.read().discrepancies[lotID]
	out := make([]*entity.Discrepancy, 0, len(list))
	for _, d := range list {
		c := *d
		out = append(out, &c)
	}
	return out, nil
}

// ── Bodegas ──────────────────────────────────────────────────────────────────

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct{ t *txn }

func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	return r.t.write(ctx, func(st *state) error {
		if _, ok := st.warehouses[w.ID]; ok {
			return domain.ErrDuplicate
		}
		c := *w
		st.warehouses[w.ID] = &c
		return nil
	})
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	w, ok := r.t.read().warehouses[id]
	if !ok {
		return nil, nil
	}
	c := *w
	return &c, nil
}

func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	return r.t.write(ctx, func(st *state) error {
		if _, ok := st.warehouses[w.ID]; !ok {
			return domain.ErrNotFound
		}
		c := *w
		st.warehouses[w.ID] = &c
		return nil
	})
}

func (r *WarehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	for _, w := range r.t.read().warehouses {
		c := *w
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, offset), nil
}

// Delete falla con ErrConflict si algún lote o venta apunta a la bodega, como la FK en PostgreSQL.
func (r *WarehouseRepo) Delete(ctx context.Context, id string) error {
	return r.t.write(ctx, func(st *state) error {
		if _, ok := st.warehouses[id]; !ok {
			return domain.ErrNotFound
		}
		referenced := false
		for _, l := range st.inTransit {
			referenced = referenced || l.WarehouseID == id
		}
		for _, l := range st.onHand {
			referenced = referenced || l.WarehouseID == id
		}
		for _, s := range st.sales {
			referenced = referenced || s.WarehouseID == id
		}
		if referenced {
			return domain.NewStateError("bodega", id, "con lotes o ventas", domain.ErrConflict)
		}
		delete(st.warehouses, id)
		return nil
	})
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

// UserRepo usuarios en memoria; el email es único.
type UserRepo struct{ t *txn }

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	return r.t.write(ctx, func(st *state) error {
		for _, other := range st.users {
			if strings.EqualFold(other.Email, u.Email) {
				return domain.ErrEmailAlreadyExists
			}
		}
		c := *u
		st.users[u.ID] = &c
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.t.read().users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.t.read().users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	return r.t.write(ctx, func(st *state) error {
		if _, ok := st.users[u.ID]; !ok {
			return domain.ErrUserNotFound
		}
		c := *u
		st.users[u.ID] = &c
		return nil
	})
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.t.read().users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, offset), nil
}
