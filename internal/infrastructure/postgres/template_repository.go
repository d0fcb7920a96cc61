package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

var _ repository.TemplateRepository = (*TemplateRepo)(nil)

var templateColumns = []any{"id", "name", "unit", "formula", "is_active", "created_at", "updated_at"}

var attributeColumns = []any{"id", "template_id", "variable", "display_name", "kind", "options", "required", "used_in_formula", "position"}

// TemplateRepo plantillas y sus atributos (product_templates, product_attributes).
type TemplateRepo struct {
	q Querier
}

// NewTemplateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTemplateRepository(q Querier) *TemplateRepo {
	return &TemplateRepo{q: q}
}

type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// inTx ejecuta fn en una transacción propia (o un savepoint si q ya es una tx).
func inTx(ctx context.Context, q Querier, fn func(q Querier) error) error {
	b, ok := q.(beginner)
	if !ok {
		return fn(q)
	}
	tx, err := b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return dbError("commit transaction", err)
	}
	return nil
}

// Create persiste la plantilla con sus atributos.
func (r *TemplateRepo) Create(ctx context.Context, t *entity.ProductTemplate) error {
	return inTx(ctx, r.q, func(q Querier) error {
		_, err := q.Exec(ctx, `
			INSERT INTO product_templates (id, name, unit, formula, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			t.ID, t.Name, t.Unit, t.Formula, t.IsActive, t.CreatedAt, t.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return dbError("insert template", err)
		}
		return insertAttributes(ctx, q, t)
	})
}

// Update actualiza la plantilla y reemplaza la lista de atributos completa.
func (r *TemplateRepo) Update(ctx context.Context, t *entity.ProductTemplate) error {
	return inTx(ctx, r.q, func(q Querier) error {
		cmd, err := q.Exec(ctx, `
			UPDATE product_templates SET name = $2, unit = $3, formula = $4, is_active = $5, updated_at = $6
			WHERE id = $1`,
			t.ID, t.Name, t.Unit, t.Formula, t.IsActive, t.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return dbError("update template", err)
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		if _, err := q.Exec(ctx, `DELETE FROM product_attributes WHERE template_id = $1`, t.ID); err != nil {
			return dbError("delete attributes", err)
		}
		return insertAttributes(ctx, q, t)
	})
}

func insertAttributes(ctx context.Context, q Querier, t *entity.ProductTemplate) error {
	for i := range t.Attributes {
		a := &t.Attributes[i]
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		a.TemplateID = t.ID
		options := a.Options
		if options == nil {
			options = []string{}
		}
		_, err := q.Exec(ctx, `
			INSERT INTO product_attributes (id, template_id, variable, display_name, kind, options, required, used_in_formula, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			a.ID, a.TemplateID, a.Variable, a.DisplayName, a.Kind, options, a.Required, a.UsedInFormula, a.Position,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: variable %q repetida", domain.ErrInvalidInput, a.Variable)
			}
			return dbError("insert attribute", err)
		}
	}
	return nil
}

// GetByID obtiene una plantilla con sus atributos ordenados; (nil, nil) si no existe.
func (r *TemplateRepo) GetByID(ctx context.Context, id string) (*entity.ProductTemplate, error) {
	sql, args, err := toSQL(from("product_templates").Select(templateColumns...).Where(goqu.Ex{"id": id}))
	if err != nil {
		return nil, err
	}
	t, err := scanTemplate(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dbError("get template", err)
	}
	if err := r.loadAttributes(ctx, []*entity.ProductTemplate{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// List lista plantillas por nombre.
func (r *TemplateRepo) List(ctx context.Context, f repository.TemplateFilter) ([]*entity.ProductTemplate, error) {
	ds := from("product_templates").Select(templateColumns...).Order(goqu.C("name").Asc(), goqu.C("id").Asc())
	if f.OnlyActive {
		ds = ds.Where(goqu.Ex{"is_active": true})
	}
	sql, args, err := toSQL(paginate(ds, f.Limit, f.Offset))
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbError("list templates", err)
	}
	defer rows.Close()
	var list []*entity.ProductTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list templates", err)
	}
	if err := r.loadAttributes(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *TemplateRepo) loadAttributes(ctx context.Context, list []*entity.ProductTemplate) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[string]*entity.ProductTemplate, len(list))
	ids := make([]string, 0, len(list))
	for _, t := range list {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}
	ds := from("product_attributes").Select(attributeColumns...).
		Where(goqu.Ex{"template_id": ids}).
		Order(goqu.C("template_id").Asc(), goqu.C("position").Asc())
	sql, args, err := toSQL(ds)
	if err != nil {
		return err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return dbError("list attributes", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a entity.ProductAttribute
		if err := rows.Scan(&a.ID, &a.TemplateID, &a.Variable, &a.DisplayName, &a.Kind, &a.Options,
			&a.Required, &a.UsedInFormula, &a.Position); err != nil {
			return fmt.Errorf("scan attribute: %w", err)
		}
		if t, ok := byID[a.TemplateID]; ok {
			t.Attributes = append(t.Attributes, a)
		}
	}
	return rows.Err()
}

func scanTemplate(row pgx.Row) (*entity.ProductTemplate, error) {
	var t entity.ProductTemplate
	if err := row.Scan(&t.ID, &t.Name, &t.Unit, &t.Formula, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
