package repository

import (
	"context"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// TemplateFilter filtros del listado de plantillas.
type TemplateFilter struct {
	OnlyActive bool
	Limit      int
	Offset     int
}

// TemplateRepository persiste plantillas junto con sus atributos ordenados.
// Update reemplaza la lista de atributos completa. GetByID devuelve (nil, nil) si no existe.
type TemplateRepository interface {
	Create(ctx context.Context, t *entity.ProductTemplate) error
	GetByID(ctx context.Context, id string) (*entity.ProductTemplate, error)
	Update(ctx context.Context, t *entity.ProductTemplate) error
	List(ctx context.Context, f TemplateFilter) ([]*entity.ProductTemplate, error)
}
