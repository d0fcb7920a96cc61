package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/formula"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/Inventario-lotes/internal/domain/template"
)

// TemplateUseCase casos de uso CRUD para plantillas de producto y la vista previa de la fórmula.
type TemplateUseCase struct {
	repo repository.TemplateRepository
}

// NewTemplateUseCase construye el caso de uso.
func NewTemplateUseCase(repo repository.TemplateRepository) *TemplateUseCase {
	return &TemplateUseCase{repo: repo}
}

// Create valida y crea una plantilla con sus atributos en el orden recibido.
func (uc *TemplateUseCase) Create(ctx context.Context, in dto.CreateTemplateRequest) (*dto.TemplateResponse, error) {
	now := time.Now()
	t := &entity.ProductTemplate{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Unit:      in.Unit,
		Formula:   normalizeFormula(in.Formula),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.Attributes = toAttributes(t.ID, in.Attributes)
	if err := template.Validate(t); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return toTemplateResponse(t), nil
}

// GetByID obtiene una plantilla por ID.
func (uc *TemplateUseCase) GetByID(ctx context.Context, id string) (*dto.TemplateResponse, error) {
	t, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	return toTemplateResponse(t), nil
}

// Update aplica cambios administrativos. Si llegan atributos, reemplazan la lista completa.
// Los lotes ya creados conservan su volumen: solo se recalcula con sus propios atributos.
func (uc *TemplateUseCase) Update(ctx context.Context, id string, in dto.UpdateTemplateRequest) (*dto.TemplateResponse, error) {
	t, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	if in.Name != nil {
		t.Name = *in.Name
	}
	if in.Unit != nil {
		t.Unit = *in.Unit
	}
	if in.Formula != nil {
		t.Formula = normalizeFormula(in.Formula)
	}
	if in.Attributes != nil {
		t.Attributes = toAttributes(t.ID, in.Attributes)
	}
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
	if err := template.Validate(t); err != nil {
		return nil, err
	}
	t.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return toTemplateResponse(t), nil
}

// List lista plantillas con paginación.
func (uc *TemplateUseCase) List(ctx context.Context, onlyActive bool, limit, offset int) ([]dto.TemplateResponse, error) {
	list, err := uc.repo.List(ctx, repository.TemplateFilter{OnlyActive: onlyActive, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.TemplateResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTemplateResponse(t))
	}
	return items, nil
}

// TestFormula evalúa la fórmula de la plantilla con los valores dados, sin guardar nada.
// Los errores de fórmula y de valores van en la respuesta (success=false); los faltantes
// se nombran con el nombre visible del atributo.
func (uc *TemplateUseCase) TestFormula(ctx context.Context, templateID string, in dto.TestFormulaRequest) (*dto.TestFormulaResponse, error) {
	t, err := uc.repo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	values, err := template.ParsePartial(t, in.Attributes)
	if err != nil {
		return &dto.TestFormulaResponse{Success: false, Error: err.Error()}, nil
	}
	result, err := template.Evaluate(t, values)
	if err != nil {
		out := &dto.TestFormulaResponse{Success: false, Error: err.Error()}
		var missing *formula.MissingVariablesError
		if errors.As(err, &missing) {
			out.Missing = missing.Names
		}
		return out, nil
	}
	return &dto.TestFormulaResponse{Success: true, Result: &result, Unit: t.Unit}, nil
}

func normalizeFormula(f *string) *string {
	if f == nil || *f == "" {
		return nil
	}
	s := *f
	return &s
}

func toAttributes(templateID string, in []dto.AttributeRequest) []entity.ProductAttribute {
	out := make([]entity.ProductAttribute, 0, len(in))
	for i, a := range in {
		out = append(out, entity.ProductAttribute{
			ID:            uuid.New().String(),
			TemplateID:    templateID,
			Variable:      a.Variable,
			DisplayName:   a.DisplayName,
			Kind:          a.Kind,
			Options:       a.Options,
			Required:      a.Required,
			UsedInFormula: a.UsedInFormula,
			Position:      i,
		})
	}
	return out
}

func toTemplateResponse(t *entity.ProductTemplate) *dto.TemplateResponse {
	if t == nil {
		return nil
	}
	attrs := make([]dto.AttributeResponse, 0, len(t.Attributes))
	for _, a := range t.Attributes {
		attrs = append(attrs, dto.AttributeResponse{
			Variable:      a.Variable,
			DisplayName:   a.DisplayName,
			Kind:          a.Kind,
			Options:       a.Options,
			Required:      a.Required,
			UsedInFormula: a.UsedInFormula,
		})
	}
	return &dto.TemplateResponse{
		ID:         t.ID,
		Name:       t.Name,
		Unit:       t.Unit,
		Formula:    t.Formula,
		Attributes: attrs,
		IsActive:   t.IsActive,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}
