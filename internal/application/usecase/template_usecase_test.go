package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/application/usecase"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/formula"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Mocks
// ──────────────────────────────────────────────────────────────────────────────

type templateRepoMock struct{ mock.Mock }

func (m *templateRepoMock) Create(ctx context.Context, t *entity.ProductTemplate) error {
	return m.Called(ctx, t).Error(0)
}

func (m *templateRepoMock) GetByID(ctx context.Context, id string) (*entity.ProductTemplate, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*entity.ProductTemplate)
	return t, args.Error(1)
}

func (m *templateRepoMock) Update(ctx context.Context, t *entity.ProductTemplate) error {
	return m.Called(ctx, t).Error(0)
}

func (m *templateRepoMock) List(ctx context.Context, f repository.TemplateFilter) ([]*entity.ProductTemplate, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]*entity.ProductTemplate)
	return list, args.Error(1)
}

func ptr[T any](v T) *T { return &v }

func boards() *entity.ProductTemplate {
	return &entity.ProductTemplate{
		ID: "tpl-1", Name: "Boards", Unit: "m3", Formula: ptr("a*b"), IsActive: true,
		Attributes: []entity.ProductAttribute{
			{Variable: "a", DisplayName: "Ancho", Kind: entity.AttributeKindNumber, Required: true, UsedInFormula: true},
			{Variable: "b", DisplayName: "Largo", Kind: entity.AttributeKindNumber, Required: true, UsedInFormula: true, Position: 1},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Create / Update
// ──────────────────────────────────────────────────────────────────────────────

func TestTemplateCreate_GuardaAtributosEnOrden(t *testing.T) {
	repo := new(templateRepoMock)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(tp *entity.ProductTemplate) bool {
		return len(tp.Attributes) == 2 && tp.Attributes[0].Variable == "a" && tp.Attributes[1].Position == 1
	})).Return(nil).Once()

	out, err := usecase.NewTemplateUseCase(repo).Create(context.Background(), dto.CreateTemplateRequest{
		Name: "Boards", Unit: "m3", Formula: ptr("a*b"),
		Attributes: []dto.AttributeRequest{
			{Variable: "a", Kind: "number", UsedInFormula: true},
			{Variable: "b", DisplayName: "Largo", Kind: "number", UsedInFormula: true},
		},
	})
	require.NoError(t, err)
	assert.True(t, out.IsActive)
	assert.Equal(t, "a", out.Attributes[0].DisplayName, "sin nombre visible se usa la variable")
	repo.AssertExpectations(t)
}

func TestTemplateCreate_FormulaInvalidaNoGuarda(t *testing.T) {
	repo := new(templateRepoMock)

	_, err := usecase.NewTemplateUseCase(repo).Create(context.Background(), dto.CreateTemplateRequest{
		Name: "Rota", Formula: ptr("a*(b"),
		Attributes: []dto.AttributeRequest{{Variable: "a", Kind: "number"}, {Variable: "b", Kind: "number"}},
	})
	assert.ErrorIs(t, err, formula.ErrInvalidExpression)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTemplateUpdate_NoExiste(t *testing.T) {
	repo := new(templateRepoMock)
	repo.On("GetByID", mock.Anything, "x").Return(nil, nil)

	out, err := usecase.NewTemplateUseCase(repo).Update(context.Background(), "x", dto.UpdateTemplateRequest{Name: ptr("Nuevo")})
	require.NoError(t, err)
	assert.Nil(t, out)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTemplateUpdate_Desactiva(t *testing.T) {
	repo := new(templateRepoMock)
	repo.On("GetByID", mock.Anything, "tpl-1").Return(boards(), nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(tp *entity.ProductTemplate) bool { return !tp.IsActive })).Return(nil)

	out, err := usecase.NewTemplateUseCase(repo).Update(context.Background(), "tpl-1", dto.UpdateTemplateRequest{IsActive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, out.IsActive)
	assert.Len(t, out.Attributes, 2, "sin atributos en la petición se conservan")
}

func TestTemplateList_PasaFiltro(t *testing.T) {
	repo := new(templateRepoMock)
	repo.On("List", mock.Anything, repository.TemplateFilter{OnlyActive: true, Limit: 20, Offset: 40}).
		Return([]*entity.ProductTemplate{boards()}, nil)

	out, err := usecase.NewTemplateUseCase(repo).List(context.Background(), true, 20, 40)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Boards", out[0].Name)
}

// ──────────────────────────────────────────────────────────────────────────────
// TestFormula
// ──────────────────────────────────────────────────────────────────────────────

func TestTestFormula_Resultado(t *testing.T) {
	repo := new(templateRepoMock)
	repo.On("GetByID", mock.Anything, "tpl-1").Return(boards(), nil)

	out, err := usecase.NewTemplateUseCase(repo).TestFormula(context.Background(), "tpl-1",
		dto.TestFormulaRequest{Attributes: map[string]any{"a": 3.0, "b": 4.0}})
	require.NoError(t, err)
	require.True(t, out.Success, out.Error)
	assert.Equal(t, "12.000", out.Result.StringFixed(3))
	assert.Equal(t, "m3", out.Unit)
}

func TestTestFormula_FaltanteConNombreVisible(t *testing.T) {
	repo := new(templateRepoMock)
	repo.On("GetByID", mock.Anything, "tpl-1").Return(boards(), nil)

	out, err := usecase.NewTemplateUseCase(repo).TestFormula(context.Background(), "tpl-1",
		dto.TestFormulaRequest{Attributes: map[string]any{"a": 3.0}})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, []string{"Largo"}, out.Missing)
	assert.Contains(t, out.Error, "Largo")
}

func TestTestFormula_DivisionPorCero(t *testing.T) {
	tpl := boards()
	tpl.Formula = ptr("a/b")
	repo := new(templateRepoMock)
	repo.On("GetByID", mock.Anything, "tpl-1").Return(tpl, nil)

	out, err := usecase.NewTemplateUseCase(repo).TestFormula(context.Background(), "tpl-1",
		dto.TestFormulaRequest{Attributes: map[string]any{"a": 3.0, "b": 0.0}})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Error)
}

func TestTestFormula_PlantillaNoExiste(t *testing.T) {
	repo := new(templateRepoMock)
	repo.On("GetByID", mock.Anything, "nada").Return(nil, nil)

	_, err := usecase.NewTemplateUseCase(repo).TestFormula(context.Background(), "nada", dto.TestFormulaRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTestFormula_ErrorDeRepositorio(t *testing.T) {
	boom := errors.New("conexión perdida")
	repo := new(templateRepoMock)
	repo.On("GetByID", mock.Anything, "tpl-1").Return(nil, boom)

	_, err := usecase.NewTemplateUseCase(repo).TestFormula(context.Background(), "tpl-1", dto.TestFormulaRequest{})
	assert.ErrorIs(t, err, boom)
}
