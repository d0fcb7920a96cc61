package template_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/formula"
	"github.com/jhoicas/Inventario-lotes/internal/domain/template"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

func strPtr(s string) *string { return &s }

// boards plantilla "Boards" con fórmula length*width*height y una especie de lista.
func boards() *entity.ProductTemplate {
	return &entity.ProductTemplate{
		ID:      "tpl-boards",
		Name:    "Boards",
		Unit:    "m³",
		Formula: strPtr("length*width*height"),
		Attributes: []entity.ProductAttribute{
			{Variable: "species", DisplayName: "Especie", Kind: entity.AttributeKindSelect, Options: []string{"Pino", "Roble"}, Required: true},
			{Variable: "length", DisplayName: "Largo", Kind: entity.AttributeKindNumber, Required: true, UsedInFormula: true},
			{Variable: "width", DisplayName: "Ancho", Kind: entity.AttributeKindNumber, Required: true, UsedInFormula: true},
			{Variable: "height", DisplayName: "Alto", Kind: entity.AttributeKindNumber, Required: true, UsedInFormula: true},
			{Variable: "notes", DisplayName: "Notas", Kind: entity.AttributeKindText},
		},
		IsActive: true,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Validate
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate_PlantillaCorrecta(t *testing.T) {
	tpl := boards()
	tpl.Attributes[4].DisplayName = ""
	require.NoError(t, template.Validate(tpl))
	assert.Equal(t, "notes", tpl.Attributes[4].DisplayName, "sin nombre visible se usa la variable")
	for i, a := range tpl.Attributes {
		assert.Equal(t, i, a.Position)
	}
}

func TestValidate_Rechazos(t *testing.T) {
	cases := map[string]func(*entity.ProductTemplate){
		"sin nombre":            func(p *entity.ProductTemplate) { p.Name = " " },
		"variable inválida":     func(p *entity.ProductTemplate) { p.Attributes[1].Variable = "1largo" },
		"variable reservada":    func(p *entity.ProductTemplate) { p.Attributes[1].Variable = "sqrt" },
		"variable repetida":     func(p *entity.ProductTemplate) { p.Attributes[2].Variable = "length" },
		"lista sin opciones":    func(p *entity.ProductTemplate) { p.Attributes[0].Options = nil },
		"tipo desconocido":      func(p *entity.ProductTemplate) { p.Attributes[4].Kind = "date" },
		"texto en la fórmula":   func(p *entity.ProductTemplate) { p.Attributes[4].UsedInFormula = true },
		"fórmula mal formada":   func(p *entity.ProductTemplate) { p.Formula = strPtr("length**width") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			tpl := boards()
			mutate(tpl)
			err := template.Validate(tpl)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, formula.ErrInvalidExpression))
		})
	}
}

func TestValidate_FormulaConVariableDesconocidaSeAcepta(t *testing.T) {
	tpl := boards()
	tpl.Formula = strPtr("length*depth")
	assert.NoError(t, template.Validate(tpl), "la correspondencia se comprueba al evaluar")
}

// ──────────────────────────────────────────────────────────────────────────────
// ParseAttributes
// ──────────────────────────────────────────────────────────────────────────────

func TestParseAttributes_TiposYOpciones(t *testing.T) {
	values, err := template.ParseAttributes(boards(), map[string]any{
		"species": "Roble",
		"length":  2.5,
		"width":   "3",
		"height":  4,
		"notes":   "  seco ",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.SelectValue(1, "Roble"), values["species"])
	assert.True(t, values["length"].Number.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, values["width"].Number.Equal(decimal.NewFromInt(3)))
	assert.True(t, values["height"].Number.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, "seco", values["notes"].Text)
}

func TestParseAttributes_SelectPorIndice(t *testing.T) {
	values, err := template.ParseAttributes(boards(), map[string]any{
		"species": float64(0), "length": 1, "width": 1, "height": 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Pino", values["species"].Text)
	assert.Equal(t, 0, values["species"].Option)
}

func TestParseAttributes_Errores(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{"species": "Pino", "length": 1, "width": 1, "height": 1}
	}
	cases := map[string]func(map[string]any){
		"variable desconocida": func(m map[string]any) { m["color"] = "rojo" },
		"falta requerido":      func(m map[string]any) { delete(m, "width") },
		"número inválido":      func(m map[string]any) { m["length"] = "dos" },
		"texto no string":      func(m map[string]any) { m["notes"] = 12 },
		"opción inexistente":   func(m map[string]any) { m["species"] = "Cedro" },
		"índice fuera":         func(m map[string]any) { m["species"] = float64(5) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			raw := base()
			mutate(raw)
			_, err := template.ParseAttributes(boards(), raw)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestParsePartial_NoExigeRequeridos(t *testing.T) {
	values, err := template.ParsePartial(boards(), map[string]any{"length": 2})
	require.NoError(t, err)
	assert.Len(t, values, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Evaluate / ComputeVolume
// ──────────────────────────────────────────────────────────────────────────────

func TestEvaluate_Boards24(t *testing.T) {
	values, err := template.ParseAttributes(boards(), map[string]any{
		"species": "Pino", "length": 2, "width": 3, "height": 4,
	})
	require.NoError(t, err)

	v, err := template.Evaluate(boards(), values)
	require.NoError(t, err)
	assert.Equal(t, "24.000", v.StringFixed(formula.ResultPlaces))
}

func TestEvaluate_FaltantesPorNombreVisible(t *testing.T) {
	tpl := &entity.ProductTemplate{
		Name:    "Area",
		Formula: strPtr("a*b"),
		Attributes: []entity.ProductAttribute{
			{Variable: "a", DisplayName: "Largo", Kind: entity.AttributeKindNumber},
			{Variable: "b", DisplayName: "Ancho", Kind: entity.AttributeKindNumber},
		},
	}
	values, err := template.ParsePartial(tpl, map[string]any{"a": 3})
	require.NoError(t, err)

	_, err = template.Evaluate(tpl, values)
	var missing *formula.MissingVariablesError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"Ancho"}, missing.Names)
	assert.ErrorIs(t, err, formula.ErrMissingVariables)
}

func TestEvaluate_VariableSinAtributoUsaIdentificador(t *testing.T) {
	tpl := boards()
	tpl.Formula = strPtr("length*depth")
	_, err := template.Evaluate(tpl, entity.AttributeValues{"length": entity.NumberValue(decimal.NewFromInt(2))})
	var missing *formula.MissingVariablesError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"depth"}, missing.Names)
}

func TestComputeVolume_SinFormulaEsNil(t *testing.T) {
	tpl := boards()
	tpl.Formula = nil
	v, err := template.ComputeVolume(tpl, nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestComputeVolume_DivisionPorCero(t *testing.T) {
	tpl := boards()
	tpl.Formula = strPtr("length/(width-3)")
	_, err := template.ComputeVolume(tpl, entity.AttributeValues{
		"length": entity.NumberValue(decimal.NewFromInt(1)),
		"width":  entity.NumberValue(decimal.NewFromInt(3)),
	})
	assert.ErrorIs(t, err, formula.ErrDivisionByZero)
}

// ──────────────────────────────────────────────────────────────────────────────
// DeriveLotName
// ──────────────────────────────────────────────────────────────────────────────

func TestDeriveLotName(t *testing.T) {
	tpl := boards()
	require.NoError(t, template.Validate(tpl))
	values, err := template.ParseAttributes(tpl, map[string]any{
		"species": "Pino", "length": 2, "width": 3, "height": 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "Boards Pino 2x3x4", template.DeriveLotName(tpl, values))
}
