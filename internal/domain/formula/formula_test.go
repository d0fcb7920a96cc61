package formula_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/domain/formula"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func vars(kv ...string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = d(kv[i+1])
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Evaluate
// ──────────────────────────────────────────────────────────────────────────────

func TestEvaluate_ProductoSimple(t *testing.T) {
	got, err := formula.Evaluate("a*b", vars("a", "3", "b", "4"))
	require.NoError(t, err)
	assert.Equal(t, "12.000", got.StringFixed(3))
}

func TestEvaluate_Tabla(t *testing.T) {
	cases := []struct {
		name string
		expr string
		b    map[string]decimal.Decimal
		want string
	}{
		{"precedencia", "1+2*3", nil, "7"},
		{"paréntesis", "(1+2)*3", nil, "9"},
		{"asociatividad izquierda resta", "10-4-3", nil, "3"},
		{"asociatividad izquierda división", "100/10/5", nil, "2"},
		{"menos unario", "-3*-2", nil, "6"},
		{"más unario", "+4", nil, "4"},
		{"doble negación", "--5", nil, "5"},
		{"decimales", "0.5*0.5", nil, "0.25"},
		{"punto inicial", ".5+1", nil, "1.5"},
		{"espacios", " length * width ", vars("length", "2", "width", "3"), "6"},
		{"volumen de tabla", "length*width*height", vars("length", "2", "width", "3", "height", "4"), "24"},
		{"variable negativa", "a*b", vars("a", "3", "b", "-2"), "-6"},
		{"redondeo a tres decimales", "10/3", nil, "3.333"},
		{"redondeo hacia arriba", "2/3", nil, "0.667"},
		{"identificador con guion bajo", "_x1+1", vars("_x1", "1"), "2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := formula.Evaluate(tc.expr, tc.b)
			require.NoError(t, err)
			assert.True(t, d(tc.want).Equal(got), "esperado %s, obtenido %s", tc.want, got)
		})
	}
}

func TestEvaluate_VariablesFaltantes(t *testing.T) {
	_, err := formula.Evaluate("a*b*c", vars("a", "3"))
	require.Error(t, err)
	assert.ErrorIs(t, err, formula.ErrMissingVariables)

	var mv *formula.MissingVariablesError
	require.True(t, errors.As(err, &mv))
	assert.Equal(t, []string{"b", "c"}, mv.Names)
}

// Las variables faltantes se reportan antes que los errores de sintaxis.
func TestEvaluate_FaltantesAntesQueSintaxis(t *testing.T) {
	_, err := formula.Evaluate("a*$", nil)
	assert.ErrorIs(t, err, formula.ErrMissingVariables)
}

func TestEvaluate_DivisionPorCero(t *testing.T) {
	_, err := formula.Evaluate("a/(b-2)", vars("a", "1", "b", "2"))
	assert.ErrorIs(t, err, formula.ErrDivisionByZero)
}

func TestEvaluate_ExpresionesInvalidas(t *testing.T) {
	cases := map[string]string{
		"vacía":               "",
		"solo espacios":       "   ",
		"carácter extraño":    "1+2;",
		"inyección":           "__import__('os')",
		"potencia":            "2**3",
		"operador al final":   "1+",
		"paréntesis abierto":  "(1+2",
		"paréntesis cerrado":  "1+2)",
		"número mal formado":  "1.2.3",
		"punto suelto":        ".",
		"función reservada":   "sqrt(4)",
		"números contiguos":   "2 3",
		"número y variable":   "2a",
		"comparación":         "1<2",
		"exponente científico": "1e5",
	}
	for name, expr := range cases {
		t.Run(name, func(t *testing.T) {
			b := map[string]decimal.Decimal{}
			for _, v := range formula.Variables(expr) {
				b[v] = decimal.NewFromInt(1)
			}
			_, err := formula.Evaluate(expr, b)
			assert.ErrorIs(t, err, formula.ErrInvalidExpression, "expr %q", expr)
		})
	}
}

func TestEvaluate_AnidamientoExcesivo(t *testing.T) {
	expr := ""
	for i := 0; i < 100; i++ {
		expr += "("
	}
	expr += "1"
	for i := 0; i < 100; i++ {
		expr += ")"
	}
	_, err := formula.Evaluate(expr, nil)
	assert.ErrorIs(t, err, formula.ErrInvalidExpression)
}

// ──────────────────────────────────────────────────────────────────────────────
// Variables / Parse
// ──────────────────────────────────────────────────────────────────────────────

func TestVariables_ExcluyeReservadasYDuplicados(t *testing.T) {
	got := formula.Variables("length*width + length*sqrt(height)")
	assert.Equal(t, []string{"height", "length", "width"}, got)
}

func TestParse_ReutilizableConDistintosValores(t *testing.T) {
	expr, err := formula.Parse("a*b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, expr.Variables())

	r1, err := expr.Eval(vars("a", "2", "b", "5"))
	require.NoError(t, err)
	r2, err := expr.Eval(vars("a", "1.5", "b", "2"))
	require.NoError(t, err)

	assert.True(t, d("10").Equal(r1))
	assert.True(t, d("3").Equal(r2))
}

func TestParse_ArbolRespetaPrecedencia(t *testing.T) {
	expr, err := formula.Parse("1+2*3")
	require.NoError(t, err)

	root, ok := expr.Root().(formula.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, byte('+'), root.Op)
	right, ok := root.Right.(formula.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, byte('*'), right.Op)
}

// La evaluación es pura: se puede ejecutar en paralelo sin sincronización.
func TestEvaluate_Concurrente(t *testing.T) {
	expr, err := formula.Parse("length*width*height")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			got, err := expr.Eval(map[string]decimal.Decimal{
				"length": decimal.NewFromInt(n),
				"width":  decimal.NewFromInt(2),
				"height": decimal.NewFromInt(3),
			})
			if err != nil {
				errs <- err
				return
			}
			if !got.Equal(decimal.NewFromInt(n * 6)) {
				errs <- errors.New("resultado inesperado " + got.String())
			}
		}(int64(i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
