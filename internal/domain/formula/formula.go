// Package formula evalúa las fórmulas de volumen de las plantillas de producto.
//
// La gramática es deliberadamente mínima: literales decimales con signo, los operadores
// + - * /, paréntesis e identificadores que se enlazan a valores de atributos.
// La expresión se tokeniza y se convierte en un árbol que se evalúa de forma estructural;
// nunca se ejecuta texto. Todas las funciones son puras y seguras para uso concurrente.
package formula

import (
	"regexp"
	"sort"

	"github.com/shopspring/decimal"
)

// ResultPlaces decimales del resultado.
const ResultPlaces = 3

// maxLength limita el tamaño de la expresión aceptada.
const maxLength = 1024

var identRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// reservedNames nombres de funciones matemáticas reservados para una futura extensión.
// No se tratan como variables, y usarlos hoy es una expresión inválida.
var reservedNames = map[string]struct{}{
	"abs": {}, "ceil": {}, "cos": {}, "exp": {}, "floor": {}, "log": {},
	"max": {}, "min": {}, "pow": {}, "round": {}, "sin": {}, "sqrt": {}, "tan": {},
}

// IsReservedName indica si name es una función reservada.
func IsReservedName(name string) bool {
	_, ok := reservedNames[name]
	return ok
}

// Expression fórmula ya analizada.
type Expression struct {
	source    string
	root      Node
	variables []string
}

// Variables identificadores libres de la expresión, ordenados y sin repetir.
func (e *Expression) Variables() []string { return append([]string(nil), e.variables...) }

// String devuelve la expresión original.
func (e *Expression) String() string { return e.source }

// Root raíz del árbol sintáctico.
func (e *Expression) Root() Node { return e.root }

// Eval evalúa la expresión con los valores dados y redondea a ResultPlaces decimales.
func (e *Expression) Eval(bindings map[string]decimal.Decimal) (decimal.Decimal, error) {
	if missing := missingVariables(e.variables, bindings); len(missing) > 0 {
		return decimal.Zero, &MissingVariablesError{Names: missing}
	}
	v, err := e.root.eval(bindings)
	if err != nil {
		return decimal.Zero, err
	}
	return v.Round(ResultPlaces), nil
}

// Variables extrae los identificadores libres de expr (sin las funciones reservadas).
func Variables(expr string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, name := range identRe.FindAllString(expr, -1) {
		if IsReservedName(name) {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Parse analiza la expresión sin evaluarla. Útil para validar fórmulas sin valores.
func Parse(expr string) (*Expression, error) {
	if len(expr) > maxLength {
		return nil, invalidf("la expresión supera %d caracteres", maxLength)
	}
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 1 {
		return nil, invalidf("expresión vacía")
	}
	p := &parser{tokens: tokens}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, invalidf("token inesperado %q en la posición %d", t.text, t.pos)
	}
	return &Expression{source: expr, root: root, variables: Variables(expr)}, nil
}

// Evaluate calcula expr con los valores dados.
// Primero verifica que todas las variables tengan valor (MissingVariablesError),
// luego analiza (ErrInvalidExpression) y evalúa (ErrDivisionByZero).
func Evaluate(expr string, bindings map[string]decimal.Decimal) (decimal.Decimal, error) {
	if missing := missingVariables(Variables(expr), bindings); len(missing) > 0 {
		return decimal.Zero, &MissingVariablesError{Names: missing}
	}
	e, err := Parse(expr)
	if err != nil {
		return decimal.Zero, err
	}
	return e.Eval(bindings)
}

func missingVariables(vars []string, bindings map[string]decimal.Decimal) []string {
	var missing []string
	for _, name := range vars {
		if _, ok := bindings[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
