// Package template contiene las reglas de las plantillas de producto: validación de la
// definición, validación de los valores de atributos de un lote y cálculo del volumen por unidad.
package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/formula"
)

var variableRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Validate revisa la definición de la plantilla antes de guardarla.
// La correspondencia entre la fórmula y los atributos no se exige aquí: se comprueba al
// probar la fórmula y al crear lotes, donde se reportan los nombres faltantes.
func Validate(t *entity.ProductTemplate) error {
	if strings.TrimSpace(t.Name) == "" {
		return invalid("el nombre de la plantilla es obligatorio")
	}
	seen := make(map[string]struct{}, len(t.Attributes))
	for i, a := range t.Attributes {
		if !variableRe.MatchString(a.Variable) {
			return invalid("variable %q no es un identificador válido", a.Variable)
		}
		if formula.IsReservedName(a.Variable) {
			return invalid("variable %q es un nombre reservado", a.Variable)
		}
		if _, dup := seen[a.Variable]; dup {
			return invalid("variable %q repetida", a.Variable)
		}
		seen[a.Variable] = struct{}{}
		switch a.Kind {
		case entity.AttributeKindNumber, entity.AttributeKindText:
		case entity.AttributeKindSelect:
			if len(a.Options) == 0 {
				return invalid("el atributo %q de tipo lista necesita opciones", a.Variable)
			}
		default:
			return invalid("tipo de atributo %q desconocido", a.Kind)
		}
		if a.UsedInFormula && a.Kind != entity.AttributeKindNumber {
			return invalid("el atributo %q se usa en la fórmula y debe ser numérico", a.Variable)
		}
		if strings.TrimSpace(a.DisplayName) == "" {
			t.Attributes[i].DisplayName = a.Variable
		}
		t.Attributes[i].Position = i
	}
	if t.HasFormula() {
		if _, err := formula.Parse(*t.Formula); err != nil {
			return err
		}
	}
	return nil
}

// ParseAttributes valida los valores crudos (JSON) contra la plantilla:
// rechaza variables desconocidas, exige los requeridos y comprueba el tipo de cada valor.
func ParseAttributes(t *entity.ProductTemplate, raw map[string]any) (entity.AttributeValues, error) {
	return parse(t, raw, true)
}

// ParsePartial igual que ParseAttributes pero sin exigir los requeridos (vista previa de fórmula).
func ParsePartial(t *entity.ProductTemplate, raw map[string]any) (entity.AttributeValues, error) {
	return parse(t, raw, false)
}

func parse(t *entity.ProductTemplate, raw map[string]any, requireAll bool) (entity.AttributeValues, error) {
	out := make(entity.AttributeValues, len(raw))
	for variable, v := range raw {
		attr, ok := t.Attribute(variable)
		if !ok {
			return nil, invalid("atributo %q no existe en la plantilla %s", variable, t.Name)
		}
		if v == nil {
			continue
		}
		val, err := parseValue(attr, v)
		if err != nil {
			return nil, err
		}
		out[variable] = val
	}
	if requireAll {
		for _, a := range t.Attributes {
			if _, ok := out[a.Variable]; a.Required && !ok {
				return nil, invalid("el atributo %s es obligatorio", a.DisplayName)
			}
		}
	}
	return out, nil
}

func parseValue(attr *entity.ProductAttribute, v any) (entity.AttributeValue, error) {
	switch attr.Kind {
	case entity.AttributeKindNumber:
		n, err := toDecimal(v)
		if err != nil {
			return entity.AttributeValue{}, invalid("el atributo %s debe ser numérico", attr.DisplayName)
		}
		return entity.NumberValue(n), nil
	case entity.AttributeKindText:
		s, ok := v.(string)
		if !ok {
			return entity.AttributeValue{}, invalid("el atributo %s debe ser texto", attr.DisplayName)
		}
		return entity.TextValue(strings.TrimSpace(s)), nil
	case entity.AttributeKindSelect:
		idx := selectIndex(attr.Options, v)
		if idx < 0 {
			return entity.AttributeValue{}, invalid("valor %v no es una opción de %s", v, attr.DisplayName)
		}
		return entity.SelectValue(idx, attr.Options[idx]), nil
	}
	return entity.AttributeValue{}, invalid("tipo de atributo %q desconocido", attr.Kind)
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(n))
	}
	return decimal.Zero, fmt.Errorf("tipo %T no numérico", v)
}

// selectIndex acepta la etiqueta de la opción o su índice.
func selectIndex(options []string, v any) int {
	switch s := v.(type) {
	case string:
		for i, o := range options {
			if o == s {
				return i
			}
		}
		return -1
	case float64:
		i := int(s)
		if float64(i) == s && i >= 0 && i < len(options) {
			return i
		}
	case int:
		if s >= 0 && s < len(options) {
			return s
		}
	case json.Number:
		if i, err := strconv.Atoi(s.String()); err == nil && i >= 0 && i < len(options) {
			return i
		}
	}
	return -1
}

// Bindings valores numéricos de los atributos, listos para la fórmula.
func Bindings(values entity.AttributeValues) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(values))
	for k, v := range values {
		if v.Kind == entity.AttributeKindNumber {
			out[k] = v.Number
		}
	}
	return out
}

// Evaluate calcula la fórmula de la plantilla con los atributos del lote.
// Las variables faltantes se reportan con el nombre visible del atributo.
func Evaluate(t *entity.ProductTemplate, values entity.AttributeValues) (decimal.Decimal, error) {
	if !t.HasFormula() {
		return decimal.Zero, invalid("la plantilla %s no tiene fórmula", t.Name)
	}
	v, err := formula.Evaluate(*t.Formula, Bindings(values))
	if err != nil {
		var missing *formula.MissingVariablesError
		if errors.As(err, &missing) {
			names := make([]string, len(missing.Names))
			for i, n := range missing.Names {
				names[i] = t.DisplayName(n)
			}
			return decimal.Zero, &formula.MissingVariablesError{Names: names}
		}
		return decimal.Zero, err
	}
	return v, nil
}

// ComputeVolume volumen por unidad del lote; nil si la plantilla no tiene fórmula.
func ComputeVolume(t *entity.ProductTemplate, values entity.AttributeValues) (*decimal.Decimal, error) {
	if !t.HasFormula() {
		return nil, nil
	}
	v, err := Evaluate(t, values)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// DeriveLotName arma el nombre del lote con el nombre de la plantilla y los valores de sus
// atributos en el orden definido, ej. "Tabla Pino 2x3x4".
func DeriveLotName(t *entity.ProductTemplate, values entity.AttributeValues) string {
	attrs := append([]entity.ProductAttribute(nil), t.Attributes...)
	sort.SliceStable(attrs, func(i, j int) bool { return attrs[i].Position < attrs[j].Position })

	parts := []string{t.Name}
	var dims []string
	for _, a := range attrs {
		v, ok := values[a.Variable]
		if !ok {
			continue
		}
		if v.Kind == entity.AttributeKindNumber {
			dims = append(dims, v.Number.String())
			continue
		}
		if v.Text != "" {
			parts = append(parts, v.Text)
		}
	}
	if len(dims) > 0 {
		parts = append(parts, strings.Join(dims, "x"))
	}
	return strings.Join(parts, " ")
}
