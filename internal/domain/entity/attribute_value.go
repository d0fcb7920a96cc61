package entity

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// AttributeValue valor de un atributo de lote: unión etiquetada {Number, Text, Select}.
// Para select, Option es el índice dentro de ProductAttribute.Options y Text guarda la etiqueta.
type AttributeValue struct {
	Kind   string
	Number decimal.Decimal
	Text   string
	Option int
}

// AttributeValues valores de atributos por nombre de variable.
type AttributeValues map[string]AttributeValue

// NumberValue construye un valor numérico.
func NumberValue(n decimal.Decimal) AttributeValue {
	return AttributeValue{Kind: AttributeKindNumber, Number: n}
}

// TextValue construye un valor de texto.
func TextValue(s string) AttributeValue {
	return AttributeValue{Kind: AttributeKindText, Text: s}
}

// SelectValue construye un valor de lista a partir del índice y su etiqueta.
func SelectValue(option int, label string) AttributeValue {
	return AttributeValue{Kind: AttributeKindSelect, Option: option, Text: label}
}

// Display representación legible del valor.
func (v AttributeValue) Display() string {
	if v.Kind == AttributeKindNumber {
		return v.Number.String()
	}
	return v.Text
}

// Plain valor para respuestas JSON: decimal para números, etiqueta para texto y select.
func (v AttributeValue) Plain() any {
	if v.Kind == AttributeKindNumber {
		return v.Number
	}
	return v.Text
}

type attributeValueJSON struct {
	Kind   string           `json:"kind"`
	Number *decimal.Decimal `json:"number,omitempty"`
	Text   string           `json:"text,omitempty"`
	Option *int             `json:"option,omitempty"`
}

// MarshalJSON formato de persistencia (columna jsonb).
func (v AttributeValue) MarshalJSON() ([]byte, error) {
	out := attributeValueJSON{Kind: v.Kind, Text: v.Text}
	switch v.Kind {
	case AttributeKindNumber:
		n := v.Number
		out.Number = &n
	case AttributeKindSelect:
		o := v.Option
		out.Option = &o
	}
	return json.Marshal(out)
}

// UnmarshalJSON lee el formato de persistencia.
func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	var in attributeValueJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Kind {
	case AttributeKindNumber:
		if in.Number == nil {
			return fmt.Errorf("atributo numérico sin valor")
		}
		*v = NumberValue(*in.Number)
	case AttributeKindText:
		*v = TextValue(in.Text)
	case AttributeKindSelect:
		if in.Option == nil {
			return fmt.Errorf("atributo de lista sin opción")
		}
		*v = SelectValue(*in.Option, in.Text)
	default:
		return fmt.Errorf("tipo de atributo desconocido %q", in.Kind)
	}
	return nil
}

// Plain mapa variable -> valor simple para respuestas.
func (vs AttributeValues) Plain() map[string]any {
	out := make(map[string]any, len(vs))
	for k, v := range vs {
		out[k] = v.Plain()
	}
	return out
}

// Clone copia superficial del mapa.
func (vs AttributeValues) Clone() AttributeValues {
	if vs == nil {
		return nil
	}
	out := make(AttributeValues, len(vs))
	for k, v := range vs {
		out[k] = v
	}
	return out
}
