package entity

import "time"

// Tipos de atributo de plantilla.
const (
	AttributeKindNumber = "number"
	AttributeKindText   = "text"
	AttributeKindSelect = "select"
)

// ProductAttribute atributo libre que llevan los lotes de una plantilla (largo, ancho, especie...).
// Variable es el identificador usado en la fórmula; DisplayName es lo que ve el usuario.
type ProductAttribute struct {
	ID            string
	TemplateID    string
	Variable      string
	DisplayName   string
	Kind          string   // number, text, select
	Options       []string // solo para select
	Required      bool
	UsedInFormula bool
	Position      int
}

// ProductTemplate define los atributos de un tipo de producto y la fórmula de volumen por unidad.
type ProductTemplate struct {
	ID         string
	Name       string
	Unit       string  // unidad visible del volumen, ej. "m³"
	Formula    *string // nil = la plantilla no calcula volumen
	Attributes []ProductAttribute
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasFormula indica si la plantilla define una fórmula no vacía.
func (t *ProductTemplate) HasFormula() bool {
	return t.Formula != nil && *t.Formula != ""
}

// Attribute busca un atributo por nombre de variable.
func (t *ProductTemplate) Attribute(variable string) (*ProductAttribute, bool) {
	for i := range t.Attributes {
		if t.Attributes[i].Variable == variable {
			return &t.Attributes[i], true
		}
	}
	return nil, false
}

// DisplayName devuelve el nombre visible de una variable, o la variable si no existe el atributo.
func (t *ProductTemplate) DisplayName(variable string) string {
	if a, ok := t.Attribute(variable); ok && a.DisplayName != "" {
		return a.DisplayName
	}
	return variable
}
