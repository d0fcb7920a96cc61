package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AttributeRequest definición de un atributo de plantilla.
type AttributeRequest struct {
	Variable      string   `json:"variable" validate:"required,max=64"`
	DisplayName   string   `json:"display_name" validate:"omitempty,max=120"`
	Kind          string   `json:"kind" validate:"required,oneof=number text select"`
	Options       []string `json:"options" validate:"omitempty,dive,required"`
	Required      bool     `json:"required"`
	UsedInFormula bool     `json:"used_in_formula"`
}

// CreateTemplateRequest entrada para crear una plantilla de producto.
type CreateTemplateRequest struct {
	Name       string             `json:"name" validate:"required,min=1,max=200"`
	Unit       string             `json:"unit" validate:"omitempty,max=20"`
	Formula    *string            `json:"formula" validate:"omitempty,max=1024"`
	Attributes []AttributeRequest `json:"attributes" validate:"dive"`
}

// UpdateTemplateRequest entrada para actualizar una plantilla. Attributes no nil reemplaza la lista.
type UpdateTemplateRequest struct {
	Name       *string            `json:"name" validate:"omitempty,min=1,max=200"`
	Unit       *string            `json:"unit" validate:"omitempty,max=20"`
	Formula    *string            `json:"formula" validate:"omitempty,max=1024"`
	Attributes []AttributeRequest `json:"attributes" validate:"omitempty,dive"`
	IsActive   *bool              `json:"is_active"`
}

// AttributeResponse salida de un atributo.
type AttributeResponse struct {
	Variable      string   `json:"variable"`
	DisplayName   string   `json:"display_name"`
	Kind          string   `json:"kind"`
	Options       []string `json:"options,omitempty"`
	Required      bool     `json:"required"`
	UsedInFormula bool     `json:"used_in_formula"`
}

// TemplateResponse salida de una plantilla.
type TemplateResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Unit       string              `json:"unit"`
	Formula    *string             `json:"formula"`
	Attributes []AttributeResponse `json:"attributes"`
	IsActive   bool                `json:"is_active"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// TestFormulaRequest valores de atributos para previsualizar el volumen.
type TestFormulaRequest struct {
	Attributes map[string]any `json:"attribute_values"`
}

// TestFormulaResponse resultado de la vista previa: result si success, error si no.
type TestFormulaResponse struct {
	Success bool             `json:"success"`
	Result  *decimal.Decimal `json:"result,omitempty"`
	Unit    string           `json:"unit,omitempty"`
	Error   string           `json:"error,omitempty"`
	Missing []string         `json:"missing,omitempty"`
}
