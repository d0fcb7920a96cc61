// Package docs registra la especificación Swagger de la API en swag.
//
// swagger.json se regenera con `swag init -g cmd/api/main.go` a partir de las
// anotaciones godoc de los handlers.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var docTemplate string

// SwaggerInfo metadatos de la API expuestos por swag.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Inventario Lotes API",
	Description:      "API de inventario por lotes: plantillas con fórmula de volumen, lotes en tránsito y en bodega, ventas y stock disponible.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
