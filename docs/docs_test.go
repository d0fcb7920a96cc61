package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerRegistrado(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var swaggerDoc struct {
		Paths map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc), &swaggerDoc))
	assert.Contains(t, swaggerDoc.Paths, "/api/sales/{id}/process")
	assert.Contains(t, swaggerDoc.Paths["/api/shipments/{id}/receive"], "post")
	assert.Contains(t, swaggerDoc.Paths["/api/stock"], "get")
}
