package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/application/auth"
	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/application/ports"
	"github.com/jhoicas/Inventario-lotes/internal/application/retry"
	"github.com/jhoicas/Inventario-lotes/internal/application/sales"
	"github.com/jhoicas/Inventario-lotes/internal/application/usecase"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Inventario-lotes/internal/infrastructure/pdf"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/xlsx"
	apphttp "github.com/jhoicas/Inventario-lotes/internal/interfaces/http"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// App completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

type busyLocker struct{}

func (busyLocker) Lock(context.Context, string) (func(), error) {
	return nil, domain.NewStateError("lote en bodega", "x", "bloqueado", domain.ErrBusy)
}

type apiClient struct {
	t    *testing.T
	app  *fiber.App
	role string
}

func newAPI(t *testing.T, locker ports.LotLocker) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	log := logger.Nop()
	policy := retry.Policy{Attempts: 2, Backoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		UserUC:      usecase.NewUserUseCase(store.Users()),
		TemplateUC:  usecase.NewTemplateUseCase(repos.Templates),
		WarehouseUC: usecase.NewWarehouseUseCase(repos.Warehouses),
		ShipmentUC:  inventory.NewShipmentUseCase(store, repos, policy, log),
		StockUC:     inventory.NewStockUseCase(store, repos, locker, xlsx.NewStockExporter(), policy, log),
		SaleUC:      sales.NewSaleUseCase(store, repos, locker, policy, log),
		SalePDF:     sales.NewPDFUseCase(repos, infrapdf.NewMarotoPDFGenerator()),
		JWTSecret:   testJWTSecret,
	})
	return app
}

func (a apiClient) as(role string) apiClient {
	a.role = role
	return a
}

func (a apiClient) do(method, path string, body any) (int, []byte) {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if a.role != "" {
		req.Header.Set("Authorization", tokenForRole(a.t, a.role))
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

// seedLot crea bodega, plantilla "Boards" (a*b), lote en tránsito y lo recibe.
func seedLot(t *testing.T, c apiClient, qty int64) (warehouseID, lotID string) {
	t.Helper()
	status, raw := c.as("admin").do(http.MethodPost, "/api/warehouses", dto.CreateWarehouseRequest{Name: "Bodega Central"})
	require.Equal(t, http.StatusCreated, status, string(raw))
	wh := decode[dto.WarehouseResponse](t, raw)

	f := "a*b"
	status, raw = c.as("admin").do(http.MethodPost, "/api/templates", dto.CreateTemplateRequest{
		Name: "Boards", Unit: "m3", Formula: &f,
		Attributes: []dto.AttributeRequest{
			{Variable: "a", DisplayName: "Ancho", Kind: "number", Required: true, UsedInFormula: true},
			{Variable: "b", DisplayName: "Largo", Kind: "number", Required: true, UsedInFormula: true},
		},
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	tpl := decode[dto.TemplateResponse](t, raw)

	status, raw = c.as("bodeguero").do(http.MethodPost, "/api/shipments", dto.CreateShipmentRequest{
		TemplateID: tpl.ID, WarehouseID: wh.ID, Producer: "Aserrío Norte",
		Attributes: map[string]any{"a": 3, "b": 4}, Quantity: qty, Status: "arrived",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	shipment := decode[dto.ShipmentResponse](t, raw)
	require.NotNil(t, shipment.CalculatedVolume)
	assert.Equal(t, "12.000", shipment.CalculatedVolume.StringFixed(3))

	status, raw = c.as("bodeguero").do(http.MethodPost, "/api/shipments/"+shipment.ID+"/receive", nil)
	require.Equal(t, http.StatusCreated, status, string(raw))
	lot := decode[dto.LotResponse](t, raw)
	return wh.ID, lot.ID
}

func newSale(t *testing.T, c apiClient, lotID string, qty int64) dto.SaleResponse {
	t.Helper()
	status, raw := c.as("vendedor").do(http.MethodPost, "/api/sales", map[string]any{
		"lot_id": lotID, "quantity": qty, "unit_price": "1000", "vat_rate": "19",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	return decode[dto.SaleResponse](t, raw)
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo completo
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_FlujoRecepcionVentaYStock(t *testing.T) {
	c := apiClient{t: t, app: newAPI(t, memory.NewLotLocker(time.Second))}
	whID, lotID := seedLot(t, c, 10)

	first := newSale(t, c, lotID, 8)
	second := newSale(t, c, lotID, 5)

	// 10 en el lote menos 13 reservados: no aparece en el listado y sí en integridad.
	status, raw := c.as("vendedor").do(http.MethodGet, "/api/stock?warehouse_id="+whID, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Empty(t, decode[[]dto.StockGroupResponse](t, raw))

	status, raw = c.as("admin").do(http.MethodGet, "/api/stock/integrity", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	integrity := decode[dto.StockIntegrityResponse](t, raw)
	assert.False(t, integrity.OK)
	require.Len(t, integrity.Groups, 1)
	assert.Equal(t, int64(-3), integrity.Groups[0].TotalQuantity)

	status, raw = c.as("vendedor").do(http.MethodPost, "/api/sales/"+first.ID+"/process", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.True(t, decode[dto.SaleResponse](t, raw).StockApplied)

	status, raw = c.as("vendedor").do(http.MethodPost, "/api/sales/"+second.ID+"/process", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[dto.ErrorResponse](t, raw).Code)

	status, _ = c.as("vendedor").do(http.MethodPost, "/api/sales/"+first.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, status)
	status, raw = c.as("vendedor").do(http.MethodPost, "/api/sales/"+first.ID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_CANCELLED", decode[dto.ErrorResponse](t, raw).Code)

	// La cancelación devolvió las 8 unidades; queda la venta pendiente de 5.
	status, raw = c.as("bodeguero").do(http.MethodGet, "/api/stock?warehouse_id="+whID, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	groups := decode[[]dto.StockGroupResponse](t, raw)
	require.Len(t, groups, 1)
	assert.Equal(t, int64(5), groups[0].AvailableQuantity)
	assert.Equal(t, "Boards", groups[0].TemplateName)
}

func TestRouter_ExportYNotaDeEntrega(t *testing.T) {
	c := apiClient{t: t, app: newAPI(t, memory.NewLotLocker(time.Second))}
	_, lotID := seedLot(t, c, 10)
	sale := newSale(t, c, lotID, 2)

	req := httptest.NewRequest(http.MethodGet, "/api/stock/export", nil)
	req.Header.Set("Authorization", tokenForRole(t, "bodeguero"))
	resp, err := c.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")

	status, raw := c.as("vendedor").do(http.MethodGet, "/api/sales/"+sale.ID+"/pdf", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Traducción de errores
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_LoteOcupado_503ConRetryAfter(t *testing.T) {
	c := apiClient{t: t, app: newAPI(t, busyLocker{})}
	_, lotID := seedLot(t, c, 10)
	sale := newSale(t, c, lotID, 1)

	req := httptest.NewRequest(http.MethodPost, "/api/sales/"+sale.ID+"/process", nil)
	req.Header.Set("Authorization", tokenForRole(t, "vendedor"))
	resp, err := c.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))
}

func TestRouter_FormulaInvalida_422(t *testing.T) {
	c := apiClient{t: t, app: newAPI(t, memory.NewLotLocker(time.Second))}
	f := "a*("
	status, raw := c.as("admin").do(http.MethodPost, "/api/templates", dto.CreateTemplateRequest{
		Name: "Rota", Formula: &f,
		Attributes: []dto.AttributeRequest{{Variable: "a", Kind: "number", UsedInFormula: true}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "FORMULA_INVALID", decode[dto.ErrorResponse](t, raw).Code)
}

func TestRouter_ValidacionYPermisos(t *testing.T) {
	c := apiClient{t: t, app: newAPI(t, memory.NewLotLocker(time.Second))}

	status, raw := c.as("vendedor").do(http.MethodPost, "/api/sales", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decode[dto.ErrorResponse](t, raw).Message, "lotid: required")

	status, _ = c.as("vendedor").do(http.MethodPost, "/api/templates", dto.CreateTemplateRequest{Name: "x"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = c.as("bodeguero").do(http.MethodPost, "/api/sales", map[string]any{"lot_id": "x", "quantity": 1})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = c.as("vendedor").do(http.MethodGet, "/api/sales/no-existe", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = c.do(http.MethodGet, "/api/stock", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRouter_RegistroPublicoSiempreVendedor(t *testing.T) {
	c := apiClient{t: t, app: newAPI(t, memory.NewLotLocker(time.Second))}

	status, raw := c.do(http.MethodPost, "/api/auth/register", dto.RegisterRequest{
		Email: "Ana@Ejemplo.com", Password: "secreta123", Role: "admin",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	assert.Equal(t, "vendedor", decode[dto.UserResponse](t, raw).Role)

	status, raw = c.do(http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "ana@ejemplo.com", Password: "secreta123"})
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.NotEmpty(t, decode[dto.LoginResponse](t, raw).Token)

	status, _ = c.do(http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "ana@ejemplo.com", Password: "otra-clave"})
	assert.Equal(t, http.StatusUnauthorized, status)
}
