package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StockHandler lotes en bodega y stock disponible agrupado.
type StockHandler struct {
	uc *inventory.StockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// QueryAvailableStock godoc
// @Summary      Stock disponible
// @Description  Agrupa lotes activos por (plantilla, bodega, productor, nombre) y resta las ventas abiertas.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id   query  string  false  "Bodega"
// @Param        template_id    query  string  false  "Plantilla"
// @Param        producer       query  string  false  "Productor"
// @Param        include_empty  query  bool    false  "Incluir grupos sin disponible"
// @Success      200  {array}  dto.StockGroupResponse
// @Router       /api/stock [get]
func (h *StockHandler) QueryAvailableStock(c *fiber.Ctx) error {
	var in dto.StockQueryRequest
	if ok, err := bindQuery(c, &in); !ok {
		return err
	}
	out, err := h.uc.QueryAvailableStock(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Integrity godoc
// @Summary      Integridad del stock
// @Description  Grupos cuyo total con signo es negativo (más reservado que existente).
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega"
// @Success      200  {object}  dto.StockIntegrityResponse
// @Router       /api/stock/integrity [get]
func (h *StockHandler) Integrity(c *fiber.Ctx) error {
	var in dto.StockQueryRequest
	if ok, err := bindQuery(c, &in); !ok {
		return err
	}
	out, err := h.uc.Integrity(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar stock a Excel
// @Tags         stock
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        warehouse_id  query  string  false  "Bodega"
// @Success      200  {file}  binary
// @Router       /api/stock/export [get]
func (h *StockHandler) Export(c *fiber.Ctx) error {
	var in dto.StockQueryRequest
	if ok, err := bindQuery(c, &in); !ok {
		return err
	}
	data, filename, err := h.uc.Export(c.UserContext(), in)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// ListLots godoc
// @Summary      Listar lotes en bodega
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id    query  string  false  "Bodega"
// @Param        template_id     query  string  false  "Plantilla"
// @Param        producer        query  string  false  "Productor"
// @Param        include_inactive query bool    false  "Incluir inactivos"
// @Param        limit           query  int     false  "Límite"  default(20)
// @Param        offset          query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.LotListResponse
// @Router       /api/lots [get]
func (h *StockHandler) ListLots(c *fiber.Ctx) error {
	var in dto.LotFilterRequest
	if ok, err := bindQuery(c, &in); !ok {
		return err
	}
	limit, offset := page(c)
	out, err := h.uc.ListLots(c.UserContext(), in, !c.QueryBool("include_inactive", false), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetLot godoc
// @Summary      Obtener lote en bodega
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [get]
func (h *StockHandler) GetLot(c *fiber.Ctx) error {
	out, err := h.uc.GetLot(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if out == nil {
		return notFound(c, "lote")
	}
	return c.JSON(out)
}

// AdjustQuantity godoc
// @Summary      Ajustar cantidad del lote
// @Description  Conteo físico. Se envía la versión leída; si el lote cambió responde 409.
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del lote"
// @Param        body  body  dto.AdjustLotRequest  true  "Cantidad, versión y motivo"
// @Success      200   {object}  dto.LotResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/quantity [patch]
func (h *StockHandler) AdjustQuantity(c *fiber.Ctx) error {
	var in dto.AdjustLotRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.AdjustLotQuantity(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Activate godoc
// @Summary      Activar lote
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Router       /api/lots/{id}/activate [post]
func (h *StockHandler) Activate(c *fiber.Ctx) error {
	return h.setActive(c, true)
}

// Deactivate godoc
// @Summary      Desactivar lote
// @Description  Un lote inactivo no se vende ni cuenta en el stock disponible.
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Router       /api/lots/{id}/deactivate [post]
func (h *StockHandler) Deactivate(c *fiber.Ctx) error {
	return h.setActive(c, false)
}

func (h *StockHandler) setActive(c *fiber.Ctx, active bool) error {
	out, err := h.uc.SetLotActive(c.UserContext(), GetUserID(c), c.Params("id"), active)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
