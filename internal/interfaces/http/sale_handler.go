package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/application/sales"
)

// SaleHandler ventas contra lotes en bodega.
type SaleHandler struct {
	uc  *sales.SaleUseCase
	pdf *sales.PDFUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.SaleUseCase, pdf *sales.PDFUseCase) *SaleHandler {
	return &SaleHandler{uc: uc, pdf: pdf}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Queda pendiente; no descuenta stock hasta procesarla.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Lote, cantidad y precios"
// @Success      201   {object}  dto.SaleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if out == nil {
		return notFound(c, "venta")
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        lot_id          query  string  false  "Lote"
// @Param        warehouse_id    query  string  false  "Bodega"
// @Param        payment_status  query  string  false  "pending | paid | partially_paid | cancelled"
// @Param        limit           query  int     false  "Límite"  default(20)
// @Param        offset          query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var in dto.SaleFilterRequest
	if ok, err := bindQuery(c, &in); !ok {
		return err
	}
	limit, offset := page(c)
	out, err := h.uc.List(c.UserContext(), in, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Modificar venta pendiente
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la venta"
// @Param        body  body  dto.UpdateSaleRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.SaleResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [put]
func (h *SaleHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSaleRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Process godoc
// @Summary      Procesar venta
// @Description  Descuenta la cantidad del lote y marca la venta pagada y entregada.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      409  {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK, ALREADY_PROCESSED, ALREADY_CANCELLED"
// @Failure      503  {object}  dto.ErrorResponse  "lote ocupado; reintentar"
// @Router       /api/sales/{id}/process [post]
func (h *SaleHandler) Process(c *fiber.Ctx) error {
	out, err := h.uc.Process(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar venta
// @Description  Si ya se había descontado, devuelve la cantidad al lote. Una segunda cancelación responde 409.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// UpdatePaymentStatus godoc
// @Summary      Cambiar estado de pago
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID de la venta"
// @Param        body  body  dto.UpdateSaleStatusRequest  true  "pending | partially_paid"
// @Success      200   {object}  dto.SaleResponse
// @Router       /api/sales/{id}/payment-status [patch]
func (h *SaleHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	var in dto.UpdateSaleStatusRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdatePaymentStatus(c.UserContext(), GetUserID(c), c.Params("id"), in.Status)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// UpdateDeliveryStatus godoc
// @Summary      Cambiar estado de entrega
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID de la venta"
// @Param        body  body  dto.UpdateSaleStatusRequest  true  "pending | in_progress"
// @Success      200   {object}  dto.SaleResponse
// @Router       /api/sales/{id}/delivery-status [patch]
func (h *SaleHandler) UpdateDeliveryStatus(c *fiber.Ctx) error {
	var in dto.UpdateSaleStatusRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateDeliveryStatus(c.UserContext(), GetUserID(c), c.Params("id"), in.Status)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// DownloadNote godoc
// @Summary      Nota de entrega en PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "venta cancelada"
// @Router       /api/sales/{id}/pdf [get]
func (h *SaleHandler) DownloadNote(c *fiber.Ctx) error {
	data, filename, err := h.pdf.DownloadSaleNote(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
