package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
)

// ShipmentHandler lotes en tránsito: alta, estados, recepción, correcciones y discrepancias.
type ShipmentHandler struct {
	uc *inventory.ShipmentUseCase
}

// NewShipmentHandler construye el handler.
func NewShipmentHandler(uc *inventory.ShipmentUseCase) *ShipmentHandler {
	return &ShipmentHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar lote en tránsito
// @Description  Valida los atributos contra la plantilla y calcula el volumen por unidad.
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateShipmentRequest  true  "Plantilla, bodega, productor, atributos y cantidad"
// @Success      201   {object}  dto.ShipmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/shipments [post]
func (h *ShipmentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateShipmentRequest
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
// @Summary      Obtener lote en tránsito
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote en tránsito"
// @Success      200  {object}  dto.ShipmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id} [get]
func (h *ShipmentHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if out == nil {
		return notFound(c, "lote en tránsito")
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar lotes en tránsito
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        template_id   query  string  false  "Plantilla"
// @Param        status        query  string  false  "ordered | in_transit | arrived | received | cancelled"
// @Param        overdue       query  bool    false  "Solo vencidos"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ShipmentListResponse
// @Router       /api/shipments [get]
func (h *ShipmentHandler) List(c *fiber.Ctx) error {
	var in dto.ShipmentFilterRequest
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

// UpdateStatus godoc
// @Summary      Cambiar estado del lote en tránsito
// @Description  "received" equivale a recibir el lote (crea el lote en bodega).
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                           true  "ID del lote en tránsito"
// @Param        body  body  dto.UpdateShipmentStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.ShipmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/status [patch]
func (h *ShipmentHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateShipmentStatusRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateStatus(c.UserContext(), GetUserID(c), c.Params("id"), in.Status)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Receive godoc
// @Summary      Recibir lote
// @Description  Crea el lote en bodega y marca el lote en tránsito como recibido, en una sola transacción.
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote en tránsito"
// @Success      201  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/receive [post]
func (h *ShipmentHandler) Receive(c *fiber.Ctx) error {
	out, err := h.uc.Receive(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Cancel godoc
// @Summary      Cancelar lote en tránsito
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote en tránsito"
// @Success      200  {object}  dto.ShipmentResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/cancel [post]
func (h *ShipmentHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Correct godoc
// @Summary      Corregir cantidad del lote en tránsito
// @Description  Cambia la cantidad y registra la discrepancia en la misma transacción.
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del lote en tránsito"
// @Param        body  body  dto.CorrectShipmentRequest  true  "Cantidad y motivo"
// @Success      200   {object}  dto.DiscrepancyResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/correct [post]
func (h *ShipmentHandler) Correct(c *fiber.Ctx) error {
	var in dto.CorrectShipmentRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Correct(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ListDiscrepancies godoc
// @Summary      Discrepancias del lote
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote en tránsito"
// @Success      200  {array}  dto.DiscrepancyResponse
// @Router       /api/shipments/{id}/discrepancies [get]
func (h *ShipmentHandler) ListDiscrepancies(c *fiber.Ctx) error {
	out, err := h.uc.ListDiscrepancies(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// RecordDiscrepancy godoc
// @Summary      Registrar discrepancia
// @Description  Registro de auditoría antes/después; no modifica el lote.
// @Tags         discrepancies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordDiscrepancyRequest  true  "Lote, motivo y valores"
// @Success      201   {object}  dto.DiscrepancyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/discrepancies [post]
func (h *ShipmentHandler) RecordDiscrepancy(c *fiber.Ctx) error {
	var in dto.RecordDiscrepancyRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.RecordDiscrepancy(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
