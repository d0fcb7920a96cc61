package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/application/usecase"
)

// TemplateHandler maneja plantillas de producto y la vista previa de fórmulas.
type TemplateHandler struct {
	uc *usecase.TemplateUseCase
}

// NewTemplateHandler construye el handler.
func NewTemplateHandler(uc *usecase.TemplateUseCase) *TemplateHandler {
	return &TemplateHandler{uc: uc}
}

// Create godoc
// @Summary      Crear plantilla
// @Tags         templates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTemplateRequest  true  "Nombre, unidad, fórmula y atributos"
// @Success      201   {object}  dto.TemplateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/templates [post]
func (h *TemplateHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTemplateRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener plantilla
// @Tags         templates
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la plantilla"
// @Success      200  {object}  dto.TemplateResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/templates/{id} [get]
func (h *TemplateHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if out == nil {
		return notFound(c, "plantilla")
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar plantilla
// @Description  Si llegan atributos reemplazan la lista completa. No recalcula lotes existentes.
// @Tags         templates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la plantilla"
// @Param        body  body  dto.UpdateTemplateRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.TemplateResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/templates/{id} [put]
func (h *TemplateHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateTemplateRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	if out == nil {
		return notFound(c, "plantilla")
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar plantillas
// @Tags         templates
// @Security     Bearer
// @Produce      json
// @Param        active  query  bool  false  "Solo activas"
// @Param        limit   query  int   false  "Límite"  default(20)
// @Param        offset  query  int   false  "Offset"  default(0)
// @Success      200     {array}  dto.TemplateResponse
// @Router       /api/templates [get]
func (h *TemplateHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c)
	out, err := h.uc.List(c.UserContext(), c.QueryBool("active", false), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// TestFormula godoc
// @Summary      Probar fórmula
// @Description  Evalúa la fórmula de la plantilla con los valores dados sin guardar nada.
// @Tags         templates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la plantilla"
// @Param        body  body  dto.TestFormulaRequest  true  "attribute_values"
// @Success      200   {object}  dto.TestFormulaResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/templates/{id}/test-formula [post]
func (h *TemplateHandler) TestFormula(c *fiber.Ctx) error {
	var in dto.TestFormulaRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.TestFormula(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
