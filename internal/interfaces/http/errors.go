package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/formula"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

// retryAfterSeconds valor de Retry-After cuando un lote está ocupado.
const retryAfterSeconds = "1"

type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings en orden: el primero que coincide con errors.Is gana.
var errorMappings = []errorMapping{
	{formula.ErrMissingVariables, fiber.StatusUnprocessableEntity, "FORMULA_MISSING_VALUES"},
	{formula.ErrInvalidExpression, fiber.StatusUnprocessableEntity, "FORMULA_INVALID"},
	{formula.ErrDivisionByZero, fiber.StatusUnprocessableEntity, "FORMULA_DIVISION_BY_ZERO"},

	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidStatus, fiber.StatusBadRequest, "INVALID_STATUS"},

	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrUserNotFound, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},

	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrNotReceivable, fiber.StatusConflict, "NOT_RECEIVABLE"},
	{domain.ErrAlreadyTerminal, fiber.StatusConflict, "ALREADY_TERMINAL"},
	{domain.ErrInactiveLot, fiber.StatusConflict, "INACTIVE_LOT"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrAlreadyCancelled, fiber.StatusConflict, "ALREADY_CANCELLED"},
	{domain.ErrAlreadyProcessed, fiber.StatusConflict, "ALREADY_PROCESSED"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},

	{domain.ErrBusy, fiber.StatusServiceUnavailable, "BUSY"},
}

// ErrorHandler traduce los errores que devuelven los handlers a dto.ErrorResponse.
// Los errores de dominio llevan su mensaje; los no reconocidos se registran y salen como 500.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: fiberCode(fe.Code), Message: fe.Message})
		}
		for _, m := range errorMappings {
			if errors.Is(err, m.target) {
				if m.status == fiber.StatusServiceUnavailable {
					c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
				}
				if m.status >= fiber.StatusInternalServerError || m.status == fiber.StatusConflict {
					log.Warn().Err(err).Str("path", c.Path()).Str("code", m.code).Msg("operación rechazada")
				}
				return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
			}
		}
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

func fiberCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusBadRequest:
		return "INVALID_BODY"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	}
	return "HTTP_ERROR"
}

// notFound respuesta 404 para recursos que el caso de uso devolvió como nil.
func notFound(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: what + " no encontrado"})
}
