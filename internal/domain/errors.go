package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
)

// Errores del libro de lotes.
var (
	ErrNotReceivable   = errors.New("el lote no se puede recibir en su estado actual")
	ErrAlreadyTerminal = errors.New("el lote ya está en un estado final")
	ErrInvalidStatus   = errors.New("estado de lote inválido")
	ErrInactiveLot     = errors.New("el lote está inactivo")
)

// Errores de ventas.
var (
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrAlreadyCancelled  = errors.New("la venta ya está cancelada")
	ErrAlreadyProcessed  = errors.New("la venta ya fue procesada")
)

// Errores de concurrencia: el caller puede reintentar un número acotado de veces.
var (
	ErrConflict = errors.New("conflicto con el estado actual")
	ErrBusy     = errors.New("recurso ocupado, tiempo de espera agotado")
)

// IsRetryable indica si el error es de concurrencia (Conflict/Busy).
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrBusy)
}

// StateError añade contexto (entidad, id, estado actual) a un error de libro o venta.
// errors.Is sigue funcionando contra el sentinel envuelto.
type StateError struct {
	Entity string
	ID     string
	State  string
	Err    error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s %s (estado %s): %v", e.Entity, e.ID, e.State, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

// NewStateError construye un StateError.
func NewStateError(entity, id, state string, err error) *StateError {
	return &StateError{Entity: entity, ID: id, State: state, Err: err}
}
