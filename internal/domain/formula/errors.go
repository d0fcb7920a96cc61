package formula

import (
	"errors"
	"fmt"
	"strings"
)

// Errores del motor de fórmulas. Se devuelven tal cual al autor de la plantilla.
var (
	ErrMissingVariables  = errors.New("faltan valores para la fórmula")
	ErrInvalidExpression = errors.New("expresión inválida")
	ErrDivisionByZero    = errors.New("división por cero")
)

// MissingVariablesError lista las variables sin valor.
// La capa de plantillas reemplaza los identificadores por los nombres visibles de los atributos.
type MissingVariablesError struct {
	Names []string
}

func (e *MissingVariablesError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingVariables, strings.Join(e.Names, ", "))
}

func (e *MissingVariablesError) Unwrap() error { return ErrMissingVariables }

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidExpression, fmt.Sprintf(format, args...))
}
