package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrNumberingConflict = errors.New("conflicto de numeración: el consecutivo ya fue asignado")
	ErrPersistence       = errors.New("falla de persistencia")
	ErrLineageUnresolved = errors.New("linaje de lote no resuelto")
)

// ValidationError rechazo recuperable de un borrador con la razón concreta.
// Line es 1-based; 0 cuando el problema es de cabecera.
type ValidationError struct {
	Reason string
	Field  string
	Line   int
}

// NewValidation construye un error de validación de cabecera.
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NewLineValidation construye un error de validación para una fila del borrador.
func NewLineValidation(line int, field, reason string) *ValidationError {
	return &ValidationError{Line: line, Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: fila %d: %s", ErrInvalidInput.Error(), e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput.Error(), e.Reason)
}

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
