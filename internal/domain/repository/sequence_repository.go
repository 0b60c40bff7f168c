package repository

import (
	"context"

	"github.com/jhoicas/pharmadist-core/internal/domain/numbering"
)

// SequenceRepository contador de consecutivos por alcance (empresa, registro[, ejercicio]).
// Debe usarse dentro de la transacción de ensamble.
type SequenceRepository interface {
	// LockScope bloquea la fila del contador (SELECT FOR UPDATE), creándola si no existe,
	// y devuelve el último consecutivo emitido.
	LockScope(ctx context.Context, scope numbering.Scope) (int64, error)
	// MaxSeqNo devuelve el mayor seq_no ya guardado en documentos dentro del alcance.
	MaxSeqNo(ctx context.Context, scope numbering.Scope) (int64, error)
	// Store deja registrado el consecutivo emitido.
	Store(ctx context.Context, scope numbering.Scope, seqNo int64) error
}
