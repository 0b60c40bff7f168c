package repository

import (
	"context"

	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
)

// DocumentRepository define el puerto de persistencia para maestro, detalle y lotes.
// Las implementaciones devuelven nil, nil cuando el registro no existe.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	// Update reescribe la cabecera (montos, tercero, régimen, ajustes); no toca el número.
	Update(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	SetEnabled(ctx context.Context, id string, enabled bool, modifiedBy int64) error

	CreateLine(ctx context.Context, line *entity.LineItem) error
	CreateBatch(ctx context.Context, batch *entity.BatchLot) error
	// DeleteLines elimina todas las líneas del documento y sus lotes (cascada).
	DeleteLines(ctx context.Context, documentID string) error
	// GetLines devuelve las líneas ordenadas por LineNo con su lote cargado.
	GetLines(ctx context.Context, documentID string) ([]*entity.LineItem, error)
	GetLine(ctx context.Context, id string) (*entity.LineItem, error)
	GetBatchByLine(ctx context.Context, lineID string) (*entity.BatchLot, error)

	// FindByReference busca el documento del tercero cuyo reference_no (o doc_no) coincide.
	// Prefiere coincidencia por reference_no y, a igualdad, el más reciente.
	FindByReference(ctx context.Context, companyID int64, register entity.RegisterKind, partyID int64, ref string) (*entity.Document, error)
}
