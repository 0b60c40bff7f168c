package ports

import (
	"context"

	"github.com/jhoicas/pharmadist-core/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se revierte todo: maestro, líneas, lotes y el consecutivo asignado.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(
		docRepo repository.DocumentRepository,
		seqRepo repository.SequenceRepository,
	) error) error
}

// Registries puertos de consulta de maestros usados al ensamblar.
type Registries struct {
	Parties   repository.PartyRegistry
	Suppliers repository.SupplierRegistry
	States    repository.StateRegistry
	Materials repository.MaterialRegistry
	HSN       repository.HSNRegistry
	Packings  repository.PackingRegistry
}
