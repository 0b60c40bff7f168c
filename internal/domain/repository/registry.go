package repository

import (
	"context"

	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
)

// PartyRegistry consulta el maestro de clientes.
type PartyRegistry interface {
	GetParty(ctx context.Context, id int64) (*entity.Party, error)
	// FindActiveByName coincidencia exacta (sensible a mayúsculas) entre terceros habilitados.
	FindActiveByName(ctx context.Context, companyID int64, name string) (*entity.Party, error)
}

// SupplierRegistry consulta el maestro de proveedores.
type SupplierRegistry interface {
	GetSupplier(ctx context.Context, id int64) (*entity.Party, error)
}

// StateRegistry consulta el maestro de estados.
type StateRegistry interface {
	GetState(ctx context.Context, id int64) (*entity.State, error)
}

// MaterialRegistry consulta el maestro de materiales.
type MaterialRegistry interface {
	GetMaterial(ctx context.Context, id int64) (*entity.Material, error)
}

// HSNRegistry consulta la tabla de tasas GST por HSN.
type HSNRegistry interface {
	GetHSN(ctx context.Context, id int64) (*entity.HSN, error)
}

// PackingRegistry consulta el maestro de presentaciones.
type PackingRegistry interface {
	GetPacking(ctx context.Context, id int64) (*entity.Packing, error)
}
