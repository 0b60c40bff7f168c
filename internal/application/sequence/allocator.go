// Package sequence asigna consecutivos de documento bajo disciplina serializada:
// candado opcional por alcance + bloqueo de la fila del contador dentro de la tx.
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/pharmadist-core/internal/application/ports"
	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
	"github.com/jhoicas/pharmadist-core/internal/domain/numbering"
	"github.com/jhoicas/pharmadist-core/internal/domain/repository"
	"github.com/jhoicas/pharmadist-core/pkg/logger"
)

// ScopeLocker candado entre procesos por clave de alcance (ej. Redis).
type ScopeLocker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }

// NoopLocker no bloquea nada; el bloqueo de fila del contador es suficiente con una sola base.
func NoopLocker() ScopeLocker { return noopLocker{} }

// Allocation consecutivo asignado y su número legal.
type Allocation struct {
	Scope      numbering.Scope
	FiscalYear numbering.FiscalYear
	SeqNo      int64
	DocNo      string
}

// Allocator asigna consecutivos por (empresa, registro[, ejercicio]).
type Allocator struct {
	tx     ports.TxRunner
	locker ScopeLocker
	log    *logger.Logger
}

// NewAllocator construye el asignador. locker nil = NoopLocker.
func NewAllocator(tx ports.TxRunner, locker ScopeLocker, log *logger.Logger) *Allocator {
	if locker == nil {
		locker = NoopLocker()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Allocator{tx: tx, locker: locker, log: log.Component("sequence")}
}

// ScopeOf alcance del contador para el registro y la fecha del documento.
func ScopeOf(companyID int64, register entity.RegisterKind, docDate time.Time) (numbering.Scope, error) {
	p, err := numbering.PolicyFor(register)
	if err != nil {
		return numbering.Scope{}, err
	}
	return p.ScopeFor(companyID, docDate), nil
}

// Lock toma el candado del alcance. El llamador debe liberar después del commit.
func (a *Allocator) Lock(ctx context.Context, scope numbering.Scope) (func(), error) {
	release, err := a.locker.Lock(ctx, scope.Key())
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", scope.Key(), err)
	}
	return release, nil
}

// NextInTx asigna el siguiente consecutivo usando el repositorio de la tx del llamador.
// siguiente = max(último del contador, mayor seq_no guardado en el alcance) + 1.
// Si la tx se revierte, el contador también.
func (a *Allocator) NextInTx(ctx context.Context, seqRepo repository.SequenceRepository, companyID int64, register entity.RegisterKind, docDate time.Time) (Allocation, error) {
	p, err := numbering.PolicyFor(register)
	if err != nil {
		return Allocation{}, err
	}
	scope := p.ScopeFor(companyID, docDate)

	last, err := seqRepo.LockScope(ctx, scope)
	if err != nil {
		return Allocation{}, fmt.Errorf("lock sequence %s: %w", scope.Key(), err)
	}
	stored, err := seqRepo.MaxSeqNo(ctx, scope)
	if err != nil {
		return Allocation{}, fmt.Errorf("max seq_no %s: %w", scope.Key(), err)
	}
	next := max(last, stored) + 1
	if err := seqRepo.Store(ctx, scope, next); err != nil {
		return Allocation{}, fmt.Errorf("store sequence %s: %w", scope.Key(), err)
	}

	fy := numbering.FiscalYearOf(docDate)
	alloc := Allocation{Scope: scope, FiscalYear: fy, SeqNo: next, DocNo: p.Format(fy, next)}
	a.log.Debug().Str("scope", scope.Key()).Int64("seq_no", next).Str("doc_no", alloc.DocNo).Msg("consecutivo asignado")
	return alloc, nil
}

// NextSequence asigna un consecutivo en su propia transacción (reservas sin documento).
func (a *Allocator) NextSequence(ctx context.Context, companyID int64, register entity.RegisterKind, docDate time.Time) (Allocation, error) {
	scope, err := ScopeOf(companyID, register, docDate)
	if err != nil {
		return Allocation{}, err
	}
	release, err := a.Lock(ctx, scope)
	if err != nil {
		return Allocation{}, err
	}
	defer release()

	var alloc Allocation
	err = a.tx.RunInTx(ctx, func(_ repository.DocumentRepository, seqRepo repository.SequenceRepository) error {
		var err error
		alloc, err = a.NextInTx(ctx, seqRepo, companyID, register, docDate)
		return err
	})
	if err != nil {
		return Allocation{}, err
	}
	return alloc, nil
}
