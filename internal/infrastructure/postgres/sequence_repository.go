package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pharmadist-core/internal/domain/numbering"
	"github.com/jhoicas/pharmadist-core/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contador de consecutivos en document_sequences. fiscal_year = 0 es el contador
// corrido de los registros que no reinician por ejercicio.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador; debe recibir la tx del ensamble.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// LockScope crea la fila si falta y la bloquea hasta el fin de la tx.
func (r *SequenceRepo) LockScope(ctx context.Context, scope numbering.Scope) (int64, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO document_sequences (company_id, register, fiscal_year, last_seq)
		VALUES ($1, $2, $3, 0)
		ON CONFLICT (company_id, register, fiscal_year) DO NOTHING`,
		scope.CompanyID, int(scope.Register), int(scope.FiscalYear),
	)
	if err != nil {
		return 0, fmt.Errorf("ensure sequence row: %w", err)
	}
	var last int64
	err = r.q.QueryRow(ctx, `
		SELECT last_seq FROM document_sequences
		WHERE company_id = $1 AND register = $2 AND fiscal_year = $3
		FOR UPDATE`,
		scope.CompanyID, int(scope.Register), int(scope.FiscalYear),
	).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("lock sequence %s: %w", scope.Key(), err)
	}
	return last, nil
}

// MaxSeqNo mayor seq_no guardado; con reinicio por ejercicio solo cuenta la ventana abril–marzo.
func (r *SequenceRepo) MaxSeqNo(ctx context.Context, scope numbering.Scope) (int64, error) {
	var top int64
	var err error
	if scope.PerFiscalYear() {
		w := scope.FiscalYear.Window()
		err = r.q.QueryRow(ctx, `
			SELECT COALESCE(MAX(seq_no), 0) FROM documents
			WHERE company_id = $1 AND register = $2 AND doc_date >= $3 AND doc_date < $4`,
			scope.CompanyID, int(scope.Register), w.From, w.To,
		).Scan(&top)
	} else {
		err = r.q.QueryRow(ctx, `
			SELECT COALESCE(MAX(seq_no), 0) FROM documents
			WHERE company_id = $1 AND register = $2`,
			scope.CompanyID, int(scope.Register),
		).Scan(&top)
	}
	if err != nil {
		return 0, fmt.Errorf("max seq_no %s: %w", scope.Key(), err)
	}
	return top, nil
}

func (r *SequenceRepo) Store(ctx context.Context, scope numbering.Scope, seqNo int64) error {
	_, err := r.q.Exec(ctx, `
		UPDATE document_sequences SET last_seq = $4, updated_at = now()
		WHERE company_id = $1 AND register = $2 AND fiscal_year = $3`,
		scope.CompanyID, int(scope.Register), int(scope.FiscalYear), seqNo,
	)
	if err != nil {
		return fmt.Errorf("store sequence %s: %w", scope.Key(), err)
	}
	return nil
}
