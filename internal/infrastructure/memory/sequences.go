package memory

import (
	"context"

	"github.com/jhoicas/pharmadist-core/internal/domain/numbering"
)

// LockScope no necesita bloqueo de fila: RunInTx ya serializa las transacciones.
func (s *Store) LockScope(_ context.Context, scope numbering.Scope) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.counters[scope.Key()]
	if !ok {
		s.counters[scope.Key()] = 0
	}
	return last, nil
}

func (s *Store) MaxSeqNo(_ context.Context, scope numbering.Scope) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var top int64
	window := scope.FiscalYear.Window()
	for _, d := range s.docs {
		if d.CompanyID != scope.CompanyID || d.Register != scope.Register {
			continue
		}
		if scope.PerFiscalYear() && !window.Contains(d.DocDate) {
			continue
		}
		if d.SeqNo > top {
			top = d.SeqNo
		}
	}
	return top, nil
}

func (s *Store) Store(_ context.Context, scope numbering.Scope, seqNo int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[scope.Key()] = seqNo
	return nil
}

// Counter último consecutivo registrado para el alcance (pruebas).
func (s *Store) Counter(scope numbering.Scope) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[scope.Key()]
}
