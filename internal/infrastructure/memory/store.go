// Package memory implementa todos los puertos de salida en memoria, protegido por mutex.
// Se usa en pruebas y con STORE_DRIVER=memory; no persiste entre reinicios.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/pharmadist-core/internal/application/ports"
	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
	"github.com/jhoicas/pharmadist-core/internal/domain/repository"
)

var (
	_ ports.TxRunner                = (*Store)(nil)
	_ repository.DocumentRepository = (*Store)(nil)
	_ repository.SequenceRepository = (*Store)(nil)
	_ repository.PartyRegistry      = (*Store)(nil)
	_ repository.SupplierRegistry   = (*Store)(nil)
	_ repository.StateRegistry      = (*Store)(nil)
	_ repository.MaterialRegistry   = (*Store)(nil)
	_ repository.HSNRegistry        = (*Store)(nil)
	_ repository.PackingRegistry    = (*Store)(nil)
)

// Store guarda cada fila como copia propia; las escrituras reemplazan el puntero
// (copy-on-write), así una instantánea superficial de los mapas basta para revertir.
type Store struct {
	txMu sync.Mutex // serializa transacciones
	mu   sync.RWMutex

	docs     map[string]*entity.Document
	lines    map[string]*entity.LineItem
	batches  map[string]*entity.BatchLot
	counters map[string]int64

	parties   map[int64]*entity.Party
	suppliers map[int64]*entity.Party
	states    map[int64]*entity.State
	materials map[int64]*entity.Material
	hsn       map[int64]*entity.HSN
	packings  map[int64]*entity.Packing
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{
		docs:      map[string]*entity.Document{},
		lines:     map[string]*entity.LineItem{},
		batches:   map[string]*entity.BatchLot{},
		counters:  map[string]int64{},
		parties:   map[int64]*entity.Party{},
		suppliers: map[int64]*entity.Party{},
		states:    map[int64]*entity.State{},
		materials: map[int64]*entity.Material{},
		hsn:       map[int64]*entity.HSN{},
		packings:  map[int64]*entity.Packing{},
	}
}

// Registries expone el almacén como conjunto de registros de maestros.
func (s *Store) Registries() ports.Registries {
	return ports.Registries{
		Parties:   s,
		Suppliers: s,
		States:    s,
		Materials: s,
		HSN:       s,
		Packings:  s,
	}
}

type snapshot struct {
	docs     map[string]*entity.Document
	lines    map[string]*entity.LineItem
	batches  map[string]*entity.BatchLot
	counters map[string]int64
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		docs:     cloneMap(s.docs),
		lines:    cloneMap(s.lines),
		batches:  cloneMap(s.batches),
		counters: cloneMap(s.counters),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = snap.docs
	s.lines = snap.lines
	s.batches = snap.batches
	s.counters = snap.counters
}

// RunInTx serializa la función y restaura la instantánea si devuelve error.
// Las lecturas fuera de una tx pueden ver escrituras aún no confirmadas.
func (s *Store) RunInTx(ctx context.Context, fn func(
	docRepo repository.DocumentRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	snap := s.snapshot()
	if err := fn(s, s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
