package memory

import (
	"github.com/google/uuid"

	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
)

// Helpers de carga de maestros (pruebas y modo demo).

func (s *Store) AddParty(p entity.Party) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parties[p.ID] = &p
}

func (s *Store) AddSupplier(p entity.Party) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.Kind = entity.PartyKindSupplier
	s.suppliers[p.ID] = &p
}

func (s *Store) AddState(st entity.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[st.ID] = &st
}

func (s *Store) AddMaterial(m entity.Material) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials[m.ID] = &m
}

func (s *Store) AddHSN(h entity.HSN) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hsn[h.ID] = &h
}

func (s *Store) AddPacking(p entity.Packing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packings[p.ID] = &p
}

// PutDocument carga un documento histórico completo (maestro, líneas y lotes) tal cual,
// asignando IDs a lo que venga sin ellos. Devuelve el ID del documento.
func (s *Store) PutDocument(doc entity.Document) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	for i, l := range doc.Lines {
		line := *l
		if line.ID == "" {
			line.ID = uuid.New().String()
		}
		line.DocumentID = doc.ID
		if line.LineNo == 0 {
			line.LineNo = i + 1
		}
		if line.Batch != nil {
			b := *line.Batch
			if b.ID == "" {
				b.ID = uuid.New().String()
			}
			b.LineItemID = line.ID
			if b.MaterialID == 0 {
				b.MaterialID = line.MaterialID
			}
			s.batches[b.ID] = &b
			l.Batch.ID = b.ID
		}
		line.Batch = nil
		s.lines[line.ID] = &line
		l.ID = line.ID
	}
	doc.Lines = nil
	s.docs[doc.ID] = &doc
	return doc.ID
}
