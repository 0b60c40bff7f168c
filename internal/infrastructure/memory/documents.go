package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pharmadist-core/internal/domain"
	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
)

// Create persiste el maestro. El número es único por empresa y registro.
func (s *Store) Create(_ context.Context, doc *entity.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if _, ok := s.docs[doc.ID]; ok {
		return fmt.Errorf("insert document: %w", domain.ErrConflict)
	}
	if doc.DocNo != "" {
		for _, d := range s.docs {
			if d.CompanyID == doc.CompanyID && d.Register == doc.Register && d.DocNo == doc.DocNo {
				return fmt.Errorf("insert document %s: %w", doc.DocNo, domain.ErrNumberingConflict)
			}
		}
	}
	s.docs[doc.ID] = copyMaster(doc)
	return nil
}

// Update reescribe la cabecera conservando numeración y auditoría de creación.
func (s *Store) Update(_ context.Context, doc *entity.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.docs[doc.ID]
	if !ok {
		return fmt.Errorf("update document: %w", domain.ErrNotFound)
	}
	cp := copyMaster(doc)
	cp.SeqNo, cp.DocNo, cp.FiscalYear = cur.SeqNo, cur.DocNo, cur.FiscalYear
	cp.CreatedBy, cp.CreatedAt = cur.CreatedBy, cur.CreatedAt
	s.docs[doc.ID] = cp
	return nil
}

func (s *Store) GetByID(_ context.Context, id string) (*entity.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, nil
	}
	return copyMaster(d), nil
}

func (s *Store) SetEnabled(_ context.Context, id string, enabled bool, modifiedBy int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return fmt.Errorf("set enabled: %w", domain.ErrNotFound)
	}
	cp := copyMaster(d)
	cp.Enabled = enabled
	cp.ModifiedBy = modifiedBy
	cp.UpdatedAt = time.Now()
	s.docs[id] = cp
	return nil
}

func (s *Store) CreateLine(_ context.Context, line *entity.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[line.DocumentID]; !ok {
		return fmt.Errorf("insert line: documento %s inexistente: %w", line.DocumentID, domain.ErrPersistence)
	}
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	cp := *line
	cp.Batch = nil
	s.lines[cp.ID] = &cp
	return nil
}

func (s *Store) CreateBatch(_ context.Context, batch *entity.BatchLot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lines[batch.LineItemID]; !ok {
		return fmt.Errorf("insert batch: línea %s inexistente: %w", batch.LineItemID, domain.ErrPersistence)
	}
	for _, b := range s.batches {
		if b.LineItemID == batch.LineItemID {
			return fmt.Errorf("insert batch: la línea %s ya tiene lote: %w", batch.LineItemID, domain.ErrConflict)
		}
	}
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	cp := *batch
	s.batches[cp.ID] = &cp
	return nil
}

// DeleteLines borra líneas y lotes del documento (cascada).
func (s *Store) DeleteLines(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, l := range s.lines {
		if l.DocumentID != documentID {
			continue
		}
		for bid, b := range s.batches {
			if b.LineItemID == id {
				delete(s.batches, bid)
			}
		}
		delete(s.lines, id)
	}
	return nil
}

func (s *Store) GetLines(_ context.Context, documentID string) ([]*entity.LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*entity.LineItem
	for _, l := range s.lines {
		if l.DocumentID == documentID {
			cp := *l
			cp.Batch = s.batchOf(l.ID)
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].LineNo < list[j].LineNo })
	return list, nil
}

func (s *Store) GetLine(_ context.Context, id string) (*entity.LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lines[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	cp.Batch = s.batchOf(l.ID)
	return &cp, nil
}

func (s *Store) GetBatchByLine(_ context.Context, lineID string) (*entity.BatchLot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batchOf(lineID), nil
}

// FindByReference incluye documentos deshabilitados: el linaje debe tolerarlos.
func (s *Store) FindByReference(_ context.Context, companyID int64, register entity.RegisterKind, partyID int64, ref string) (*entity.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ref == "" {
		return nil, nil
	}
	var best *entity.Document
	bestByRef := false
	for _, d := range s.docs {
		if d.CompanyID != companyID || d.Register != register {
			continue
		}
		if partyID > 0 && d.PartyID != partyID {
			continue
		}
		byRef := d.ReferenceNo == ref
		if !byRef && d.DocNo != ref {
			continue
		}
		switch {
		case best == nil:
		case byRef && !bestByRef:
		case byRef == bestByRef && newer(d, best):
		default:
			continue
		}
		best, bestByRef = d, byRef
	}
	if best == nil {
		return nil, nil
	}
	return copyMaster(best), nil
}

func newer(a, b *entity.Document) bool {
	if !a.DocDate.Equal(b.DocDate) {
		return a.DocDate.After(b.DocDate)
	}
	return a.SeqNo > b.SeqNo
}

func (s *Store) batchOf(lineID string) *entity.BatchLot {
	for _, b := range s.batches {
		if b.LineItemID == lineID {
			cp := *b
			return &cp
		}
	}
	return nil
}

func copyMaster(d *entity.Document) *entity.Document {
	cp := *d
	cp.Lines = nil
	if d.CostFactors != nil {
		cp.CostFactors = append([]entity.CostFactor(nil), d.CostFactors...)
	}
	return &cp
}
