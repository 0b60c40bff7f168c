package memory

import (
	"context"

	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
)

func (s *Store) GetParty(_ context.Context, id int64) (*entity.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePtr(s.parties[id]), nil
}

// FindActiveByName coincidencia exacta entre clientes habilitados de la empresa.
// Con homónimos gana el de menor ID para que el resultado sea determinista.
func (s *Store) FindActiveByName(_ context.Context, companyID int64, name string) (*entity.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *entity.Party
	for _, p := range s.parties {
		if p.CompanyID != companyID || !p.Enabled || p.Name != name {
			continue
		}
		if found == nil || p.ID < found.ID {
			found = p
		}
	}
	return clonePtr(found), nil
}

func (s *Store) GetSupplier(_ context.Context, id int64) (*entity.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePtr(s.suppliers[id]), nil
}

func (s *Store) GetState(_ context.Context, id int64) (*entity.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePtr(s.states[id]), nil
}

func (s *Store) GetMaterial(_ context.Context, id int64) (*entity.Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePtr(s.materials[id]), nil
}

func (s *Store) GetHSN(_ context.Context, id int64) (*entity.HSN, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePtr(s.hsn[id]), nil
}

func (s *Store) GetPacking(_ context.Context, id int64) (*entity.Packing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePtr(s.packings[id]), nil
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
