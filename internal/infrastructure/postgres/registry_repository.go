package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pharmadist-core/internal/application/ports"
	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
	"github.com/jhoicas/pharmadist-core/internal/domain/repository"
)

var (
	_ repository.PartyRegistry    = (*RegistryRepo)(nil)
	_ repository.SupplierRegistry = (*RegistryRepo)(nil)
	_ repository.StateRegistry    = (*RegistryRepo)(nil)
	_ repository.MaterialRegistry = (*RegistryRepo)(nil)
	_ repository.HSNRegistry      = (*RegistryRepo)(nil)
	_ repository.PackingRegistry  = (*RegistryRepo)(nil)
)

const partyColumns = `id, company_id, kind, name, address, gst_no, state_id, credit_days, enabled, created_at, updated_at`

// RegistryRepo lecturas de maestros (terceros, estados, materiales, HSN, presentaciones).
type RegistryRepo struct {
	q Querier
}

// NewRegistryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRegistryRepository(q Querier) *RegistryRepo {
	return &RegistryRepo{q: q}
}

// Registries expone el repo como conjunto de registros.
func (r *RegistryRepo) Registries() ports.Registries {
	return ports.Registries{
		Parties:   r,
		Suppliers: r,
		States:    r,
		Materials: r,
		HSN:       r,
		Packings:  r,
	}
}

func (r *RegistryRepo) GetParty(ctx context.Context, id int64) (*entity.Party, error) {
	return r.partyByKind(ctx, id, entity.PartyKindCustomer)
}

func (r *RegistryRepo) GetSupplier(ctx context.Context, id int64) (*entity.Party, error) {
	return r.partyByKind(ctx, id, entity.PartyKindSupplier)
}

func (r *RegistryRepo) partyByKind(ctx context.Context, id int64, kind string) (*entity.Party, error) {
	p, err := scanParty(r.q.QueryRow(ctx,
		`SELECT `+partyColumns+` FROM parties WHERE id = $1 AND kind = $2`, id, kind))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get party: %w", err)
	}
	return p, nil
}

// FindActiveByName coincidencia exacta; con homónimos gana el id más bajo.
func (r *RegistryRepo) FindActiveByName(ctx context.Context, companyID int64, name string) (*entity.Party, error) {
	p, err := scanParty(r.q.QueryRow(ctx, `
		SELECT `+partyColumns+` FROM parties
		WHERE company_id = $1 AND kind = $2 AND enabled AND name = $3
		ORDER BY id LIMIT 1`, companyID, entity.PartyKindCustomer, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find party by name: %w", err)
	}
	return p, nil
}

func scanParty(row pgx.Row) (*entity.Party, error) {
	var p entity.Party
	var address, gstNo *string
	var stateID *int64
	err := row.Scan(&p.ID, &p.CompanyID, &p.Kind, &p.Name, &address, &gstNo, &stateID,
		&p.CreditDays, &p.Enabled, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Address = derefStr(address)
	p.GSTNo = derefStr(gstNo)
	p.StateID = derefInt(stateID)
	return &p, nil
}

func (r *RegistryRepo) GetState(ctx context.Context, id int64) (*entity.State, error) {
	var s entity.State
	err := r.q.QueryRow(ctx,
		`SELECT id, code, description, state_type FROM states WHERE id = $1`, id,
	).Scan(&s.ID, &s.Code, &s.Description, &s.StateType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &s, nil
}

func (r *RegistryRepo) GetMaterial(ctx context.Context, id int64) (*entity.Material, error) {
	var m entity.Material
	var hsnID, packingID *int64
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, code, description, hsn_id, packing_id, lot_tracked
		FROM materials WHERE id = $1`, id,
	).Scan(&m.ID, &m.CompanyID, &m.Code, &m.Description, &hsnID, &packingID, &m.LotTracked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	m.HSNID = derefInt(hsnID)
	m.PackingID = derefInt(packingID)
	return &m, nil
}

func (r *RegistryRepo) GetHSN(ctx context.Context, id int64) (*entity.HSN, error) {
	var h entity.HSN
	err := r.q.QueryRow(ctx,
		`SELECT id, code, cgst_pct, sgst_pct, igst_pct FROM hsn_codes WHERE id = $1`, id,
	).Scan(&h.ID, &h.Code, &h.CGSTPct, &h.SGSTPct, &h.IGSTPct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get hsn: %w", err)
	}
	return &h, nil
}

func (r *RegistryRepo) GetPacking(ctx context.Context, id int64) (*entity.Packing, error) {
	var p entity.Packing
	err := r.q.QueryRow(ctx,
		`SELECT id, description, units_per_pack FROM packings WHERE id = $1`, id,
	).Scan(&p.ID, &p.Description, &p.UnitsPerPack)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get packing: %w", err)
	}
	return &p, nil
}
