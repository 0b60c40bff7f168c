package lineage

import (
	"context"
	"fmt"

	"github.com/jhoicas/pharmadist-core/internal/application/ports"
	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
	"github.com/jhoicas/pharmadist-core/internal/domain/repository"
	"github.com/jhoicas/pharmadist-core/pkg/logger"
)

// Nombres de estrategia de resolución de tercero.
const (
	StrategyDirect   = "direct"
	StrategyAncestor = "ancestor"
	StrategySupplier = "supplier"
	StrategyByName   = "name"
)

// DefaultMaxAncestorHops saltos por parent_document_id por encima del padre inmediato.
const DefaultMaxAncestorHops = 2

// PartyQuery datos del borrador que sirven para identificar al tercero.
type PartyQuery struct {
	CompanyID        int64
	PartyID          int64
	PartyName        string
	SupplierID       int64
	ParentDocumentID string
}

// PartyStrategy un paso de la cadena de resolución. nil, nil = sin resultado.
type PartyStrategy interface {
	Name() string
	Resolve(ctx context.Context, q PartyQuery) (*entity.Party, error)
}

type partyFunc struct {
	name string
	fn   func(ctx context.Context, q PartyQuery) (*entity.Party, error)
}

func (s partyFunc) Name() string { return s.name }
func (s partyFunc) Resolve(ctx context.Context, q PartyQuery) (*entity.Party, error) {
	return s.fn(ctx, q)
}

// DirectParty el tercero referenciado por el propio documento, si existe y está habilitado.
func DirectParty(parties repository.PartyRegistry) PartyStrategy {
	return partyFunc{name: StrategyDirect, fn: func(ctx context.Context, q PartyQuery) (*entity.Party, error) {
		if q.PartyID <= 0 {
			return nil, nil
		}
		p, err := parties.GetParty(ctx, q.PartyID)
		if err != nil {
			return nil, fmt.Errorf("get party %d: %w", q.PartyID, err)
		}
		return usable(p, q.CompanyID), nil
	}}
}

// AncestorParty lee el padre inmediato y sube hasta maxHops saltos más por parent_document_id;
// si el ancestro más alto encontrado es de un registro de clientes con tercero válido, devuelve
// ese tercero. Con el valor por defecto una factura de venta alcanza el pedido de venta de la
// cadena factura de compra → orden de compra → pedido.
func AncestorParty(docs repository.DocumentRepository, parties repository.PartyRegistry, maxHops int) PartyStrategy {
	return partyFunc{name: StrategyAncestor, fn: func(ctx context.Context, q PartyQuery) (*entity.Party, error) {
		var top *entity.Document
		cur := q.ParentDocumentID
		for hops := 0; cur != "" && hops <= maxHops; hops++ {
			doc, err := docs.GetByID(ctx, cur)
			if err != nil {
				return nil, fmt.Errorf("get ancestor %s: %w", cur, err)
			}
			if doc == nil || doc.CompanyID != q.CompanyID {
				break
			}
			top = doc
			cur = doc.ParentDocumentID
		}
		if top == nil || !top.Register.IsCustomerFacing() || top.PartyID <= 0 {
			return nil, nil
		}
		p, err := parties.GetParty(ctx, top.PartyID)
		if err != nil {
			return nil, fmt.Errorf("get party %d: %w", top.PartyID, err)
		}
		return usable(p, q.CompanyID), nil
	}}
}

// SupplierParty resuelve por la referencia de proveedor del documento.
func SupplierParty(suppliers repository.SupplierRegistry) PartyStrategy {
	return partyFunc{name: StrategySupplier, fn: func(ctx context.Context, q PartyQuery) (*entity.Party, error) {
		if q.SupplierID <= 0 {
			return nil, nil
		}
		p, err := suppliers.GetSupplier(ctx, q.SupplierID)
		if err != nil {
			return nil, fmt.Errorf("get supplier %d: %w", q.SupplierID, err)
		}
		return usable(p, q.CompanyID), nil
	}}
}

// PartyByName coincidencia exacta del nombre guardado entre terceros activos. Sin coincidencias parciales.
func PartyByName(parties repository.PartyRegistry) PartyStrategy {
	return partyFunc{name: StrategyByName, fn: func(ctx context.Context, q PartyQuery) (*entity.Party, error) {
		if q.PartyName == "" {
			return nil, nil
		}
		p, err := parties.FindActiveByName(ctx, q.CompanyID, q.PartyName)
		if err != nil {
			return nil, fmt.Errorf("find party by name: %w", err)
		}
		return usable(p, q.CompanyID), nil
	}}
}

func usable(p *entity.Party, companyID int64) *entity.Party {
	if p == nil || !p.Enabled || p.CompanyID != companyID {
		return nil
	}
	return p
}

// PartyResolution tercero elegido, su estado y el régimen derivado.
type PartyResolution struct {
	Party    *entity.Party
	State    *entity.State
	Regime   entity.TaxRegime
	Strategy string
}

// PartyResolver aplica las estrategias una vez, en orden.
type PartyResolver struct {
	strategies []PartyStrategy
	states     repository.StateRegistry
	log        *logger.Logger
}

// NewPartyResolver cadena por defecto: directo, ancestros, proveedor, nombre exacto.
func NewPartyResolver(reg ports.Registries, docs repository.DocumentRepository, maxHops int, log *logger.Logger) *PartyResolver {
	if maxHops < 0 {
		maxHops = DefaultMaxAncestorHops
	}
	return NewPartyResolverWith(reg.States, log,
		DirectParty(reg.Parties),
		AncestorParty(docs, reg.Parties, maxHops),
		SupplierParty(reg.Suppliers),
		PartyByName(reg.Parties),
	)
}

// NewPartyResolverWith permite una cadena propia.
func NewPartyResolverWith(states repository.StateRegistry, log *logger.Logger, strategies ...PartyStrategy) *PartyResolver {
	if log == nil {
		log = logger.Nop()
	}
	return &PartyResolver{strategies: strategies, states: states, log: log.Component("lineage")}
}

// Resolve se detiene en el primer resultado con dirección. Si ninguno tiene dirección se usa
// el primer resultado completo; nunca se mezclan campos de pasos distintos.
// Sin tercero o sin estado el régimen es intra-estatal.
func (r *PartyResolver) Resolve(ctx context.Context, q PartyQuery) (PartyResolution, error) {
	var chosen, fallback *entity.Party
	var chosenName, fallbackName string
	for _, s := range r.strategies {
		p, err := s.Resolve(ctx, q)
		if err != nil {
			return PartyResolution{}, fmt.Errorf("party strategy %s: %w", s.Name(), err)
		}
		if p == nil {
			continue
		}
		if p.Address != "" {
			chosen, chosenName = p, s.Name()
			break
		}
		if fallback == nil {
			fallback, fallbackName = p, s.Name()
		}
	}
	if chosen == nil {
		chosen, chosenName = fallback, fallbackName
	}

	res := PartyResolution{Regime: entity.TaxRegimeIntra}
	if chosen == nil {
		r.log.Warn().Int64("company_id", q.CompanyID).Int64("party_id", q.PartyID).
			Int64("supplier_id", q.SupplierID).Msg("tercero no resuelto; régimen intra por defecto")
		return res, nil
	}
	res.Party, res.Strategy = chosen, chosenName

	if chosen.StateID > 0 {
		st, err := r.states.GetState(ctx, chosen.StateID)
		if err != nil {
			return PartyResolution{}, fmt.Errorf("get state %d: %w", chosen.StateID, err)
		}
		res.State = st
	}
	if res.State == nil {
		r.log.Warn().Int64("party_id", chosen.ID).Int64("state_id", chosen.StateID).
			Msg("tercero sin estado; régimen intra por defecto")
	}
	res.Regime = res.State.Regime()
	r.log.Debug().Str("strategy", chosenName).Int64("party_id", chosen.ID).
		Str("regime", res.Regime.String()).Msg("tercero resuelto")
	return res, nil
}
