package lineage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharmadist-core/internal/application/lineage"
	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
	"github.com/jhoicas/pharmadist-core/internal/infrastructure/memory"
	"github.com/jhoicas/pharmadist-core/pkg/logger"
)

const company = int64(1)

func seedStates(s *memory.Store) {
	s.AddState(entity.State{ID: 10, Code: "MH", Description: "Maharashtra", StateType: 0})
	s.AddState(entity.State{ID: 20, Code: "KA", Description: "Karnataka", StateType: 1})
}

func newResolver(s *memory.Store) *lineage.PartyResolver {
	return lineage.NewPartyResolver(s.Registries(), s, lineage.DefaultMaxAncestorHops, logger.Nop())
}

func TestPartyResolver_DirectoConDireccion(t *testing.T) {
	s := memory.New()
	seedStates(s)
	s.AddParty(entity.Party{ID: 5, CompanyID: company, Name: "Apollo", Address: "Bangalore", GSTNo: "29AAA", StateID: 20, Enabled: true})

	res, err := newResolver(s).Resolve(context.Background(), lineage.PartyQuery{CompanyID: company, PartyID: 5})
	require.NoError(t, err)
	require.NotNil(t, res.Party)
	assert.Equal(t, int64(5), res.Party.ID)
	assert.Equal(t, lineage.StrategyDirect, res.Strategy)
	assert.Equal(t, entity.TaxRegimeInter, res.Regime, "state_type 1 = inter-estatal")
}

func TestPartyResolver_DeshabilitadoSubeAlPedidoDeVenta(t *testing.T) {
	s := memory.New()
	seedStates(s)
	s.AddParty(entity.Party{ID: 5, CompanyID: company, Name: "Baja", Address: "X", StateID: 20, Enabled: false})
	s.AddParty(entity.Party{ID: 6, CompanyID: company, Name: "Origen", Address: "Pune", StateID: 10, Enabled: true})
	so := s.PutDocument(entity.Document{CompanyID: company, Register: entity.RegisterSalesOrder, PartyID: 6, Enabled: true})
	po := s.PutDocument(entity.Document{CompanyID: company, Register: entity.RegisterPurchaseOrder, ParentDocumentID: so, Enabled: true})

	res, err := newResolver(s).Resolve(context.Background(), lineage.PartyQuery{CompanyID: company, PartyID: 5, ParentDocumentID: po})
	require.NoError(t, err)
	require.NotNil(t, res.Party)
	assert.Equal(t, int64(6), res.Party.ID)
	assert.Equal(t, lineage.StrategyAncestor, res.Strategy)
	assert.Equal(t, entity.TaxRegimeIntra, res.Regime)
}

// TestPartyResolver_FacturaDeVentaAlcanzaPedidoPorCompras: cadena factura de venta ←
// factura de compra ← orden de compra ← pedido de venta; el padre inmediato más dos saltos.
func TestPartyResolver_FacturaDeVentaAlcanzaPedidoPorCompras(t *testing.T) {
	s := memory.New()
	seedStates(s)
	s.AddParty(entity.Party{ID: 6, CompanyID: company, Name: "MedPlus", Address: "Bangalore", StateID: 20, Enabled: true})
	s.AddSupplier(entity.Party{ID: 70, CompanyID: company, Name: "Cipla", Address: "Goa", StateID: 10, Enabled: true})
	so := s.PutDocument(entity.Document{CompanyID: company, Register: entity.RegisterSalesOrder, PartyID: 6})
	po := s.PutDocument(entity.Document{CompanyID: company, Register: entity.RegisterPurchaseOrder, ParentDocumentID: so})
	pi := s.PutDocument(entity.Document{CompanyID: company, Register: entity.RegisterPurchaseInvoice, ParentDocumentID: po, SupplierID: 70})

	res, err := newResolver(s).Resolve(context.Background(), lineage.PartyQuery{CompanyID: company, SupplierID: 70, ParentDocumentID: pi})
	require.NoError(t, err)
	require.NotNil(t, res.Party)
	assert.Equal(t, int64(6), res.Party.ID)
	assert.Equal(t, lineage.StrategyAncestor, res.Strategy)
	assert.Equal(t, entity.TaxRegimeInter, res.Regime, "el régimen sale del estado del cliente, no del proveedor")
}

func TestPartyResolver_AncestroFueraDeAlcanceNoCuenta(t *testing.T) {
	s := memory.New()
	seedStates(s)
	s.AddParty(entity.Party{ID: 6, CompanyID: company, Name: "Origen", Address: "Pune", StateID: 10, Enabled: true})
	s.AddSupplier(entity.Party{ID: 70, CompanyID: company, Name: "Cipla", Address: "Goa", StateID: 20, Enabled: true})
	so := s.PutDocument(entity.Document{CompanyID: company, Register: entity.RegisterSalesOrder, PartyID: 6})
	po := s.PutDocument(entity.Document{CompanyID: company, Register: entity.RegisterPurchaseOrder, ParentDocumentID: so})
	pi := s.PutDocument(entity.Document{CompanyID: company, Register: entity.RegisterPurchaseInvoice, ParentDocumentID: po})

	// Con un solo salto extra se lee pi y po; el pedido queda fuera.
	short := lineage.NewPartyResolver(s.Registries(), s, 1, logger.Nop())
	res, err := short.Resolve(context.Background(), lineage.PartyQuery{CompanyID: company, SupplierID: 70, ParentDocumentID: pi})
	require.NoError(t, err)
	require.NotNil(t, res.Party)
	assert.Equal(t, int64(70), res.Party.ID)
	assert.Equal(t, lineage.StrategySupplier, res.Strategy)
}

func TestPartyResolver_PrimerResultadoConDireccionSinMezclar(t *testing.T) {
	s := memory.New()
	seedStates(s)
	s.AddParty(entity.Party{ID: 5, CompanyID: company, Name: "Sin Direccion", GSTNo: "27DIRECT", StateID: 10, Enabled: true})
	s.AddParty(entity.Party{ID: 9, CompanyID: company, Name: "MedPlus", Address: "Mysore", GSTNo: "29NAME", StateID: 20, Enabled: true})

	res, err := newResolver(s).Resolve(context.Background(), lineage.PartyQuery{CompanyID: company, PartyID: 5, PartyName: "MedPlus"})
	require.NoError(t, err)
	require.NotNil(t, res.Party)
	assert.Equal(t, int64(9), res.Party.ID)
	assert.Equal(t, "29NAME", res.Party.GSTNo, "los campos vienen todos del mismo paso")
	assert.Equal(t, "Mysore", res.Party.Address)
	assert.Equal(t, lineage.StrategyByName, res.Strategy)
	assert.Equal(t, entity.TaxRegimeInter, res.Regime)
}

func TestPartyResolver_SinDireccionUsaElPrimero(t *testing.T) {
	s := memory.New()
	seedStates(s)
	s.AddParty(entity.Party{ID: 5, CompanyID: company, Name: "Uno", StateID: 10, Enabled: true})
	s.AddParty(entity.Party{ID: 9, CompanyID: company, Name: "Dos", StateID: 20, Enabled: true})

	res, err := newResolver(s).Resolve(context.Background(), lineage.PartyQuery{CompanyID: company, PartyID: 5, PartyName: "Dos"})
	require.NoError(t, err)
	require.NotNil(t, res.Party)
	assert.Equal(t, int64(5), res.Party.ID)
	assert.Equal(t, lineage.StrategyDirect, res.Strategy)
}

func TestPartyResolver_NombreSensibleAMayusculas(t *testing.T) {
	s := memory.New()
	seedStates(s)
	s.AddParty(entity.Party{ID: 9, CompanyID: company, Name: "MedPlus", Address: "Mysore", StateID: 20, Enabled: true})

	res, err := newResolver(s).Resolve(context.Background(), lineage.PartyQuery{CompanyID: company, PartyName: "medplus"})
	require.NoError(t, err)
	assert.Nil(t, res.Party)

	res, err = newResolver(s).Resolve(context.Background(), lineage.PartyQuery{CompanyID: company, PartyName: "Med"})
	require.NoError(t, err)
	assert.Nil(t, res.Party, "sin coincidencias parciales")
}

func TestPartyResolver_SinTerceroRegimenIntra(t *testing.T) {
	s := memory.New()
	res, err := newResolver(s).Resolve(context.Background(), lineage.PartyQuery{CompanyID: company, PartyID: 404})
	require.NoError(t, err)
	assert.Nil(t, res.Party)
	assert.Equal(t, entity.TaxRegimeIntra, res.Regime)
}

func TestPartyResolver_SinEstadoRegimenIntra(t *testing.T) {
	s := memory.New()
	s.AddParty(entity.Party{ID: 5, CompanyID: company, Name: "X", Address: "Y", StateID: 99, Enabled: true})
	res, err := newResolver(s).Resolve(context.Background(), lineage.PartyQuery{CompanyID: company, PartyID: 5})
	require.NoError(t, err)
	require.NotNil(t, res.Party)
	assert.Nil(t, res.State)
	assert.Equal(t, entity.TaxRegimeIntra, res.Regime)
}

func TestPartyResolver_OtraEmpresaNoSeResuelve(t *testing.T) {
	s := memory.New()
	seedStates(s)
	s.AddParty(entity.Party{ID: 5, CompanyID: 2, Name: "Ajena", Address: "Z", StateID: 20, Enabled: true})
	res, err := newResolver(s).Resolve(context.Background(), lineage.PartyQuery{CompanyID: company, PartyID: 5})
	require.NoError(t, err)
	assert.Nil(t, res.Party)
}

// ── Cadena explícita ──────────────────────────────────────────────────────────

type stubStrategy struct {
	name  string
	party *entity.Party
	err   error
	calls *[]string
}

func (s stubStrategy) Name() string { return s.name }
func (s stubStrategy) Resolve(context.Context, lineage.PartyQuery) (*entity.Party, error) {
	*s.calls = append(*s.calls, s.name)
	return s.party, s.err
}

func TestPartyResolver_OrdenYCorteExplicitos(t *testing.T) {
	s := memory.New()
	var calls []string
	r := lineage.NewPartyResolverWith(s, logger.Nop(),
		stubStrategy{name: "a", calls: &calls},
		stubStrategy{name: "b", party: &entity.Party{ID: 2, Address: "ok"}, calls: &calls},
		stubStrategy{name: "c", party: &entity.Party{ID: 3, Address: "ok"}, calls: &calls},
	)
	res, err := r.Resolve(context.Background(), lineage.PartyQuery{CompanyID: company})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, calls, "se detiene en el primer resultado con dirección")
	assert.Equal(t, "b", res.Strategy)
}

func TestPartyResolver_ErrorDeAlmacenamientoSePropaga(t *testing.T) {
	s := memory.New()
	var calls []string
	boom := errors.New("sin conexión")
	r := lineage.NewPartyResolverWith(s, logger.Nop(),
		stubStrategy{name: "a", err: boom, calls: &calls},
		stubStrategy{name: "b", party: &entity.Party{ID: 2, Address: "ok"}, calls: &calls},
	)
	_, err := r.Resolve(context.Background(), lineage.PartyQuery{CompanyID: company})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a"}, calls, "un error no se traga para probar el siguiente paso")
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
