package lineage_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharmadist-core/internal/application/lineage"
	"github.com/jhoicas/pharmadist-core/internal/domain"
	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
	"github.com/jhoicas/pharmadist-core/internal/infrastructure/memory"
	"github.com/jhoicas/pharmadist-core/pkg/logger"
)

func line(material int64, batch string) *entity.LineItem {
	l := &entity.LineItem{MaterialID: material, Quantity: decimal.NewFromInt(10), Rate: decimal.NewFromInt(20)}
	if batch != "" {
		l.Batch = &entity.BatchLot{MaterialID: material, BatchNumber: batch, TotalQuantity: decimal.NewFromInt(10)}
	}
	return l
}

// seedInvoice factura de venta INV-100 del cliente 5 con el material 7 lote B1 y material 8 lote C1.
func seedInvoice(s *memory.Store) (docID string, lines []*entity.LineItem) {
	lines = []*entity.LineItem{line(7, "B1"), line(8, "C1")}
	docID = s.PutDocument(entity.Document{
		CompanyID: company, Register: entity.RegisterSalesInvoice, PartyID: 5,
		SeqNo: 100, DocNo: "25-26/A00100", ReferenceNo: "INV-100",
		DocDate: date(2025, 6, 1), Enabled: true, Lines: lines,
	})
	return docID, lines
}

func TestBatchResolver_DevolucionContraFactura(t *testing.T) {
	s := memory.New()
	_, invLines := seedInvoice(s)

	r := lineage.NewBatchResolver(s, logger.Nop())
	got, err := r.Resolve(context.Background(), lineage.BatchQuery{
		CompanyID: company, Register: entity.RegisterSalesReturn, PartyID: 5,
		LineNo: 1, MaterialID: 7, BatchNumber: "B1", ReferenceBillNo: "INV-100",
	})
	require.NoError(t, err)
	assert.True(t, got.BatchResolved())
	assert.Equal(t, invLines[0].Batch.ID, got.SourceBatchID)
	assert.Equal(t, invLines[0].ID, got.SourceLineID)
	assert.Equal(t, int64(7), got.SourceMaterialID)
	assert.Equal(t, lineage.StrategyReferenceBill, got.Strategy)
	assert.Nil(t, got.Warning)
}

func TestBatchResolver_ReferenciaDeCabeceraSiLaFilaNoTrae(t *testing.T) {
	s := memory.New()
	_, invLines := seedInvoice(s)

	got, err := lineage.NewBatchResolver(s, logger.Nop()).Resolve(context.Background(), lineage.BatchQuery{
		CompanyID: company, Register: entity.RegisterSalesReturn, PartyID: 5, ReferenceNo: "25-26/A00100",
		LineNo: 1, MaterialID: 8, BatchNumber: "C1",
	})
	require.NoError(t, err)
	assert.Equal(t, invLines[1].Batch.ID, got.SourceBatchID, "también coincide por doc_no")
}

func TestBatchResolver_LoteDistintoQuedaSinPunterosYAvisa(t *testing.T) {
	s := memory.New()
	_, invLines := seedInvoice(s)

	got, err := lineage.NewBatchResolver(s, logger.Nop()).Resolve(context.Background(), lineage.BatchQuery{
		CompanyID: company, Register: entity.RegisterSalesReturn, PartyID: 5,
		LineNo: 3, MaterialID: 7, BatchNumber: "B9", ReferenceBillNo: "INV-100",
	})
	require.NoError(t, err)
	assert.False(t, got.BatchResolved())
	assert.Empty(t, got.SourceBatchID)
	assert.Equal(t, invLines[0].ID, got.SourceLineID, "la línea de origen sí se conoce")
	require.NotNil(t, got.Warning)
	assert.Equal(t, 3, got.Warning.Line)
	assert.Equal(t, "B9", got.Warning.BatchNumber)
	assert.ErrorIs(t, got.Warning, domain.ErrLineageUnresolved)
}

func TestBatchResolver_NuncaCruzaMateriales(t *testing.T) {
	s := memory.New()
	seedInvoice(s)

	// El lote C1 existe, pero es del material 8.
	got, err := lineage.NewBatchResolver(s, logger.Nop()).Resolve(context.Background(), lineage.BatchQuery{
		CompanyID: company, Register: entity.RegisterSalesReturn, PartyID: 5,
		LineNo: 1, MaterialID: 7, BatchNumber: "C1", ReferenceBillNo: "INV-100",
	})
	require.NoError(t, err)
	assert.False(t, got.BatchResolved())
	require.NotNil(t, got.Warning)
}

func TestBatchResolver_FacturaDeOtroClienteNoSirve(t *testing.T) {
	s := memory.New()
	seedInvoice(s)

	got, err := lineage.NewBatchResolver(s, logger.Nop()).Resolve(context.Background(), lineage.BatchQuery{
		CompanyID: company, Register: entity.RegisterSalesReturn, PartyID: 6,
		LineNo: 1, MaterialID: 7, BatchNumber: "B1", ReferenceBillNo: "INV-100",
	})
	require.NoError(t, err)
	assert.False(t, got.BatchResolved())
	assert.Empty(t, got.SourceLineID)
	require.NotNil(t, got.Warning)
}

func TestBatchResolver_FacturaDeshabilitadaSigueSiendoOrigen(t *testing.T) {
	s := memory.New()
	docID, invLines := seedInvoice(s)
	require.NoError(t, s.SetEnabled(context.Background(), docID, false, 1))

	got, err := lineage.NewBatchResolver(s, logger.Nop()).Resolve(context.Background(), lineage.BatchQuery{
		CompanyID: company, Register: entity.RegisterSalesReturn, PartyID: 5,
		LineNo: 1, MaterialID: 7, BatchNumber: "B1", ReferenceBillNo: "INV-100",
	})
	require.NoError(t, err)
	assert.Equal(t, invLines[0].Batch.ID, got.SourceBatchID)
}

func TestBatchResolver_FacturaClonadaDeCompraPorLineaDelPadre(t *testing.T) {
	s := memory.New()
	purchaseLines := []*entity.LineItem{line(7, "B0"), line(7, "B1")}
	pi := s.PutDocument(entity.Document{
		CompanyID: company, Register: entity.RegisterPurchaseInvoice, SupplierID: 70,
		DocDate: date(2025, 5, 1), Lines: purchaseLines,
	})

	got, err := lineage.NewBatchResolver(s, logger.Nop()).Resolve(context.Background(), lineage.BatchQuery{
		CompanyID: company, Register: entity.RegisterSalesInvoice, PartyID: 5, ParentDocumentID: pi,
		LineNo: 1, MaterialID: 7, BatchNumber: "B1",
	})
	require.NoError(t, err)
	assert.Equal(t, purchaseLines[1].Batch.ID, got.SourceBatchID, "elige la línea cuyo lote coincide")
	assert.Equal(t, purchaseLines[1].ID, got.SourceLineID)
	assert.Equal(t, lineage.StrategyParentLine, got.Strategy)
}

func TestBatchResolver_LineaExplicitaPrimero(t *testing.T) {
	s := memory.New()
	parentLines := []*entity.LineItem{line(7, "B1")}
	otherLines := []*entity.LineItem{line(7, "B1")}
	parent := s.PutDocument(entity.Document{CompanyID: company, Register: entity.RegisterPurchaseInvoice, Lines: parentLines})
	s.PutDocument(entity.Document{CompanyID: company, Register: entity.RegisterPurchaseInvoice, Lines: otherLines})

	got, err := lineage.NewBatchResolver(s, logger.Nop()).Resolve(context.Background(), lineage.BatchQuery{
		CompanyID: company, Register: entity.RegisterSalesInvoice, ParentDocumentID: parent,
		LineNo: 1, MaterialID: 7, BatchNumber: "B1", SourceLineID: otherLines[0].ID,
	})
	require.NoError(t, err)
	assert.Equal(t, otherLines[0].Batch.ID, got.SourceBatchID)
	assert.Equal(t, lineage.StrategySourceLine, got.Strategy)
}

func TestBatchResolver_LineaExplicitaDeOtraEmpresaSeIgnora(t *testing.T) {
	s := memory.New()
	foreign := []*entity.LineItem{line(7, "B1")}
	s.PutDocument(entity.Document{CompanyID: 2, Register: entity.RegisterPurchaseInvoice, Lines: foreign})

	got, err := lineage.NewBatchResolver(s, logger.Nop()).Resolve(context.Background(), lineage.BatchQuery{
		CompanyID: company, Register: entity.RegisterSalesInvoice,
		LineNo: 1, MaterialID: 7, BatchNumber: "B1", SourceLineID: foreign[0].ID,
	})
	require.NoError(t, err)
	assert.False(t, got.BatchResolved())
	assert.NotNil(t, got.Warning)
}

func TestBatchResolver_SinPistasNoAvisa(t *testing.T) {
	s := memory.New()
	got, err := lineage.NewBatchResolver(s, logger.Nop()).Resolve(context.Background(), lineage.BatchQuery{
		CompanyID: company, Register: entity.RegisterPurchaseInvoice,
		LineNo: 1, MaterialID: 7, BatchNumber: "NEW1",
	})
	require.NoError(t, err)
	assert.False(t, got.BatchResolved())
	assert.Nil(t, got.Warning, "un lote de compra nuevo es origen, no tiene procedencia que buscar")
}

func TestBatchResolver_SinLoteBastaLaLinea(t *testing.T) {
	s := memory.New()
	parentLines := []*entity.LineItem{line(7, "")}
	parent := s.PutDocument(entity.Document{CompanyID: company, Register: entity.RegisterSalesOrder, Lines: parentLines})

	got, err := lineage.NewBatchResolver(s, logger.Nop()).Resolve(context.Background(), lineage.BatchQuery{
		CompanyID: company, Register: entity.RegisterPurchaseOrder, ParentDocumentID: parent,
		LineNo: 1, MaterialID: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, parentLines[0].ID, got.SourceLineID)
	assert.Nil(t, got.Warning)
}

func TestBatchResolver_PrefiereCoincidenciaPorReferencia(t *testing.T) {
	s := memory.New()
	byDocNo := []*entity.LineItem{line(7, "B1")}
	byRef := []*entity.LineItem{line(7, "B1")}
	s.PutDocument(entity.Document{
		CompanyID: company, Register: entity.RegisterSalesInvoice, PartyID: 5, SeqNo: 2,
		DocNo: "X-1", DocDate: date(2025, 9, 1), Lines: byDocNo,
	})
	s.PutDocument(entity.Document{
		CompanyID: company, Register: entity.RegisterSalesInvoice, PartyID: 5, SeqNo: 1,
		DocNo: "25-26/A00001", ReferenceNo: "X-1", DocDate: date(2025, 5, 1), Lines: byRef,
	})

	got, err := lineage.NewBatchResolver(s, logger.Nop()).Resolve(context.Background(), lineage.BatchQuery{
		CompanyID: company, Register: entity.RegisterSalesReturn, PartyID: 5,
		LineNo: 1, MaterialID: 7, BatchNumber: "B1", ReferenceBillNo: "X-1",
	})
	require.NoError(t, err)
	assert.Equal(t, byRef[0].Batch.ID, got.SourceBatchID)
}
