package lineage

import (
	"context"
	"fmt"

	"github.com/jhoicas/pharmadist-core/internal/domain"
	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
	"github.com/jhoicas/pharmadist-core/internal/domain/repository"
	"github.com/jhoicas/pharmadist-core/pkg/logger"
)

// Nombres de estrategia de linaje de lote.
const (
	StrategySourceLine    = "source_line"
	StrategyParentLine    = "parent_line"
	StrategyReferenceBill = "reference_bill"
)

// BatchQuery una fila del documento hijo que busca su línea y lote de origen.
type BatchQuery struct {
	CompanyID        int64
	Register         entity.RegisterKind
	PartyID          int64 // tercero ya resuelto
	ParentDocumentID string
	ReferenceNo      string // referencia de cabecera
	LineNo           int
	MaterialID       int64
	BatchNumber      string
	SourceLineID     string
	ReferenceBillNo  string
}

func (q BatchQuery) referenceBill() string {
	if q.ReferenceBillNo != "" {
		return q.ReferenceBillNo
	}
	return q.ReferenceNo
}

// lineageExpected indica si la fila debería tener procedencia conocida.
func (q BatchQuery) lineageExpected() bool {
	return q.Register == entity.RegisterSalesReturn || q.SourceLineID != "" || q.ParentDocumentID != ""
}

// LineStrategy produce líneas candidatas (con su lote cargado) de un documento ancestro.
type LineStrategy interface {
	Name() string
	Candidates(ctx context.Context, q BatchQuery) ([]*entity.LineItem, error)
}

// Warning lote guardado sin procedencia conocida.
type Warning struct {
	Line        int
	MaterialID  int64
	BatchNumber string
	Reason      string
}

func (w *Warning) Error() string {
	return fmt.Sprintf("fila %d: lote %s: %s", w.Line, w.BatchNumber, w.Reason)
}

// Unwrap permite errors.Is(w, domain.ErrLineageUnresolved) en auditorías.
func (w *Warning) Unwrap() error {
	return domain.ErrLineageUnresolved
}

// Lineage punteros resueltos para una fila. Los de lote solo se llenan si material y número
// de lote coinciden; SourceLineID puede venir aunque el lote no coincida.
type Lineage struct {
	SourceLineID     string
	SourceBatchID    string
	SourceMaterialID int64
	Strategy         string
	Warning          *Warning
}

// BatchResolved indica si el lote quedó enlazado con su origen.
func (l Lineage) BatchResolved() bool {
	return l.SourceBatchID != ""
}

// BatchResolver resuelve linaje por fila. Se crea por ensamble con los repos de la tx
// y guarda las líneas ya consultadas durante ese ensamble.
type BatchResolver struct {
	docs       repository.DocumentRepository
	strategies []LineStrategy
	log        *logger.Logger

	lines map[string][]*entity.LineItem
	refs  map[string]*entity.Document
}

// NewBatchResolver cadena por defecto: línea explícita, línea del padre, factura de referencia.
func NewBatchResolver(docs repository.DocumentRepository, log *logger.Logger) *BatchResolver {
	r := &BatchResolver{
		docs:  docs,
		lines: map[string][]*entity.LineItem{},
		refs:  map[string]*entity.Document{},
	}
	if log == nil {
		log = logger.Nop()
	}
	r.log = log.Component("lineage")
	r.strategies = []LineStrategy{
		lineFunc{StrategySourceLine, r.explicitLine},
		lineFunc{StrategyParentLine, r.parentLines},
		lineFunc{StrategyReferenceBill, r.referenceBillLines},
	}
	return r
}

type lineFunc struct {
	name string
	fn   func(ctx context.Context, q BatchQuery) ([]*entity.LineItem, error)
}

func (s lineFunc) Name() string { return s.name }
func (s lineFunc) Candidates(ctx context.Context, q BatchQuery) ([]*entity.LineItem, error) {
	return s.fn(ctx, q)
}

// Resolve prueba las estrategias en orden. Gana la primera línea del mismo material cuyo lote
// coincide en material y número; sin número de lote basta la línea. Nunca devuelve error
// por falta de linaje: solo por fallas del almacenamiento.
func (r *BatchResolver) Resolve(ctx context.Context, q BatchQuery) (Lineage, error) {
	target := &entity.BatchLot{MaterialID: q.MaterialID, BatchNumber: q.BatchNumber}
	var firstLine *entity.LineItem
	var firstName string

	for _, s := range r.strategies {
		cands, err := s.Candidates(ctx, q)
		if err != nil {
			return Lineage{}, fmt.Errorf("lineage strategy %s: %w", s.Name(), err)
		}
		for _, l := range cands {
			if l.MaterialID != q.MaterialID {
				continue
			}
			if firstLine == nil {
				firstLine, firstName = l, s.Name()
			}
			if q.BatchNumber == "" {
				return Lineage{SourceLineID: l.ID, Strategy: s.Name()}, nil
			}
			if l.Batch != nil && target.MatchesSource(l.Batch) {
				return Lineage{
					SourceLineID:     l.ID,
					SourceBatchID:    l.Batch.ID,
					SourceMaterialID: l.Batch.MaterialID,
					Strategy:         s.Name(),
				}, nil
			}
		}
	}

	out := Lineage{}
	if firstLine != nil {
		out.SourceLineID, out.Strategy = firstLine.ID, firstName
	}
	if q.BatchNumber == "" || !q.lineageExpected() {
		return out, nil
	}
	reason := "no se encontró línea de origen para el material"
	if firstLine != nil {
		reason = "el lote de origen no coincide en material y número de lote"
	}
	out.Warning = &Warning{Line: q.LineNo, MaterialID: q.MaterialID, BatchNumber: q.BatchNumber, Reason: reason}
	r.log.Warn().Int64("company_id", q.CompanyID).Str("register", q.Register.String()).
		Str("parent_document_id", q.ParentDocumentID).Int("line", q.LineNo).
		Int64("material_id", q.MaterialID).Str("batch_number", q.BatchNumber).
		Str("reference_bill_no", q.referenceBill()).Msg("lote sin procedencia: " + reason)
	return out, nil
}

func (r *BatchResolver) explicitLine(ctx context.Context, q BatchQuery) ([]*entity.LineItem, error) {
	if q.SourceLineID == "" {
		return nil, nil
	}
	l, err := r.docs.GetLine(ctx, q.SourceLineID)
	if err != nil || l == nil {
		return nil, err
	}
	doc, err := r.docs.GetByID(ctx, l.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.CompanyID != q.CompanyID {
		return nil, nil
	}
	return []*entity.LineItem{l}, nil
}

func (r *BatchResolver) parentLines(ctx context.Context, q BatchQuery) ([]*entity.LineItem, error) {
	if q.ParentDocumentID == "" {
		return nil, nil
	}
	return r.linesOf(ctx, q.ParentDocumentID)
}

// referenceBillLines solo para devoluciones: factura de venta del cliente con esa referencia.
func (r *BatchResolver) referenceBillLines(ctx context.Context, q BatchQuery) ([]*entity.LineItem, error) {
	ref := q.referenceBill()
	if q.Register != entity.RegisterSalesReturn || ref == "" {
		return nil, nil
	}
	doc, ok := r.refs[ref]
	if !ok {
		var err error
		doc, err = r.docs.FindByReference(ctx, q.CompanyID, entity.RegisterSalesInvoice, q.PartyID, ref)
		if err != nil {
			return nil, err
		}
		r.refs[ref] = doc
	}
	if doc == nil {
		return nil, nil
	}
	return r.linesOf(ctx, doc.ID)
}

func (r *BatchResolver) linesOf(ctx context.Context, documentID string) ([]*entity.LineItem, error) {
	if lines, ok := r.lines[documentID]; ok {
		return lines, nil
	}
	lines, err := r.docs.GetLines(ctx, documentID)
	if err != nil {
		return nil, err
	}
	r.lines[documentID] = lines
	return lines, nil
}
