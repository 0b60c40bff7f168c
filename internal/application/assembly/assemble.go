package assembly

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/pharmadist-core/internal/application/dto"
	"github.com/jhoicas/pharmadist-core/internal/application/lineage"
	"github.com/jhoicas/pharmadist-core/internal/application/sequence"
	"github.com/jhoicas/pharmadist-core/internal/domain"
	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
	"github.com/jhoicas/pharmadist-core/internal/domain/gst"
	"github.com/jhoicas/pharmadist-core/internal/domain/repository"
	"github.com/jhoicas/pharmadist-core/internal/domain/words"
)

// AssembleDocument crea (DocumentID vacío) o edita un documento a partir del borrador.
// Cualquier falla revierte todo; en una edición las líneas y lotes previos se reemplazan completos.
func (s *Service) AssembleDocument(ctx context.Context, rc entity.RequestContext, in dto.DocumentDraft) (_ *dto.AssembledDocument, err error) {
	ctx, end := s.startSpan(ctx, "assembly.AssembleDocument")
	defer end(&err)
	if !rc.Valid() {
		return nil, domain.ErrForbidden
	}

	// Draft → Validated
	draft, err := s.validateDraft(in)
	if err != nil {
		return nil, err
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int64("company_id", rc.CompanyID),
		attribute.String("register", draft.Register.String()),
		attribute.Int("lines", len(draft.Rows)),
	)

	var existing *entity.Document
	if in.DocumentID != "" {
		if existing, err = s.loadOwned(ctx, rc, in.DocumentID); err != nil {
			return nil, err
		}
		if existing.Register != draft.Register {
			return nil, domain.NewValidation("register", "no se puede cambiar el registro de un documento existente")
		}
	}
	if in.ParentDocumentID != "" {
		parent, err := s.docs.GetByID(ctx, in.ParentDocumentID)
		if err != nil {
			return nil, persistenceError(err)
		}
		if parent == nil || parent.CompanyID != rc.CompanyID {
			return nil, domain.NewValidation("parent_document_id", "documento padre no encontrado")
		}
	}

	// El régimen se fija antes de calcular cualquier impuesto.
	party, cat, err := s.resolveContext(ctx, rc, in, draft)
	if err != nil {
		return nil, err
	}

	// Validated → Priced
	priced, err := s.priceRows(draft, cat, party.Regime)
	if err != nil {
		return nil, err
	}
	totals, applied, err := gst.Summarize(splits(priced), draft.Factors)
	if err != nil {
		return nil, err
	}

	doc := s.buildDocument(rc, in, draft, party, totals, applied, existing)
	if !doc.Balanced() {
		return nil, fmt.Errorf("document totals unbalanced: net %s, gross %s, tax %s, cost factors %s",
			doc.NetAmount, doc.GrossAmount, doc.TaxTotal(), doc.CostFactorTotal)
	}

	// Priced → Numbered → Persisted
	warnings, err := s.persist(ctx, rc, doc, priced, existing == nil)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("document_id", doc.ID).Str("doc_no", doc.DocNo).Str("register", doc.Register.String()).
		Bool("created", existing == nil).Int("lines", len(doc.Lines)).Int("lineage_warnings", len(warnings)).
		Msg("documento ensamblado")
	return &dto.AssembledDocument{
		Document:      toResponse(doc),
		Created:       existing == nil,
		PartyStrategy: party.Strategy,
		Warnings:      warnings,
	}, nil
}

func (s *Service) resolveContext(ctx context.Context, rc entity.RequestContext, in dto.DocumentDraft, d *validDraft) (_ lineage.PartyResolution, _ *lineage.Catalog, err error) {
	ctx, end := s.startSpan(ctx, "assembly.resolve")
	defer end(&err)

	party, err := s.parties.Resolve(ctx, lineage.PartyQuery{
		CompanyID:        rc.CompanyID,
		PartyID:          in.PartyID,
		PartyName:        in.PartyName,
		SupplierID:       in.SupplierID,
		ParentDocumentID: in.ParentDocumentID,
	})
	if err != nil {
		return lineage.PartyResolution{}, nil, persistenceError(err)
	}
	cat, err := s.catalogs.Load(ctx, rc.CompanyID, materialIDs(d.Rows), packingIDs(d.Rows))
	if err != nil {
		return lineage.PartyResolution{}, nil, persistenceError(err)
	}
	return party, cat, nil
}

func (s *Service) buildDocument(
	rc entity.RequestContext,
	in dto.DocumentDraft,
	d *validDraft,
	party lineage.PartyResolution,
	totals gst.Totals,
	applied []entity.CostFactor,
	existing *entity.Document,
) *entity.Document {
	now := s.now()
	docTime := d.DocTime
	if docTime == "" {
		docTime = now.Format("15:04:05")
	}
	// Identidad del tercero: toda del paso que resolvió o toda del borrador, nunca mezclada.
	partyID, partyName, supplierID := in.PartyID, in.PartyName, in.SupplierID
	if p := party.Party; p != nil {
		if party.Strategy == lineage.StrategySupplier {
			partyID, partyName, supplierID = 0, p.Name, p.ID
		} else {
			partyID, partyName = p.ID, p.Name
		}
	}
	doc := &entity.Document{
		ID:               uuid.New().String(),
		CompanyID:        rc.CompanyID,
		Register:         d.Register,
		SubType:          d.SubType,
		DocDate:          d.DocDate,
		DocTime:          docTime,
		PartyID:          partyID,
		PartyName:        partyName,
		SupplierID:       supplierID,
		ReferenceNo:      in.ReferenceNo,
		TaxRegime:        party.Regime,
		ParentDocumentID: in.ParentDocumentID,
		GrossAmount:      totals.Gross,
		CGSTAmount:       totals.CGST,
		SGSTAmount:       totals.SGST,
		IGSTAmount:       totals.IGST,
		CostFactorTotal:  totals.CostFactors,
		NetAmount:        totals.Net,
		AmountInWords:    words.AmountToWords(totals.Net),
		CostFactors:      applied,
		Enabled:          true,
		CreatedBy:        rc.UserID,
		ModifiedBy:       rc.UserID,
		ProcessedAt:      now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if existing != nil {
		doc.ID = existing.ID
		doc.SeqNo, doc.DocNo, doc.FiscalYear = existing.SeqNo, existing.DocNo, existing.FiscalYear
		doc.Enabled = existing.Enabled
		doc.CreatedBy, doc.CreatedAt = existing.CreatedBy, existing.CreatedAt
	}
	return doc
}

// persist corre la transacción. Un conflicto de numeración se reintenta una vez con una
// lectura nueva del contador; si se repite, se devuelve al llamador.
func (s *Service) persist(ctx context.Context, rc entity.RequestContext, doc *entity.Document, priced []pricedLine, isNew bool) (_ []dto.LineageWarning, err error) {
	ctx, end := s.startSpan(ctx, "assembly.persist")
	defer end(&err)

	if isNew {
		scope, err := sequence.ScopeOf(rc.CompanyID, doc.Register, doc.DocDate)
		if err != nil {
			return nil, err
		}
		release, err := s.alloc.Lock(ctx, scope)
		if err != nil {
			return nil, persistenceError(err)
		}
		defer release()
	}

	var warnings []dto.LineageWarning
	attempt := func() error {
		warnings = nil
		return s.tx.RunInTx(ctx, func(docRepo repository.DocumentRepository, seqRepo repository.SequenceRepository) error {
			if isNew {
				alloc, err := s.alloc.NextInTx(ctx, seqRepo, rc.CompanyID, doc.Register, doc.DocDate)
				if err != nil {
					return err
				}
				doc.SeqNo, doc.DocNo, doc.FiscalYear = alloc.SeqNo, alloc.DocNo, int(alloc.FiscalYear)
				if err := docRepo.Create(ctx, doc); err != nil {
					return err
				}
			} else {
				if err := docRepo.Update(ctx, doc); err != nil {
					return err
				}
				if err := docRepo.DeleteLines(ctx, doc.ID); err != nil {
					return err
				}
			}

			resolver := lineage.NewBatchResolver(docRepo, s.log)
			for _, pl := range priced {
				w, err := s.writeLine(ctx, docRepo, resolver, doc, pl)
				if err != nil {
					return err
				}
				if w != nil {
					warnings = append(warnings, *w)
				}
			}
			return nil
		})
	}

	err = attempt()
	if isNew && errors.Is(err, domain.ErrNumberingConflict) {
		s.log.Warn().Err(err).Int64("company_id", rc.CompanyID).Str("register", doc.Register.String()).
			Str("doc_no", doc.DocNo).Msg("conflicto de numeración; reintentando")
		err = attempt()
	}
	if err != nil {
		return nil, persistenceError(err)
	}

	doc.Lines = make([]*entity.LineItem, len(priced))
	for i, pl := range priced {
		doc.Lines[i] = pl.line
	}
	return warnings, nil
}

// writeLine resuelve el linaje de la fila y guarda la línea seguida de inmediato por su lote.
func (s *Service) writeLine(
	ctx context.Context,
	docRepo repository.DocumentRepository,
	resolver *lineage.BatchResolver,
	doc *entity.Document,
	pl pricedLine,
) (*dto.LineageWarning, error) {
	line := pl.line
	line.DocumentID = doc.ID
	batchNo := ""
	if line.Batch != nil {
		batchNo = line.Batch.BatchNumber
	}

	lin, err := resolver.Resolve(ctx, lineage.BatchQuery{
		CompanyID:        doc.CompanyID,
		Register:         doc.Register,
		PartyID:          doc.PartyID,
		ParentDocumentID: doc.ParentDocumentID,
		ReferenceNo:      doc.ReferenceNo,
		LineNo:           line.LineNo,
		MaterialID:       line.MaterialID,
		BatchNumber:      batchNo,
		SourceLineID:     pl.row.Row.SourceLineID,
		ReferenceBillNo:  pl.row.Row.ReferenceBillNo,
	})
	if err != nil {
		return nil, err
	}
	line.SourceLineID = lin.SourceLineID

	if err := docRepo.CreateLine(ctx, line); err != nil {
		return nil, fmt.Errorf("line %d: %w", line.LineNo, err)
	}
	if line.Batch == nil {
		return nil, nil
	}

	b := line.Batch
	b.LineItemID = line.ID
	b.SourceBatchID, b.SourceLineID, b.SourceMaterialID = "", "", 0
	if lin.BatchResolved() {
		b.SourceBatchID = lin.SourceBatchID
		b.SourceLineID = lin.SourceLineID
		b.SourceMaterialID = lin.SourceMaterialID
	}
	if err := docRepo.CreateBatch(ctx, b); err != nil {
		return nil, fmt.Errorf("batch line %d: %w", line.LineNo, err)
	}
	if lin.Warning == nil {
		return nil, nil
	}
	return &dto.LineageWarning{
		Line:        pl.row.SourceRow,
		MaterialID:  lin.Warning.MaterialID,
		BatchNumber: lin.Warning.BatchNumber,
		Reason:      lin.Warning.Reason,
	}, nil
}
