package assembly

import (
	"context"

	"github.com/jhoicas/pharmadist-core/internal/application/dto"
	"github.com/jhoicas/pharmadist-core/internal/domain"
	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
	"github.com/jhoicas/pharmadist-core/internal/domain/gst"
	"github.com/jhoicas/pharmadist-core/internal/domain/repository"
	"github.com/jhoicas/pharmadist-core/internal/domain/words"
)

// loadOwned trae el maestro y verifica que sea de la empresa de la petición.
func (s *Service) loadOwned(ctx context.Context, rc entity.RequestContext, id string) (*entity.Document, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, persistenceError(err)
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if doc.CompanyID != rc.CompanyID {
		return nil, domain.ErrForbidden
	}
	return doc, nil
}

// GetDocument obtiene el maestro con sus líneas (en orden) y lotes.
func (s *Service) GetDocument(ctx context.Context, rc entity.RequestContext, id string) (*dto.DocumentResponse, error) {
	if !rc.Valid() {
		return nil, domain.ErrForbidden
	}
	doc, err := s.loadOwned(ctx, rc, id)
	if err != nil {
		return nil, err
	}
	lines, err := s.docs.GetLines(ctx, id)
	if err != nil {
		return nil, persistenceError(err)
	}
	doc.Lines = lines
	resp := toResponse(doc)
	return &resp, nil
}

// SetEnabled habilita o deshabilita el documento (borrado lógico). El linaje que apunta
// a él se conserva.
func (s *Service) SetEnabled(ctx context.Context, rc entity.RequestContext, id string, enabled bool) (*dto.DocumentResponse, error) {
	if !rc.Valid() {
		return nil, domain.ErrForbidden
	}
	err := s.tx.RunInTx(ctx, func(docRepo repository.DocumentRepository, _ repository.SequenceRepository) error {
		doc, err := docRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrNotFound
		}
		if doc.CompanyID != rc.CompanyID {
			return domain.ErrForbidden
		}
		return docRepo.SetEnabled(ctx, id, enabled, rc.UserID)
	})
	if err != nil {
		return nil, persistenceError(err)
	}
	s.log.Info().Str("document_id", id).Bool("enabled", enabled).Int64("user_id", rc.UserID).Msg("estado del documento actualizado")
	return s.GetDocument(ctx, rc, id)
}

// ComputeTaxPreview recalcula impuestos y totales sin persistir. Las filas incompletas
// (sin material o sin cantidad positiva) se ignoran en lugar de rechazarse.
func (s *Service) ComputeTaxPreview(ctx context.Context, rc entity.RequestContext, in dto.TaxPreviewRequest) (_ *dto.TaxPreview, err error) {
	ctx, end := s.startSpan(ctx, "assembly.ComputeTaxPreview")
	defer end(&err)
	if !rc.Valid() {
		return nil, domain.ErrForbidden
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, structError(err)
	}
	regime, err := entity.ParseTaxRegime(in.Regime)
	if err != nil {
		return nil, domain.NewValidation("regime", err.Error())
	}

	var rows []validRow
	for i, r := range in.Rows {
		if r.MaterialID <= 0 || !r.Quantity.IsPositive() {
			continue
		}
		rows = append(rows, validRow{LineNo: len(rows) + 1, SourceRow: i + 1, Row: r})
	}
	cat, err := s.catalogs.Load(ctx, rc.CompanyID, materialIDs(rows), nil)
	if err != nil {
		return nil, persistenceError(err)
	}

	out := &dto.TaxPreview{Regime: regime.String(), Lines: make([]dto.TaxPreviewLine, 0, len(rows))}
	var all []gst.TaxSplit
	for _, vr := range rows {
		m := cat.Material(vr.Row.MaterialID)
		if m == nil {
			return nil, domain.NewLineValidation(vr.SourceRow, "material_id", "material inexistente")
		}
		split := gst.ComputeLineTax(gst.LineGross(vr.Row.Quantity, vr.Row.Rate, vr.Row.Amount), regime, cat.HSN(m.HSNID))
		all = append(all, split)
		out.Lines = append(out.Lines, dto.TaxPreviewLine{
			LineNo: vr.SourceRow, MaterialID: m.ID, HSNID: m.HSNID,
			Gross: split.Gross, CGST: split.CGST, SGST: split.SGST, IGST: split.IGST, Net: split.Net,
		})
	}
	totals, applied, err := gst.Summarize(all, costFactors(in.CostFactors))
	if err != nil {
		return nil, err
	}
	out.GrossAmount = totals.Gross
	out.CGSTAmount = totals.CGST
	out.SGSTAmount = totals.SGST
	out.IGSTAmount = totals.IGST
	out.CostFactorTotal = totals.CostFactors
	out.NetAmount = totals.Net
	out.AmountInWords = words.AmountToWords(totals.Net)
	out.CostFactors = costFactorResponses(applied)
	return out, nil
}
