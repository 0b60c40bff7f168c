package assembly

import (
	"github.com/jhoicas/pharmadist-core/internal/application/dto"
	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
)

func toResponse(d *entity.Document) dto.DocumentResponse {
	resp := dto.DocumentResponse{
		ID:               d.ID,
		CompanyID:        d.CompanyID,
		Register:         d.Register.String(),
		SubType:          d.SubType,
		SeqNo:            d.SeqNo,
		DocNo:            d.DocNo,
		FiscalYear:       d.FiscalYear,
		DocDate:          d.DocDate.Format(dateLayout),
		DocTime:          d.DocTime,
		PartyID:          d.PartyID,
		PartyName:        d.PartyName,
		SupplierID:       d.SupplierID,
		ReferenceNo:      d.ReferenceNo,
		TaxRegime:        d.TaxRegime.String(),
		ParentDocumentID: d.ParentDocumentID,
		GrossAmount:      d.GrossAmount,
		CGSTAmount:       d.CGSTAmount,
		SGSTAmount:       d.SGSTAmount,
		IGSTAmount:       d.IGSTAmount,
		CostFactorTotal:  d.CostFactorTotal,
		NetAmount:        d.NetAmount,
		AmountInWords:    d.AmountInWords,
		CostFactors:      costFactorResponses(d.CostFactors),
		Enabled:          d.Enabled,
		CreatedBy:        d.CreatedBy,
		ModifiedBy:       d.ModifiedBy,
		Lines:            make([]dto.LineResponse, 0, len(d.Lines)),
	}
	for _, l := range d.Lines {
		lr := dto.LineResponse{
			ID:              l.ID,
			LineNo:          l.LineNo,
			MaterialID:      l.MaterialID,
			MaterialRefNo:   l.MaterialRefNo,
			MaterialRefName: l.MaterialRefName,
			HSNID:           l.HSNID,
			Quantity:        l.Quantity,
			Rate:            l.Rate,
			GrossAmount:     l.GrossAmount,
			CGSTAmount:      l.CGSTAmount,
			SGSTAmount:      l.SGSTAmount,
			IGSTAmount:      l.IGSTAmount,
			NetAmount:       l.NetAmount,
			SourceLineID:    l.SourceLineID,
		}
		if b := l.Batch; b != nil {
			br := &dto.BatchResponse{
				ID:               b.ID,
				BatchNumber:      b.BatchNumber,
				PackingID:        b.PackingID,
				PackQuantity:     b.PackQuantity,
				TotalQuantity:    b.TotalQuantity,
				Rate:             b.Rate,
				TradeRate:        b.TradeRate,
				MRP:              b.MRP,
				NetAmount:        b.NetAmount,
				SourceBatchID:    b.SourceBatchID,
				SourceLineID:     b.SourceLineID,
				SourceMaterialID: b.SourceMaterialID,
			}
			if b.ExpiryDate != nil {
				br.ExpiryDate = b.ExpiryDate.Format(dateLayout)
			}
			lr.Batch = br
		}
		resp.Lines = append(resp.Lines, lr)
	}
	return resp
}

func costFactorResponses(in []entity.CostFactor) []dto.CostFactorResponse {
	if len(in) == 0 {
		return nil
	}
	out := make([]dto.CostFactorResponse, 0, len(in))
	for _, f := range in {
		out = append(out, dto.CostFactorResponse{Name: f.Name, Mode: f.Mode, Value: f.Value, Sign: f.Sign, Amount: f.Amount})
	}
	return out
}
