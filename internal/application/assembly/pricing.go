package assembly

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharmadist-core/internal/application/dto"
	"github.com/jhoicas/pharmadist-core/internal/application/lineage"
	"github.com/jhoicas/pharmadist-core/internal/domain"
	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
	"github.com/jhoicas/pharmadist-core/internal/domain/gst"
)

// packDecimals decimales de la cantidad en cajas.
const packDecimals = 3

// Registros que mueven lotes físicamente; en ellos un material con lote exige número de lote.
var lotRegisters = map[entity.RegisterKind]bool{
	entity.RegisterPurchaseInvoice: true,
	entity.RegisterSalesInvoice:    true,
	entity.RegisterSalesReturn:     true,
}

// pricedLine línea calculada con su fila de origen.
type pricedLine struct {
	row   validRow
	line  *entity.LineItem
	split gst.TaxSplit
}

// priceRows Validated → Priced. El régimen ya debe estar resuelto.
func (s *Service) priceRows(d *validDraft, cat *lineage.Catalog, regime entity.TaxRegime) ([]pricedLine, error) {
	out := make([]pricedLine, 0, len(d.Rows))
	for _, vr := range d.Rows {
		r := vr.Row
		m := cat.Material(r.MaterialID)
		if m == nil {
			return nil, domain.NewLineValidation(vr.SourceRow, "material_id", fmt.Sprintf("el material %d no existe", r.MaterialID))
		}
		if m.LotTracked && r.BatchNo == "" && lotRegisters[d.Register] {
			return nil, domain.NewLineValidation(vr.SourceRow, "batch_no", fmt.Sprintf("el material %s exige número de lote", m.Code))
		}

		var hsn *entity.HSN
		if m.HSNID > 0 {
			if hsn = cat.HSN(m.HSNID); hsn == nil {
				s.log.Warn().Int64("material_id", m.ID).Int64("hsn_id", m.HSNID).Msg("HSN inexistente; línea sin impuesto")
			}
		}
		gross := gst.LineGross(r.Quantity, r.Rate, r.Amount)
		split := gst.ComputeLineTax(gross, regime, hsn)

		line := &entity.LineItem{
			ID:              uuid.New().String(),
			LineNo:          vr.LineNo,
			MaterialID:      m.ID,
			MaterialRefNo:   snapshot(r.MaterialRefNo, m.Code),
			MaterialRefName: snapshot(r.MaterialRefName, m.Description),
			HSNID:           m.HSNID,
			Quantity:        r.Quantity,
			Rate:            r.Rate,
			GrossAmount:     split.Gross,
			CGSTAmount:      split.CGST,
			SGSTAmount:      split.SGST,
			IGSTAmount:      split.IGST,
			NetAmount:       split.Net,
		}
		if r.BatchNo != "" {
			packingID := r.PackingID
			if packingID == 0 {
				packingID = m.PackingID
			}
			line.Batch = &entity.BatchLot{
				ID:            uuid.New().String(),
				MaterialID:    m.ID,
				HSNID:         m.HSNID,
				BatchNumber:   r.BatchNo,
				ExpiryDate:    vr.Expiry,
				PackingID:     packingID,
				PackQuantity:  packQuantity(r, cat.Packing(packingID)),
				TotalQuantity: r.Quantity,
				Rate:          r.Rate,
				TradeRate:     r.TradeRate,
				MRP:           r.MRP,
				GrossAmount:   split.Gross,
				CGSTAmount:    split.CGST,
				SGSTAmount:    split.SGST,
				IGSTAmount:    split.IGST,
				NetAmount:     split.Net,
			}
		}
		out = append(out, pricedLine{row: vr, line: line, split: split})
	}
	return out, nil
}

// snapshot conserva la foto enviada por el llamador (ediciones); si no, toma el maestro.
func snapshot(given, master string) string {
	if given != "" {
		return given
	}
	return master
}

// packQuantity cajas: la enviada; si no, unidades / unidades por caja; si no, las unidades.
func packQuantity(r dto.DraftRow, p *entity.Packing) decimal.Decimal {
	if r.PackQuantity != nil {
		return *r.PackQuantity
	}
	if p != nil && p.UnitsPerPack.IsPositive() {
		return r.Quantity.DivRound(p.UnitsPerPack, packDecimals)
	}
	return r.Quantity
}

func splits(lines []pricedLine) []gst.TaxSplit {
	out := make([]gst.TaxSplit, len(lines))
	for i, l := range lines {
		out[i] = l.split
	}
	return out
}

func materialIDs(rows []validRow) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.Row.MaterialID)
	}
	return ids
}

func packingIDs(rows []validRow) []int64 {
	var ids []int64
	for _, r := range rows {
		if r.Row.PackingID > 0 {
			ids = append(ids, r.Row.PackingID)
		}
	}
	return ids
}
