package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem representa una línea de detalle (material) de un documento.
// MaterialRefNo/MaterialRefName son una foto del maestro al momento de la captura
// y no se vuelven a derivar después de guardar.
type LineItem struct {
	ID              string
	DocumentID      string
	LineNo          int
	MaterialID      int64
	MaterialRefNo   string
	MaterialRefName string
	HSNID           int64
	Quantity        decimal.Decimal
	Rate            decimal.Decimal
	GrossAmount     decimal.Decimal
	CGSTAmount      decimal.Decimal
	SGSTAmount      decimal.Decimal
	IGSTAmount      decimal.Decimal
	NetAmount       decimal.Decimal
	SourceLineID    string // línea del documento padre de la que se generó

	Batch *BatchLot // cero o uno
}

// BatchLot lote (batch) de una línea para materiales con control de lote.
type BatchLot struct {
	ID            string
	LineItemID    string
	MaterialID    int64
	HSNID         int64
	BatchNumber   string
	ExpiryDate    *time.Time
	PackingID     int64
	PackQuantity  decimal.Decimal // cajas
	TotalQuantity decimal.Decimal // unidades
	Rate          decimal.Decimal
	TradeRate     decimal.Decimal // PTR
	MRP           decimal.Decimal
	GrossAmount   decimal.Decimal
	CGSTAmount    decimal.Decimal
	SGSTAmount    decimal.Decimal
	IGSTAmount    decimal.Decimal
	NetAmount     decimal.Decimal

	// Punteros de linaje (referencias débiles).
	SourceBatchID    string
	SourceLineID     string
	SourceMaterialID int64
}

// MatchesSource verifica que el lote candidato sea del mismo material y número de lote.
func (b *BatchLot) MatchesSource(src *BatchLot) bool {
	return src != nil && src.MaterialID == b.MaterialID && src.BatchNumber == b.BatchNumber
}
