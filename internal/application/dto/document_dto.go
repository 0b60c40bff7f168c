package dto

import "github.com/shopspring/decimal"

// DocumentDraft body para POST /api/documents y PUT /api/documents/:id.
// DocumentID vacío = documento nuevo; con valor = edición (reemplazo total de líneas).
// Los montos nunca se reciben: se derivan al ensamblar.
type DocumentDraft struct {
	DocumentID       string            `json:"document_id,omitempty" validate:"omitempty,uuid"`
	Register         string            `json:"register" validate:"required,oneof=SALES_ORDER PURCHASE_ORDER PURCHASE_INVOICE SALES_INVOICE SALES_RETURN"`
	SubType          string            `json:"sub_type,omitempty" validate:"omitempty,oneof=DIRECT AGAINST_INVOICE FROM_PURCHASE"`
	DocDate          string            `json:"doc_date" validate:"required,datetime=2006-01-02"`
	DocTime          string            `json:"doc_time,omitempty" validate:"omitempty,datetime=15:04:05"`
	PartyID          int64             `json:"party_id,omitempty" validate:"gte=0"`
	PartyName        string            `json:"party_name,omitempty" validate:"max=200"`
	SupplierID       int64             `json:"supplier_id,omitempty" validate:"gte=0"`
	ReferenceNo      string            `json:"reference_no,omitempty" validate:"max=60"`
	ParentDocumentID string            `json:"parent_document_id,omitempty" validate:"omitempty,uuid"`
	CostFactors      []CostFactorInput `json:"cost_factors,omitempty" validate:"dive"`
	Rows             []DraftRow        `json:"rows" validate:"dive"`
}

// DraftRow fila del borrador en el orden del llamador.
// Amount opcional: bruto ya redondeado aguas arriba que prevalece sobre cantidad × tarifa.
type DraftRow struct {
	MaterialID      int64            `json:"material_id"`
	Quantity        decimal.Decimal  `json:"quantity"`
	Rate            decimal.Decimal  `json:"rate"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	MaterialRefNo   string           `json:"material_ref_no,omitempty" validate:"max=60"`
	MaterialRefName string           `json:"material_ref_name,omitempty" validate:"max=200"`
	BatchNo         string           `json:"batch_no,omitempty" validate:"max=40"`
	ExpiryDate      string           `json:"expiry_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PackingID       int64            `json:"packing_id,omitempty" validate:"gte=0"`
	PackQuantity    *decimal.Decimal `json:"pack_quantity,omitempty"`
	TradeRate       decimal.Decimal  `json:"trade_rate"`
	MRP             decimal.Decimal  `json:"mrp"`
	ReferenceBillNo string           `json:"reference_bill_no,omitempty" validate:"max=60"`
	SourceLineID    string           `json:"source_line_id,omitempty" validate:"omitempty,uuid"`
}

// IsBlank fila vacía de la grilla (sin material ni cantidad); se descarta sin error.
func (r DraftRow) IsBlank() bool {
	return r.MaterialID == 0 && r.Quantity.IsZero()
}

// CostFactorInput ajuste manual del borrador.
type CostFactorInput struct {
	Name  string          `json:"name" validate:"max=80"`
	Mode  string          `json:"mode" validate:"required,oneof=FIXED PERCENT"`
	Value decimal.Decimal `json:"value"`
	Sign  string          `json:"sign" validate:"required,oneof=ADD DEDUCT"`
}

// CostFactorResponse ajuste con su monto calculado.
type CostFactorResponse struct {
	Name   string          `json:"name"`
	Mode   string          `json:"mode"`
	Value  decimal.Decimal `json:"value"`
	Sign   string          `json:"sign"`
	Amount decimal.Decimal `json:"amount"`
}

// SetEnabledRequest body para PATCH /api/documents/:id/enabled.
type SetEnabledRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// LineageWarning lote guardado sin procedencia conocida (para auditoría).
type LineageWarning struct {
	Line        int    `json:"line"`
	MaterialID  int64  `json:"material_id"`
	BatchNumber string `json:"batch_number"`
	Reason      string `json:"reason"`
}

// AssembledDocument resultado de ensamblar un borrador.
type AssembledDocument struct {
	Document      DocumentResponse `json:"document"`
	Created       bool             `json:"created"`
	PartyStrategy string           `json:"party_strategy,omitempty"`
	Warnings      []LineageWarning `json:"warnings,omitempty"`
}

// DocumentResponse maestro con detalle y lotes para GET /api/documents/:id.
type DocumentResponse struct {
	ID               string               `json:"id"`
	CompanyID        int64                `json:"company_id"`
	Register         string               `json:"register"`
	SubType          string               `json:"sub_type,omitempty"`
	SeqNo            int64                `json:"seq_no"`
	DocNo            string               `json:"doc_no"`
	FiscalYear       int                  `json:"fiscal_year"`
	DocDate          string               `json:"doc_date"`
	DocTime          string               `json:"doc_time"`
	PartyID          int64                `json:"party_id,omitempty"`
	PartyName        string               `json:"party_name,omitempty"`
	SupplierID       int64                `json:"supplier_id,omitempty"`
	ReferenceNo      string               `json:"reference_no,omitempty"`
	TaxRegime        string               `json:"tax_regime"`
	ParentDocumentID string               `json:"parent_document_id,omitempty"`
	GrossAmount      decimal.Decimal      `json:"gross_amount"`
	CGSTAmount       decimal.Decimal      `json:"cgst_amount"`
	SGSTAmount       decimal.Decimal      `json:"sgst_amount"`
	IGSTAmount       decimal.Decimal      `json:"igst_amount"`
	CostFactorTotal  decimal.Decimal      `json:"cost_factor_total"`
	NetAmount        decimal.Decimal      `json:"net_amount"`
	AmountInWords    string               `json:"amount_in_words"`
	CostFactors      []CostFactorResponse `json:"cost_factors,omitempty"`
	Enabled          bool                 `json:"enabled"`
	CreatedBy        int64                `json:"created_by"`
	ModifiedBy       int64                `json:"modified_by"`
	Lines            []LineResponse       `json:"lines"`
}

// LineResponse línea de detalle en la respuesta.
type LineResponse struct {
	ID              string          `json:"id"`
	LineNo          int             `json:"line_no"`
	MaterialID      int64           `json:"material_id"`
	MaterialRefNo   string          `json:"material_ref_no"`
	MaterialRefName string          `json:"material_ref_name"`
	HSNID           int64           `json:"hsn_id,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Rate            decimal.Decimal `json:"rate"`
	GrossAmount     decimal.Decimal `json:"gross_amount"`
	CGSTAmount      decimal.Decimal `json:"cgst_amount"`
	SGSTAmount      decimal.Decimal `json:"sgst_amount"`
	IGSTAmount      decimal.Decimal `json:"igst_amount"`
	NetAmount       decimal.Decimal `json:"net_amount"`
	SourceLineID    string          `json:"source_line_id,omitempty"`
	Batch           *BatchResponse  `json:"batch,omitempty"`
}

// BatchResponse lote de la línea con sus punteros de linaje.
type BatchResponse struct {
	ID               string          `json:"id"`
	BatchNumber      string          `json:"batch_number"`
	ExpiryDate       string          `json:"expiry_date,omitempty"`
	PackingID        int64           `json:"packing_id,omitempty"`
	PackQuantity     decimal.Decimal `json:"pack_quantity"`
	TotalQuantity    decimal.Decimal `json:"total_quantity"`
	Rate             decimal.Decimal `json:"rate"`
	TradeRate        decimal.Decimal `json:"trade_rate"`
	MRP              decimal.Decimal `json:"mrp"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	SourceBatchID    string          `json:"source_batch_id,omitempty"`
	SourceLineID     string          `json:"source_line_id,omitempty"`
	SourceMaterialID int64           `json:"source_material_id,omitempty"`
}

// TaxPreviewRequest body para POST /api/tax-preview (recalculo en vivo, sin persistir).
type TaxPreviewRequest struct {
	Regime      string            `json:"regime" validate:"required,oneof=INTRA INTER"`
	CostFactors []CostFactorInput `json:"cost_factors,omitempty" validate:"dive"`
	Rows        []DraftRow        `json:"rows" validate:"dive"`
}

// TaxPreviewLine reparto de impuestos de una fila.
type TaxPreviewLine struct {
	LineNo     int             `json:"line_no"`
	MaterialID int64           `json:"material_id"`
	HSNID      int64           `json:"hsn_id,omitempty"`
	Gross      decimal.Decimal `json:"gross"`
	CGST       decimal.Decimal `json:"cgst"`
	SGST       decimal.Decimal `json:"sgst"`
	IGST       decimal.Decimal `json:"igst"`
	Net        decimal.Decimal `json:"net"`
}

// TaxPreview totales calculados para la vista previa.
type TaxPreview struct {
	Regime          string               `json:"regime"`
	Lines           []TaxPreviewLine     `json:"lines"`
	GrossAmount     decimal.Decimal      `json:"gross_amount"`
	CGSTAmount      decimal.Decimal      `json:"cgst_amount"`
	SGSTAmount      decimal.Decimal      `json:"sgst_amount"`
	IGSTAmount      decimal.Decimal      `json:"igst_amount"`
	CostFactorTotal decimal.Decimal      `json:"cost_factor_total"`
	NetAmount       decimal.Decimal      `json:"net_amount"`
	AmountInWords   string               `json:"amount_in_words"`
	CostFactors     []CostFactorResponse `json:"cost_factors,omitempty"`
}
