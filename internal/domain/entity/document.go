package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RegisterKind identifica el registro (tipo de documento comercial) de un maestro.
type RegisterKind int

// Registros de la cadena comercial: pedido de venta → orden de compra → factura de compra
// → factura de venta → devolución de venta.
const (
	RegisterSalesOrder RegisterKind = iota + 1
	RegisterPurchaseOrder
	RegisterPurchaseInvoice
	RegisterSalesInvoice
	RegisterSalesReturn
)

var registerNames = map[RegisterKind]string{
	RegisterSalesOrder:      "SALES_ORDER",
	RegisterPurchaseOrder:   "PURCHASE_ORDER",
	RegisterPurchaseInvoice: "PURCHASE_INVOICE",
	RegisterSalesInvoice:    "SALES_INVOICE",
	RegisterSalesReturn:     "SALES_RETURN",
}

func (k RegisterKind) String() string {
	if s, ok := registerNames[k]; ok {
		return s
	}
	return fmt.Sprintf("REGISTER(%d)", int(k))
}

// Valid indica si el registro es uno de los conocidos.
func (k RegisterKind) Valid() bool {
	_, ok := registerNames[k]
	return ok
}

// IsCustomerFacing indica si el tercero del registro es un cliente (origen de identidad en el linaje).
func (k RegisterKind) IsCustomerFacing() bool {
	return k == RegisterSalesOrder || k == RegisterSalesInvoice || k == RegisterSalesReturn
}

// ParseRegisterKind convierte el nombre externo (SALES_INVOICE, ...) al enum.
func ParseRegisterKind(s string) (RegisterKind, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for k, name := range registerNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("registro desconocido %q", s)
}

// Subtipos de documento.
const (
	SubTypeNone          = ""
	SubTypeReturnDirect  = "DIRECT"          // devolución sin factura de referencia
	SubTypeReturnAgainst = "AGAINST_INVOICE" // devolución contra una factura de venta
	SubTypeInvoiceCloned = "FROM_PURCHASE"   // factura de venta copiada de una factura de compra
)

// TaxRegime régimen GST: intra-estatal (CGST+SGST) o inter-estatal (IGST).
type TaxRegime int

const (
	TaxRegimeIntra TaxRegime = 0
	TaxRegimeInter TaxRegime = 1
)

func (r TaxRegime) String() string {
	if r == TaxRegimeInter {
		return "INTER"
	}
	return "INTRA"
}

// ParseTaxRegime convierte "INTRA"/"INTER" al enum.
func ParseTaxRegime(s string) (TaxRegime, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INTRA":
		return TaxRegimeIntra, nil
	case "INTER":
		return TaxRegimeInter, nil
	}
	return TaxRegimeIntra, fmt.Errorf("régimen desconocido %q", s)
}

// Document representa el maestro de una transacción comercial.
// Los montos son derivados: nunca se aceptan del llamador.
type Document struct {
	ID               string
	CompanyID        int64
	Register         RegisterKind
	SubType          string
	SeqNo            int64
	DocNo            string
	FiscalYear       int // año de inicio del ejercicio (abril–marzo)
	DocDate          time.Time
	DocTime          string // HH:MM:SS
	PartyID          int64
	PartyName        string
	SupplierID       int64
	ReferenceNo      string // número de factura/pedido del tercero
	TaxRegime        TaxRegime
	ParentDocumentID string // vacío = sin documento padre

	GrossAmount     decimal.Decimal
	CGSTAmount      decimal.Decimal
	SGSTAmount      decimal.Decimal
	IGSTAmount      decimal.Decimal
	CostFactorTotal decimal.Decimal // ajustes manuales con signo ya aplicado
	NetAmount       decimal.Decimal
	AmountInWords   string
	CostFactors     []CostFactor

	Enabled     bool
	CreatedBy   int64
	ModifiedBy  int64
	ProcessedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Lines []*LineItem
}

// TaxTotal suma de los componentes de impuesto de la cabecera.
func (d *Document) TaxTotal() decimal.Decimal {
	return d.CGSTAmount.Add(d.SGSTAmount).Add(d.IGSTAmount)
}

// Balanced verifica net = gross + cgst + sgst + igst + ajustes.
func (d *Document) Balanced() bool {
	return d.NetAmount.Equal(d.GrossAmount.Add(d.TaxTotal()).Add(d.CostFactorTotal))
}
