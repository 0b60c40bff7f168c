package entity

import "github.com/shopspring/decimal"

// Modo del ajuste manual.
const (
	CostFactorFixed   = "FIXED"   // valor fijo
	CostFactorPercent = "PERCENT" // porcentaje sobre el neto de líneas
)

// Signo del ajuste manual.
const (
	CostFactorAdd    = "ADD"
	CostFactorDeduct = "DEDUCT"
)

// CostFactor ajuste manual (descuento o recargo) aplicado al neto de la cabecera.
// No afecta bruto ni impuestos por línea.
type CostFactor struct {
	Name   string          `json:"name"`
	Mode   string          `json:"mode"`
	Value  decimal.Decimal `json:"value"`
	Sign   string          `json:"sign"`
	Amount decimal.Decimal `json:"amount"` // calculado, sin signo
}
