// Package gst: cálculo de impuestos GST por línea y totales de documento.
// Redondeo legal por componente y por línea; los totales son suma de líneas, nunca
// un porcentaje aplicado sobre el bruto total.
package gst

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
)

// TaxSplit reparto de impuestos de una línea.
type TaxSplit struct {
	Gross decimal.Decimal
	CGST  decimal.Decimal
	SGST  decimal.Decimal
	IGST  decimal.Decimal
	Net   decimal.Decimal
}

// Round2 redondea a 2 decimales, mitad alejándose de cero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineGross bruto de la línea: el monto del llamador si viene (ya redondeado aguas arriba),
// si no cantidad × tarifa redondeado a 2 decimales.
func LineGross(quantity, rate decimal.Decimal, override *decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	return Round2(quantity.Mul(rate))
}

// ComputeLineTax calcula CGST/SGST (intra) o IGST (inter) sobre el bruto.
// Sin HSN la línea queda sin impuesto (no es error).
func ComputeLineTax(gross decimal.Decimal, regime entity.TaxRegime, hsn *entity.HSN) TaxSplit {
	s := TaxSplit{Gross: gross, CGST: decimal.Zero, SGST: decimal.Zero, IGST: decimal.Zero}
	if hsn != nil {
		if regime == entity.TaxRegimeInter {
			s.IGST = component(gross, hsn.IGSTPct)
		} else {
			s.CGST = component(gross, hsn.CGSTPct)
			s.SGST = component(gross, hsn.SGSTPct)
		}
	}
	s.Net = gross.Add(s.CGST).Add(s.SGST).Add(s.IGST)
	return s
}

func component(gross, pct decimal.Decimal) decimal.Decimal {
	if !pct.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}
	return Round2(gross.Mul(pct).Shift(-2))
}

// Totals agregados de cabecera.
type Totals struct {
	Gross       decimal.Decimal
	CGST        decimal.Decimal
	SGST        decimal.Decimal
	IGST        decimal.Decimal
	LinesNet    decimal.Decimal
	CostFactors decimal.Decimal // con signo
	Net         decimal.Decimal
}

// Accumulate suma los componentes ya redondeados de cada línea.
func Accumulate(splits []TaxSplit) Totals {
	t := Totals{
		Gross: decimal.Zero, CGST: decimal.Zero, SGST: decimal.Zero, IGST: decimal.Zero,
		LinesNet: decimal.Zero, CostFactors: decimal.Zero, Net: decimal.Zero,
	}
	for _, s := range splits {
		t.Gross = t.Gross.Add(s.Gross)
		t.CGST = t.CGST.Add(s.CGST)
		t.SGST = t.SGST.Add(s.SGST)
		t.IGST = t.IGST.Add(s.IGST)
		t.LinesNet = t.LinesNet.Add(s.Net)
	}
	t.Net = t.LinesNet
	return t
}

// Summarize acumula las líneas y aplica los ajustes manuales al neto.
// Devuelve los ajustes con su Amount calculado.
func Summarize(splits []TaxSplit, factors []entity.CostFactor) (Totals, []entity.CostFactor, error) {
	t := Accumulate(splits)
	applied, signed, err := ApplyCostFactors(t.LinesNet, factors)
	if err != nil {
		return Totals{}, nil, err
	}
	t.CostFactors = signed
	t.Net = t.LinesNet.Add(signed)
	return t, applied, nil
}
