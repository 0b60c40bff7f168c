package gst_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharmadist-core/internal/domain"
	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
	"github.com/jhoicas/pharmadist-core/internal/domain/gst"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func hsn(cgst, sgst, igst string) *entity.HSN {
	return &entity.HSN{ID: 1, Code: "3004", CGSTPct: d(cgst), SGSTPct: d(sgst), IGSTPct: d(igst)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Vectores de referencia: deben coincidir al centavo con los documentos históricos.
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeLineTax_Intra18(t *testing.T) {
	s := gst.ComputeLineTax(d("100.00"), entity.TaxRegimeIntra, hsn("9", "9", "18"))

	assert.True(t, s.CGST.Equal(d("9.00")), "cgst=%s", s.CGST)
	assert.True(t, s.SGST.Equal(d("9.00")), "sgst=%s", s.SGST)
	assert.True(t, s.IGST.IsZero())
	assert.True(t, s.Net.Equal(d("118.00")), "net=%s", s.Net)
}

func TestComputeLineTax_Inter18(t *testing.T) {
	s := gst.ComputeLineTax(d("250.50"), entity.TaxRegimeInter, hsn("9", "9", "18"))

	assert.True(t, s.IGST.Equal(d("45.09")), "igst=%s", s.IGST)
	assert.True(t, s.CGST.IsZero())
	assert.True(t, s.SGST.IsZero())
	assert.True(t, s.Net.Equal(d("295.59")), "net=%s", s.Net)
}

func TestComputeLineTax_SinHSNNoGravada(t *testing.T) {
	s := gst.ComputeLineTax(d("75.25"), entity.TaxRegimeIntra, nil)
	assert.True(t, s.CGST.IsZero())
	assert.True(t, s.SGST.IsZero())
	assert.True(t, s.IGST.IsZero())
	assert.True(t, s.Net.Equal(d("75.25")))
}

func TestComputeLineTax_PorcentajeCeroNoCalcula(t *testing.T) {
	s := gst.ComputeLineTax(d("10.00"), entity.TaxRegimeIntra, hsn("0", "2.5", "5"))
	assert.True(t, s.CGST.IsZero())
	assert.True(t, s.SGST.Equal(d("0.25")))
}

// TestComputeLineTax_NuncaAmbosRegimenes: por línea solo CGST+SGST o solo IGST.
func TestComputeLineTax_NuncaAmbosRegimenes(t *testing.T) {
	h := hsn("6", "6", "12")
	for _, regime := range []entity.TaxRegime{entity.TaxRegimeIntra, entity.TaxRegimeInter} {
		s := gst.ComputeLineTax(d("999.99"), regime, h)
		intra := !s.CGST.IsZero() || !s.SGST.IsZero()
		inter := !s.IGST.IsZero()
		assert.True(t, intra != inter, "régimen %s mezcló componentes", regime)
	}
}

func TestRound2_MitadLejosDeCero(t *testing.T) {
	tests := []struct{ in, want string }{
		{"0.005", "0.01"},
		{"0.015", "0.02"},
		{"2.345", "2.35"},
		{"2.344", "2.34"},
		{"-0.005", "-0.01"},
		{"-2.345", "-2.35"},
	}
	for _, tc := range tests {
		got := gst.Round2(d(tc.in))
		assert.True(t, got.Equal(d(tc.want)), "Round2(%s) = %s, se esperaba %s", tc.in, got, tc.want)
	}
}

// TestComputeLineTax_RedondeoPorComponente: cada componente se redondea por separado.
// 0.50 × 2.5% = 0.0125 → 0.01 por componente; redondear la suma (0.025) daría 0.03.
func TestComputeLineTax_RedondeoPorComponente(t *testing.T) {
	s := gst.ComputeLineTax(d("0.50"), entity.TaxRegimeIntra, hsn("2.5", "2.5", "5"))
	assert.True(t, s.CGST.Equal(d("0.01")))
	assert.True(t, s.SGST.Equal(d("0.01")))
	assert.True(t, s.Net.Equal(d("0.52")))
}

// TestAccumulate_SumaDeLineasNoPorcentajeDelTotal: tres líneas de 0.50 al 2.5% suman
// 0.03 de CGST; aplicar el porcentaje sobre el bruto total (1.50) daría 0.04.
func TestAccumulate_SumaDeLineasNoPorcentajeDelTotal(t *testing.T) {
	h := hsn("2.5", "2.5", "5")
	var splits []gst.TaxSplit
	for i := 0; i < 3; i++ {
		splits = append(splits, gst.ComputeLineTax(d("0.50"), entity.TaxRegimeIntra, h))
	}
	tot := gst.Accumulate(splits)
	assert.True(t, tot.Gross.Equal(d("1.50")))
	assert.True(t, tot.CGST.Equal(d("0.03")), "cgst=%s", tot.CGST)
	assert.False(t, tot.CGST.Equal(gst.Round2(d("1.50").Mul(d("0.025")))))
	assert.True(t, tot.Net.Equal(d("1.56")))
}

func TestLineGross(t *testing.T) {
	assert.True(t, gst.LineGross(d("3"), d("33.335"), nil).Equal(d("100.01")))

	override := d("100.00")
	assert.True(t, gst.LineGross(d("3"), d("33.335"), &override).Equal(d("100.00")),
		"el monto del llamador prevalece sobre cantidad × tarifa")
}

// ── Ajustes manuales ──────────────────────────────────────────────────────────

func TestSummarize_AjustesConSigno(t *testing.T) {
	splits := []gst.TaxSplit{
		gst.ComputeLineTax(d("100.00"), entity.TaxRegimeIntra, hsn("9", "9", "18")),
	}
	factors := []entity.CostFactor{
		{Name: "Descuento", Mode: entity.CostFactorPercent, Value: d("2.5"), Sign: entity.CostFactorDeduct},
		{Name: "Flete", Mode: entity.CostFactorFixed, Value: d("10.005"), Sign: entity.CostFactorAdd},
	}

	tot, applied, err := gst.Summarize(splits, factors)
	require.NoError(t, err)
	require.Len(t, applied, 2)

	// 118.00 × 2.5% = 2.95 ; 10.005 → 10.01
	assert.True(t, applied[0].Amount.Equal(d("2.95")), "descuento=%s", applied[0].Amount)
	assert.True(t, applied[1].Amount.Equal(d("10.01")), "flete=%s", applied[1].Amount)
	assert.True(t, tot.CostFactors.Equal(d("7.06")))
	assert.True(t, tot.Net.Equal(d("125.06")))
	assert.True(t, tot.Gross.Equal(d("100.00")), "los ajustes no tocan el bruto")
	assert.True(t, tot.CGST.Equal(d("9.00")), "los ajustes no tocan los impuestos")
}

func TestApplyCostFactors_Invalidos(t *testing.T) {
	tests := []struct {
		name string
		f    entity.CostFactor
	}{
		{"modo desconocido", entity.CostFactor{Mode: "X", Value: d("1"), Sign: entity.CostFactorAdd}},
		{"signo desconocido", entity.CostFactor{Mode: entity.CostFactorFixed, Value: d("1"), Sign: "?"}},
		{"valor negativo", entity.CostFactor{Mode: entity.CostFactorFixed, Value: d("-1"), Sign: entity.CostFactorAdd}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := gst.ApplyCostFactors(d("100"), []entity.CostFactor{tc.f})
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
