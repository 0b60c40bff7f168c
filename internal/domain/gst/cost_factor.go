package gst

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharmadist-core/internal/domain"
	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
)

// ApplyCostFactors calcula cada ajuste manual (fijo o % del neto de líneas), lo redondea
// por separado y devuelve la suma con signo. Base es el neto de líneas antes de ajustes.
func ApplyCostFactors(base decimal.Decimal, factors []entity.CostFactor) ([]entity.CostFactor, decimal.Decimal, error) {
	total := decimal.Zero
	out := make([]entity.CostFactor, 0, len(factors))
	for i, f := range factors {
		if f.Value.LessThan(decimal.Zero) {
			return nil, decimal.Zero, domain.NewValidation("cost_factors", fmt.Sprintf("ajuste %d: valor negativo, use el signo DEDUCT", i+1))
		}
		switch f.Mode {
		case entity.CostFactorFixed:
			f.Amount = Round2(f.Value)
		case entity.CostFactorPercent:
			f.Amount = Round2(base.Mul(f.Value).Shift(-2))
		default:
			return nil, decimal.Zero, domain.NewValidation("cost_factors", fmt.Sprintf("ajuste %d: modo %q inválido", i+1, f.Mode))
		}
		switch f.Sign {
		case entity.CostFactorAdd:
			total = total.Add(f.Amount)
		case entity.CostFactorDeduct:
			total = total.Sub(f.Amount)
		default:
			return nil, decimal.Zero, domain.NewValidation("cost_factors", fmt.Sprintf("ajuste %d: signo %q inválido", i+1, f.Sign))
		}
		out = append(out, f)
	}
	return out, total, nil
}
