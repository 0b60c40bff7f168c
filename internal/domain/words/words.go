// Package words convierte montos a letras con el sistema de numeración indio
// (crore, lakh, thousand, hundred) para las impresiones legales.
package words

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	crore    = 10_000_000
	lakh     = 100_000
	thousand = 1_000
	hundred  = 100
)

var ones = [...]string{
	"", "ONE", "TWO", "THREE", "FOUR", "FIVE", "SIX", "SEVEN", "EIGHT", "NINE",
	"TEN", "ELEVEN", "TWELVE", "THIRTEEN", "FOURTEEN", "FIFTEEN", "SIXTEEN",
	"SEVENTEEN", "EIGHTEEN", "NINETEEN",
}

var tens = [...]string{
	"", "", "TWENTY", "THIRTY", "FORTY", "FIFTY", "SIXTY", "SEVENTY", "EIGHTY", "NINETY",
}

var croreDec = decimal.NewFromInt(crore)

// AmountToWords "<rupias> RUPEES [AND <paisas> PAISE] ONLY". El monto se redondea a 2 decimales.
func AmountToWords(amount decimal.Decimal) string {
	amount = amount.Round(2)
	if amount.IsNegative() {
		return "MINUS " + AmountToWords(amount.Neg())
	}
	rupees := amount.Truncate(0)
	paise := amount.Sub(rupees).Shift(2).IntPart()

	var b strings.Builder
	b.WriteString(decimalWords(rupees))
	b.WriteString(" RUPEES")
	if paise > 0 {
		b.WriteString(" AND ")
		b.WriteString(spell(uint64(paise)))
		b.WriteString(" PAISE")
	}
	b.WriteString(" ONLY")
	return b.String()
}

// decimalWords parte entera no negativa de cualquier tamaño; agrupa por crores sobre el decimal
// para no desbordar int64.
func decimalWords(n decimal.Decimal) string {
	if n.LessThan(croreDec) {
		return spell(uint64(n.IntPart()))
	}
	q, r := n.QuoRem(croreDec, 0)
	return decimalWords(q) + " CRORE" + rest(uint64(r.IntPart()))
}

// NumberToWords convierte un entero. Los negativos llevan el prefijo MINUS.
func NumberToWords(n int64) string {
	if n < 0 {
		// -(n+1) no desborda con math.MinInt64.
		return "MINUS " + spell(uint64(-(n+1))+1)
	}
	return spell(uint64(n))
}

func spell(n uint64) string {
	switch {
	case n == 0:
		return "ZERO"
	case n < 20:
		return ones[n]
	case n < hundred:
		if n%10 == 0 {
			return tens[n/10]
		}
		return tens[n/10] + " " + ones[n%10]
	case n < thousand:
		return ones[n/hundred] + " HUNDRED" + rest(n%hundred)
	case n < lakh:
		return spell(n/thousand) + " THOUSAND" + rest(n%thousand)
	case n < crore:
		return spell(n/lakh) + " LAKH" + rest(n%lakh)
	default:
		return spell(n/crore) + " CRORE" + rest(n%crore)
	}
}

// rest une el resto del grupo; "AND" solo antes del grupo final de dos dígitos.
func rest(n uint64) string {
	switch {
	case n == 0:
		return ""
	case n < hundred:
		return " AND " + spell(n)
	default:
		return " " + spell(n)
	}
}
