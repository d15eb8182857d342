package renderer

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/etnz/indices"
	"github.com/shopspring/decimal"
)

// missing is printed in place of a value that could not be computed.
const missing = "-"

// number formats v with Brazilian separators: 6.566,93.
func number(v indices.Value) string {
	switch v.Kind() {
	case indices.KindText:
		return v.String()
	case indices.KindNumber:
		d, ok := v.Decimal()
		if !ok {
			return v.String()
		}
		return brazilian(d)
	}
	return missing
}

// percent formats a variation: 0,83%.
func percent(v indices.Value) string {
	if v.Kind() != indices.KindNumber {
		return number(v)
	}
	return number(v) + "%"
}

// reais formats v as an amount of Brazilian reais: R$1.412,00.
func reais(v indices.Value) string {
	f, ok := v.Float()
	if !ok {
		return number(v)
	}
	// to get a never nil currency I need to call the Money constructor
	cur := *money.New(0, money.BRL).Currency()
	cents := decimal.NewFromFloat(f).Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(cents.IntPart())
}

// brazilian prints d with a decimal comma and dots between thousands.
func brazilian(d decimal.Decimal) string {
	s := d.String()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}
