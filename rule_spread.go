package indices

import (
	"math"
)

// Spread is the spread accumulation family. Next to the plain compounded level of a base index
// it compounds a factor that carries a contractual spread:
//
//	plain     = 1 + rate/100
//	composite = max(plain × (1 + spread), 1)
//	factor    = previous factor × composite
//
// The spread contribution is the spread-adjusted variation minus the plain variation, both in
// percent.
type Spread struct {
	ID       string
	MonthKey string
	// Source of the base rate. Without a source the base is flat: its level is Flat every month.
	Source string
	Flat   float64

	Level       string // base level, e.g. "IPCA Mês"
	LevelPlaces int32
	Variation   string  // plain variation 1+rate/100, caches the raw rate
	Accumulated string  // product of the plain variations
	Composite   string  // composite index of the month
	Factor      string  // compounded factor
	Spread      float64 // monthly spread as a fraction, 0.005 for 0,5%

	SpreadVariation string // spread-adjusted variation in percent
	PlainVariation  string // plain variation in percent
	Contribution    string // SpreadVariation - PlainVariation

	Projection []string
}

// MonthlyRate converts an annual rate into the equivalent monthly rate, both as fractions.
func MonthlyRate(annual float64) float64 {
	return math.Pow(1+annual, 1.0/12) - 1
}

// Rule returns the Rule of the spread variant.
func (s Spread) Rule() Rule {
	r := Rule{
		ID:         s.ID,
		MonthKey:   s.MonthKey,
		Projection: s.Projection,
		Calculate:  s.calculate,
	}
	if s.Source != "" {
		r.Inputs = []Input{{
			Field:  s.Variation,
			Source: s.Source,
			Decode: func(v float64) float64 { return (v - 1) * 100 },
		}}
	}
	return r
}

func (s Spread) calculate(ctx Context) (*Record, error) {
	level, err := ctx.Prev(s.Level)
	if err != nil {
		return nil, err
	}
	factor, err := ctx.Prev(s.Factor)
	if err != nil {
		return nil, err
	}

	var plain float64
	switch {
	case s.Source != "":
		plain = 1 + ctx.Raw[s.Variation]/100
		level *= plain
	case level != 0:
		plain = s.Flat / level
		level = s.Flat
	default:
		plain, level = 1, s.Flat
	}
	composite := math.Max(plain*(1+s.Spread), 1)
	spreadVariation := (composite - 1) * 100
	plainVariation := (plain - 1) * 100

	out := new(Record)
	out.Set(s.Level, Rounded(level, s.LevelPlaces))
	out.Set(s.Variation, Number(plain))
	out.Set(s.Accumulated, Number(plain*ctx.PrevOr(s.Accumulated, 1)))
	out.Set(s.Composite, Number(composite))
	out.Set(s.Factor, Number(factor*composite))
	if s.SpreadVariation != "" {
		out.Set(s.SpreadVariation, Number(spreadVariation))
	}
	if s.PlainVariation != "" {
		out.Set(s.PlainVariation, Number(plainVariation))
	}
	if s.Contribution != "" {
		out.Set(s.Contribution, Number(spreadVariation-plainVariation))
	}
	return out, nil
}
