package indices

import "math"

// Accumulation is the simple accumulation family: a running total compounded every month by
// the raw rate, value = previous × (1 + rate/100).
type Accumulation struct {
	ID       string
	MonthKey string
	Source   string

	Rate        string  // field of the monthly rate in percent, caches the raw value
	Value       string  // field of the running total
	ValuePlaces int32   // decimals of Value when serialized, -1 for full precision
	Factor      string  // optional field of the monthly variation as a fraction
	Tags        []Field // constant fields written first
	Floor       bool    // negative rates are clamped to 0

	Projection []string
}

// Rule returns the Rule of the accumulation.
func (a Accumulation) Rule() Rule {
	return Rule{
		ID:         a.ID,
		MonthKey:   a.MonthKey,
		Inputs:     []Input{{Field: a.Rate, Source: a.Source}},
		Projection: a.Projection,
		Calculate:  a.calculate,
	}
}

func (a Accumulation) calculate(ctx Context) (*Record, error) {
	previous, err := ctx.Prev(a.Value)
	if err != nil {
		return nil, err
	}
	rate := ctx.Raw[a.Rate]
	if a.Floor {
		rate = math.Max(rate, 0)
	}
	value := previous * (1 + rate/100)

	out := new(Record)
	for _, t := range a.Tags {
		out.Set(t.Key, t.Value)
	}
	out.Set(a.Rate, Number(rate))
	out.Set(a.Value, Rounded(value, a.ValuePlaces))
	if a.Factor != "" {
		out.Set(a.Factor, Number(rate/100))
	}
	return out, nil
}
