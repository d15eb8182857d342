package indices

import "fmt"

// Levels records published values verbatim: each input is a field of the record.
// It is used by indices published as levels, like the INCC.
type Levels struct {
	ID       string
	MonthKey string
	Inputs   []Input

	Projection []string
	PublishDay int
}

// Rule returns the Rule recording the levels.
func (l Levels) Rule() Rule {
	return Rule{
		ID:         l.ID,
		MonthKey:   l.MonthKey,
		Inputs:     l.Inputs,
		Projection: l.Projection,
		PublishDay: l.PublishDay,
		Calculate: func(ctx Context) (*Record, error) {
			out := new(Record)
			for _, in := range l.Inputs {
				out.Set(in.Field, Number(ctx.Raw[in.Field]))
			}
			return out, nil
		},
	}
}

// VariationSuffix is appended to a field name to name its month-over-month variation.
const VariationSuffix = "_VAR"

// Variation records values published as levels, each followed by its month-over-month
// variation in percent: (value - previous) / previous × 100.
//
// Every field is read from Source + "/" + field. It is used by the regional construction cost
// indices (CUB).
type Variation struct {
	ID       string
	MonthKey string
	Source   string
	Fields   []string
	Places   int32 // decimals of the variations

	PublishDay int
}

// Rule returns the Rule recording the variations.
func (v Variation) Rule() Rule {
	inputs := make([]Input, len(v.Fields))
	for i, f := range v.Fields {
		inputs[i] = Input{Field: f, Source: fmt.Sprintf("%s/%s", v.Source, f)}
	}
	return Rule{
		ID:         v.ID,
		MonthKey:   v.MonthKey,
		Inputs:     inputs,
		PublishDay: v.PublishDay,
		Calculate: func(ctx Context) (*Record, error) {
			out := new(Record)
			for _, f := range v.Fields {
				value := ctx.Raw[f]
				previous, err := ctx.Prev(f)
				if err != nil {
					return nil, err
				}
				var variation float64
				if previous != 0 {
					variation = (value - previous) / previous * 100
				}
				out.Set(f, Number(value))
				out.Set(f+VariationSuffix, Rounded(variation, v.Places))
			}
			return out, nil
		},
	}
}
