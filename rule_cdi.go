package indices

// Premium is the CDI family: the CDI accumulated month after month, and a factor compounded
// by the CDI plus a fixed annual premium.
//
// The raw value is the CDI of the month, compounded from the daily rates, in percent.
type Premium struct {
	ID       string
	MonthKey string
	Source   string
	Annual   float64 // premium per year, 0.03 for 3% a.a.

	Projection []string
	PublishDay int
}

// Fields of a CDI record.
const (
	cdiValue   = "CDI"
	cdiPrecise = "CDI %"
	cdiPremium = "Juros (a.m.) %"
	cdiIndex   = "Indice (CDI + Juros) %"
	cdiFactor  = "Fator Composto"
)

// Rule returns the Rule of the CDI variant.
func (p Premium) Rule() Rule {
	monthly := MonthlyRate(p.Annual) * 100
	return Rule{
		ID:       p.ID,
		MonthKey: p.MonthKey,
		Inputs: []Input{{
			Field:  cdiIndex,
			Source: p.Source,
			Decode: func(v float64) float64 { return v*100 - monthly },
		}},
		Projection: p.Projection,
		PublishDay: p.PublishDay,
		Calculate: func(ctx Context) (*Record, error) {
			cdi, err := ctx.Prev(cdiPrecise)
			if err != nil {
				if cdi, err = ctx.Prev(cdiValue); err != nil {
					return nil, err
				}
			}
			factor, err := ctx.Prev(cdiFactor)
			if err != nil {
				return nil, err
			}
			rate := ctx.Raw[cdiIndex]
			cdi *= 1 + rate/100
			index := (monthly + rate) / 100

			out := new(Record)
			out.Set(cdiValue, Rounded(cdi, 2))
			out.Set(cdiPrecise, Rounded(cdi, 6))
			out.Set(cdiPremium, Number(monthly))
			out.Set(cdiIndex, Number(index))
			out.Set(cdiFactor, Rounded(factor*(1+index), 6))
			return out, nil
		},
	}
}
