package indices

import (
	"context"
	"fmt"
)

// Item is one figure of a Collection: a field of an index.
type Item struct {
	Label string // name of the figure for the consumers
	Index string // index id
	Field string // field of the index record
}

// FinancialItems are the figures published every month for the financial contracts.
var FinancialItems = []Item{
	{"0,8% a.m.", "JUROS 0,8%", "Fator Composto"},
	{"0,5% a.m.", "JUROS 0,5%", "Fator Composto"},
	{"JUROS 1%", "JUROS 1%", "Fator Composto"},
	{"JUROS 0,5%", "JUROS 0,5%", "Fator Composto"},
	{"INCC", "INCC", "INCC"},
	{"CDI", "CDI", "CDI"},
	{"CDI 3% a.a.", "CDI", "Fator Composto"},
	{"IPCA", "IPCA", "IPCA Mês"},
	{"IPCA 12a.a.", "IPCA", "Fator Composto"},
	{"IPCA 1%", "IPCA 1%", "Fator Composto"},
	{"POUPA 12", "POUPA 12", "Acumulado"},
	{"POUPA 15", "POUPA 15", "Acumulado"},
	{"POUPA 28", "POUPA 28", "Acumulado"},
	{"IGPM", "IGPM", "Valor"},
	{"IGPM 0,5%", "IGPM 0,5%", "Fator Composto"},
	{"IGPM 1%", "IGPM 1%", "Fator Composto"},
}

// AdvanceItems are the fixed-rate figures that can be published ahead of time.
var AdvanceItems = []Item{
	{"0,8% a.m.", "JUROS 0,8%", "Fator Composto"},
	{"0,5% a.m.", "JUROS 0,5%", "Fator Composto"},
	{"JUROS 1%", "JUROS 1%", "Fator Composto"},
	{"JUROS 0,5%", "JUROS 0,5%", "Fator Composto"},
}

// Collected holds the figures of one month. Every item is either in Values or in Errors.
type Collected struct {
	Month  Month
	Labels []string         // labels in order
	Values map[string]Value // by label
	Errors map[string]error // by label
}

// Collect computes every item for month m, with the engine of its index. A failing item never
// prevents the others from being collected.
func Collect(ctx context.Context, engines map[string]*Engine, items []Item, m Month) *Collected {
	c := &Collected{
		Month:  m,
		Values: make(map[string]Value),
		Errors: make(map[string]error),
	}
	for _, it := range items {
		c.Labels = append(c.Labels, it.Label)
		e, ok := engines[it.Index]
		if !ok {
			c.Errors[it.Label] = fmt.Errorf("unknown index %q", it.Index)
			continue
		}
		rec, err := e.Resultado(ctx, m)
		if err != nil {
			c.Errors[it.Label] = err
			continue
		}
		v, ok := rec.Get(it.Field)
		if !ok {
			c.Errors[it.Label] = fmt.Errorf("%s has no field %q", it.Index, it.Field)
			continue
		}
		c.Values[it.Label] = v
	}
	return c
}
