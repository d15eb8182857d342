package renderer

import (
	"sort"
	"strings"

	"github.com/etnz/indices"
	"github.com/etnz/indices/composite"
)

// Monthly is the report of the indices of one month. Values are already formatted.
type Monthly struct {
	// Period is the month of the report, as 02/2024.
	Period string
	// Financial are the figures of the financial contracts.
	Financial []Figure
	// Advance are the fixed-rate figures of the following months.
	Advance []Advance
	// Composite is the sector/financial summary row, one line per index.
	Composite []Line
	// Errors are the figures that could not be computed.
	Errors []Failure
}

// Figure is a labelled value.
type Figure struct {
	Label string
	Value string
}

// Advance are the figures published ahead of time for a month.
type Advance struct {
	Period  string
	Figures []Figure
}

// Line is an index of the composite row with its variations.
type Line struct {
	Name         string
	Value        string
	Variation    string
	YearToDate   string
	TwelveMonths string
}

// Failure is a figure that could not be computed.
type Failure struct {
	Label   string
	Message string
}

// Groups of the composite row that hold an amount, by currency.
var amounts = map[string]bool{"SALARIO MINIMO": true}

// NewMonthly returns an empty report of month m.
func NewMonthly(m indices.Month) *Monthly {
	return &Monthly{Period: period(m)}
}

func period(m indices.Month) string { return m.Format("01/2006") }

// AddFinancial adds the collected figures, and their errors.
func (r *Monthly) AddFinancial(c *indices.Collected) *Monthly {
	figures, failures := collected(c, "")
	r.Financial = append(r.Financial, figures...)
	r.Errors = append(r.Errors, failures...)
	return r
}

// AddAdvance adds the figures collected ahead of time for a following month.
func (r *Monthly) AddAdvance(c *indices.Collected) *Monthly {
	p := period(c.Month)
	figures, failures := collected(c, p+" ")
	r.Advance = append(r.Advance, Advance{Period: p, Figures: figures})
	r.Errors = append(r.Errors, failures...)
	return r
}

func collected(c *indices.Collected, prefix string) ([]Figure, []Failure) {
	var figures []Figure
	var failures []Failure
	for _, label := range c.Labels {
		if err, ok := c.Errors[label]; ok {
			failures = append(failures, Failure{Label: prefix + label, Message: err.Error()})
			figures = append(figures, Figure{Label: label, Value: missing})
			continue
		}
		figures = append(figures, Figure{Label: label, Value: number(c.Values[label])})
	}
	return figures, failures
}

// AddComposite adds the composite row, one line per group.
func (r *Monthly) AddComposite(groups []composite.Group, row *composite.Row) *Monthly {
	field := func(name string) indices.Value {
		if name == "" {
			return indices.Empty
		}
		return row.Value(name)
	}
	for _, g := range groups {
		line := Line{
			Name:         g.Name,
			Value:        number(field(g.Name)),
			Variation:    percent(field(g.Variation)),
			YearToDate:   percent(field(g.YearToDate)),
			TwelveMonths: percent(field(g.TwelveMonths)),
		}
		switch {
		case amounts[g.Name]:
			line.Value = reais(field(g.Name))
		case g.Variation == "" && strings.HasSuffix(g.Name, indices.VariationSuffix):
			// the group is itself a variation
			line.Name = strings.TrimSuffix(g.Name, indices.VariationSuffix)
			line.Value = missing
			line.Variation = percent(field(g.Name))
		}
		r.Composite = append(r.Composite, line)
	}

	names := make([]string, 0, len(row.Errors))
	for name := range row.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.Errors = append(r.Errors, Failure{Label: name, Message: row.Errors[name].Error()})
	}
	return r
}
