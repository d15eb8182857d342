package indices

import (
	"fmt"
	"slices"
	"sort"
)

// Catalog maps an index id to its Rule.
type Catalog map[string]Rule

// Rule returns the rule of an index.
func (c Catalog) Rule(id string) (Rule, error) {
	r, ok := c[id]
	if !ok {
		return Rule{}, fmt.Errorf("unknown index %q", id)
	}
	return r, nil
}

// IDs returns the index ids, sorted.
func (c Catalog) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Add registers rules by id.
func (c Catalog) Add(rules ...Rule) Catalog {
	for _, r := range rules {
		c[r.ID] = r
	}
	return c
}

// Month fields used by the ledgers.
const (
	KeyMes     = "Mês"
	KeyMesBase = "Mês Base"
	KeyData    = "Data"
)

// Sources of the raw values in the default catalog.
const (
	SourceIGPM      = "BCB-189"
	SourceIPCA      = "BCB-433"
	SourceCDI       = "BCB-12:daily"
	SourcePoupanca  = "BCB-196"
	SourceINCCMonth = "BCB-192"
	SourceINCC      = "CSV-INCC"
	SourceSinduscon = "CSV-SINDUSCON"
)

// SindusconMG lists the standard projects published by the Sinduscon-MG.
var SindusconMG = []string{"PP-4-B", "R-8-B", "PP-4-N", "R-8-N", "R-16-N", "R-8-A", "R-16-A", "CSL-8-N", "CSL-16-N", "CSL-16-A"}

// DefaultCatalog returns the catalog of every index kept up to date.
func DefaultCatalog() Catalog {
	c := make(Catalog)

	c.Add(Accumulation{
		ID: "IGPM", MonthKey: KeyData, Source: SourceIGPM,
		Rate: "Variação (%)", Value: "Valor", ValuePlaces: 6, Floor: true,
		Projection: []string{KeyData, "Valor"},
	}.Rule())
	for _, p := range []struct {
		name   string
		spread float64
	}{{"0,5%", 0.005}, {"1%", 0.01}} {
		c.Add(Spread{
			ID: "IGPM " + p.name, MonthKey: KeyMesBase, Source: SourceIGPM,
			Level: "IGPM Mês", LevelPlaces: fullPrecision,
			Variation: "Variação IGPM", Accumulated: "Variação Acum.",
			Composite: "Indice Composto (IGPM + " + p.name + ")", Factor: "Fator Composto",
			Spread:          p.spread,
			SpreadVariation: "Variação IGPM + " + p.name, PlainVariation: "Variação IGPM.1", Contribution: "Acrescimo IGPM",
			Projection: []string{KeyMesBase, "Fator Composto"},
		}.Rule())
	}

	c.Add(Spread{
		ID: "IPCA", MonthKey: KeyMesBase, Source: SourceIPCA,
		Level: "IPCA Mês", LevelPlaces: 2,
		Variation: "Variação IPCA", Accumulated: "Variação Acum.",
		Composite: "Indice Composto", Factor: "Fator Composto",
		Spread:          MonthlyRate(0.12),
		SpreadVariation: "Variação IPCA + 12% a.a.", PlainVariation: "Variação IPCA.1", Contribution: "Acrescimo IPCA",
		Projection: []string{KeyMesBase, "IPCA Mês", "Fator Composto"},
	}.Rule())
	c.Add(Spread{
		ID: "IPCA 1%", MonthKey: KeyMesBase, Source: SourceIPCA,
		Level: "IPCA Mês", LevelPlaces: 2,
		Variation: "Variação IPCA", Accumulated: "Variação Acum.",
		Composite: "Indice Composto (IPCA + 1%)", Factor: "Fator Composto",
		Spread:          0.01,
		SpreadVariation: "Variação IPCA + 1%", PlainVariation: "Variação IPCA.1", Contribution: "Acrescimo IPCA",
		Projection: []string{KeyMesBase, "Fator Composto"},
	}.Rule())

	for _, p := range []struct {
		name   string
		spread float64
	}{{"0,5%", 0.005}, {"0,8%", 0.008}, {"1%", 0.01}} {
		c.Add(Spread{
			ID: "JUROS " + p.name, MonthKey: KeyMesBase, Flat: 100,
			Level: "Juros Mês", LevelPlaces: fullPrecision,
			Variation: "Variação Juros", Accumulated: "Variação Acum.",
			Composite: "Indice Composto (JUROS " + p.name + ")", Factor: "Fator Composto",
			Spread:          p.spread,
			SpreadVariation: "Variação Juros + " + p.name, PlainVariation: "Variação Juros.1", Contribution: "Acrescimo Juros",
			Projection: []string{KeyMesBase, "Fator Composto"},
		}.Rule())
	}

	c.Add(Premium{
		ID: "CDI", MonthKey: KeyMes, Source: SourceCDI, Annual: 0.03,
		Projection: []string{KeyMes, "CDI", "Fator Composto"},
		PublishDay: 7,
	}.Rule())

	for _, n := range []int{12, 15, 28} {
		c.Add(Accumulation{
			ID: fmt.Sprintf("POUPA %d", n), MonthKey: KeyData, Source: SourcePoupanca,
			Rate: "%", Value: "Acumulado", ValuePlaces: fullPrecision, Factor: "Fator Composto",
			Tags:       []Field{{"Poupa", Number(float64(n))}},
			Floor:      true,
			Projection: []string{KeyData, "Acumulado"},
		}.Rule())
	}

	c.Add(Levels{
		ID: "INCC", MonthKey: KeyMesBase,
		Inputs: []Input{
			{Field: "INCC", Source: SourceINCC},
			{Field: "INCC MÊS", Source: SourceINCCMonth},
		},
		Projection: []string{KeyMesBase, "INCC"},
	}.Rule())

	c.Add(Variation{
		ID: "SINDUSCON MG", MonthKey: KeyMesBase, Source: SourceSinduscon + "-MG",
		Fields: slices.Clone(SindusconMG), Places: 3,
	}.Rule())
	c.Add(Variation{
		ID: "SINDUSCON SP", MonthKey: KeyMesBase, Source: SourceSinduscon + "-SP",
		Fields: []string{"R-16-N SP"}, Places: 2,
	}.Rule())
	c.Add(Variation{
		ID: "SINDUSCON RJ", MonthKey: KeyMesBase, Source: SourceSinduscon + "-RJ",
		Fields: []string{"R-16-A RJ"}, Places: 2,
	}.Rule())

	return c
}

// DefaultFiles maps an index id to the name of its ledger file.
var DefaultFiles = map[string]string{
	"IGPM":         "db_igpm.json",
	"IGPM 0,5%":    "db_igpm_0_50.json",
	"IGPM 1%":      "db_igpm_1.json",
	"IPCA":         "db_ipca.json",
	"IPCA 1%":      "db_ipca_1.json",
	"JUROS 0,5%":   "db_juros_0_5.json",
	"JUROS 0,8%":   "db_juros_0_8.json",
	"JUROS 1%":     "db_juros_1.json",
	"CDI":          "db_cdi.json",
	"POUPA 12":     "poupas_12.json",
	"POUPA 15":     "poupas_15.json",
	"POUPA 28":     "poupas_28.json",
	"INCC":         "db_incc.json",
	"SINDUSCON MG": "db_siduscon_mg.json",
	"SINDUSCON SP": "db_siduscon_sp.json",
	"SINDUSCON RJ": "db_siduscon_rj.json",
	CompositeID:    "db_setoriais_fin.json",
}

// CompositeID is the id of the sector/financial summary ledger.
const CompositeID = "SETORIAIS FIN"
