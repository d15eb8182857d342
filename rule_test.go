package indices

import (
	"math"
	"testing"
	"time"
)

func spreadRule(source string) Spread {
	return Spread{
		ID: "TEST 0,5%", MonthKey: KeyMesBase, Source: source, Flat: 100,
		Level: "Mês", LevelPlaces: fullPrecision,
		Variation: "Variação", Accumulated: "Variação Acum.",
		Composite: "Indice Composto", Factor: "Fator Composto",
		Spread:          0.005,
		SpreadVariation: "Variação + 0,5%", PlainVariation: "Variação.1", Contribution: "Acrescimo",
	}
}

func spreadPrevious() *Record {
	return NewRecord(KeyMesBase, "2024-01-01", "Mês", 100.0, "Variação", 1.0, "Variação Acum.", 1.0, "Fator Composto", 1.0)
}

func TestSpread_Scenario(t *testing.T) {
	rule := spreadRule("TEST-1").Rule()
	got, err := rule.Calculate(Context{
		Month:    NewMonth(2024, time.February),
		Previous: spreadPrevious(),
		Raw:      map[string]float64{"Variação": 1.0},
		New:      true,
	})
	if err != nil {
		t.Fatalf("Calculate() unexpected error: %v", err)
	}
	assertFloat(t, got, "Variação", 1.01)
	assertFloat(t, got, "Mês", 101)
	assertFloat(t, got, "Indice Composto", 1.01505)
	assertFloat(t, got, "Fator Composto", 1.01505)
	assertFloat(t, got, "Variação + 0,5%", 1.505)
	assertFloat(t, got, "Variação.1", 1)
	assertFloat(t, got, "Acrescimo", 0.505)

	spread, _ := got.Float("Variação + 0,5%")
	plain, _ := got.Float("Variação.1")
	contribution, _ := got.Float("Acrescimo")
	if math.Abs(contribution-(spread-plain)) > 1e-12 {
		t.Errorf("Acrescimo = %v, want %v - %v", contribution, spread, plain)
	}
}

func TestSpread_FloorClamp(t *testing.T) {
	rule := spreadRule("TEST-1").Rule()
	for _, raw := range []float64{-1, -5, -50, -99.9} {
		got, err := rule.Calculate(Context{
			Month:    NewMonth(2024, time.February),
			Previous: spreadPrevious(),
			Raw:      map[string]float64{"Variação": raw},
		})
		if err != nil {
			t.Fatalf("Calculate(%v) unexpected error: %v", raw, err)
		}
		composite, _ := got.Float("Indice Composto")
		if composite < 1 {
			t.Errorf("Calculate(%v): Indice Composto = %v, want >= 1", raw, composite)
		}
		assertFloat(t, got, "Fator Composto", 1)
		spread, _ := got.Float("Variação + 0,5%")
		plain, _ := got.Float("Variação.1")
		contribution, _ := got.Float("Acrescimo")
		if math.Abs(contribution-(spread-plain)) > 1e-9 {
			t.Errorf("Calculate(%v): Acrescimo = %v, want %v - %v", raw, contribution, spread, plain)
		}
	}
}

func TestSpread_FlatBase(t *testing.T) {
	rule := spreadRule("").Rule()
	if len(rule.Inputs) != 0 {
		t.Fatalf("flat rule has inputs %v, want none", rule.Inputs)
	}
	prev := spreadPrevious()
	prev.Set("Fator Composto", Number(1.2))
	got, err := rule.Calculate(Context{Month: NewMonth(2024, time.February), Previous: prev})
	if err != nil {
		t.Fatalf("Calculate() unexpected error: %v", err)
	}
	assertFloat(t, got, "Mês", 100)
	assertFloat(t, got, "Variação", 1)
	assertFloat(t, got, "Fator Composto", 1.2*1.005)
}

func TestSpread_PreviousIsNotModified(t *testing.T) {
	prev := spreadPrevious()
	before := prev.String()
	if _, err := spreadRule("TEST-1").Rule().Calculate(Context{Previous: prev, Raw: map[string]float64{"Variação": 3}}); err != nil {
		t.Fatalf("Calculate() unexpected error: %v", err)
	}
	if prev.String() != before {
		t.Errorf("previous record modified: %v, want %v", prev, before)
	}
}

func TestSpread_CachedRate(t *testing.T) {
	rule := spreadRule("TEST-1").Rule()
	cached, ok := rule.Inputs[0].cached(NewRecord("Variação", 1.0083))
	if !ok || math.Abs(cached-0.83) > 1e-9 {
		t.Errorf("cached() = %v, %v, want 0.83, true", cached, ok)
	}
}

func TestAccumulation_Floor(t *testing.T) {
	rule := Accumulation{
		ID: "POUPA", MonthKey: KeyData, Source: "TEST-1",
		Rate: "%", Value: "Acumulado", ValuePlaces: fullPrecision, Factor: "Fator Composto",
		Tags:  []Field{{"Poupa", Number(12)}},
		Floor: true,
	}.Rule()
	got, err := rule.Calculate(Context{
		Previous: NewRecord(KeyData, "2024-01-01", "Acumulado", 50.0),
		Raw:      map[string]float64{"%": -0.2},
	})
	if err != nil {
		t.Fatalf("Calculate() unexpected error: %v", err)
	}
	if want := `{"Poupa":12,"%":0,"Acumulado":50,"Fator Composto":0}`; got.String() != want {
		t.Errorf("Calculate() = %v, want %v", got, want)
	}
}

func TestPremium_CDI(t *testing.T) {
	rule := Premium{ID: "CDI", MonthKey: KeyMes, Source: "TEST-1", Annual: 0.03}.Rule()
	monthly := (math.Pow(1.03, 1.0/12) - 1) * 100

	got, err := rule.Calculate(Context{
		Previous: NewRecord(KeyMes, "2024-01-01", "CDI", 100.0, "CDI %", 100.0, "Fator Composto", 1.0),
		Raw:      map[string]float64{cdiIndex: 1.0},
	})
	if err != nil {
		t.Fatalf("Calculate() unexpected error: %v", err)
	}
	assertFloat(t, got, "CDI", 101)
	assertFloat(t, got, "Juros (a.m.) %", monthly)
	assertFloat(t, got, "Indice (CDI + Juros) %", (monthly+1)/100)
	assertFloat(t, got, "Fator Composto", 1+(monthly+1)/100)

	// The cached index decodes back to the raw CDI rate.
	raw, ok := rule.Inputs[0].cached(got)
	if !ok || math.Abs(raw-1) > 1e-9 {
		t.Errorf("cached() = %v, %v, want 1, true", raw, ok)
	}
}

func TestVariation(t *testing.T) {
	rule := Variation{ID: "SINDUSCON SP", MonthKey: KeyMesBase, Source: "CSV-SP", Fields: []string{"R-16-N SP"}, Places: 2}.Rule()
	if got, want := rule.Inputs[0].Source, "CSV-SP/R-16-N SP"; got != want {
		t.Errorf("Inputs[0].Source = %q, want %q", got, want)
	}
	got, err := rule.Calculate(Context{
		Previous: NewRecord(KeyMesBase, "2024-01-01", "R-16-N SP", 2000.0),
		Raw:      map[string]float64{"R-16-N SP": 2012.345},
	})
	if err != nil {
		t.Fatalf("Calculate() unexpected error: %v", err)
	}
	if want := `{"R-16-N SP":2012.345,"R-16-N SP_VAR":0.62}`; got.String() != want {
		t.Errorf("Calculate() = %v, want %v", got, want)
	}
}

func TestVariation_ZeroPrevious(t *testing.T) {
	rule := Variation{ID: "X", MonthKey: KeyMesBase, Source: "CSV-X", Fields: []string{"A"}, Places: 3}.Rule()
	got, err := rule.Calculate(Context{
		Previous: NewRecord(KeyMesBase, "2024-01-01", "A", 0.0),
		Raw:      map[string]float64{"A": 10},
	})
	if err != nil {
		t.Fatalf("Calculate() unexpected error: %v", err)
	}
	assertFloat(t, got, "A_VAR", 0)
}

// TestCatalog_Deterministic runs every rule of the catalog twice on the same context.
func TestCatalog_Deterministic(t *testing.T) {
	previous := NewRecord(
		"IGPM Mês", 100.0, "IPCA Mês", 100.0, "Juros Mês", 100.0, "Variação Acum.", 1.0, "Fator Composto", 1.0,
		"Valor", 100.0, "Acumulado", 100.0, "CDI", 100.0, "INCC", 1000.0,
	)
	for _, f := range append(SindusconMG, "R-16-N SP", "R-16-A RJ") {
		previous.Set(f, Number(1500))
	}
	for _, id := range DefaultCatalog().IDs() {
		rule := DefaultCatalog()[id]
		t.Run(id, func(t *testing.T) {
			raw := make(map[string]float64)
			for _, in := range rule.Inputs {
				raw[in.Field] = 0.42
			}
			ctx := Context{Month: NewMonth(2024, time.February), Previous: previous, Raw: raw, New: true}
			first, err := rule.Calculate(ctx)
			if err != nil {
				t.Fatalf("Calculate() unexpected error: %v", err)
			}
			second, err := rule.Calculate(ctx)
			if err != nil {
				t.Fatalf("second Calculate() unexpected error: %v", err)
			}
			if !first.Equal(second) {
				t.Errorf("Calculate() is not deterministic: %v then %v", first, second)
			}
		})
	}
}

func TestRule_Published(t *testing.T) {
	r := Rule{PublishDay: 7}
	m := NewMonth(2024, time.December)
	if r.Published(m, time.Date(2025, time.January, 6, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("Published() = true on January 6th, want false")
	}
	if !r.Published(m, time.Date(2025, time.January, 7, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Published() = false on January 7th, want true")
	}
	if !(Rule{}).Published(m, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Published() = false without publication delay, want true")
	}
}
