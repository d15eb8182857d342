package composite

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/etnz/indices"
)

// stub is a Lookup serving values by month, and counting its calls.
type stub struct {
	values map[string]float64
	err    error
	calls  int
}

func (s *stub) Lookup(_ context.Context, m indices.Month) (float64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	v, ok := s.values[m.String()]
	if !ok {
		return 0, indices.ErrNotYetPublished
	}
	return v, nil
}

func assertFloat(t *testing.T, r *indices.Record, key string, want float64) {
	t.Helper()
	got, ok := r.Float(key)
	if !ok {
		t.Errorf("row %v has no numeric %q", r, key)
		return
	}
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", key, got, want)
	}
}

func assertEmpty(t *testing.T, r *indices.Record, key string) {
	t.Helper()
	v, ok := r.Get(key)
	if !ok {
		t.Errorf("row %v has no %q", r, key)
		return
	}
	if v.Kind() != indices.KindEmpty {
		t.Errorf("%s = %v, want empty", key, v)
	}
}

// noRetry tries twice without waiting.
var noRetry = indices.Retry{Attempts: 2, Sleep: func(time.Duration) {}}

var (
	january  = indices.NewMonth(2024, time.January)
	february = indices.NewMonth(2024, time.February)
)

func TestAggregator_IsolatesFailures(t *testing.T) {
	ctx := context.Background()
	ledger := indices.NewMemoryLedger(indices.NewRecord(
		indices.KeyMesBase, "2024-01-01", "IPCA", 100.0, "IPCA_VAR", 0.5, "CDI", 50.0, "CDI_VAR", 1.0,
	))
	ipca := &stub{values: map[string]float64{"2024-02-01": 102}}
	cdi := &stub{err: fmt.Errorf("bcb: %w", indices.ErrSourceUnavailable)}
	groups := []Group{
		{Name: "IPCA", Variation: "IPCA_VAR", Kind: Level, Lookup: ipca},
		{Name: "CDI", Variation: "CDI_VAR", Kind: Accumulated, Lookup: cdi},
	}
	agg := New("TEST", ledger, groups, WithReadWrite(true))

	row, err := agg.Resultado(ctx, february)
	if err != nil {
		t.Fatalf("Resultado() unexpected error: %v", err)
	}
	assertFloat(t, row.Record, "IPCA", 102)
	assertFloat(t, row.Record, "IPCA_VAR", 2)
	assertEmpty(t, row.Record, "CDI")
	assertEmpty(t, row.Record, "CDI_VAR")
	if !errors.Is(row.Errors["CDI"], indices.ErrSourceUnavailable) {
		t.Errorf("Errors[CDI] = %v, want ErrSourceUnavailable", row.Errors["CDI"])
	}
	if _, failed := row.Errors["IPCA"]; failed {
		t.Errorf("Errors[IPCA] = %v, want none", row.Errors["IPCA"])
	}
	if ledger.Writes != 1 {
		t.Errorf("ledger written %d times, want 1", ledger.Writes)
	}

	// Once CDI is back, the row is patched and IPCA is taken from the ledger.
	cdi.err = nil
	cdi.values = map[string]float64{"2024-02-01": 2}
	row, err = agg.Resultado(ctx, february)
	if err != nil {
		t.Fatalf("second Resultado() unexpected error: %v", err)
	}
	assertFloat(t, row.Record, "CDI", 51)
	assertFloat(t, row.Record, "CDI_VAR", 2)
	assertFloat(t, row.Record, "IPCA", 102)
	if row.Err() != nil {
		t.Errorf("Err() = %v, want nil", row.Err())
	}
	if ipca.calls != 1 {
		t.Errorf("IPCA looked up %d times, want 1", ipca.calls)
	}
	if ledger.Writes != 2 {
		t.Errorf("ledger written %d times, want 2", ledger.Writes)
	}

	// Nothing left to patch.
	if _, err := agg.Resultado(ctx, february); err != nil {
		t.Fatalf("third Resultado() unexpected error: %v", err)
	}
	if ledger.Writes != 2 || cdi.calls != 2 {
		t.Errorf("third Resultado() wrote %d times and looked CDI up %d times, want 2 and 2", ledger.Writes, cdi.calls)
	}
}

func TestAggregator_DerivedVariations(t *testing.T) {
	ctx := context.Background()
	ledger := indices.NewMemoryLedger(
		indices.NewRecord(indices.KeyMesBase, "2023-11-01", "INCC", 980.0),
		indices.NewRecord(indices.KeyMesBase, "2023-12-01", "INCC", 1000.0),
	)
	incc := &stub{values: map[string]float64{"2024-01-01": 1010}}
	groups := []Group{{
		Name: "INCC", Variation: "INCC_MES_VAR", Kind: Level, Lookup: incc,
		YearToDate: "INCC_ANO_VAR", TwelveMonths: "INCC_12_MESES_VAR",
	}}

	row, err := New("TEST", ledger, groups).Resultado(ctx, january)
	if err != nil {
		t.Fatalf("Resultado() unexpected error: %v", err)
	}
	assertFloat(t, row.Record, "INCC_MES_VAR", 1)
	assertFloat(t, row.Record, "INCC_ANO_VAR", 1)
	assertEmpty(t, row.Record, "INCC_12_MESES_VAR")
	if len(row.Errors) != 0 {
		t.Errorf("Errors = %v, want none", row.Errors)
	}
	if want := []string{indices.KeyMesBase, "INCC", "INCC_MES_VAR", "INCC_ANO_VAR", "INCC_12_MESES_VAR"}; fmt.Sprint(row.Keys()) != fmt.Sprint(want) {
		t.Errorf("Keys() = %v, want %v", row.Keys(), want)
	}
}

func TestAggregator_AnchorAndGap(t *testing.T) {
	ctx := context.Background()
	anchor := indices.NewRecord(indices.KeyMesBase, "2024-01-01", "SALARIO MINIMO", 1412.0)
	lookup := &stub{}
	agg := New("TEST", indices.NewMemoryLedger(anchor), []Group{{Name: "SALARIO MINIMO", Kind: Plain, Lookup: lookup}})

	row, err := agg.Resultado(ctx, january)
	if err != nil {
		t.Fatalf("Resultado(anchor) unexpected error: %v", err)
	}
	if row.String() != anchor.String() || lookup.calls != 0 {
		t.Errorf("Resultado(anchor) = %v after %d lookups, want %v without lookup", row, lookup.calls, anchor)
	}

	_, err = agg.Resultado(ctx, january.AddMonth(2))
	var gap *indices.GapError
	if !errors.As(err, &gap) || gap.Series != "TEST" {
		t.Errorf("Resultado(+2 months) error = %v, want a *GapError of TEST", err)
	}

	_, err = New("EMPTY", indices.NewMemoryLedger(), nil).Resultado(ctx, january)
	if !errors.Is(err, indices.ErrEmptySeries) {
		t.Errorf("Resultado() on an empty ledger error = %v, want ErrEmptySeries", err)
	}
}

// TestSetoriaisFin runs the default groups over engines and a failing CDI source.
func TestSetoriaisFin(t *testing.T) {
	ctx := context.Background()
	catalog := indices.DefaultCatalog()
	values := map[string]float64{
		"BCB-433":  0.5,
		"CSV-INCC": 1010,
		"BCB-192":  1,
		SourceINPC: 5999.4, SourceIGPDI: 1100, SourceIGPM: 1200,
		SourceSalarioMinimo: 1412, SourcePoupanca: 0.6,
	}
	src := indices.SourceFunc(func(_ context.Context, id string, m indices.Month) (float64, error) {
		if id == indices.SourceCDI {
			return 0, indices.ErrSourceUnavailable
		}
		v, ok := values[id]
		if !ok || m != february {
			return 0, indices.ErrNotYetPublished
		}
		return v, nil
	})

	ipca := indices.NewEngine(catalog["IPCA"], indices.NewMemoryLedger(indices.NewRecord(
		indices.KeyMesBase, "2024-01-01", "IPCA Mês", 100.0, "Variação IPCA", 1.0, "Variação Acum.", 1.0, "Fator Composto", 1.0,
	)), src)
	incc := indices.NewEngine(catalog["INCC"], indices.NewMemoryLedger(indices.NewRecord(
		indices.KeyMesBase, "2024-01-01", "INCC", 1000.0, "INCC MÊS", 0.5,
	)), src)
	ledger := indices.NewMemoryLedger(indices.NewRecord(
		indices.KeyMesBase, "2024-01-01",
		"IPCA", 100.0, "IPCA_VAR", 0.4, "INPC", 5940.0, "INPC_VAR", 0.3,
		"INCC", 1000.0, "INCC_MES_VAR", 0.5, "INCC_ANO_VAR", 0.5, "INCC_12_MESES_VAR", 4.0,
		"CDI", 50.0, "CDI_VAR", 1.0, "IGP DI", 1000.0, "IGP DI_VAR", 0.1, "IGP-M", 1000.0, "IGP-M_VAR", 0.2,
		"SALARIO MINIMO", 1412.0, "POUP_VAR", 0.5,
	))

	row, err := New(indices.CompositeID, ledger, SetoriaisFin(ipca, incc, src, noRetry)).Resultado(ctx, february)
	if err != nil {
		t.Fatalf("Resultado() unexpected error: %v", err)
	}
	assertFloat(t, row.Record, "IPCA", 100.5)
	assertFloat(t, row.Record, "IPCA_VAR", 0.5)
	assertFloat(t, row.Record, "INCC", 1010)
	assertFloat(t, row.Record, "INPC_VAR", 1)
	assertFloat(t, row.Record, "SALARIO MINIMO", 1412)
	assertEmpty(t, row.Record, "CDI")
	assertEmpty(t, row.Record, "CDI_VAR")
	assertEmpty(t, row.Record, "INCC_12_MESES_VAR")
	if len(row.Errors) != 1 || row.Errors["CDI"] == nil {
		t.Errorf("Errors = %v, want only CDI", row.Errors)
	}
}

func TestFromSource_RetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	calls := 0
	src := indices.SourceFunc(func(_ context.Context, id string, m indices.Month) (float64, error) {
		calls++
		if calls == 1 {
			return 0, fmt.Errorf("bcb: %w", indices.ErrSourceUnavailable)
		}
		return 1412, nil
	})
	ledger := indices.NewMemoryLedger(indices.NewRecord(indices.KeyMesBase, "2024-01-01", "SALARIO MINIMO", 1320.0))
	groups := []Group{{Name: "SALARIO MINIMO", Kind: Plain, Lookup: FromSource(src, SourceSalarioMinimo, noRetry)}}

	row, err := New("TEST", ledger, groups).Resultado(ctx, february)
	if err != nil {
		t.Fatalf("Resultado() unexpected error: %v", err)
	}
	assertFloat(t, row.Record, "SALARIO MINIMO", 1412)
	if len(row.Errors) != 0 || calls != 2 {
		t.Errorf("Resultado() errors = %v after %d calls, want none after 2", row.Errors, calls)
	}
}

func TestAggregator_Force(t *testing.T) {
	ctx := context.Background()
	ledger := indices.NewMemoryLedger(
		indices.NewRecord(indices.KeyMesBase, "2024-01-01", "IPCA", 100.0, "IPCA_VAR", 0.5),
		indices.NewRecord(indices.KeyMesBase, "2024-02-01", "IPCA", 101.0, "IPCA_VAR", 1.0),
	)
	ipca := &stub{values: map[string]float64{"2024-02-01": 102}}
	groups := []Group{{Name: "IPCA", Variation: "IPCA_VAR", Kind: Level, Lookup: ipca}}

	row, err := New("TEST", ledger, groups).Resultado(ctx, february)
	if err != nil {
		t.Fatalf("Resultado() unexpected error: %v", err)
	}
	assertFloat(t, row.Record, "IPCA", 101)
	if ipca.calls != 0 {
		t.Errorf("IPCA looked up %d times without force, want 0", ipca.calls)
	}

	row, err = New("TEST", ledger, groups, WithForce(true), WithReadWrite(true)).Resultado(ctx, february)
	if err != nil {
		t.Fatalf("Resultado(force) unexpected error: %v", err)
	}
	assertFloat(t, row.Record, "IPCA", 102)
	assertFloat(t, row.Record, "IPCA_VAR", 2)
	if ipca.calls != 1 || ledger.Writes != 1 {
		t.Errorf("Resultado(force) looked IPCA up %d times and wrote %d times, want 1 and 1", ipca.calls, ledger.Writes)
	}
}
