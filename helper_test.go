package indices

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"
)

// fakeSource serves values by "id@month", and counts its calls.
// Errors in errs are returned first, one per call.
type fakeSource struct {
	values map[string]float64
	errs   []error
	calls  int
}

func (f *fakeSource) Fetch(_ context.Context, id string, m Month) (float64, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return 0, err
		}
	}
	v, ok := f.values[fmt.Sprintf("%s@%v", id, m)]
	if !ok {
		return 0, ErrNotYetPublished
	}
	return v, nil
}

func noSleep(time.Duration) {}

// testEngine returns an engine without delays between attempts.
func testEngine(rule Rule, ledger Ledger, src Source, opts ...Option) *Engine {
	return NewEngine(rule, ledger, src, append([]Option{withSleep(noSleep)}, opts...)...)
}

// valueRule is a simple accumulation over the "TEST-1" series.
func valueRule() Rule {
	return Accumulation{
		ID: "TEST", MonthKey: KeyData, Source: "TEST-1",
		Rate: "rate", Value: "value", ValuePlaces: 6,
		Projection: []string{KeyData, "value"},
	}.Rule()
}

func assertFloat(t *testing.T, r *Record, key string, want float64) {
	t.Helper()
	got, ok := r.Float(key)
	if !ok {
		t.Errorf("record %v has no numeric %q", r, key)
		return
	}
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", key, got, want)
	}
}
