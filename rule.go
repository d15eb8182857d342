package indices

import (
	"fmt"
	"time"
)

// Context is what a Rule computes a month from. It is never persisted.
type Context struct {
	Month    Month
	Previous *Record           // record of the month before, must not be modified
	Raw      map[string]float64 // raw values, by Input.Field
	New      bool               // the month is being appended
}

// Prev returns a numeric field of the previous record.
func (c Context) Prev(key string) (float64, error) {
	if c.Previous == nil {
		return 0, fmt.Errorf("%v: no previous record", c.Month)
	}
	f, ok := c.Previous.Float(key)
	if !ok {
		return 0, fmt.Errorf("%v: previous record has no numeric %q", c.Month, key)
	}
	return f, nil
}

// PrevOr returns a numeric field of the previous record, or def when it is missing.
func (c Context) PrevOr(key string, def float64) float64 {
	if f, err := c.Prev(key); err == nil {
		return f
	}
	return def
}

// Input is a raw value a Rule needs.
type Input struct {
	// Field is the record field where the raw value is cached.
	Field string
	// Source is the id of the series in a Source, e.g. "BCB-433".
	Source string
	// Decode converts the cached field back to the raw value. Nil means the field holds it as is.
	Decode func(float64) float64
}

// cached returns the raw value cached in r.
func (in Input) cached(r *Record) (float64, bool) {
	if r == nil {
		return 0, false
	}
	v, ok := r.Get(in.Field)
	if !ok || v.IsEmpty() {
		return 0, false
	}
	f, ok := v.Float()
	if !ok {
		return 0, false
	}
	if in.Decode != nil {
		f = in.Decode(f)
	}
	return f, true
}

// Rule is the calculation of one index variant.
//
// Calculate must be a pure function of its Context: same context, same fields. It returns the
// fields of the month, without the month field itself.
type Rule struct {
	ID         string
	MonthKey   string   // name of the month field: "Mês", "Mês Base" or "Data"
	Inputs     []Input  // raw values fetched before Calculate
	Calculate  func(Context) (*Record, error)
	Projection []string // public fields of a record, month field included

	// PublishDay is the day of the following month from which the provider has published the
	// month's value. Zero means no publication delay.
	PublishDay int
}

// Project returns the public fields of r.
func (r Rule) Project(rec *Record) *Record {
	if len(r.Projection) == 0 {
		return rec.Clone()
	}
	return rec.Project(r.Projection...)
}

// Published reports whether the value of m can be published on now.
func (r Rule) Published(m Month, now time.Time) bool {
	if r.PublishDay <= 0 {
		return true
	}
	next := m.Next()
	release := time.Date(next.Year(), next.Month(), r.PublishDay, 0, 0, 0, 0, time.UTC)
	return !now.UTC().Before(release)
}
