// Package composite builds the monthly summary row that merges several independent indices.
//
// Unlike an indices.Engine, an Aggregator never fails because one of its indices is
// unavailable: each group of fields is acquired on its own, and a failing group is stored as
// empty values while the others are filled in.
package composite

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/etnz/indices"
	"go.uber.org/zap"
)

// Lookup returns the raw figure of a group for a month.
type Lookup interface {
	Lookup(ctx context.Context, m indices.Month) (float64, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, m indices.Month) (float64, error)

// Lookup implements Lookup.
func (f LookupFunc) Lookup(ctx context.Context, m indices.Month) (float64, error) { return f(ctx, m) }

// FromEngine looks up a field of the record computed by e.
func FromEngine(e *indices.Engine, field string) Lookup {
	return LookupFunc(func(ctx context.Context, m indices.Month) (float64, error) {
		rec, err := e.Record(ctx, m)
		if err != nil {
			return 0, err
		}
		v, ok := rec.Float(field)
		if !ok {
			return 0, fmt.Errorf("%s: %v: no numeric field %q", e.Rule().ID, m, field)
		}
		return v, nil
	})
}

// FromSource looks up the series id in src, retrying transient failures with r.
func FromSource(src indices.Source, id string, r indices.Retry) Lookup {
	return LookupFunc(func(ctx context.Context, m indices.Month) (float64, error) {
		return r.Fetch(ctx, src, id, m)
	})
}

// Kind tells how the fields of a Group are derived from its lookup.
type Kind int

const (
	// Level groups look up the value; the variation is computed against the previous row.
	Level Kind = iota
	// Accumulated groups look up the variation, in percent; the value compounds the previous row.
	Accumulated
	// Plain groups look up the value and have no variation.
	Plain
)

// Group is a set of fields of the row acquired together.
type Group struct {
	Name      string // field of the value
	Variation string // field of the month-over-month variation, in percent
	Kind      Kind
	Lookup    Lookup

	// Optional variations of the value, against the previous December and against the same
	// month of the previous year.
	YearToDate   string
	TwelveMonths string
}

// Fields returns the field names of the group, in order.
func (g Group) Fields() []string {
	fields := []string{g.Name}
	for _, f := range []string{g.Variation, g.YearToDate, g.TwelveMonths} {
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// Row is a composite record and the errors of the groups that could not be acquired.
type Row struct {
	*indices.Record
	Errors map[string]error // by group name
}

// Err returns the errors of the row, joined in group name order, or nil.
func (r *Row) Err() error {
	names := make([]string, 0, len(r.Errors))
	for name := range r.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	var errs error
	for _, name := range names {
		errs = errors.Join(errs, fmt.Errorf("%s: %w", name, r.Errors[name]))
	}
	return errs
}

// Aggregator maintains a ledger of composite rows.
type Aggregator struct {
	id        string
	ledger    indices.Ledger
	groups    []Group
	readWrite bool
	force     bool
	logger    *zap.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithReadWrite enables persistence of new and patched rows.
func WithReadWrite(rw bool) Option { return func(a *Aggregator) { a.readWrite = rw } }

// WithForce makes the aggregator look every group up again, even when the row already has its
// values.
func WithForce(force bool) Option { return func(a *Aggregator) { a.force = force } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New returns an Aggregator over ledger, keyed by indices.KeyMesBase.
func New(id string, ledger indices.Ledger, groups []Group, opts ...Option) *Aggregator {
	a := &Aggregator{id: id, ledger: ledger, groups: groups, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(zap.String("index", id))
	return a
}

// ID returns the id of the composite series.
func (a *Aggregator) ID() string { return a.id }

// Load reads and validates the ledger.
func (a *Aggregator) Load(ctx context.Context) (*indices.Series, error) {
	records, err := a.ledger.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: cannot read ledger: %w", a.id, err)
	}
	s, err := indices.NewSeries(indices.KeyMesBase, records)
	return s, a.wrap(err)
}

func (a *Aggregator) wrap(err error) error {
	if err == nil {
		return nil
	}
	var gap *indices.GapError
	if errors.As(err, &gap) {
		gap.Series = a.id
		return gap
	}
	return fmt.Errorf("%s: %w", a.id, err)
}

// Resultado returns the composite row of month m.
//
// The anchor row is returned as is. Other rows are rebuilt group by group: a group whose value
// is already in the ledger is kept, the others are looked up. Failing groups are left empty and
// reported in Row.Errors. Only ledger errors and contiguity violations are returned as errors.
func (a *Aggregator) Resultado(ctx context.Context, m indices.Month) (*Row, error) {
	s, err := a.Load(ctx)
	if err != nil {
		return nil, err
	}
	pos, exists, err := s.Locate(m)
	if err != nil {
		return nil, a.wrap(err)
	}
	if exists && pos == 0 {
		return &Row{Record: s.At(0).Clone(), Errors: map[string]error{}}, nil
	}

	var current *indices.Record
	if exists {
		current = s.At(pos)
	}
	b := builder{series: s, month: m, previous: s.At(pos - 1), current: current, force: a.force}

	fields := new(indices.Record)
	errs := make(map[string]error)
	for _, g := range a.groups {
		values, err := b.group(ctx, g)
		if err != nil {
			errs[g.Name] = err
			a.logger.Warn("group failed", zap.String("group", g.Name), zap.Stringer("month", m), zap.Error(err))
			values = make([]indices.Value, len(g.Fields()))
		}
		for i, f := range g.Fields() {
			fields.Set(f, values[i])
		}
	}

	var changed []string
	if exists {
		changed = current.Merge(fields)
		if len(changed) > 0 {
			a.logger.Info("patched row", zap.Stringer("month", m), zap.Strings("fields", changed))
		}
	} else {
		if err := s.Append(m, fields); err != nil {
			return nil, a.wrap(err)
		}
		current = s.At(pos)
		a.logger.Info("appended row", zap.Stringer("month", m))
	}

	if a.readWrite && (!exists || len(changed) > 0) {
		if err := a.ledger.WriteAll(ctx, s.Records()); err != nil {
			return nil, fmt.Errorf("%s: cannot write ledger: %w", a.id, err)
		}
	}
	return &Row{Record: current.Clone(), Errors: errs}, nil
}

// builder computes the groups of one row.
type builder struct {
	series   *indices.Series
	month    indices.Month
	previous *indices.Record
	current  *indices.Record // nil for a new row
	force    bool
}

// cached returns a numeric field of the current row.
func (b builder) cached(field string) (float64, bool) {
	if b.current == nil || b.force || field == "" {
		return 0, false
	}
	return b.current.Float(field)
}

// group returns the values of g.Fields().
func (b builder) group(ctx context.Context, g Group) ([]indices.Value, error) {
	switch g.Kind {
	case Plain:
		v, ok := b.cached(g.Name)
		if !ok {
			var err error
			if v, err = g.Lookup.Lookup(ctx, b.month); err != nil {
				return nil, err
			}
		}
		return []indices.Value{indices.Number(v)}, nil

	case Accumulated:
		variation, okVar := b.cached(g.Variation)
		value, okValue := b.cached(g.Name)
		if !okVar || !okValue {
			var err error
			if variation, err = g.Lookup.Lookup(ctx, b.month); err != nil {
				return nil, err
			}
			prev, ok := b.previous.Float(g.Name)
			if !ok {
				return nil, fmt.Errorf("previous row has no %q", g.Name)
			}
			value = prev * (1 + variation/100)
		}
		return append([]indices.Value{indices.Number(value), indices.Number(variation)}, b.derived(g, value)...), nil

	default:
		value, okValue := b.cached(g.Name)
		variation, okVar := b.cached(g.Variation)
		if !okValue {
			var err error
			if value, err = g.Lookup.Lookup(ctx, b.month); err != nil {
				return nil, err
			}
			okVar = false
		}
		values := []indices.Value{indices.Number(value)}
		if g.Variation != "" {
			if !okVar {
				prev, ok := b.previous.Float(g.Name)
				if !ok || prev == 0 {
					return nil, fmt.Errorf("previous row has no %q to compute the variation", g.Name)
				}
				variation = (value/prev - 1) * 100
			}
			values = append(values, indices.Number(variation))
		}
		return append(values, b.derived(g, value)...), nil
	}
}

// derived returns the optional variations of g, empty when their reference row is missing.
func (b builder) derived(g Group, value float64) []indices.Value {
	var values []indices.Value
	for _, d := range []struct {
		field string
		ref   indices.Month
	}{
		{g.YearToDate, b.month.PreviousDecember()},
		{g.TwelveMonths, b.month.AddMonth(-12)},
	} {
		if d.field == "" {
			continue
		}
		if v, ok := b.cached(d.field); ok {
			values = append(values, indices.Number(v))
			continue
		}
		values = append(values, variation(b.series.Get(d.ref), g.Name, value))
	}
	return values
}

// variation returns the variation of value against the field of ref, in percent.
func variation(ref *indices.Record, field string, value float64) indices.Value {
	if ref == nil {
		return indices.Empty
	}
	base, ok := ref.Float(field)
	if !ok || base == 0 {
		return indices.Empty
	}
	return indices.Number((value/base - 1) * 100)
}
