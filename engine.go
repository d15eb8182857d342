package indices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Retry is the policy applied to ErrSourceUnavailable: a fixed number of attempts separated by
// a fixed delay.
type Retry struct {
	Attempts int
	Delay    time.Duration
	// Sleep waits between attempts. Nil means time.Sleep.
	Sleep func(time.Duration)
}

// Fetch calls src, again while it reports ErrSourceUnavailable. Any other error is returned at
// once; an exhausted budget is ErrTimeout.
func (r Retry) Fetch(ctx context.Context, src Source, id string, m Month) (float64, error) {
	attempts := max(r.Attempts, 1)
	sleep := r.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	var last error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			sleep(r.Delay)
		}
		v, err := src.Fetch(ctx, id, m)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrSourceUnavailable) {
			return 0, err
		}
		last = err
	}
	return 0, fmt.Errorf("%w: %s unavailable after %d attempts: %v", ErrTimeout, id, attempts, last)
}

// DefaultRetry is the retry policy of an Engine.
var DefaultRetry = Retry{Attempts: 5, Delay: time.Second}

// Engine rolls the series of one index forward.
//
// An Engine is not safe for concurrent use, and two engines must not share a ledger.
type Engine struct {
	rule      Rule
	ledger    Ledger
	source    Source
	readWrite bool
	force     bool
	retry     Retry
	now       func() time.Time
	sleep     func(time.Duration)
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithReadWrite enables persistence of new and changed records. Engines are read-only by default.
func WithReadWrite(rw bool) Option { return func(e *Engine) { e.readWrite = rw } }

// WithForce makes the engine fetch raw values even when they are cached in the ledger.
func WithForce(force bool) Option { return func(e *Engine) { e.force = force } }

// WithRetry sets the retry policy.
func WithRetry(r Retry) Option { return func(e *Engine) { e.retry = r } }

// WithClock sets the clock used to decide whether a month is published.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// withSleep replaces time.Sleep between attempts.
func withSleep(sleep func(time.Duration)) Option { return func(e *Engine) { e.sleep = sleep } }

// NewEngine returns an Engine computing rule over the records of ledger, with raw values from
// source.
func NewEngine(rule Rule, ledger Ledger, source Source, opts ...Option) *Engine {
	e := &Engine{
		rule:   rule,
		ledger: ledger,
		source: source,
		retry:  DefaultRetry,
		now:    time.Now,
		sleep:  time.Sleep,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(zap.String("index", rule.ID))
	return e
}

// Rule returns the rule of the engine.
func (e *Engine) Rule() Rule { return e.rule }

// Load reads the ledger and validates it as a Series.
func (e *Engine) Load(ctx context.Context) (*Series, error) {
	records, err := e.ledger.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: cannot read ledger: %w", e.rule.ID, err)
	}
	s, err := NewSeries(e.rule.MonthKey, records)
	if err != nil {
		var gap *GapError
		if errors.As(err, &gap) {
			gap.Series = e.rule.ID
			return nil, gap
		}
		return nil, fmt.Errorf("%s: %w", e.rule.ID, err)
	}
	return s, nil
}

// Resultado returns the public fields of the index for month m.
//
// The anchor record is returned as is. Any other month that is already in the ledger is
// recomputed from the month before, and a month right after the last one is computed and
// appended. Other months fail with a *GapError. In read-write mode the ledger is rewritten when
// a record was added or changed.
func (e *Engine) Resultado(ctx context.Context, m Month) (*Record, error) {
	rec, err := e.Record(ctx, m)
	if err != nil {
		return nil, err
	}
	return e.rule.Project(rec), nil
}

// Record is like Resultado but returns every field of the record.
func (e *Engine) Record(ctx context.Context, m Month) (*Record, error) {
	s, err := e.Load(ctx)
	if err != nil {
		return nil, err
	}
	pos, exists, err := s.Locate(m)
	if err != nil {
		var gap *GapError
		if errors.As(err, &gap) {
			gap.Series = e.rule.ID
			return nil, gap
		}
		return nil, fmt.Errorf("%s: %w", e.rule.ID, err)
	}
	if exists && pos == 0 {
		return s.At(0).Clone(), nil
	}

	var current *Record
	if exists {
		current = s.At(pos)
	}
	raw, err := e.raw(ctx, m, current)
	if err != nil {
		return nil, err
	}

	fields, err := e.rule.Calculate(Context{
		Month:    m,
		Previous: s.At(pos - 1),
		Raw:      raw,
		New:      !exists,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", e.rule.ID, m, err)
	}

	var changed []string
	if exists {
		changed = current.Merge(fields)
		if len(changed) > 0 {
			e.logger.Info("updated record", zap.Stringer("month", m), zap.Strings("fields", changed))
		}
	} else {
		if err := s.Append(m, fields); err != nil {
			return nil, err
		}
		current = s.At(pos)
		e.logger.Info("appended record", zap.Stringer("month", m))
	}

	if e.readWrite && (!exists || len(changed) > 0) {
		if err := e.ledger.WriteAll(ctx, s.Records()); err != nil {
			return nil, fmt.Errorf("%s: cannot write ledger: %w", e.rule.ID, err)
		}
	}
	return current.Clone(), nil
}

// raw returns the raw values of month m, from the cache in current when possible.
func (e *Engine) raw(ctx context.Context, m Month, current *Record) (map[string]float64, error) {
	raw := make(map[string]float64, len(e.rule.Inputs))
	for _, in := range e.rule.Inputs {
		if !e.force {
			if v, ok := in.cached(current); ok {
				raw[in.Field] = v
				continue
			}
		}
		if !e.rule.Published(m, e.now()) {
			return nil, fmt.Errorf("%s: %v: %w", e.rule.ID, m, ErrNotYetPublished)
		}
		v, err := e.fetch(ctx, in.Source, m)
		if err != nil {
			return nil, fmt.Errorf("%s: %v: %w", e.rule.ID, m, err)
		}
		raw[in.Field] = v
	}
	return raw, nil
}

// fetch calls the source, retrying while it is unavailable.
func (e *Engine) fetch(ctx context.Context, id string, m Month) (float64, error) {
	r := e.retry
	if r.Sleep == nil {
		r.Sleep = e.sleep
	}
	attempt := 0
	logged := SourceFunc(func(ctx context.Context, id string, m Month) (float64, error) {
		attempt++
		v, err := e.source.Fetch(ctx, id, m)
		if errors.Is(err, ErrSourceUnavailable) {
			e.logger.Debug("source unavailable", zap.String("source", id), zap.Int("attempt", attempt), zap.Error(err))
		}
		return v, err
	})
	return r.Fetch(ctx, logged, id, m)
}

// Index binds an Engine to a month.
type Index struct {
	Engine *Engine
	Month  Month
}

// Resultado returns the public fields of the index for its month.
func (i Index) Resultado(ctx context.Context) (*Record, error) {
	return i.Engine.Resultado(ctx, i.Month)
}
