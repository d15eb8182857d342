// Package cmd implements the idx command line application that keeps the index ledgers up to
// date.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/etnz/indices"
	"github.com/etnz/indices/bcb"
	"github.com/etnz/indices/composite"
	"github.com/etnz/indices/config"
	"github.com/etnz/indices/manual"
	"github.com/etnz/indices/sqlite"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// Commands returns the subcommands by group.
func Commands() map[string][]subcommands.Command {
	return map[string][]subcommands.Command{
		"indices": {
			&resultadoCmd{},
			&runCmd{},
			&setoriaisCmd{},
			&composeCmd{},
		},
		"reports": {
			&reportCmd{},
			&exportCmd{},
			&assistCmd{},
			&topicCmd{},
		},
		"ledgers": {
			&checkCmd{},
			&backupCmd{},
			&importCmd{},
		},
	}
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for group, cmds := range Commands() {
		for _, cmd := range cmds {
			c.Register(cmd, group)
		}
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "indices.yaml", "Path to the configuration file (YAML). A missing file means the defaults.")

// Verbose enables the debug logs.
var Verbose = flag.Bool("v", false, "Verbose logging")

// env is what the commands work with: the configuration and everything built from it.
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	sources indices.Sources
	catalog indices.Catalog
	store   *sqlite.Store // nil with the json backend
}

// newEnv loads the configuration and opens the ledgers backend.
func newEnv() (*env, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(*Verbose)
	if err != nil {
		return nil, fmt.Errorf("could not create logger: %w", err)
	}

	opts := []bcb.Option{bcb.WithBaseURL(cfg.BCB.BaseURL), bcb.WithLogger(logger)}
	if cfg.BCB.Cache {
		opts = append(opts, bcb.WithDailyCache(cfg.BCB.CacheDir))
	}
	e := &env{
		cfg:    cfg,
		logger: logger,
		sources: indices.Sources{
			bcb.Prefix:    bcb.NewClient(opts...),
			manual.Prefix: manual.Dir(cfg.ManualDir),
		},
		catalog: indices.DefaultCatalog(),
	}
	if cfg.Backend == config.BackendSQLite {
		if e.store, err = sqlite.Open(cfg.SQLitePath, logger); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// newLogger returns a development logger writing to stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

// Close releases the backend.
func (e *env) Close() error {
	_ = e.logger.Sync()
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// ledger returns the ledger of the series id.
func (e *env) ledger(id, monthKey string) (indices.Ledger, error) {
	if e.store != nil {
		return e.store.Ledger(id, monthKey), nil
	}
	path, err := e.cfg.LedgerFile(id)
	if err != nil {
		return nil, err
	}
	return &indices.FileLedger{Path: path}, nil
}

// engine returns the engine of the index id.
func (e *env) engine(id string, opts ...indices.Option) (*indices.Engine, error) {
	rule, err := e.catalog.Rule(id)
	if err != nil {
		return nil, err
	}
	l, err := e.ledger(id, rule.MonthKey)
	if err != nil {
		return nil, err
	}
	opts = append([]indices.Option{indices.WithRetry(e.cfg.RetryPolicy()), indices.WithLogger(e.logger)}, opts...)
	return indices.NewEngine(rule, l, e.sources, opts...), nil
}

// scratchEngine is like engine, over an in-memory copy of the ledger: the months it computes
// are kept for the next calls but never written.
func (e *env) scratchEngine(ctx context.Context, id string, opts ...indices.Option) (*indices.Engine, error) {
	rule, err := e.catalog.Rule(id)
	if err != nil {
		return nil, err
	}
	l, err := e.ledger(id, rule.MonthKey)
	if err != nil {
		return nil, err
	}
	records, err := l.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: cannot read ledger: %w", id, err)
	}
	opts = append([]indices.Option{indices.WithRetry(e.cfg.RetryPolicy()), indices.WithLogger(e.logger)}, opts...)
	opts = append(opts, indices.WithReadWrite(true))
	return indices.NewEngine(rule, indices.NewMemoryLedger(records...), e.sources, opts...), nil
}

// engines returns the engines of the indices ids.
func (e *env) engines(ids []string, opts ...indices.Option) (map[string]*indices.Engine, error) {
	return e.build(ids, func(id string) (*indices.Engine, error) { return e.engine(id, opts...) })
}

// scratchEngines returns the scratch engines of the indices ids.
func (e *env) scratchEngines(ctx context.Context, ids []string, opts ...indices.Option) (map[string]*indices.Engine, error) {
	return e.build(ids, func(id string) (*indices.Engine, error) { return e.scratchEngine(ctx, id, opts...) })
}

func (e *env) build(ids []string, engine func(id string) (*indices.Engine, error)) (map[string]*indices.Engine, error) {
	engines := make(map[string]*indices.Engine, len(ids))
	var errs error
	for _, id := range ids {
		eng, err := engine(id)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		engines[id] = eng
	}
	return engines, errs
}

// aggregator returns the composite aggregator and its groups.
func (e *env) aggregator(readWrite, force bool) (*composite.Aggregator, []composite.Group, error) {
	opts := []indices.Option{indices.WithReadWrite(readWrite), indices.WithForce(force)}
	ipca, err := e.engine("IPCA", opts...)
	if err != nil {
		return nil, nil, err
	}
	incc, err := e.engine("INCC", opts...)
	if err != nil {
		return nil, nil, err
	}
	l, err := e.ledger(indices.CompositeID, indices.KeyMesBase)
	if err != nil {
		return nil, nil, err
	}
	groups := composite.SetoriaisFin(ipca, incc, e.sources, e.cfg.RetryPolicy())
	a := composite.New(indices.CompositeID, l, groups,
		composite.WithReadWrite(readWrite), composite.WithForce(force), composite.WithLogger(e.logger))
	return a, groups, nil
}

// monthFlags are the flags of the commands computing a month.
type monthFlags struct {
	month     string
	readWrite bool
	force     bool
}

func (m *monthFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&m.month, "m", "-1m", "Month to compute (2024-02, 02/2024, or relative like -1m)")
	f.BoolVar(&m.readWrite, "rw", false, "Persist the computed months in the ledgers")
	f.BoolVar(&m.force, "force", false, "Fetch the raw values again, even when they are cached in the ledger")
}

// Month returns the parsed month.
func (m *monthFlags) Month() (indices.Month, error) {
	return indices.ParseMonth(m.month)
}

// Options returns the engine options.
func (m *monthFlags) Options() []indices.Option {
	return []indices.Option{indices.WithReadWrite(m.readWrite), indices.WithForce(m.force)}
}
