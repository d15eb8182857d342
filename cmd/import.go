package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/indices"
	"github.com/etnz/indices/config"
	"github.com/etnz/indices/sqlite"
	"github.com/google/subcommands"
)

type importCmd struct{}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import the JSON ledgers into the sqlite database" }
func (*importCmd) Usage() string {
	return `idx import [<index>...]

  Copies the JSON ledgers of ledger_dir into the sqlite database at sqlite_path, replacing
  the series of the same name. Every ledger is validated first. All ledgers by default.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	logger, err := newLogger(*Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	store, err := sqlite.Open(cfg.SQLitePath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	catalog := indices.DefaultCatalog()
	ids := f.Args()
	if len(ids) == 0 {
		ids = append(catalog.IDs(), indices.CompositeID)
	}
	var errs error
	for _, id := range ids {
		path, err := cfg.LedgerFile(id)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		monthKey := indices.KeyMesBase
		if rule, ok := catalog[id]; ok {
			monthKey = rule.MonthKey
		}
		n, err := store.Ledger(id, monthKey).Import(ctx, &indices.FileLedger{Path: path})
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "%s: %d records imported from %s\n", id, n, path)
	}
	if errs != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", errs)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
