package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/indices"
	"github.com/etnz/indices/export"
	"github.com/google/subcommands"
)

// sectoralIndices are the ledgers exported with export.Sectoral.
var sectoralIndices = []string{"SINDUSCON MG", "SINDUSCON RJ", "SINDUSCON SP"}

type exportCmd struct {
	dir string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the sectoral and financial indices for the BI" }
func (*exportCmd) Usage() string {
	return `idx export [-o <dir>]

  Writes the Sinduscon ledgers to ` + export.SectoralFile + ` and the sector/financial
  summary to ` + export.FinancialFile + `, one row per month and index.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "o", "", "Output directory (export_dir of the configuration by default)")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := newEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	dir := c.dir
	if dir == "" {
		dir = e.cfg.ExportDir
	}
	if err := exportBI(ctx, e, dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Exported to %s\n", dir)
	return subcommands.ExitSuccess
}

// exportBI writes the BI files in dir.
func exportBI(ctx context.Context, e *env, dir string) error {
	var ledgers [][]*indices.Record
	for _, id := range sectoralIndices {
		records, err := e.records(ctx, id)
		if err != nil {
			return err
		}
		ledgers = append(ledgers, records)
	}
	if err := export.Write(ctx, filepath.Join(dir, export.SectoralFile), export.Sectoral(ledgers...)); err != nil {
		return fmt.Errorf("could not export the sectoral indices: %w", err)
	}

	records, err := e.records(ctx, indices.CompositeID)
	if err != nil {
		return err
	}
	if err := export.Write(ctx, filepath.Join(dir, export.FinancialFile), export.Financial(records)); err != nil {
		return fmt.Errorf("could not export the financial indices: %w", err)
	}
	return nil
}

// records reads the ledger of a series.
func (e *env) records(ctx context.Context, id string) ([]*indices.Record, error) {
	monthKey := indices.KeyMesBase
	if rule, ok := e.catalog[id]; ok {
		monthKey = rule.MonthKey
	}
	l, err := e.ledger(id, monthKey)
	if err != nil {
		return nil, err
	}
	records, err := l.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", id, err)
	}
	return records, nil
}
