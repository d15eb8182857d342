package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/indices/renderer"
	"github.com/google/subcommands"
)

type setoriaisCmd struct {
	monthFlags
	export bool
}

func (*setoriaisCmd) Name() string     { return "setoriais" }
func (*setoriaisCmd) Synopsis() string { return "compute the sectoral indices of a month" }
func (*setoriaisCmd) Usage() string {
	return `idx setoriais [-m <month>] [-rw] [-force] [-export]

  Computes the Sinduscon MG, SP and RJ indices, then the sector/financial summary row,
  and exports them for the BI with -export. Every step runs even when a previous one
  failed, all the errors are reported at the end.
`
}

func (c *setoriaisCmd) SetFlags(f *flag.FlagSet) {
	c.monthFlags.SetFlags(f)
	f.BoolVar(&c.export, "export", false, "Export the ledgers for the BI afterwards")
}

func (c *setoriaisCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	m, err := c.Month()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	e, err := newEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	var errs error
	for _, id := range sectoralIndices {
		eng, err := e.engine(id, c.Options()...)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		rec, err := eng.Resultado(ctx, m)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		fmt.Printf("%s\t%v\n", id, rec)
	}

	a, groups, err := e.aggregator(c.readWrite, c.force)
	if err != nil {
		errs = errors.Join(errs, err)
	} else if row, err := a.Resultado(ctx, m); err != nil {
		errs = errors.Join(errs, err)
	} else {
		printMarkdown(renderer.RenderMonthly(renderer.NewMonthly(m).AddComposite(groups, row)))
		errs = errors.Join(errs, row.Err())
	}

	if c.export {
		errs = errors.Join(errs, exportBI(ctx, e, e.cfg.ExportDir))
	}

	if errs != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", errs)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
