package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type resultadoCmd struct {
	monthFlags
}

func (*resultadoCmd) Name() string     { return "resultado" }
func (*resultadoCmd) Synopsis() string { return "compute indices for a month" }
func (*resultadoCmd) Usage() string {
	return `idx resultado [-m <month>] [-rw] [-force] [<index>...]

  Computes the public fields of the indices for a month, rolling their ledgers forward
  when the month is missing. All indices of the catalog by default.

Usage Examples:
# Last month of the IPCA, without touching the ledger.
$ idx resultado IPCA

# February 2024 of every index, saved in the ledgers.
$ idx resultado -m 2024-02 -rw

`
}

func (c *resultadoCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	ids := f.Args()
	if len(ids) == 0 {
		ids = e.catalog.IDs()
	}
	status := subcommands.ExitSuccess
	for _, id := range ids {
		eng, err := e.engine(id, c.Options()...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			status = subcommands.ExitFailure
			continue
		}
		rec, err := eng.Resultado(ctx, m)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", id, err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Printf("%s\t%v\n", id, rec)
	}
	return status
}
