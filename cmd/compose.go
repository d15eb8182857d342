package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type composeCmd struct {
	monthFlags
}

func (*composeCmd) Name() string     { return "compose" }
func (*composeCmd) Synopsis() string { return "compute the sector/financial summary row" }
func (*composeCmd) Usage() string {
	return `idx compose [-m <month>] [-rw] [-force]

  Computes the sector/financial summary row of a month. The figures already in the ledger
  are kept, the missing ones are looked up again. A figure that cannot be looked up is left
  empty and reported. With -force every figure is looked up again.
`
}

func (c *composeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	a, _, err := e.aggregator(c.readWrite, c.force)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	row, err := a.Resultado(ctx, m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(row.Record)
	if err := row.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
