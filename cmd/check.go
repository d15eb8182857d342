package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/indices"
	"github.com/google/subcommands"
)

type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "validate the ledgers" }
func (*checkCmd) Usage() string {
	return `idx check [<index>...]

  Loads the ledgers and checks that their months are ordered and contiguous. All ledgers,
  the sector/financial summary included, by default.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {}

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := newEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	ids := f.Args()
	if len(ids) == 0 {
		ids = append(e.catalog.IDs(), indices.CompositeID)
	}
	status := subcommands.ExitSuccess
	for _, id := range ids {
		s, err := e.load(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			status = subcommands.ExitFailure
			continue
		}
		if s.Len() == 0 {
			fmt.Printf("%-16s empty\n", id)
			continue
		}
		fmt.Printf("%-16s %v .. %v (%d months)\n", id, s.First(), s.Last(), s.Len())
	}
	return status
}

// load loads and validates the series id.
func (e *env) load(ctx context.Context, id string) (*indices.Series, error) {
	if id == indices.CompositeID {
		a, _, err := e.aggregator(false, false)
		if err != nil {
			return nil, err
		}
		return a.Load(ctx)
	}
	eng, err := e.engine(id)
	if err != nil {
		return nil, err
	}
	return eng.Load(ctx)
}
