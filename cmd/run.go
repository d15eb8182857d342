package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/indices"
	"github.com/etnz/indices/renderer"
	"github.com/google/subcommands"
)

type runCmd struct {
	monthFlags
	advance int
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "collect the figures of the financial contracts" }
func (*runCmd) Usage() string {
	return `idx run [-m <month>] [-rw] [-force] [-advance <n>]

  Collects the monthly figures of the financial contracts (IGPM, IPCA, CDI, INCC, savings
  and fixed interest rates). A figure that cannot be computed is reported and does not
  prevent the others.

  With -advance, the fixed-rate figures of the n following months are collected too.
  Without -rw they are computed in memory, on top of the month before.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	c.monthFlags.SetFlags(f)
	f.IntVar(&c.advance, "advance", 0, "Number of following months of fixed-rate figures to collect")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	m, err := c.Month()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.advance < 0 {
		fmt.Fprintf(os.Stderr, "Error: -advance must not be negative\n")
		return subcommands.ExitUsageError
	}
	e, err := newEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	report, failed, err := c.collect(ctx, e, m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderMonthly(report))
	if failed {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// collect computes the figures of month m and of the advance months. Without -rw the engines
// work on scratch copies of the ledgers, so that every advance month follows the one before.
func (c *runCmd) collect(ctx context.Context, e *env, m indices.Month) (*renderer.Monthly, bool, error) {
	ids := itemIndices(indices.FinancialItems)
	var engines map[string]*indices.Engine
	var err error
	if c.readWrite {
		engines, err = e.engines(ids, c.Options()...)
	} else {
		engines, err = e.scratchEngines(ctx, ids, c.Options()...)
	}
	if err != nil {
		return nil, false, err
	}

	collected := indices.Collect(ctx, engines, indices.FinancialItems, m)
	report := renderer.NewMonthly(m).AddFinancial(collected)
	failed := len(collected.Errors) > 0
	for i := 1; i <= c.advance; i++ {
		collected := indices.Collect(ctx, engines, indices.AdvanceItems, m.AddMonth(i))
		report.AddAdvance(collected)
		failed = failed || len(collected.Errors) > 0
	}
	return report, failed, nil
}

// itemIndices returns the distinct indices of items, in order.
func itemIndices(items []indices.Item) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, it := range items {
		if !seen[it.Index] {
			seen[it.Index] = true
			ids = append(ids, it.Index)
		}
	}
	return ids
}
