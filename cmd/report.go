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

type reportCmd struct {
	month   string
	advance int
	output  string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display the monthly report of the indices" }
func (*reportCmd) Usage() string {
	return `idx report [-m <month>] [-advance <n>] [-o <file>]

  Displays the financial figures and the sector/financial summary of a month. The ledgers
  are never modified.

Usage Examples:
# Last month, in the terminal.
$ idx report

# February 2024, as a markdown file.
$ idx report -m 02/2024 -o fev.md

`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "-1m", "Month of the report")
	f.IntVar(&c.advance, "advance", 0, "Number of following months of fixed-rate figures to add")
	f.StringVar(&c.output, "o", "", "Write the markdown to this file instead of the terminal")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	m, err := indices.ParseMonth(c.month)
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

	engines, err := e.scratchEngines(ctx, itemIndices(indices.FinancialItems))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	report := renderer.NewMonthly(m).AddFinancial(indices.Collect(ctx, engines, indices.FinancialItems, m))
	for i := 1; i <= c.advance; i++ {
		report.AddAdvance(indices.Collect(ctx, engines, indices.AdvanceItems, m.AddMonth(i)))
	}

	a, groups, err := e.aggregator(false, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	row, err := a.Resultado(ctx, m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	report.AddComposite(groups, row)

	md := renderer.RenderMonthly(report)
	if c.output == "" {
		printMarkdown(md)
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.output, []byte(md), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not write report: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
