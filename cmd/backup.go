package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/etnz/indices"
	"github.com/google/subcommands"
)

type backupCmd struct{}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "copy every ledger into a directory" }
func (*backupCmd) Usage() string {
	return `idx backup <dir>

  Writes every ledger as a JSON file in dir, with its usual file name. It works with both
  the json and the sqlite backends.
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {}

func (c *backupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected the destination directory\n")
		return subcommands.ExitUsageError
	}
	dir := f.Arg(0)
	e, err := newEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	ids := make([]string, 0, len(indices.DefaultFiles))
	for id := range indices.DefaultFiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs error
	for _, id := range ids {
		records, err := e.records(ctx, id)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		dst := &indices.FileLedger{Path: filepath.Join(dir, filepath.Base(indices.DefaultFiles[id]))}
		if err := dst.WriteAll(ctx, records); err != nil {
			errs = errors.Join(errs, fmt.Errorf("could not back up %s: %w", id, err))
			continue
		}
		fmt.Fprintf(os.Stderr, "%s: %d records\n", dst, len(records))
	}
	if errs != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", errs)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
