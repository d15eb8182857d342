// Command idx keeps the ledgers of the Brazilian economic indices up to date.
//
// Shell completion is installed with:
//
//	COMP_INSTALL=1 idx
package main

import (
	"context"
	"flag"
	"os"
	"path"
	"strings"

	"github.com/etnz/indices"
	"github.com/etnz/indices/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	name := path.Base(os.Args[0])
	completion(name).Complete(name)

	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the command line of idx for the shell completion.
func completion(name string) *complete.Command {
	ids := indices.DefaultCatalog().IDs()
	c := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flags(flag.CommandLine),
	}
	for _, group := range cmd.Commands() {
		for _, sub := range group {
			fs := flag.NewFlagSet(sub.Name(), flag.ContinueOnError)
			sub.SetFlags(fs)
			sc := &complete.Command{Flags: flags(fs)}
			switch sub.Name() {
			case "resultado", "check", "import":
				sc.Args = predict.Set(append(ids, indices.CompositeID))
			case "backup":
				sc.Args = predict.Dirs("*")
			}
			c.Sub[sub.Name()] = sc
		}
	}
	return c
}

// flags predicts the values of the flags of fs.
func flags(fs *flag.FlagSet) map[string]complete.Predictor {
	m := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		switch {
		case isBool(f):
			m[f.Name] = predict.Nothing
		case f.Name == "config":
			m[f.Name] = predict.Files("*.yaml")
		case f.Name == "o" && strings.Contains(f.Usage, "directory"):
			m[f.Name] = predict.Dirs("*")
		case f.Name == "o":
			m[f.Name] = predict.Files("*.md")
		default:
			m[f.Name] = predict.Something
		}
	})
	return m
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
