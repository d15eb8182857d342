package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/indices/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct{}

func (*assistCmd) Name() string { return "assist" }
func (*assistCmd) Synopsis() string {
	return "start an interactive session with the AI assistant"
}
func (*assistCmd) Usage() string {
	return `idx assist [<question>]

  Starts an interactive session with an assistant that can read the indices. It needs a
  Gemini API key in GEMINI_API_KEY. The ledgers are never modified.
`
}

func (*assistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	initialPrompt := strings.Join(f.Args(), " ")

	e, err := newEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	engines, err := e.engines(e.catalog.IDs())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	cc := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if e.cfg.GeminiAPIKey != "" {
		cc.APIKey = e.cfg.GeminiAPIKey
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	a := agent.New(os.Stdout, os.Stdin, agent.NewAnalyst(e.catalog, engines, e.logger))
	a.Render = renderMarkdown
	if err := a.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
