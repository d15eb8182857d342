package cmd

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// renderMarkdown formats md for the terminal. md is returned as is if it cannot be rendered.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// printMarkdown prints md to the standard output.
func printMarkdown(md string) {
	fmt.Print(renderMarkdown(md))
}
