package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Agent is an interactive session: questions are read from r, answered by the facilitator with
// the help of the experts, and written to w.
type Agent struct {
	w           io.Writer
	r           *bufio.Reader
	queue       []string
	Facilitator *Expert
	Experts     []*Expert
	// Render formats the markdown answers for w. Nil prints them as is.
	Render func(string) string
}

// New returns an Agent reading questions from r and writing answers to w.
func New(w io.Writer, r io.Reader, experts ...*Expert) *Agent {
	return &Agent{
		w:           w,
		r:           bufio.NewReader(r),
		Experts:     experts,
		Facilitator: newFacilitator(experts...),
	}
}

// Start opens the chats, the experts' first.
func (a *Agent) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range append(append([]*Expert{}, a.Experts...), a.Facilitator) {
		if err := e.Start(ctx, client); err != nil {
			return fmt.Errorf("%s: %w", e.Name, err)
		}
	}
	return nil
}

const prompt = "indices> "

// errQuit ends the session.
var errQuit = errors.New("quit")

// Run answers questions until the user quits. The questions are asked first, as if typed in.
func (a *Agent) Run(ctx context.Context, client *genai.Client, questions ...string) error {
	if a.Facilitator.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}
	a.queue = append(a.queue, questions...)

	fmt.Fprintln(a.w, "Assistente de índices. Digite 'sair' para terminar.")
	for {
		q, err := a.question()
		if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		answer, err := a.answer(ctx, q)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.w, answer)
	}
}

// question prompts for the next non blank question, from the queue then from r.
func (a *Agent) question() (string, error) {
	for {
		fmt.Fprint(a.w, prompt)
		var q string
		if len(a.queue) > 0 {
			q, a.queue = strings.TrimSpace(a.queue[0]), a.queue[1:]
			fmt.Fprintln(a.w, q)
		} else {
			line, err := a.r.ReadString('\n')
			if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
				return "", err
			}
			q = strings.TrimSpace(line)
		}
		switch strings.ToLower(q) {
		case "":
			continue
		case "sair", "bye":
			return "", errQuit
		}
		return q, nil
	}
}

func (a *Agent) answer(ctx context.Context, q string) (string, error) {
	content, err := a.Facilitator.Ask(ctx, &genai.Part{Text: q})
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, p := range content.Parts {
		b.WriteString(p.Text)
	}
	if a.Render == nil {
		return b.String(), nil
	}
	return a.Render(b.String()), nil
}
