// Package agent implements the `cct assist` conversational assistant: a
// facilitator chat that consults domain experts through function calls.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

const prompt = "assist> "

// Agent runs the chat session: it owns the facilitator, the experts the
// facilitator can consult, and the console the user types into.
type Agent struct {
	out         io.Writer
	in          *bufio.Scanner
	facilitator *Expert
	experts     []*Expert
}

// New creates an agent around the given experts, reading the user from r
// and writing to w.
func New(w io.Writer, r io.Reader, experts ...*Expert) *Agent {
	return &Agent{
		out:         w,
		in:          bufio.NewScanner(r),
		experts:     experts,
		facilitator: newFacilitator(experts...),
	}
}

// start opens one chat per expert, the facilitator last so its tool
// declarations see the full roster.
func (a *Agent) start(ctx context.Context, client *genai.Client) error {
	for _, e := range a.experts {
		if err := e.Start(ctx, client); err != nil {
			return fmt.Errorf("cannot start expert %s: %w", e.Name, err)
		}
	}
	return a.facilitator.Start(ctx, client)
}

// Run is the interactive loop. The given prompts are played first as if the
// user had typed them, then the console takes over. Typing "bye" or closing
// stdin ends the session.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if err := a.start(ctx, client); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Welcome to castor assist. Type 'bye' to exit.")

	for {
		fmt.Fprint(a.out, prompt)

		var input string
		switch {
		case len(prompts) > 0:
			input, prompts = prompts[0], prompts[1:]
			fmt.Fprintln(a.out, input)
		case a.in.Scan():
			input = a.in.Text()
		default:
			return a.in.Err() // nil on EOF, the clean Ctrl+D exit
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "bye" {
			return nil
		}

		content, err := a.facilitator.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, content.Parts[0].Text)
	}
}
