package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/castorhq/castor/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// assistCmd starts the conversational assistant on top of the registry.
type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "talk to the co-purchase assistant" }
func (*assistCmd) Usage() string {
	return `assist [first question]:
  Start an interactive session with the assistant. It can explain portage and
  redistribution, and read the registry to answer questions about the project.
`
}
func (*assistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	a := agent.New(os.Stdout, os.Stdin,
		agent.NewAdvisor(),
		agent.NewBookkeeper(*registryFile),
	)

	// Anything after the command name starts the conversation.
	if err := a.Run(ctx, client, strings.Join(f.Args(), " ")); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
