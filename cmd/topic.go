package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/castorhq/castor/docs"
	"github.com/google/subcommands"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show the manual of the registry and its reports" }
func (*topicCmd) Usage() string {
	return `topic [<name> ...]

  Prints the manual. Without a name, prints the index of topics; '*' prints
  them all. Topics cover the registry format, the portage formula, the
  redistribution rule, the timeline, and the legacy import.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	names := f.Args()
	if len(names) == 0 {
		names = []string{"readme"}
	}

	doc, err := docs.GetTopics(names...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading doc: %v\n", err)
		if topics, lerr := docs.GetAllTopics(); lerr == nil {
			fmt.Fprintf(os.Stderr, "Available topics: %s\n", strings.Join(topics, ", "))
		}
		return subcommands.ExitFailure
	}
	printMarkdown(doc)
	return subcommands.ExitSuccess
}
