package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/castorhq/castor"
	"github.com/castorhq/castor/renderer"
	"github.com/google/subcommands"
)

type timelineCmd struct {
	from string
	to   string
}

func (*timelineCmd) Name() string { return "timeline" }
func (*timelineCmd) Synopsis() string {
	return "display the chronological timeline of contributions and purchases"
}
func (*timelineCmd) Usage() string {
	return `cct timeline [-from <date>] [-to <date>]

  Replays the whole registry and displays every contribution and purchase in
  date order, the reserve balance after each event, and the final position of
  every participant. The optional range restricts the view to the events it
  contains, positions stay cumulative since the beginning.
`
}

func (c *timelineCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Only show events from this date on (YYYY-MM-DD)")
	f.StringVar(&c.to, "to", "", "Only show events up to this date (YYYY-MM-DD)")
}

func (c *timelineCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	eng, err := DecodeEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	entries := eng.ExportLedger()
	if (c.from != "" || c.to != "") && len(entries) > 0 {
		from := entries[0].Snapshot.When()
		to := entries[len(entries)-1].Snapshot.When()
		if c.from != "" {
			if from, err = castor.ParseDate(c.from); err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
				return subcommands.ExitUsageError
			}
		}
		if c.to != "" {
			if to, err = castor.ParseDate(c.to); err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
				return subcommands.ExitUsageError
			}
		}
		r := castor.NewRange(from, to)
		entries = slices.DeleteFunc(entries, func(le castor.LedgerEntry) bool {
			return !r.Contains(le.Snapshot.When())
		})
	}

	printMarkdown(renderer.TimelineMarkdown(entries))
	return subcommands.ExitSuccess
}
