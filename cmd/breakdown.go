package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/castorhq/castor"
	"github.com/castorhq/castor/renderer"
	"github.com/google/subcommands"
)

type breakdownCmd struct {
	name string
}

func (*breakdownCmd) Name() string { return "breakdown" }
func (*breakdownCmd) Synopsis() string {
	return "display how the proceeds of a participant's purchase split"
}
func (*breakdownCmd) Usage() string {
	return `cct breakdown -name <participant>

  Displays the full breakdown of a participant's purchase: the indexed price
  and, for co-ownership sales, the reserve share and the redistribution to
  the members present before the sale.
`
}

func (c *breakdownCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Name of the buying participant")
}

func (c *breakdownCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	eng, err := DecodeEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	tx, err := pricedPurchase(eng, c.name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	b, err := eng.Breakdown(tx.ID())
	if err != nil {
		var notApplicable *castor.NotApplicableError
		if !errors.As(err, &notApplicable) {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		b = nil // private sale, the report shows the price only
	}

	printMarkdown(renderer.RenderBreakdown(renderer.NewBreakdownReport(tx, b)))
	return subcommands.ExitSuccess
}
