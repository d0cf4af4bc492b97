package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/castorhq/castor"
	"github.com/castorhq/castor/renderer"
	"github.com/google/subcommands"
)

// pricedPurchase resolves a participant's purchase in the engine.
func pricedPurchase(eng *castor.Engine, name string) (*castor.PricedTransaction, error) {
	p := eng.Registry().Participant(name)
	if p == nil {
		return nil, fmt.Errorf("no participant named %q in the registry", name)
	}
	if p.Lot == "" {
		return nil, fmt.Errorf("%s buys no lot", name)
	}
	return eng.Priced(castor.PurchaseID(name, p.Lot))
}

type priceCmd struct {
	name string
}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "display the indexed price of a participant's purchase" }
func (*priceCmd) Usage() string {
	return `cct price -name <participant>

  Displays the indexed price of the lot a participant buys on entry: base
  price, elapsed periods since the reference date, and the indexed result.
`
}

func (c *priceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Name of the buying participant")
}

func (c *priceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	printMarkdown(renderer.RenderPrice(renderer.NewBreakdownReport(tx, nil)))
	return subcommands.ExitSuccess
}
