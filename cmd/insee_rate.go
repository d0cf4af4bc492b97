package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/castorhq/castor"
	"github.com/castorhq/castor/insee"
	"github.com/google/subcommands"
)

// inseeRateCmd implements the "insee rate" command.
type inseeRateCmd struct {
	series string
	from   string
	to     string
}

func (*inseeRateCmd) Name() string     { return "rate" }
func (*inseeRateCmd) Synopsis() string { return "suggest a portage rate from a public INSEE index" }
func (*inseeRateCmd) Usage() string {
	return `insee rate -series <series> -from <date> [-to <date>]

  Downloads a public index series from data.insee.fr and suggests the
  annualized growth rate observed between the two dates, as a candidate
  portage rate.
`
}

func (c *inseeRateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.series, "series", "irl", "Index series: irl (rent reference), icc (construction cost), or a raw idBank")
	f.StringVar(&c.from, "from", "", "Start of the observation range (YYYY-MM-DD)")
	f.StringVar(&c.to, "to", castor.Today().String(), "End of the observation range (YYYY-MM-DD)")
}

func (c *inseeRateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	from, err := castor.ParseDate(c.from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
		return subcommands.ExitUsageError
	}
	to, err := castor.ParseDate(c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
		return subcommands.ExitUsageError
	}

	idBank := c.series
	switch c.series {
	case "irl":
		idBank = insee.IRL
	case "icc":
		idBank = insee.ICC
	}

	r := castor.NewRange(from, to)
	series, err := insee.Fetch(idBank, r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not fetch from data.insee.fr: %v\n", err)
		return subcommands.ExitFailure
	}

	rate, err := series.AnnualizedRate(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not compute a rate from series %q: %v\n", idBank, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("%s (%s)\n", series.Libelle, series.IDBank)
	fmt.Printf("Annualized growth from %s to %s: %s\n", from, to, rate)
	fmt.Printf("\nTo adopt it as the portage rate:\n\n  cct formula -rate %s -period yearly -reference <deed date>\n", rate)
	return subcommands.ExitSuccess
}
