package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/castorhq/castor"
	"github.com/castorhq/castor/insee"
	"github.com/google/subcommands"
)

// inseeValuesCmd implements the "insee values" command.
type inseeValuesCmd struct {
	series string
	from   string
	to     string
}

func (*inseeValuesCmd) Name() string     { return "values" }
func (*inseeValuesCmd) Synopsis() string { return "print the observations of an INSEE index" }
func (*inseeValuesCmd) Usage() string {
	return `insee values -series <series> -from <date> [-to <date>]

  Downloads a public index series from data.insee.fr and prints its
  observations over the range, one per line.
`
}

func (c *inseeValuesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.series, "series", "irl", "Index series: irl (rent reference), icc (construction cost), or a raw idBank")
	f.StringVar(&c.from, "from", "", "Start of the observation range (YYYY-MM-DD)")
	f.StringVar(&c.to, "to", castor.Today().String(), "End of the observation range (YYYY-MM-DD)")
}

func (c *inseeValuesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	dates := make([]castor.Date, 0, len(series.Values))
	for date := range series.Values {
		if r.Contains(date) {
			dates = append(dates, date)
		}
	}
	slices.SortFunc(dates, func(a, b castor.Date) int {
		if a.Before(b) {
			return -1
		}
		if a.After(b) {
			return 1
		}
		return 0
	})

	fmt.Printf("%s (%s)\n", series.Libelle, series.IDBank)
	fmt.Printf("Last update: %s\n\n", series.LastUpdate.Format("2006-01-02"))
	for _, date := range dates {
		fmt.Printf("%s  %.2f\n", date, series.Values[date])
	}
	return subcommands.ExitSuccess
}
