package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/castorhq/castor"
	"github.com/google/subcommands"
)

// ratioRecord is the wire form of the reserve ratio command line.
type ratioRecord struct {
	Command castor.CommandType `json:"command"`
	Value   castor.Rate        `json:"value"`
}

// commitRecord validates the record against the current registry before
// appending it, so an invalid record never reaches the file.
func commitRecord(record any) subcommands.ExitStatus {
	reg, err := DecodeRegistryFile()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	switch r := record.(type) {
	case castor.PortageFormula:
		reg.SetFormula(r)
	case ratioRecord:
		reg.SetRatio(r.Value)
	case castor.Lot:
		reg.SetLot(r)
	case castor.Participant:
		reg.SetParticipant(r)
	}
	if err := reg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return appendRecord(record)
}

// --- Formula Command ---

type formulaCmd struct {
	rate      string
	period    string
	reference string
	rounding  string
	currency  string
}

func (*formulaCmd) Name() string     { return "formula" }
func (*formulaCmd) Synopsis() string { return "set the portage formula indexing lot prices" }
func (*formulaCmd) Usage() string {
	return `formula -rate <rate> [-period <period>] [-reference <date>] [-rounding <mode>] [-currency <code>]

  Sets the portage formula: every lot price is indexed at the given rate per
  period between the reference date (typically the deed date) and the buyer's
  entry date.
`
}

func (c *formulaCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.rate, "rate", "", "Indexation rate per period, e.g. 2%")
	f.StringVar(&c.period, "period", "yearly", "Indexation period (yearly, quarterly, monthly)")
	f.StringVar(&c.reference, "reference", castor.Today().String(), "Reference date the indexation counts from (YYYY-MM-DD)")
	f.StringVar(&c.rounding, "rounding", "half-even", "Rounding of indexed prices (half-even, down, up)")
	f.StringVar(&c.currency, "currency", "", "Currency of every amount in the registry, the global -currency by default")
}

func (c *formulaCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.rate == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	rate, err := castor.ParseRate(c.rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing rate: %v\n", err)
		return subcommands.ExitUsageError
	}
	period, err := castor.ParsePeriod(c.period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing period: %v\n", err)
		return subcommands.ExitUsageError
	}
	reference, err := castor.ParseDate(c.reference)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing reference date: %v\n", err)
		return subcommands.ExitUsageError
	}
	rounding, err := castor.ParseRounding(c.rounding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing rounding: %v\n", err)
		return subcommands.ExitUsageError
	}
	currency := c.currency
	if currency == "" {
		currency = *defaultCurrency
	}

	record := castor.NewPortageFormula(rate, reference)
	record.Period = period
	record.Rounding = rounding
	record.Currency = currency
	return commitRecord(record)
}

// --- Ratio Command ---

type ratioCmd struct {
	value string
}

func (*ratioCmd) Name() string     { return "ratio" }
func (*ratioCmd) Synopsis() string { return "set the share of sale proceeds kept in reserve" }
func (*ratioCmd) Usage() string {
	return `ratio -value <rate>

  Sets the reserve ratio. When the co-ownership sells a lot, this share of the
  proceeds goes to the collective reserve and the rest is redistributed to the
  members present before the sale.
`
}

func (c *ratioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.value, "value", "", "Share of proceeds kept in reserve, e.g. 30%")
}

func (c *ratioCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.value == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	value, err := castor.ParseRate(c.value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing ratio: %v\n", err)
		return subcommands.ExitUsageError
	}
	return commitRecord(ratioRecord{Command: castor.CmdRatio, Value: value})
}

// --- Lot Command ---

type lotCmd struct {
	id        string
	seller    string
	price     float64
	unitPrice float64
}

func (*lotCmd) Name() string     { return "lot" }
func (*lotCmd) Synopsis() string { return "declare a lot for sale" }
func (*lotCmd) Usage() string {
	return `lot -id <id> [-seller <name>] -price <amount> | -unit-price <amount>

  Declares a lot. The seller is a founder, or the co-ownership itself by
  default. Co-ownership lots can be priced per square meter instead of a base
  price, the buyer then chooses the surface.
`
}

func (c *lotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Lot identifier")
	f.StringVar(&c.seller, "seller", castor.CoOwnership, "Seller of the lot, a founder's name or the co-ownership")
	f.Float64Var(&c.price, "price", 0, "Base price of the lot")
	f.Float64Var(&c.unitPrice, "unit-price", 0, "Price per square meter, for co-ownership lots sold by surface")
}

func (c *lotCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" || (c.price <= 0 && c.unitPrice <= 0) {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if c.price > 0 && c.unitPrice > 0 {
		fmt.Fprintln(os.Stderr, "Error: -price and -unit-price cannot be used together.")
		return subcommands.ExitUsageError
	}

	var record castor.Lot
	if c.unitPrice > 0 {
		if c.seller != castor.CoOwnership {
			fmt.Fprintln(os.Stderr, "Error: per-surface lots are sold by the co-ownership, -seller cannot be used with -unit-price.")
			return subcommands.ExitUsageError
		}
		record = castor.NewSurfaceLot(c.id, castor.M(c.unitPrice, *defaultCurrency))
	} else {
		record = castor.NewLot(c.id, c.seller, castor.M(c.price, *defaultCurrency))
	}
	return commitRecord(record)
}

// --- Join Command ---

type joinCmd struct {
	name    string
	date    string
	founder bool
	capital float64
	lot     string
	surface float64
}

func (*joinCmd) Name() string     { return "join" }
func (*joinCmd) Synopsis() string { return "record a participant joining the co-purchase" }
func (*joinCmd) Usage() string {
	return `join -name <name> [-date <date>] [-founder] [-capital <amount>] [-lot <id>] [-surface <m2>]

  Records a participant joining on a date with a capital contribution,
  optionally buying a declared lot. For per-surface lots the chosen surface
  is required.
`
}

func (c *joinCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Name of the participant")
	f.StringVar(&c.date, "date", castor.Today().String(), "Entry date (YYYY-MM-DD)")
	f.BoolVar(&c.founder, "founder", false, "Mark the participant as a founder, present since the deed")
	f.Float64Var(&c.capital, "capital", 0, "Capital contribution brought on entry")
	f.StringVar(&c.lot, "lot", "", "Identifier of the lot bought on entry")
	f.Float64Var(&c.surface, "surface", 0, "Chosen surface in square meters, for per-surface lots")
}

func (c *joinCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" || c.capital < 0 || c.surface < 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := castor.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	record := castor.NewParticipant(c.name, day, castor.M(c.capital, *defaultCurrency))
	record.Founder = c.founder
	record.Lot = c.lot
	record.Surface = castor.S(c.surface)
	return commitRecord(record)
}
