package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"
)

// inseeCmd groups the commands reading the public INSEE indexes, the
// reference series a group typically indexes its portage formula on.
type inseeCmd struct{}

func (*inseeCmd) Name() string     { return "insee" }
func (*inseeCmd) Synopsis() string { return "read the public INSEE indexes (IRL, ICC)" }
func (*inseeCmd) Usage() string {
	return `insee rate|values <options>

  Reads a public index series from data.insee.fr: 'rate' suggests a portage
  rate from the index growth over a range, 'values' prints the raw
  observations.
`
}
func (c *inseeCmd) SetFlags(f *flag.FlagSet) {}

func (c *inseeCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "insee")
	for _, sub := range []subcommands.Command{&inseeRateCmd{}, &inseeValuesCmd{}} {
		commander.Register(sub, "")
	}
	return commander.Execute(ctx, args...)
}
