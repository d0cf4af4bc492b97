package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/castorhq/castor"
	"github.com/google/subcommands"
)

type importLegacyCmd struct {
	from string
}

func (*importLegacyCmd) Name() string { return "import-legacy" }
func (*importLegacyCmd) Synopsis() string {
	return "convert a browser app export into a canonical registry"
}
func (*importLegacyCmd) Usage() string {
	return `cct import-legacy -from <export.json>

  Reads the JSON document the browser calculator exported, converts it into
  registry records, and writes the canonical registry to stdout.

Usage Examples:
# Converts a browser export into a fresh registry file.
$ cct import-legacy -from scenario.json > castor.jsonl

`
}

func (c *importLegacyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "-", "Legacy export file to read, or - for stdin")
}

func (c *importLegacyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var r io.Reader = os.Stdin
	if c.from != "-" {
		file, err := os.Open(c.from)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening legacy export %q: %v\n", c.from, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		r = file
	}

	reg, err := castor.DecodeLegacy(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding legacy export: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := reg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error validating imported registry: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := castor.EncodeRegistry(os.Stdout, reg); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing registry: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
