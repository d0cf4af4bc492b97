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

type exportCmd struct {
	format string
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the computed timeline or the registry" }
func (*exportCmd) Usage() string {
	return `cct export [-format csv|snapshots|jsonl] [-o <file>]

  Exports the computed co-purchase data. The csv format is the flat timeline
  table a spreadsheet understands, snapshots is the same timeline as JSONL,
  and jsonl is the canonical registry itself.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "csv", "Export format: csv, snapshots, or jsonl")
	f.StringVar(&c.output, "o", "-", "Output file, or - for stdout")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	eng, err := DecodeEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var w io.Writer = os.Stdout
	if c.output != "-" {
		file, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file %q: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		w = file
	}

	switch c.format {
	case "csv":
		err = castor.ExportTimelineCSV(w, eng.ExportLedger())
	case "snapshots":
		err = castor.EncodeSnapshots(w, eng.Snapshots())
	case "jsonl":
		err = castor.EncodeRegistry(w, eng.Registry())
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown export format %q.\n", c.format)
		return subcommands.ExitUsageError
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
