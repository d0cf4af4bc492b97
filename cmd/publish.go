package cmd

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/castorhq/castor"
	"github.com/castorhq/castor/renderer"
	"github.com/google/subcommands"
)

// reportTask is one file to publish. It is also the data the front matter
// template executes with.
type reportTask struct {
	Path  string // relative to the output directory
	Title string
	Date  castor.Date

	body string
}

type publishCmd struct {
	outputDir      string
	frontMatterTpl string
}

func (*publishCmd) Name() string { return "publish" }

func (*publishCmd) Synopsis() string { return "generate every project report into a directory" }

func (*publishCmd) Usage() string {
	return `publish [-o <dir>] [-frontmatter <file>]

  Generates the timeline, the participant list, the purchase breakdown of
  every buyer, and the CSV export, and saves them to a directory tree ready
  to share with the co-owners or feed to a static site generator.
`
}

func (c *publishCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outputDir, "o", "reports", "Root directory for the generated reports")
	f.StringVar(&c.frontMatterTpl, "frontmatter", "", "Path to a Go template file for the report front matter")
}

func (c *publishCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var frontMatterTpl *template.Template
	if c.frontMatterTpl != "" {
		var err error
		frontMatterTpl, err = template.ParseFiles(c.frontMatterTpl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse front matter template: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	eng, err := DecodeEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	entries := eng.ExportLedger()
	if len(entries) == 0 {
		fmt.Println("Registry is empty, nothing to publish.")
		return subcommands.ExitSuccess
	}
	last := entries[len(entries)-1].Snapshot.When()

	tasks := []reportTask{
		{Path: "timeline.md", Title: "Timeline", Date: last, body: renderer.TimelineMarkdown(entries)},
		{Path: "participants.md", Title: "Participants", Date: last, body: renderer.ParticipantsMarkdown(eng.Registry())},
	}

	// One breakdown report per buyer.
	for _, p := range eng.Registry().Participants(castor.Buying) {
		tx, err := eng.Priced(castor.PurchaseID(p.Name, p.Lot))
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to price the purchase of %q: %v\n", p.Name, err)
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
		tasks = append(tasks, reportTask{
			Path:  filepath.Join("breakdowns", p.Name+".md"),
			Title: fmt.Sprintf("Breakdown for %s", p.Name),
			Date:  p.Entry,
			body:  renderer.RenderBreakdown(renderer.NewBreakdownReport(tx, b)),
		})
	}

	// The CSV export, for spreadsheets rather than readers.
	var csv bytes.Buffer
	if err := castor.ExportTimelineCSV(&csv, entries); err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate the CSV export: %v\n", err)
		return subcommands.ExitFailure
	}
	tasks = append(tasks, reportTask{Path: "timeline.csv", Title: "Timeline", Date: last, body: csv.String()})

	for _, task := range tasks {
		content := task.body
		if frontMatterTpl != nil && filepath.Ext(task.Path) == ".md" {
			fm, err := renderFrontMatter(frontMatterTpl, task)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to render front matter for %s: %v\n", task.Path, err)
				return subcommands.ExitFailure
			}
			content = fm + "\n" + content
		}

		fullPath := filepath.Join(c.outputDir, task.Path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create output directory for file %s: %v\n", task.Path, err)
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write file %s: %v\n", task.Path, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Generated %s\n", fullPath)
	}

	return subcommands.ExitSuccess
}

func renderFrontMatter(tpl *template.Template, task reportTask) (string, error) {
	var b bytes.Buffer
	if err := tpl.Execute(&b, task); err != nil {
		return "", err
	}
	return b.String(), nil
}
