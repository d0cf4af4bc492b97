// Package renderer turns engine artifacts into the markdown reports shown
// by the CLI and quoted by the assistant.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templates embed.FS

// RenderBreakdown renders the full story of one purchase: the portage
// pricing, then the proceeds split for co-ownership sales or the private
// sale notice for founder sales.
func RenderBreakdown(r *BreakdownReport) string {
	partials := map[string]string{
		"breakdown_pricing": "templates/breakdown_pricing.md",
		"breakdown_shares":  "templates/breakdown_shares.md",
	}
	return renderTemplate("breakdown", "templates/breakdown.md", partials, r)
}

// RenderPrice renders only the pricing part of a purchase, for callers who
// asked for a price and not for the whole split.
func RenderPrice(r *BreakdownReport) string {
	return renderTemplate("price", "templates/breakdown_pricing.md", nil, r)
}

// renderTemplate renders a main template with its partial dependencies.
// Failures render as the error text, so the command still prints something
// actionable instead of an empty report.
func renderTemplate(name, mainFile string, partials map[string]string, data any) string {
	root := template.New(name)
	load := func(alias, file string) error {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Errorf("cannot read template %q: %w", file, err)
		}
		if _, err := root.New(alias).Parse(string(content)); err != nil {
			return fmt.Errorf("cannot parse template %q as %q: %w", file, alias, err)
		}
		return nil
	}

	if err := load(name, mainFile); err != nil {
		return err.Error()
	}
	for alias, file := range partials {
		if err := load(alias, file); err != nil {
			return err.Error()
		}
	}

	var b strings.Builder
	if err := root.ExecuteTemplate(&b, name, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", name, err)
	}
	return b.String()
}
