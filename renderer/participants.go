package renderer

import (
	"fmt"
	"io"

	"github.com/castorhq/castor"
)

// ParticipantsMarkdown renders the registry's members and declared lots as
// markdown tables.
func ParticipantsMarkdown(reg *castor.Registry) string {
	r := newReport()

	r.Printf("# Participants\n\n")
	r.Printf("| Name | Entry | Founder | Capital | Buys |\n")
	r.Printf("|:---|:---|:---:|---:|:---|\n")
	for _, p := range reg.Participants() {
		founder := ""
		if p.Founder {
			founder = "yes"
		}
		buys := p.Lot
		if p.Lot != "" && !p.Surface.IsZero() {
			buys = fmt.Sprintf("%s m² of %s", p.Surface, p.Lot)
		}
		r.Printf("| %s | %s | %s | %s | %s |\n", p.Name, p.Entry, founder, p.Capital, buys)
	}

	ConditionalBlock(r, func(w io.Writer) bool {
		printed := false
		for lot := range reg.Lots() {
			if !printed {
				fmt.Fprintf(w, "\n## Lots\n\n")
				fmt.Fprintf(w, "| Lot | Seller | Price |\n")
				fmt.Fprintf(w, "|:---|:---|---:|\n")
				printed = true
			}
			price := lot.Price.String()
			if lot.BySurface() {
				price = lot.UnitPrice.String() + " per m²"
			}
			fmt.Fprintf(w, "| %s | %s | %s |\n", lot.ID, lot.Seller, price)
		}
		return printed
	})

	return r.String()
}
