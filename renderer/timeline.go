package renderer

import (
	"fmt"

	"github.com/castorhq/castor"
)

// TimelineMarkdown renders the ledger as one event table followed by the
// cap table of the last snapshot.
func TimelineMarkdown(entries []castor.LedgerEntry) string {
	r := newReport()

	r.Printf("# Timeline\n\n")
	r.Printf("| # | Date | Event | Amount | Reserve |\n")
	r.Printf("|--:|:---|:---|---:|---:|\n")
	for _, le := range entries {
		s := le.Snapshot
		e := s.Entry()

		var event string
		amount := e.Amount()
		if e.Kind() == castor.Purchase {
			tx := e.Transaction()
			event = fmt.Sprintf("%s buys %s from %s", e.Participant(), tx.Lot(), tx.Seller())
			amount = tx.Price()
		} else {
			event = fmt.Sprintf("%s joins", e.Participant())
			if e.Founder() {
				event += " as founder"
			}
		}
		r.Printf("| %d | %s | %s | %s | %s |\n", s.Seq(), s.When(), event, amount, s.Reserve())
	}

	if len(entries) > 0 {
		last := entries[len(entries)-1].Snapshot
		r.Printf("\n## Positions on %s\n\n", last.When())
		r.Printf("| Participant | Invested | Received | Net |\n")
		r.Printf("|:---|---:|---:|---:|\n")
		for row := range last.Rows() {
			name := row.Name
			if row.Founder {
				name += " (founder)"
			}
			r.Printf("| %s | %s | %s | %s |\n", name, row.Invested, row.Received, row.Net())
		}
	}

	return r.String()
}
