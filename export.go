package castor

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// LedgerEntry is one line of the exported ledger: the snapshot taken after
// one entry, with the priced transaction and proceeds breakdown that
// produced it when the entry is a purchase.
type LedgerEntry struct {
	Snapshot    TimelineSnapshot
	Transaction *PricedTransaction // nil for contributions
	Breakdown   *ProceedsBreakdown // nil unless a co-ownership sale
}

// ExportLedger returns the flat, timeline-ordered data consumed by
// spreadsheet, CSV and JSON exporters: one line per snapshot, carrying the
// transaction detail of purchases. The data is already validated and
// ordered, exporters only format it.
func (e *Engine) ExportLedger() []LedgerEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entries := make([]LedgerEntry, 0, len(e.cur.snaps))
	for _, s := range e.cur.snaps {
		entries = append(entries, LedgerEntry{
			Snapshot:    s,
			Transaction: s.entry.tx,
			Breakdown:   s.entry.breakdown,
		})
	}
	return entries
}

// EncodeSnapshots persists a timeline to an io.Writer in JSONL format, one
// snapshot per line. Encoding an unchanged timeline always produces the
// same bytes.
func EncodeSnapshots(w io.Writer, snaps []TimelineSnapshot) error {
	for i := range snaps {
		if err := EncodeRecord(w, &snaps[i]); err != nil {
			return err
		}
	}
	return nil
}

// plain formats a money amount as a bare decimal with the currency's minor
// unit digits, the way spreadsheets expect numbers.
func plain(m Money) string {
	return m.value.Round(m.fraction()).StringFixed(m.fraction())
}

// ExportTimelineCSV writes the ledger to w as a CSV table: one row per
// snapshot with the entry detail and the cumulative position of the
// participant it concerns.
func ExportTimelineCSV(w io.Writer, entries []LedgerEntry) error {
	cw := csv.NewWriter(w)
	header := []string{
		"seq", "date", "kind", "participant", "currency", "amount",
		"seller", "elapsed", "sale_reserve", "sale_redistributed",
		"fund", "invested", "received", "net",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("cannot write csv header: %w", err)
	}

	for _, le := range entries {
		s := le.Snapshot
		entry := s.Entry()

		row := make([]string, 0, len(header))
		row = append(row,
			strconv.Itoa(s.Seq()),
			s.When().String(),
			string(entry.Kind()),
			entry.Participant(),
		)
		var seller, elapsed, saleReserve, saleRedis string
		amount := entry.Amount()
		if tx := le.Transaction; tx != nil {
			amount = tx.Price()
			seller = tx.Seller()
			elapsed = strconv.Itoa(tx.Elapsed())
		}
		if bd := le.Breakdown; bd != nil {
			saleReserve = plain(bd.Reserve())
			saleRedis = plain(bd.Redistributed())
		}
		row = append(row, amount.Currency(), plain(amount), seller, elapsed, saleReserve, saleRedis)

		row = append(row, plain(s.Reserve()))
		if pos := s.Row(entry.Participant()); pos != nil {
			row = append(row, plain(pos.Invested), plain(pos.Received), plain(pos.Net()))
		} else {
			row = append(row, "", "", "")
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("cannot write csv row %d: %w", s.Seq(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}
