package castor

import (
	"testing"
	"time"
)

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// NO is a helper for test to create money from const with no currency set
func NO(v float64) Money { return M(v, "") }

// D is a helper for test to create a date from consts.
func D(y int, m time.Month, d int) Date { return NewDate(y, m, d) }

// testRegistry builds the co-ownership used across tests.
//
// Deed on 2026-02-01, 2% yearly portage, 30% reserve ratio, in euro.
// Two founders fund the purchase: Ana (80,000, sells lot b12) and
// Bob (20,000). Three buyers join later:
//
//   - Chloe (2028-01-01) buys b12 from Ana, base 100,000, two periods
//     elapsed, so she pays 104,040.00 and Ana receives it all.
//   - Dan (2029-02-01) buys a07 from the co-ownership, base 50,000,
//     three periods, so he pays 53,060.40. The sale funds the reserve
//     with 15,918.12 and redistributes 37,142.28 (Ana 29,713.82,
//     Bob 7,428.46, Chloe 0.00).
//   - Eve (2030-08-15) buys the surface-priced s03 (3,000/m², 25.5 m²),
//     four periods, so she pays 82,806.06. Reserve gains 24,841.81 and
//     57,964.25 go back (Ana 46,371.40, Bob 11,592.85).
func testRegistry() *Registry {
	r := NewRegistry()
	r.SetFormula(NewPortageFormula(R(0.02), D(2026, time.February, 1)))
	r.SetRatio(R(0.3))

	r.SetLot(NewLot("a07", CoOwnership, EUR(50000)))
	r.SetLot(NewLot("b12", "Ana", EUR(100000)))
	r.SetLot(NewSurfaceLot("s03", EUR(3000)))

	ana := NewParticipant("Ana", D(2026, time.February, 1), EUR(80000))
	ana.Founder = true
	r.SetParticipant(ana)

	bob := NewParticipant("Bob", D(2026, time.February, 1), EUR(20000))
	bob.Founder = true
	r.SetParticipant(bob)

	chloe := NewParticipant("Chloe", D(2028, time.January, 1), EUR(0))
	chloe.Lot = "b12"
	r.SetParticipant(chloe)

	dan := NewParticipant("Dan", D(2029, time.February, 1), EUR(0))
	dan.Lot = "a07"
	r.SetParticipant(dan)

	eve := NewParticipant("Eve", D(2030, time.August, 15), EUR(5000))
	eve.Lot = "s03"
	eve.Surface = S(25.5)
	r.SetParticipant(eve)

	return r
}

// computeAll prices every purchase of the registry and distributes the
// co-ownership sales, the way a commit does.
func computeAll(t *testing.T, r *Registry) (map[string]*PricedTransaction, map[string]*ProceedsBreakdown) {
	t.Helper()
	prices := make(map[string]*PricedTransaction)
	breakdowns := make(map[string]*ProceedsBreakdown)
	for _, p := range r.Participants() {
		if !p.Buys() {
			continue
		}
		tx, err := Price(*r.Lot(p.Lot), p, r.Formula())
		if err != nil {
			t.Fatalf("Price(%s) error = %v", p.Lot, err)
		}
		prices[tx.ID()] = tx
		if !tx.CoOwned() {
			continue
		}
		b, err := Distribute(tx, r.Ratio(), r.Stakes(tx.When()))
		if err != nil {
			t.Fatalf("Distribute(%s) error = %v", tx.ID(), err)
		}
		breakdowns[tx.ID()] = b
	}
	return prices, breakdowns
}

// testJournal builds the journal of the reference co-ownership.
func testJournal(t *testing.T, r *Registry) *Journal {
	t.Helper()
	prices, breakdowns := computeAll(t, r)
	j, err := NewJournal(r, prices, breakdowns)
	if err != nil {
		t.Fatalf("NewJournal() error = %v", err)
	}
	return j
}
