package castor

import (
	"errors"
	"testing"
	"time"
)

// saleAt prices a co-ownership lot at face value (zero rate) on day, to feed
// Distribute with round numbers.
func saleAt(t *testing.T, total Money, day Date) *PricedTransaction {
	t.Helper()
	formula := NewPortageFormula(R(0), D(2026, time.February, 1))
	buyer := NewParticipant("Buyer", day, EUR(0))
	buyer.Lot = "lot"
	tx, err := Price(NewLot("lot", CoOwnership, total), buyer, formula)
	if err != nil {
		t.Fatalf("Price() error = %v", err)
	}
	return tx
}

func TestDistribute(t *testing.T) {
	// 50,000 proceeds, 30% reserve, capitals 20,000 and 80,000: the reserve
	// takes 15,000 and the rest goes back in 20/80 proportions.
	tx := saleAt(t, EUR(50000), D(2029, time.February, 1))
	stakes := []CapitalStake{
		{Name: "Bob", Entry: D(2026, time.February, 1), Capital: EUR(20000)},
		{Name: "Ana", Entry: D(2026, time.February, 1), Capital: EUR(80000)},
	}

	b, err := Distribute(tx, R(0.3), stakes)
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}

	if got := b.Reserve(); !got.Equal(EUR(15000)) {
		t.Errorf("Reserve() = %v, want %v", got, EUR(15000))
	}
	if got := b.Redistributed(); !got.Equal(EUR(35000)) {
		t.Errorf("Redistributed() = %v, want %v", got, EUR(35000))
	}

	want := []Share{
		{Name: "Bob", Amount: EUR(7000)},
		{Name: "Ana", Amount: EUR(28000)},
	}
	var got []Share
	for s := range b.Shares() {
		got = append(got, s)
	}
	if len(got) != len(want) {
		t.Fatalf("Shares() yielded %d shares, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i].Name || !got[i].Amount.Equal(want[i].Amount) {
			t.Errorf("share %d = %s %v, want %s %v", i, got[i].Name, got[i].Amount, want[i].Name, want[i].Amount)
		}
	}
}

func TestDistribute_IndexedSale(t *testing.T) {
	// The fixture sale: 50,000 indexed three years at 2% is 53,060.40, the
	// reserve floors 30% of it and the shares absorb the remainder exactly.
	formula := NewPortageFormula(R(0.02), D(2026, time.February, 1))
	buyer := NewParticipant("Dan", D(2029, time.February, 1), EUR(0))
	buyer.Lot = "a07"
	tx, err := Price(NewLot("a07", CoOwnership, EUR(50000)), buyer, formula)
	if err != nil {
		t.Fatalf("Price() error = %v", err)
	}

	stakes := []CapitalStake{
		{Name: "Ana", Entry: D(2026, time.February, 1), Capital: EUR(80000)},
		{Name: "Bob", Entry: D(2026, time.February, 1), Capital: EUR(20000)},
		{Name: "Chloe", Entry: D(2028, time.January, 1), Capital: EUR(0)},
	}
	b, err := Distribute(tx, R(0.3), stakes)
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}

	if got := b.Total(); !got.Equal(EUR(53060.40)) {
		t.Errorf("Total() = %v, want %v", got, EUR(53060.40))
	}
	if got := b.Reserve(); !got.Equal(EUR(15918.12)) {
		t.Errorf("Reserve() = %v, want %v", got, EUR(15918.12))
	}
	if got := b.Redistributed(); !got.Equal(EUR(37142.28)) {
		t.Errorf("Redistributed() = %v, want %v", got, EUR(37142.28))
	}

	want := map[string]Money{
		"Ana":   EUR(29713.82),
		"Bob":   EUR(7428.46),
		"Chloe": EUR(0),
	}
	sum := NO(0)
	for s := range b.Shares() {
		if w, ok := want[s.Name]; !ok || !s.Amount.Equal(w) {
			t.Errorf("share %s = %v, want %v", s.Name, s.Amount, w)
		}
		sum = sum.Add(s.Amount)
	}
	if !sum.Equal(b.Redistributed()) {
		t.Errorf("shares sum to %v, want the redistributed %v", sum, b.Redistributed())
	}
}

// TestDistribute_RemainderUnits checks the leftover cents go one by one to
// the largest fractional remainders, not to the largest capitals.
func TestDistribute_RemainderUnits(t *testing.T) {
	// 0.10 to split over capitals 17/29/54: floors are 1, 2 and 5 cents and
	// the remainders 70, 90 and 40, so the two leftover cents go to the 29
	// and the 17.
	tx := saleAt(t, EUR(0.10), D(2029, time.February, 1))
	stakes := []CapitalStake{
		{Name: "Ana", Entry: D(2026, time.February, 1), Capital: EUR(17)},
		{Name: "Bob", Entry: D(2026, time.February, 1), Capital: EUR(29)},
		{Name: "Chloe", Entry: D(2026, time.February, 1), Capital: EUR(54)},
	}

	b, err := Distribute(tx, R(0), stakes)
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}

	want := map[string]Money{
		"Ana":   EUR(0.02),
		"Bob":   EUR(0.03),
		"Chloe": EUR(0.05),
	}
	for s := range b.Shares() {
		if w := want[s.Name]; !s.Amount.Equal(w) {
			t.Errorf("share %s = %v, want %v", s.Name, s.Amount, w)
		}
	}
}

func TestDistribute_RemainderTies(t *testing.T) {
	tx := saleAt(t, EUR(1), D(2029, time.February, 1))
	stakes := []CapitalStake{
		{Name: "Chloe", Entry: D(2028, time.January, 1), Capital: EUR(100)},
		{Name: "Ana", Entry: D(2026, time.February, 1), Capital: EUR(100)},
		{Name: "Bob", Entry: D(2026, time.February, 1), Capital: EUR(100)},
	}

	// 100 cents over three equal capitals: 33 each and one leftover cent.
	// All remainders tie, the earliest entry wins, and between Ana and Bob
	// the name decides.
	b, err := Distribute(tx, R(0), stakes)
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}

	want := map[string]Money{
		"Chloe": EUR(0.33),
		"Ana":   EUR(0.34),
		"Bob":   EUR(0.33),
	}
	for s := range b.Shares() {
		if w := want[s.Name]; !s.Amount.Equal(w) {
			t.Errorf("share %s = %v, want %v", s.Name, s.Amount, w)
		}
	}
}

func TestDistribute_NoStakes(t *testing.T) {
	// The very first sale has no one entered before it: everything accrues
	// to the reserve and that is not an error.
	tx := saleAt(t, EUR(50000), D(2026, time.June, 1))

	b, err := Distribute(tx, R(0.3), nil)
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	if got := b.Reserve(); !got.Equal(EUR(50000)) {
		t.Errorf("Reserve() = %v, want the full proceeds %v", got, EUR(50000))
	}
	if got := b.Redistributed(); !got.IsZero() {
		t.Errorf("Redistributed() = %v, want zero", got)
	}
	for s := range b.Shares() {
		t.Errorf("Shares() yielded %v, want none", s)
	}
}

func TestDistribute_FounderSale(t *testing.T) {
	formula := NewPortageFormula(R(0), D(2026, time.February, 1))
	buyer := NewParticipant("Chloe", D(2028, time.January, 1), EUR(0))
	buyer.Lot = "b12"
	tx, err := Price(NewLot("b12", "Ana", EUR(100000)), buyer, formula)
	if err != nil {
		t.Fatalf("Price() error = %v", err)
	}

	_, err = Distribute(tx, R(0.3), nil)

	var notApplicable *NotApplicableError
	if !errors.As(err, &notApplicable) {
		t.Fatalf("Distribute() error = %v, want a NotApplicableError", err)
	}
	if notApplicable.Seller != "Ana" {
		t.Errorf("error seller = %q, want %q", notApplicable.Seller, "Ana")
	}
}

func TestDistribute_NoCapital(t *testing.T) {
	tx := saleAt(t, EUR(50000), D(2029, time.February, 1))
	stakes := []CapitalStake{
		{Name: "Ana", Entry: D(2026, time.February, 1), Capital: EUR(0)},
		{Name: "Bob", Entry: D(2026, time.February, 1), Capital: EUR(0)},
	}

	_, err := Distribute(tx, R(0.3), stakes)

	var insufficient *InsufficientCapitalDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Distribute() error = %v, want an InsufficientCapitalDataError", err)
	}
	if insufficient.Date != tx.When() {
		t.Errorf("error date = %v, want %v", insufficient.Date, tx.When())
	}
}

// TestDistribute_Conservation sweeps awkward totals and ratios and checks
// the two exactness rules: reserve plus redistributed equals the total, and
// the shares sum to the redistributed amount.
func TestDistribute_Conservation(t *testing.T) {
	stakes := []CapitalStake{
		{Name: "Ana", Entry: D(2026, time.February, 1), Capital: EUR(33333.33)},
		{Name: "Bob", Entry: D(2026, time.March, 1), Capital: EUR(1)},
		{Name: "Chloe", Entry: D(2028, time.January, 1), Capital: EUR(66665.67)},
	}
	totals := []Money{EUR(0.01), EUR(0.03), EUR(99.99), EUR(53060.40), EUR(123456.78)}
	ratios := []Rate{R(0), R(0.3), R(1), R(0.333)}

	for _, total := range totals {
		for _, ratio := range ratios {
			tx := saleAt(t, total, D(2029, time.February, 1))
			b, err := Distribute(tx, ratio, stakes)
			if err != nil {
				t.Fatalf("Distribute(%v, %v) error = %v", total, ratio, err)
			}

			if got := b.Reserve().Add(b.Redistributed()); !got.Equal(total) {
				t.Errorf("reserve %v + redistributed %v = %v, want %v", b.Reserve(), b.Redistributed(), got, total)
			}
			sum := NO(0)
			for s := range b.Shares() {
				if s.Amount.IsNegative() {
					t.Errorf("share %s of %v/%v is negative: %v", s.Name, total, ratio, s.Amount)
				}
				sum = sum.Add(s.Amount)
			}
			if !sum.Equal(b.Redistributed()) {
				t.Errorf("shares of %v/%v sum to %v, want %v", total, ratio, sum, b.Redistributed())
			}
		}
	}
}

func TestRegistry_Stakes(t *testing.T) {
	r := testRegistry()

	stakes := r.Stakes(D(2029, time.February, 1))

	want := []CapitalStake{
		{Name: "Ana", Entry: D(2026, time.February, 1), Capital: EUR(80000)},
		{Name: "Bob", Entry: D(2026, time.February, 1), Capital: EUR(20000)},
		{Name: "Chloe", Entry: D(2028, time.January, 1), Capital: EUR(0)},
	}
	if len(stakes) != len(want) {
		t.Fatalf("Stakes() returned %d stakes, want %d", len(stakes), len(want))
	}
	for i := range want {
		if stakes[i].Name != want[i].Name || stakes[i].Entry != want[i].Entry || !stakes[i].Capital.Equal(want[i].Capital) {
			t.Errorf("stake %d = %+v, want %+v", i, stakes[i], want[i])
		}
	}
}
