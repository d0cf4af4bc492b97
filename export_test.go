package castor

import (
	"bytes"
	"strings"
	"testing"
)

func exportFixture(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine()
	if _, err := e.CommitInputs(testRegistry()); err != nil {
		t.Fatalf("CommitInputs() error = %v", err)
	}
	return e
}

func TestExportLedger(t *testing.T) {
	e := exportFixture(t)
	entries := e.ExportLedger()

	if len(entries) != 8 {
		t.Fatalf("ExportLedger() yielded %d entries, want 8", len(entries))
	}

	for _, le := range entries {
		switch le.Snapshot.Entry().Kind() {
		case Contribution:
			if le.Transaction != nil || le.Breakdown != nil {
				t.Errorf("contribution %s carries transaction detail", le.Snapshot.Entry().ID())
			}
		case Purchase:
			if le.Transaction == nil {
				t.Errorf("purchase %s carries no transaction", le.Snapshot.Entry().ID())
			}
		}
	}

	chloe := entries[3]
	if chloe.Transaction == nil || chloe.Breakdown != nil {
		t.Errorf("a founder resale exports a transaction and no breakdown")
	}
	dan := entries[5]
	if dan.Breakdown == nil {
		t.Fatalf("a co-ownership sale exports its breakdown")
	}
	if got := dan.Breakdown.Redistributed(); !got.Equal(EUR(37142.28)) {
		t.Errorf("Dan's sale redistributes %v, want %v", got, EUR(37142.28))
	}
}

func TestEncodeSnapshots(t *testing.T) {
	e := exportFixture(t)

	var buffer bytes.Buffer
	if err := EncodeSnapshots(&buffer, e.Snapshots()); err != nil {
		t.Fatalf("EncodeSnapshots() returned an unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buffer.String(), "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("EncodeSnapshots() wrote %d lines, want 8", len(lines))
	}

	want := `{"seq":1,"date":"2026-02-01","entry":"contribution:Ana","kind":"contribution","reserveCurrency":"EUR","reserveAmount":0,"rows":[{"name":"Ana","founder":true,"investedCurrency":"EUR","investedAmount":80000,"receivedCurrency":"EUR","receivedAmount":0,"netCurrency":"EUR","netAmount":80000}]}`
	if lines[0] != want {
		t.Errorf("first snapshot line:\ngot  %s\nwant %s", lines[0], want)
	}

	// Same engine state, same bytes.
	var again bytes.Buffer
	if err := EncodeSnapshots(&again, e.Snapshots()); err != nil {
		t.Fatalf("EncodeSnapshots() returned an unexpected error: %v", err)
	}
	if !bytes.Equal(buffer.Bytes(), again.Bytes()) {
		t.Errorf("two encodings of the same timeline differ")
	}
}

func TestExportTimelineCSV(t *testing.T) {
	e := exportFixture(t)

	var buffer bytes.Buffer
	if err := ExportTimelineCSV(&buffer, e.ExportLedger()); err != nil {
		t.Fatalf("ExportTimelineCSV() returned an unexpected error: %v", err)
	}

	expected := `seq,date,kind,participant,currency,amount,seller,elapsed,sale_reserve,sale_redistributed,fund,invested,received,net
1,2026-02-01,contribution,Ana,EUR,80000.00,,,,,0.00,80000.00,0.00,80000.00
2,2026-02-01,contribution,Bob,EUR,20000.00,,,,,0.00,20000.00,0.00,20000.00
3,2028-01-01,contribution,Chloe,EUR,0.00,,,,,0.00,0.00,0.00,0.00
4,2028-01-01,purchase,Chloe,EUR,104040.00,Ana,2,,,0.00,104040.00,0.00,104040.00
5,2029-02-01,contribution,Dan,EUR,0.00,,,,,0.00,0.00,0.00,0.00
6,2029-02-01,purchase,Dan,EUR,53060.40,copro,3,15918.12,37142.28,15918.12,53060.40,0.00,53060.40
7,2030-08-15,contribution,Eve,EUR,5000.00,,,,,15918.12,5000.00,0.00,5000.00
8,2030-08-15,purchase,Eve,EUR,82806.06,copro,4,24841.81,57964.25,40759.93,87806.06,0.00,87806.06
`
	if got := buffer.String(); got != expected {
		t.Errorf("ExportTimelineCSV() produced incorrect output.\nGot:\n%s\nWant:\n%s", got, expected)
	}
}

func TestPlain(t *testing.T) {
	tests := []struct {
		money    Money
		expected string
	}{
		{EUR(53060.4), "53060.40"},
		{EUR(0), "0.00"},
		{EUR(104040), "104040.00"},
		{EUR(9.375), "9.38"},
	}
	for _, tt := range tests {
		if got := plain(tt.money); got != tt.expected {
			t.Errorf("plain(%v) = %q, want %q", tt.money, got, tt.expected)
		}
	}
}
