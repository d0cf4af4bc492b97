package castor

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestDecodeRegistry(t *testing.T) {
	// A multi-line string representing a JSONL stream with all command types
	jsonlStream := `
{"command":"formula","rate":"2%","period":"yearly","reference":"2026-02-01","currency":"EUR"}
{"command":"ratio","value":"30%"}

{"command":"lot","id":"a07","seller":"copro","currency":"EUR","amount":50000}
{"command":"lot","id":"s03","seller":"copro","unitCurrency":"EUR","unitAmount":3000}
{"command":"join","name":"Ana","date":"2026-02-01","founder":true,"currency":"EUR","amount":80000}
{"command":"join","name":"Eve","date":"2030-08-15","currency":"EUR","amount":5000,"lot":"s03","surface":25.5}
`
	reg, err := DecodeRegistry(strings.NewReader(jsonlStream))

	if err != nil {
		t.Fatalf("DecodeRegistry() returned an unexpected error: %v", err)
	}

	if got := reg.Formula(); !got.Rate.Equal(R(0.02)) || got.Period != Yearly || got.Reference != D(2026, time.February, 1) {
		t.Errorf("Formula() = %+v, want 2%% yearly from 2026-02-01", got)
	}
	if got := reg.Ratio(); !got.Equal(R(0.3)) {
		t.Errorf("Ratio() = %v, want %v", got, R(0.3))
	}

	a07 := reg.Lot("a07")
	if a07 == nil || !a07.Price.Equal(EUR(50000)) || a07.BySurface() {
		t.Errorf("Lot(a07) = %+v, want a 50000 base price lot", a07)
	}
	s03 := reg.Lot("s03")
	if s03 == nil || !s03.BySurface() || !s03.UnitPrice.Equal(EUR(3000)) {
		t.Errorf("Lot(s03) = %+v, want a 3000/m2 surface lot", s03)
	}

	ana := reg.Participant("Ana")
	if ana == nil || !ana.Founder || !ana.Capital.Equal(EUR(80000)) {
		t.Errorf("Participant(Ana) = %+v, want a founder with 80000", ana)
	}
	eve := reg.Participant("Eve")
	if eve == nil || eve.Lot != "s03" || !eve.Surface.Equal(S(25.5)) {
		t.Errorf("Participant(Eve) = %+v, want a buyer of s03 on 25.5 m2", eve)
	}
}

func TestDecodeRegistry_UnknownCommand(t *testing.T) {
	jsonlStream := `{"command":"sell","security":"AAPL"}`
	if _, err := DecodeRegistry(strings.NewReader(jsonlStream)); err == nil {
		t.Fatalf("DecodeRegistry() accepted an unknown command")
	}
}

func TestEncodeRegistry(t *testing.T) {
	var buffer bytes.Buffer
	if err := EncodeRegistry(&buffer, testRegistry()); err != nil {
		t.Fatalf("EncodeRegistry() returned an unexpected error: %v", err)
	}

	// Canonical order: formula, ratio, lots by id, participants by entry.
	expected := `{"command":"formula","rate":"2%","period":"yearly","reference":"2026-02-01","rounding":"half-even","currency":"EUR"}
{"command":"ratio","value":"30%"}
{"command":"lot","id":"a07","seller":"copro","currency":"EUR","amount":50000}
{"command":"lot","id":"b12","seller":"Ana","currency":"EUR","amount":100000}
{"command":"lot","id":"s03","seller":"copro","unitCurrency":"EUR","unitAmount":3000}
{"command":"join","name":"Ana","date":"2026-02-01","founder":true,"currency":"EUR","amount":80000}
{"command":"join","name":"Bob","date":"2026-02-01","founder":true,"currency":"EUR","amount":20000}
{"command":"join","name":"Chloe","date":"2028-01-01","currency":"EUR","amount":0,"lot":"b12"}
{"command":"join","name":"Dan","date":"2029-02-01","currency":"EUR","amount":0,"lot":"a07"}
{"command":"join","name":"Eve","date":"2030-08-15","currency":"EUR","amount":5000,"lot":"s03","surface":25.5}
`
	if got := buffer.String(); got != expected {
		t.Errorf("EncodeRegistry() produced incorrect output.\nGot:\n%s\nWant:\n%s", got, expected)
	}
}

// TestEncodeRegistry_Canonical verifies that decoding a stream and encoding
// it back produces the same bytes, whatever the order of the input lines.
func TestEncodeRegistry_Canonical(t *testing.T) {
	var canonical bytes.Buffer
	if err := EncodeRegistry(&canonical, testRegistry()); err != nil {
		t.Fatalf("EncodeRegistry() returned an unexpected error: %v", err)
	}

	// Shuffle the lines: records are keyed, so order does not matter, except
	// between same-day participants whose relative order is significant, so
	// Ana stays ahead of Bob.
	lines := strings.Split(strings.TrimSpace(canonical.String()), "\n")
	shuffled := strings.Join([]string{
		lines[7], lines[1], lines[9], lines[0], lines[4],
		lines[5], lines[8], lines[2], lines[6], lines[3],
	}, "\n")

	reg, err := DecodeRegistry(strings.NewReader(shuffled))
	if err != nil {
		t.Fatalf("DecodeRegistry() returned an unexpected error: %v", err)
	}

	var again bytes.Buffer
	if err := EncodeRegistry(&again, reg); err != nil {
		t.Fatalf("EncodeRegistry() returned an unexpected error: %v", err)
	}
	if !bytes.Equal(again.Bytes(), canonical.Bytes()) {
		t.Errorf("round trip is not canonical.\nGot:\n%s\nWant:\n%s", again.String(), canonical.String())
	}
}
