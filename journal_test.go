package castor

import (
	"testing"
)

func TestNewJournal(t *testing.T) {
	r := testRegistry()
	j := testJournal(t, r)

	// One contribution per participant, one purchase per buyer, dated by the
	// buyer's entry so a purchase immediately follows its contribution.
	want := []struct {
		kind EntryKind
		id   string
	}{
		{Contribution, "contribution:Ana"},
		{Contribution, "contribution:Bob"},
		{Contribution, "contribution:Chloe"},
		{Purchase, "purchase:Chloe:b12"},
		{Contribution, "contribution:Dan"},
		{Purchase, "purchase:Dan:a07"},
		{Contribution, "contribution:Eve"},
		{Purchase, "purchase:Eve:s03"},
	}

	entries := j.Entries()
	if len(entries) != len(want) {
		t.Fatalf("NewJournal() yielded %d entries, want %d", len(entries), len(want))
	}
	for i, w := range want {
		if entries[i].Kind() != w.kind || entries[i].ID() != w.id {
			t.Errorf("entry %d = %s %q, want %s %q", i, entries[i].Kind(), entries[i].ID(), w.kind, w.id)
		}
	}

	for i := 1; i < len(entries); i++ {
		if entries[i].When().Before(entries[i-1].When()) {
			t.Errorf("entry %d dated %v comes after %v", i, entries[i].When(), entries[i-1].When())
		}
	}
}

func TestNewJournal_EntryPayloads(t *testing.T) {
	r := testRegistry()
	j := testJournal(t, r)

	byID := make(map[string]Entry)
	for _, e := range j.Entries() {
		byID[e.ID()] = e
	}

	ana := byID["contribution:Ana"]
	if !ana.Founder() || !ana.Amount().Equal(EUR(80000)) {
		t.Errorf("Ana's contribution = founder %v amount %v, want founder with 80000", ana.Founder(), ana.Amount())
	}
	if ana.Transaction() != nil || ana.Breakdown() != nil {
		t.Errorf("a contribution carries no transaction nor breakdown")
	}

	chloe := byID["purchase:Chloe:b12"]
	if chloe.Transaction() == nil {
		t.Fatalf("Chloe's purchase carries no transaction")
	}
	if chloe.Breakdown() != nil {
		t.Errorf("a founder resale carries no breakdown")
	}
	if got := chloe.Transaction().Price(); !got.Equal(EUR(104040)) {
		t.Errorf("Chloe pays %v, want %v", got, EUR(104040))
	}

	dan := byID["purchase:Dan:a07"]
	if dan.Breakdown() == nil {
		t.Fatalf("Dan's co-ownership purchase carries no breakdown")
	}
	if got := dan.Breakdown().Reserve(); !got.Equal(EUR(15918.12)) {
		t.Errorf("Dan's sale reserves %v, want %v", got, EUR(15918.12))
	}
}

func TestNewJournal_MissingArtifacts(t *testing.T) {
	r := testRegistry()
	prices, breakdowns := computeAll(t, r)

	t.Run("missing price", func(t *testing.T) {
		incomplete := make(map[string]*PricedTransaction)
		for id, tx := range prices {
			if id != "purchase:Dan:a07" {
				incomplete[id] = tx
			}
		}
		if _, err := NewJournal(r, incomplete, breakdowns); err == nil {
			t.Errorf("NewJournal() accepted a missing price")
		}
	})

	t.Run("missing breakdown", func(t *testing.T) {
		if _, err := NewJournal(r, prices, nil); err == nil {
			t.Errorf("NewJournal() accepted a missing breakdown")
		}
	})
}
