package castor

import (
	"testing"
	"time"
)

func TestNewRange_SwapsBounds(t *testing.T) {
	from := NewDate(2029, time.February, 1)
	to := NewDate(2026, time.February, 1)

	r := NewRange(from, to)
	if r.From != to || r.To != from {
		t.Errorf("NewRange(%v, %v) = %v, want bounds swapped", from, to, r)
	}
}

func TestRange_Contains(t *testing.T) {
	r := NewRange(NewDate(2026, time.February, 1), NewDate(2029, time.February, 1))

	tests := []struct {
		name string
		date Date
		want bool
	}{
		{"before", NewDate(2026, time.January, 31), false},
		{"lower boundary", NewDate(2026, time.February, 1), true},
		{"inside", NewDate(2027, time.August, 15), true},
		{"upper boundary", NewDate(2029, time.February, 1), true},
		{"after", NewDate(2029, time.February, 2), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.date); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}
