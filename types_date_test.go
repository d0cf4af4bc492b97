package castor

import (
	"encoding/json"
	"testing"
	"time"
)

// time() must be canonical so two Dates of the same day compare equal, even
// though time.Time itself carries an incomparable location pointer.
func TestTime(t *testing.T) {
	if NewDate(2025, 7, 31).time() != NewDate(2025, 7, 31).time() {
		t.Errorf("time() gives two different times for the same day")
	}
}

func TestNewDate_Normalizes(t *testing.T) {
	if got, want := NewDate(2026, 13, 1), NewDate(2027, time.January, 1); got != want {
		t.Errorf("NewDate(2026, 13, 1) = %v, want %v", got, want)
	}
	if got, want := NewDate(2026, time.March, 0), NewDate(2026, time.February, 28); got != want {
		t.Errorf("NewDate(2026, 3, 0) = %v, want %v", got, want)
	}
}

func TestParse(t *testing.T) {
	today := Today()

	tests := []struct {
		input    string
		expected Date
		err      bool
	}{
		{"2025-01-15", NewDate(2025, time.January, 15), false},
		{"2025-7-1", NewDate(2025, time.July, 1), false},
		{"2026-02-01T00:00:00.000Z", NewDate(2026, time.February, 1), false},
		{"invalid-date", Date{}, true},
		{"", Date{}, true},

		// Offsets relative to today. The sign is mandatory, "1d" would
		// read as a typo for a real date.
		{"0d", today, false},
		{"-1d", today.Add(-1), false},
		{"+1d", today.Add(1), false},
		{"1d", Date{}, true},
		{"+1m", NewDate(today.Year(), today.Month()+1, today.Day()), false},
		{"-3q", NewDate(today.Year(), today.Month()-9, today.Day()), false},
		{"+1y", NewDate(today.Year()+1, today.Month(), today.Day()), false},
		{"-1y", NewDate(today.Year()-1, today.Month(), today.Day()), false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if (err != nil) != tt.err {
				t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.err)
				return
			}
			if !tt.err && got != tt.expected {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDate_MarshalJSON(t *testing.T) {
	for _, tt := range []struct {
		date Date
		want string
	}{
		{Date{}, `""`},
		{NewDate(2024, 5, 21), `"2024-05-21"`},
	} {
		got, err := json.Marshal(tt.date)
		if err != nil {
			t.Fatalf("json.Marshal(%v) failed: %v", tt.date, err)
		}
		if string(got) != tt.want {
			t.Errorf("json.Marshal(%v) = %s, want %s", tt.date, got, tt.want)
		}
	}
}

func TestDate_UnmarshalJSON(t *testing.T) {
	// A record with a missing date decodes to the zero Date, so validation
	// can report the field instead of a JSON syntax error.
	var d Date
	if err := json.Unmarshal([]byte(`""`), &d); err != nil || !d.IsZero() {
		t.Errorf(`json.Unmarshal("") = %v, %v, want the zero date`, d, err)
	}
	if err := json.Unmarshal([]byte(`"2024-05-21"`), &d); err != nil || d != NewDate(2024, 5, 21) {
		t.Errorf(`json.Unmarshal("2024-05-21") = %v, %v`, d, err)
	}
	if err := json.Unmarshal([]byte(`"not-a-date"`), &d); err == nil {
		t.Errorf("json.Unmarshal accepted %q", "not-a-date")
	}
}
