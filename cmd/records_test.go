package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/subcommands"
)

// seedFormula opens every test registry, records are validated against the
// formula before being appended.
const seedFormula = `{"command":"formula","rate":"2%","period":"yearly","reference":"2026-02-01","rounding":"half-even","currency":"EUR"}
`

// runRecordCmd points the global registry file and currency at test values,
// applies the flags and executes the command.
func runRecordCmd(t *testing.T, cmd subcommands.Command, path string, flags map[string]string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet("test", flag.ContinueOnError)
	cmd.SetFlags(f)
	for name, value := range flags {
		if err := f.Set(name, value); err != nil {
			t.Fatalf("Failed to set flag -%s=%s: %v", name, value, err)
		}
	}

	currency := "EUR"
	oldRegistryFile, oldCurrency := registryFile, defaultCurrency
	registryFile, defaultCurrency = &path, &currency
	defer func() { registryFile, defaultCurrency = oldRegistryFile, oldCurrency }()

	return cmd.Execute(context.Background(), f)
}

// TestFormulaCmd bootstraps a registry: the formula is the only record that
// can be appended to a file that does not exist yet.
func TestFormulaCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "castor.jsonl")

	status := runRecordCmd(t, &formulaCmd{}, path, map[string]string{
		"rate":      "2%",
		"reference": "2026-02-01",
	})
	if status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read registry file: %v", err)
	}
	if string(got) != seedFormula {
		t.Errorf("formula record mismatch.\nGot:\n%s\nWant:\n%s", string(got), seedFormula)
	}
}

func TestRatioCmd(t *testing.T) {
	path := createTempRegistry(t, seedFormula)

	status := runRecordCmd(t, &ratioCmd{}, path, map[string]string{"value": "30%"})
	if status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}

	want := seedFormula + `{"command":"ratio","value":"30%"}
`
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read registry file: %v", err)
	}
	if string(got) != want {
		t.Errorf("ratio record mismatch.\nGot:\n%s\nWant:\n%s", string(got), want)
	}
}

func TestLotCmd(t *testing.T) {
	path := createTempRegistry(t, seedFormula)

	status := runRecordCmd(t, &lotCmd{}, path, map[string]string{
		"id":    "a07",
		"price": "50000",
	})
	if status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}

	want := seedFormula + `{"command":"lot","id":"a07","seller":"copro","currency":"EUR","amount":50000}
`
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read registry file: %v", err)
	}
	if string(got) != want {
		t.Errorf("lot record mismatch.\nGot:\n%s\nWant:\n%s", string(got), want)
	}
}

func TestLotCmd_Surface(t *testing.T) {
	path := createTempRegistry(t, seedFormula)

	status := runRecordCmd(t, &lotCmd{}, path, map[string]string{
		"id":         "s03",
		"unit-price": "3000",
	})
	if status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}

	want := seedFormula + `{"command":"lot","id":"s03","seller":"copro","unitCurrency":"EUR","unitAmount":3000}
`
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read registry file: %v", err)
	}
	if string(got) != want {
		t.Errorf("surface lot record mismatch.\nGot:\n%s\nWant:\n%s", string(got), want)
	}
}

func TestJoinCmd(t *testing.T) {
	path := createTempRegistry(t, seedFormula)

	status := runRecordCmd(t, &joinCmd{}, path, map[string]string{
		"name":    "Ana",
		"date":    "2026-02-01",
		"founder": "true",
		"capital": "80000",
	})
	if status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}

	want := seedFormula + `{"command":"join","name":"Ana","date":"2026-02-01","founder":true,"currency":"EUR","amount":80000}
`
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read registry file: %v", err)
	}
	if string(got) != want {
		t.Errorf("join record mismatch.\nGot:\n%s\nWant:\n%s", string(got), want)
	}
}

// TestJoinCmd_Buyer records a participant buying a declared lot.
func TestJoinCmd_Buyer(t *testing.T) {
	declared := seedFormula + `{"command":"lot","id":"a07","seller":"copro","currency":"EUR","amount":50000}
`
	path := createTempRegistry(t, declared)

	status := runRecordCmd(t, &joinCmd{}, path, map[string]string{
		"name": "Dan",
		"date": "2029-02-01",
		"lot":  "a07",
	})
	if status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}

	want := declared + `{"command":"join","name":"Dan","date":"2029-02-01","currency":"EUR","amount":0,"lot":"a07"}
`
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read registry file: %v", err)
	}
	if string(got) != want {
		t.Errorf("buyer record mismatch.\nGot:\n%s\nWant:\n%s", string(got), want)
	}
}

// TestRecordsRejected checks that invalid records are reported and never
// reach the registry file.
func TestRecordsRejected(t *testing.T) {
	tests := []struct {
		name    string
		content string
		cmd     subcommands.Command
		flags   map[string]string
		want    subcommands.ExitStatus
	}{
		{
			name:    "join before the formula",
			content: "",
			cmd:     &joinCmd{},
			flags:   map[string]string{"name": "Ana", "date": "2026-02-01"},
			want:    subcommands.ExitFailure,
		},
		{
			name:    "ratio over 100%",
			content: seedFormula,
			cmd:     &ratioCmd{},
			flags:   map[string]string{"value": "150%"},
			want:    subcommands.ExitFailure,
		},
		{
			name:    "lot sold by an unknown participant",
			content: seedFormula,
			cmd:     &lotCmd{},
			flags:   map[string]string{"id": "b12", "seller": "Zoe", "price": "100000"},
			want:    subcommands.ExitFailure,
		},
		{
			name:    "join buying an undeclared lot",
			content: seedFormula,
			cmd:     &joinCmd{},
			flags:   map[string]string{"name": "Dan", "date": "2029-02-01", "lot": "zz9"},
			want:    subcommands.ExitFailure,
		},
		{
			name:    "lot with both prices",
			content: seedFormula,
			cmd:     &lotCmd{},
			flags:   map[string]string{"id": "a07", "price": "50000", "unit-price": "3000"},
			want:    subcommands.ExitUsageError,
		},
		{
			name:    "join without a name",
			content: seedFormula,
			cmd:     &joinCmd{},
			flags:   map[string]string{"capital": "1000"},
			want:    subcommands.ExitUsageError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createTempRegistry(t, tt.content)

			if status := runRecordCmd(t, tt.cmd, path, tt.flags); status != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, status)
			}

			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("Failed to read registry file: %v", err)
			}
			if string(got) != tt.content {
				t.Errorf("Registry file was modified.\nGot:\n%s\nWant:\n%s", string(got), tt.content)
			}
		})
	}
}
