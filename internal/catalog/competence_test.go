package catalog

import (
	"errors"
	"testing"
)

func TestNormalizeCompetence(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"slash form", "05/2024", "202405", false},
		{"canonical passes through", "202405", "202405", false},
		{"december", "12/2023", "202312", false},
		{"whitespace trimmed", " 202405 ", "202405", false},
		{"month thirteen", "202413", "", true},
		{"month zero", "202400", "", true},
		{"slash with short year", "05/24", "", true},
		{"slash with long month", "005/2024", "", true},
		{"letters", "abc123", "", true},
		{"too short", "2024", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeCompetence(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCompetence) {
					t.Fatalf("expected ErrInvalidCompetence, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("NormalizeCompetence(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeCompetence_Idempotent(t *testing.T) {
	inputs := []string{"05/2024", "202405", "12/1999"}
	for _, in := range inputs {
		once, err := NormalizeCompetence(in)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", in, err)
		}
		twice, err := NormalizeCompetence(once)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", once, err)
		}
		if once != twice {
			t.Errorf("normalize not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}
