package listparser

import "testing"

func TestNormalizeLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already clean", "12345678 IBU 400", "12345678 IBU 400"},
		{"tabs and runs", "12345678\t\tIBU   400", "12345678 IBU 400"},
		{"leading and trailing", "  12345678 IBU 400  ", "12345678 IBU 400"},
		{"non-breaking space", "12345678 IBU 400", "12345678 IBU 400"},
		{"empty", "", ""},
		{"whitespace only", " \t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeLine(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeLine(%q) = %q, want %q", tt.input, got, tt.expected)
			}
			// Normalizing twice must give the same result as once
			if again := NormalizeLine(got); again != got {
				t.Errorf("NormalizeLine not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestIsNoiseLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		noise bool
	}{
		{"empty", "", true},
		{"page marker german", "Seite 12 von 840", true},
		{"page marker english", "Page 3", true},
		{"bare page number", "42", true},
		{"dashed page number", "- 42 -", true},
		{"column heading", "PZN Arzneimittelname Hersteller", true},
		{"wirkstoff heading", "Wirkstoff", true},
		{"separator rule", "----------------", true},
		{"mixed separator", "= = = = =", true},
		{"record line", "12345678 IBUPROFEN 400 MG 20 TABL 12,50", false},
		{"group header", "1 Ibuprofen, Gruppe 2", false},
		{"short separator", "--", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNoiseLine(tt.input); got != tt.noise {
				t.Errorf("IsNoiseLine(%q) = %v, want %v", tt.input, got, tt.noise)
			}
		})
	}
}
