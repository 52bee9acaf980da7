package listparser

import "testing"

func TestFormName(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"TABL", "Tabletten"},
		{"FTBL", "Filmtabletten"},
		{"IJLG", "Injektionslösung"},
		{"ATRO", "Augentropfen"},
		{"UNKNOWN", "UNKNOWN"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := FormName(tt.code); got != tt.expected {
			t.Errorf("FormName(%q) = %q, want %q", tt.code, got, tt.expected)
		}
	}
}

func TestIsFormCode(t *testing.T) {
	if !IsFormCode("KAPS") {
		t.Error("IsFormCode(KAPS) = false, want true")
	}
	if IsFormCode("kaps") {
		t.Error("IsFormCode(kaps) = true, codes are upper case only")
	}
	if IsFormCode("XYZ") {
		t.Error("IsFormCode(XYZ) = true, want false")
	}
}

func TestPackClass(t *testing.T) {
	tests := []struct {
		name     string
		form     string
		size     int
		expected string
	}{
		{"tablet n1 boundary", "TABL", 10, "N1"},
		{"tablet n2", "TABL", 20, "N2"},
		{"tablet n2 boundary", "TABL", 30, "N2"},
		{"tablet n3", "TABL", 100, "N3"},
		{"ampoule n1", "AMP", 5, "N1"},
		{"ampoule n3", "AMP", 20, "N3"},
		{"unknown form uses default rule", "XYZ", 10, "N1"},
		{"zero size", "TABL", 0, ""},
		{"negative size", "TABL", -5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PackClass(tt.form, tt.size); got != tt.expected {
				t.Errorf("PackClass(%q, %d) = %q, want %q", tt.form, tt.size, got, tt.expected)
			}
		})
	}
}

func TestLookupManufacturer(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		canonical string
		found     bool
	}{
		{"hexal in name", "IBU HEXAL 400MG", "Hexal AG", true},
		{"ratiopharm in name", "ASS RATIOPHARM 100", "ratiopharm GmbH", true},
		{"longest token wins", "OMEP STADAPHARM 20MG", "STADAPHARM GmbH", true},
		{"al as word", "IBUPROFEN AL 600", "ALIUD Pharma GmbH", true},
		{"al inside word is no match", "SALBUTAMOL SPRAY", "", false},
		{"case insensitive", "ibu hexal", "Hexal AG", true},
		{"unknown vendor", "ASPIRIN PLUS C", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := LookupManufacturer(tt.input)
			if found != tt.found || got != tt.canonical {
				t.Errorf("LookupManufacturer(%q) = (%q, %v), want (%q, %v)",
					tt.input, got, found, tt.canonical, tt.found)
			}
		})
	}
}

func TestGuessManufacturer(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		vendor string
		found  bool
	}{
		{"known token wins", "IBU HEXAL 400MG", "Hexal AG", true},
		{"second word as vendor", "SITAGLIPTIN VELMETIA 50MG", "Velmetia", true},
		{"second word with umlaut", "METOPROLOL SÜDPHARMA 95MG", "Südpharma", true},
		{"strength is no vendor", "IBUPROFEN 400MG 20 TABL", "", false},
		{"mg suffix is no vendor", "OMEPRAZOL 20MG", "", false},
		{"form code is no vendor", "PARACETAMOL TABL 500", "", false},
		{"too short", "DICLOFENAC NA 75", "", false},
		{"single word", "IBUPROFEN", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := GuessManufacturer(tt.input)
			if found != tt.found || got != tt.vendor {
				t.Errorf("GuessManufacturer(%q) = (%q, %v), want (%q, %v)",
					tt.input, got, found, tt.vendor, tt.found)
			}
		})
	}
}
