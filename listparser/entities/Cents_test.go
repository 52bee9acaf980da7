package entities

import (
	"encoding/json"
	"testing"
)

func TestParseCents(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Cents
		wantErr  bool
	}{
		{"comma separator", "23,45", 2345, false},
		{"dot separator", "23.45", 2345, false},
		{"zero amount", "0,00", 0, false},
		{"large amount", "1234,56", 123456, false},
		{"surrounding spaces", " 9,99 ", 999, false},
		{"grouped thousands", "1.234,56", 123456, false},
		{"grouped millions", "1.234.567,89", 123456789, false},
		{"negative comma", "-5,25", -525, false},
		{"negative below one euro", "-0,50", -50, false},
		{"negative dot", "-23.45", -2345, false},
		{"sign without digits", "-,45", 0, true},
		{"empty string", "", 0, true},
		{"no separator", "2345", 0, true},
		{"one decimal place", "23,4", 0, true},
		{"three decimal places", "23,456", 0, true},
		{"letters", "ab,cd", 0, true},
		{"separator only", ",45", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCents(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseCents(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCents(%q) returned error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseCents(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCentsString(t *testing.T) {
	tests := []struct {
		input    Cents
		expected string
	}{
		{2345, "23,45"},
		{5, "0,05"},
		{0, "0,00"},
		{-150, "-1,50"},
		{100000, "1000,00"},
	}

	for _, tt := range tests {
		if got := tt.input.String(); got != tt.expected {
			t.Errorf("Cents(%d).String() = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestCentsMarshalJSON(t *testing.T) {
	payload := struct {
		Price Cents  `json:"price"`
		Delta *Cents `json:"delta"`
	}{Price: 2345}
	delta := Cents(-50)
	payload.Delta = &delta

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	expected := `{"price":23.45,"delta":-0.50}`
	if string(data) != expected {
		t.Errorf("marshal = %s, want %s", data, expected)
	}
}

func TestCentsUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Cents
		wantErr  bool
	}{
		{"two decimals", `23.45`, 2345, false},
		{"one decimal", `23.4`, 2340, false},
		{"no decimals", `23`, 2300, false},
		{"negative", `-0.50`, -50, false},
		{"zero", `0.00`, 0, false},
		{"three decimals", `23.456`, 0, true},
		{"not a number", `"abc"`, 0, true},
		{"null", `null`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Cents
			err := json.Unmarshal([]byte(tt.input), &c)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Unmarshal(%s) expected error, got %d", tt.input, c)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal(%s) returned error: %v", tt.input, err)
			}
			if c != tt.expected {
				t.Errorf("Unmarshal(%s) = %d, want %d", tt.input, c, tt.expected)
			}
		})
	}
}

func TestImportSummaryReject(t *testing.T) {
	s := &ImportSummary{}
	s.Reject(RejectPznLength)
	s.Reject(RejectPznLength)
	s.Reject(RejectPriceFormat)

	if s.Rejected != 3 {
		t.Errorf("Rejected = %d, want 3", s.Rejected)
	}
	if s.RejectReasons[RejectPznLength] != 2 {
		t.Errorf("RejectReasons[pzn_length_mismatch] = %d, want 2", s.RejectReasons[RejectPznLength])
	}
	if s.RejectReasons[RejectPriceFormat] != 1 {
		t.Errorf("RejectReasons[price_format] = %d, want 1", s.RejectReasons[RejectPriceFormat])
	}
}
