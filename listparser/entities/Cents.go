package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// Cents is an exact euro amount in cents. Prices and Festbetrag values are
// kept in integer cents so comparisons and deltas never lose precision.
type Cents int64

// ParseCents parses a price token like "23,45", "23.45" or "1.234,56" into
// cents. Exactly two fraction digits are required, matching how the
// published lists print amounts. Thousands separators in the whole part are
// ignored.
func ParseCents(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	// The lists use a comma decimal separator, the CSV variant uses a dot
	sep := strings.LastIndexAny(s, ",.")
	if sep == -1 || len(s)-sep-1 != 2 {
		return 0, fmt.Errorf("amount %q must have two decimal places", s)
	}

	whole := strings.Map(func(r rune) rune {
		if r == '.' || r == ',' {
			return -1
		}
		return r
	}, s[:sep])
	frac := s[sep+1:]

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	v := w*100 + f
	if neg {
		v = -v
	}
	return Cents(v), nil
}

// String formats the amount with a comma separator, the way the source
// lists print it: 2345 -> "23,45".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d,%02d", sign, v/100, v%100)
}

// MarshalJSON renders the amount as a plain decimal number (23.45) so API
// consumers get a numeric value with exactly two decimals.
func (c Cents) MarshalJSON() ([]byte, error) {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return []byte(fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)), nil
}

// UnmarshalJSON reads a decimal euro amount back into cents. At most two
// fraction digits are accepted; anything finer cannot be a cent amount.
func (c *Cents) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return fmt.Errorf("empty amount")
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	switch len(frac) {
	case 0:
		frac = "00"
	case 1:
		frac += "0"
	case 2:
	default:
		return fmt.Errorf("amount %q has more than two decimal places", s)
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}

	v := w*100 + f
	if neg {
		v = -v
	}
	*c = Cents(v)
	return nil
}
