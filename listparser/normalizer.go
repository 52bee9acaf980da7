// Package listparser extracts medication records from the irregularly
// formatted Festbetrag and co-payment exemption lists. The lists are text
// dumps of printed tables, so lines carry page headers, separators and
// records that wrap onto following lines.
package listparser

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	pageMarker = regexp.MustCompile(`(?i)^(seite|page)\s+\d+(\s+(von|of)\s+\d+)?$`)
	bareNumber = regexp.MustCompile(`^-?\s*\d{1,4}\s*-?$`)
	columnHead = regexp.MustCompile(`(?i)^(pzn|arzneimittel(name)?|wirkstoff|hersteller)\b`)
)

// NormalizeLine collapses every run of whitespace, including tabs and
// non-breaking spaces, to a single space and trims the ends. Applying it
// twice gives the same result as applying it once.
func NormalizeLine(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// IsNoiseLine reports whether a normalized line carries no record data:
// empty lines, page numbers, column headings and separator rules.
func IsNoiseLine(line string) bool {
	if line == "" {
		return true
	}
	if pageMarker.MatchString(line) || bareNumber.MatchString(line) || columnHead.MatchString(line) {
		return true
	}
	return isSeparator(line)
}

func isSeparator(line string) bool {
	n := 0
	for _, r := range line {
		switch r {
		case '-', '=', '_', '*', '.', '·', '—':
			n++
		case ' ':
		default:
			return false
		}
	}
	return n >= 3
}
