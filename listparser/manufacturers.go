package listparser

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Known vendor tokens as they appear inside medication names, mapped to the
// canonical manufacturer. The drug names carry the vendor in upper case
// ("IBU HEXAL", "ASS RATIOPHARM"), so matching is done on the upper-cased
// name with word boundaries, longest token first.
var manufacturerTokens = map[string]string{
	"HEXAL":       "Hexal AG",
	"RATIOPHARM":  "ratiopharm GmbH",
	"RATIO":       "ratiopharm GmbH",
	"STADA":       "STADA Arzneimittel AG",
	"STADAPHARM":  "STADAPHARM GmbH",
	"AL":          "ALIUD Pharma GmbH",
	"ALIUD":       "ALIUD Pharma GmbH",
	"1A":          "1 A Pharma GmbH",
	"TEVA":        "Teva GmbH",
	"ABZ":         "AbZ-Pharma GmbH",
	"HEUMANN":     "Heumann Pharma GmbH",
	"SANDOZ":      "Sandoz Pharmaceuticals GmbH",
	"ZENTIVA":     "Zentiva Pharma GmbH",
	"ARISTO":      "Aristo Pharma GmbH",
	"BLUEFISH":    "Bluefish Pharma GmbH",
	"HORMOSAN":    "Hormosan Pharma GmbH",
	"MICRO LABS":  "Micro Labs GmbH",
	"PUREN":       "PUREN Pharma GmbH",
	"BASICS":      "Basics GmbH",
	"AXCOUNT":     "axcount Generika GmbH",
	"DEXCEL":      "Dexcel Pharma GmbH",
	"MYLAN":       "Mylan Germany GmbH",
	"VIATRIS":     "Viatris Healthcare GmbH",
	"ACCORD":      "Accord Healthcare GmbH",
	"GLENMARK":    "Glenmark Arzneimittel GmbH",
	"TAD":         "TAD Pharma GmbH",
	"KRKA":        "KRKA Pharma GmbH",
	"BETAPHARM":   "betapharm Arzneimittel GmbH",
	"WINTHROP":    "Winthrop Arzneimittel GmbH",
	"CT":          "AbZ-Pharma GmbH",
	"NEURAXPHARM": "neuraxpharm Arzneimittel GmbH",
	"DESITIN":     "Desitin Arzneimittel GmbH",
	"DOCPHARM":    "Docpharm GmbH",
	"APOGEPHA":    "APOGEPHA Arzneimittel GmbH",
}

var manufacturerPatterns = buildManufacturerPatterns()

type manufacturerPattern struct {
	re        *regexp.Regexp
	canonical string
}

func buildManufacturerPatterns() []manufacturerPattern {
	tokens := make([]string, 0, len(manufacturerTokens))
	for t := range manufacturerTokens {
		tokens = append(tokens, t)
	}
	// longest first so "STADAPHARM" wins over "STADA"
	sort.Slice(tokens, func(i, j int) bool { return len(tokens[i]) > len(tokens[j]) })

	patterns := make([]manufacturerPattern, 0, len(tokens))
	for _, t := range tokens {
		patterns = append(patterns, manufacturerPattern{
			re:        regexp.MustCompile(`\b` + regexp.QuoteMeta(t) + `\b`),
			canonical: manufacturerTokens[t],
		})
	}
	return patterns
}

// LookupManufacturer finds the canonical manufacturer embedded in a
// medication name. Returns false when no known vendor token matches.
func LookupManufacturer(name string) (string, bool) {
	upper := strings.ToUpper(name)
	for _, p := range manufacturerPatterns {
		if p.re.MatchString(upper) {
			return p.canonical, true
		}
	}
	return "", false
}

var titleCaser = cases.Title(language.German)

// GuessManufacturer extends LookupManufacturer with a positional fallback.
// List names usually read ingredient, vendor, strength ("SITAGLIPTIN
// VELMETIA 50MG"), so when no known token matches, a second word that
// cannot be a strength or dosage form is taken as the vendor name.
func GuessManufacturer(name string) (string, bool) {
	if vendor, ok := LookupManufacturer(name); ok {
		return vendor, true
	}

	parts := strings.Fields(name)
	if len(parts) < 2 {
		return "", false
	}
	second := strings.ToUpper(parts[1])
	if len(second) < 3 || strings.ContainsAny(second, "0123456789") {
		return "", false
	}
	if strings.HasSuffix(second, "MG") || IsFormCode(second) {
		return "", false
	}
	return titleCaser.String(second), true
}
