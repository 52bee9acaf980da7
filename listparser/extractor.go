package listparser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/medpreis/festbetrag-api/listparser/entities"
)

// A record line starts with a PZN token and ends with a price token. Records
// that wrap onto following lines are buffered for up to three continuation
// lines before being dropped.
const maxContinuationLines = 3

var (
	pznToken   = regexp.MustCompile(`^\d{8}$`)
	// Plain amounts ("15,97", "23.45") or grouped thousands ("1.234,56").
	priceToken = regexp.MustCompile(`^(?:\d{1,3}(?:\.\d{3})+,|\d{1,6}[.,])\d{2}$`)

	// Group headers look like "1 Abirateron" or "2 Alendronsäure, Gruppe 3"
	groupHeader = regexp.MustCompile(`^([1-3]) (\p{L}.*?)(?:, Gruppe (\d+))?$`)

	strengthToken = regexp.MustCompile(`(?i)^(\d+(?:[.,]\d+)?)(MG|G|ML|MCG|IE)$`)

	legalSuffixes = map[string]bool{
		"GmbH": true, "AG": true, "KG": true, "OHG": true,
		"SE": true, "e.K.": true, "mbH": true, "GbR": true,
	}
)

type groupContext struct {
	tier       int
	ingredient string
	label      string
}

type partialRecord struct {
	text          string
	continuations int
	lineNumber    int
}

// Extractor assembles candidates from normalized lines. It tracks the
// current Festbetrag group from header lines and buffers partial records.
type Extractor struct {
	group   groupContext
	partial *partialRecord

	// scan counters, logged by the file parsers
	SkippedNoise    int
	Unrecognized    int
	DroppedPartials int
}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Feed consumes one raw line. It returns a completed candidate, or nil when
// the line was noise, a group header, or buffered as a partial record.
func (e *Extractor) Feed(raw string, lineNumber int) *entities.Candidate {
	line := NormalizeLine(raw)
	if IsNoiseLine(line) {
		e.SkippedNoise++
		return nil
	}

	startsRecord := pznToken.MatchString(firstToken(line))

	// Headers are checked before continuation handling. A header arriving
	// while a record is still buffered means that record never found its
	// price, and every following record belongs to the new group.
	if !startsRecord {
		if m := groupHeader.FindStringSubmatch(line); m != nil && !priceToken.MatchString(lastToken(line)) {
			if e.partial != nil {
				e.dropPartial()
			}
			tier, _ := strconv.Atoi(m[1])
			label := strings.TrimSpace(m[2])
			if m[3] != "" {
				label = fmt.Sprintf("%s, Gruppe %s", label, m[3])
			}
			e.group = groupContext{tier: tier, ingredient: strings.TrimSpace(m[2]), label: label}
			return nil
		}
	}

	if e.partial != nil {
		if !startsRecord {
			e.partial.text = e.partial.text + " " + line
			e.partial.continuations++
			if c := e.complete(e.partial.text, e.partial.lineNumber); c != nil {
				e.partial = nil
				return c
			}
			if e.partial.continuations >= maxContinuationLines {
				e.dropPartial()
			}
			return nil
		}
		// A fresh record begins, the buffered one never found its price
		e.dropPartial()
	}

	if startsRecord {
		if c := e.complete(line, lineNumber); c != nil {
			return c
		}
		e.partial = &partialRecord{text: line, lineNumber: lineNumber}
		return nil
	}

	e.Unrecognized++
	return nil
}

// Flush discards any pending partial record at end of input.
func (e *Extractor) Flush() {
	if e.partial != nil {
		e.dropPartial()
	}
}

func (e *Extractor) dropPartial() {
	e.partial = nil
	e.DroppedPartials++
	e.Unrecognized++
}

// complete tries to parse one fully assembled record line. The identifier
// must lead the line and the price must close it; a PZN anywhere else in the
// line does not start a record.
func (e *Extractor) complete(text string, lineNumber int) *entities.Candidate {
	tokens := strings.Split(text, " ")
	if len(tokens) < 3 || !pznToken.MatchString(tokens[0]) {
		return nil
	}

	// Rightmost price-looking token wins as the price. When a second one
	// sits directly before it, that is the published Festbetrag column.
	last := tokens[len(tokens)-1]
	if !priceToken.MatchString(last) {
		return nil
	}

	rest := tokens[1 : len(tokens)-1]
	festbetragRaw := ""
	if len(rest) > 0 && priceToken.MatchString(rest[len(rest)-1]) {
		festbetragRaw = rest[len(rest)-1]
		rest = rest[:len(rest)-1]
	}

	nameTokens, manufacturer := splitManufacturer(rest)

	c := &entities.Candidate{
		Pzn:              tokens[0],
		Name:             strings.Join(nameTokens, " "),
		Manufacturer:     manufacturer,
		PriceRaw:         last,
		FestbetragRaw:    festbetragRaw,
		ActiveIngredient: e.group.ingredient,
		FestbetragGroup:  e.group.label,
		Tier:             e.group.tier,
		RawLine:          text,
		LineNumber:       lineNumber,
	}
	enrichFromName(c, nameTokens)

	return c
}

// splitManufacturer moves a trailing vendor segment ending in a legal form
// suffix (GmbH, AG, ...) out of the name. Drug names in the lists are upper
// case, vendor words are mixed case, so the walk back stops at the first
// upper-case token.
func splitManufacturer(tokens []string) ([]string, string) {
	if len(tokens) < 3 || !legalSuffixes[tokens[len(tokens)-1]] {
		return tokens, ""
	}

	start := len(tokens) - 2
	for start > 1 && len(tokens)-start < 3 && isVendorWord(tokens[start-1]) {
		start--
	}

	return tokens[:start], strings.Join(tokens[start:], " ")
}

func isVendorWord(t string) bool {
	if t == "Pharma" || t == "Arzneimittel" || t == "Arzneimittelwerk" {
		return true
	}
	hasLower := strings.ContainsFunc(t, func(r rune) bool { return r >= 'a' && r <= 'z' })
	return hasLower && t[0] >= 'A' && t[0] <= 'Z'
}

// enrichFromName derives strengths, package size and dosage form from the
// name tokens without altering the name itself.
func enrichFromName(c *entities.Candidate, tokens []string) {
	for i, t := range tokens {
		if m := strengthToken.FindStringSubmatch(t); m != nil {
			if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64); err == nil {
				if c.StrengthPrimary == nil {
					c.StrengthPrimary = &v
				} else if c.StrengthSecondary == nil {
					c.StrengthSecondary = &v
				}
			}
			continue
		}

		if IsFormCode(t) {
			if c.DosageForm == "" {
				c.DosageForm = t
			}
			// "100 ST TABL" or "50 TABL" style package counts
			if i > 0 && c.PackageSize == 0 {
				if n, err := strconv.Atoi(tokens[i-1]); err == nil && n > 0 {
					c.PackageSize = n
				}
			}
		}
	}
}

func firstToken(line string) string {
	if i := strings.IndexByte(line, ' '); i != -1 {
		return line[:i]
	}
	return line
}

func lastToken(line string) string {
	if i := strings.LastIndexByte(line, ' '); i != -1 {
		return line[i+1:]
	}
	return line
}
