// Package validation provides field validation for extracted medication
// records and for user supplied search input.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/medpreis/festbetrag-api/interfaces"
	"github.com/medpreis/festbetrag-api/listparser/entities"
)

// Compile-time check to ensure FieldValidatorImpl implements FieldValidator
var _ interfaces.FieldValidator = (*FieldValidatorImpl)(nil)

// Pre-compiled regex patterns, compiled once and reused for all validations
var (
	// Search input: alphanumeric + German umlauts + safe punctuation
	inputRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+'äöüÄÖÜß]+$`)

	// Dangerous substrings checked before the character whitelist.
	// strings.Contains is much faster than regex for plain patterns.
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "onload=", "onerror=",
		"eval(", "expression(",
		"' or ", "\" or ", "union select", "drop table", "delete from",
		"insert into", "--", "/*", "*/",
		"../", "..\\", "%2e%2e", "file://",
		"$(", "${", "`",
	}
)

// Validation limits for the national PZN scheme and price sanity.
const (
	DefaultPznLength     = 8
	DefaultMinNameLength = 3
	DefaultMaxPriceCents = entities.Cents(5_000_000) // 50.000,00 EUR
)

// FieldValidatorImpl implements the interfaces.FieldValidator interface.
type FieldValidatorImpl struct {
	pznLength     int
	minNameLength int
	maxPrice      entities.Cents
}

// NewFieldValidator creates a field validator with the default limits.
func NewFieldValidator() *FieldValidatorImpl {
	return &FieldValidatorImpl{
		pznLength:     DefaultPznLength,
		minNameLength: DefaultMinNameLength,
		maxPrice:      DefaultMaxPriceCents,
	}
}

// NewFieldValidatorWithLimits creates a field validator with custom limits.
func NewFieldValidatorWithLimits(pznLength, minNameLength int, maxPrice entities.Cents) *FieldValidatorImpl {
	return &FieldValidatorImpl{
		pznLength:     pznLength,
		minNameLength: minNameLength,
		maxPrice:      maxPrice,
	}
}

// ValidateCandidate turns a raw candidate into a validated record. A too
// short identifier is a length mismatch on every input path; padding it to
// the required length would fabricate a different product code.
func (v *FieldValidatorImpl) ValidateCandidate(c entities.Candidate) (entities.Medication, *entities.Rejection) {
	var m entities.Medication

	pzn, rej := v.validatePznField(c.Pzn)
	if rej != nil {
		return m, rej
	}

	price, err := entities.ParseCents(c.PriceRaw)
	if err != nil {
		return m, &entities.Rejection{
			Reason: entities.RejectPriceFormat,
			Detail: fmt.Sprintf("pzn %s: %v", pzn, err),
		}
	}
	if price <= 0 || price > v.maxPrice {
		return m, &entities.Rejection{
			Reason: entities.RejectPriceRange,
			Detail: fmt.Sprintf("pzn %s: price %s outside 0,01..%s", pzn, price, v.maxPrice),
		}
	}

	name := strings.TrimSpace(c.Name)
	if len(name) < v.minNameLength {
		return m, &entities.Rejection{
			Reason: entities.RejectNameLength,
			Detail: fmt.Sprintf("pzn %s: name %q shorter than %d characters", pzn, name, v.minNameLength),
		}
	}

	m = entities.Medication{
		Pzn:               pzn,
		Name:              name,
		Manufacturer:      strings.TrimSpace(c.Manufacturer),
		ActiveIngredient:  strings.TrimSpace(c.ActiveIngredient),
		StrengthPrimary:   c.StrengthPrimary,
		StrengthSecondary: c.StrengthSecondary,
		PackageSize:       c.PackageSize,
		DosageForm:        strings.ToUpper(strings.TrimSpace(c.DosageForm)),
		Price:             price,
		FestbetragGroup:   strings.TrimSpace(c.FestbetragGroup),
		Tier:              c.Tier,
	}

	if c.FestbetragRaw != "" {
		festbetrag, err := entities.ParseCents(c.FestbetragRaw)
		if err != nil {
			return entities.Medication{}, &entities.Rejection{
				Reason: entities.RejectPriceFormat,
				Detail: fmt.Sprintf("pzn %s: festbetrag: %v", pzn, err),
			}
		}
		m.Festbetrag = &festbetrag
	}

	return m, nil
}

func (v *FieldValidatorImpl) validatePznField(input string) (string, *entities.Rejection) {
	pzn := stripNonDigits(input)
	if pzn == "" {
		return "", &entities.Rejection{
			Reason: entities.RejectPznNotDigits,
			Detail: fmt.Sprintf("identifier %q is not numeric", input),
		}
	}

	if len(pzn) != v.pznLength {
		return "", &entities.Rejection{
			Reason: entities.RejectPznLength,
			Detail: fmt.Sprintf("identifier %q has %d digits, expected %d", input, len(pzn), v.pznLength),
		}
	}

	return pzn, nil
}

// ValidatePzn validates a PZN coming in as a path or query parameter.
// No regex needed, strconv.ParseUint validates the digits for free.
func (v *FieldValidatorImpl) ValidatePzn(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", fmt.Errorf("input cannot be empty")
	}

	if len(input) != len(trimmed) {
		return "", fmt.Errorf("input contains invalid characters. Only numeric characters are allowed")
	}

	if len(trimmed) != v.pznLength {
		return "", fmt.Errorf("PZN should have %d digits", v.pznLength)
	}

	if _, err := strconv.ParseUint(trimmed, 10, 64); err != nil {
		return "", fmt.Errorf("input contains invalid characters. Only numeric characters are allowed")
	}

	return trimmed, nil
}

// ValidateInput validates free-text search input with enhanced security.
func (v *FieldValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) < 3 {
		return fmt.Errorf("input too short: minimum 3 characters")
	}

	if len(input) > 50 {
		return fmt.Errorf("input too long: maximum 50 characters")
	}

	words := strings.Fields(input)
	if len(words) > 6 {
		return fmt.Errorf("search query too complex: maximum 6 words allowed")
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces, hyphens, apostrophes, periods, plus sign, and German umlauts are allowed")
	}

	return nil
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
