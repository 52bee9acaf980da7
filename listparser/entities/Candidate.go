package entities

// Candidate is a raw record assembled by the extractor before field
// validation. Price and Festbetrag are kept as the original tokens so the
// validator owns all numeric interpretation.
type Candidate struct {
	Pzn               string
	Name              string
	Manufacturer      string
	PriceRaw          string
	FestbetragRaw     string
	ActiveIngredient  string
	FestbetragGroup   string
	Tier              int
	StrengthPrimary   *float64
	StrengthSecondary *float64
	PackageSize       int
	DosageForm        string
	RawLine           string
	LineNumber        int
}

// RejectReason identifies why the validator refused a candidate. The import
// summary keeps a histogram keyed by these values.
type RejectReason string

const (
	RejectPznLength    RejectReason = "pzn_length_mismatch"
	RejectPznNotDigits RejectReason = "pzn_not_numeric"
	RejectPriceFormat  RejectReason = "price_format"
	RejectPriceRange   RejectReason = "price_out_of_range"
	RejectNameLength   RejectReason = "name_too_short"
)

// Rejection carries the reason plus a human-readable detail for logging.
type Rejection struct {
	Reason RejectReason
	Detail string
}
