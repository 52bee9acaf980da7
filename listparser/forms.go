package listparser

// Dosage form abbreviations as printed in the lists, mapped to their long
// German names for API responses.
var dosageForms = map[string]string{
	"TABL": "Tabletten",
	"FTBL": "Filmtabletten",
	"UTAB": "Überzogene Tabletten",
	"BTAB": "Brausetabletten",
	"KTAB": "Kautabletten",
	"LTAB": "Lutschtabletten",
	"STAB": "Schmelztabletten",
	"RTAB": "Retardtabletten",
	"MTAB": "Magensaftresistente Tabletten",
	"DRAG": "Dragees",
	"KAPS": "Kapseln",
	"WKAP": "Weichkapseln",
	"HKAP": "Hartkapseln",
	"RKAP": "Retardkapseln",
	"MKAP": "Magensaftresistente Kapseln",
	"TROP": "Tropfen",
	"LSG":  "Lösung",
	"ILSG": "Infusionslösung",
	"IJLG": "Injektionslösung",
	"SAFT": "Saft",
	"SIR":  "Sirup",
	"SUSP": "Suspension",
	"EMUL": "Emulsion",
	"GRAN": "Granulat",
	"PLV":  "Pulver",
	"BEUT": "Beutel",
	"SUPP": "Suppositorien",
	"ZAEP": "Zäpfchen",
	"SALB": "Salbe",
	"CRE":  "Creme",
	"GEL":  "Gel",
	"PFLA": "Pflaster",
	"PFT":  "Pflaster transdermal",
	"SPRY": "Spray",
	"DOSA": "Dosieraerosol",
	"INHA": "Inhalat",
	"IKAP": "Inhalationskapseln",
	"NTRO": "Nasentropfen",
	"NSPR": "Nasenspray",
	"ATRO": "Augentropfen",
	"ASAL": "Augensalbe",
	"OTRO": "Ohrentropfen",
	"AMP":  "Ampullen",
	"FER":  "Fertigspritzen",
	"PEN":  "Injektions-Pen",
}

// Package size classes. Each form has N1/N2 upper bounds, everything above
// the N2 bound counts as N3.
var packSizeRules = map[string][2]int{
	"TABL": {10, 30},
	"FTBL": {10, 30},
	"KAPS": {10, 30},
	"DRAG": {10, 30},
	"TROP": {20, 50},
	"LSG":  {50, 100},
	"SAFT": {100, 200},
	"SUPP": {5, 10},
	"AMP":  {5, 10},
	"SALB": {20, 50},
	"CRE":  {20, 50},
	"GEL":  {20, 50},
	"PFLA": {4, 8},
}

var defaultPackSizeRule = [2]int{10, 30}

// IsFormCode reports whether a token is a known dosage form abbreviation.
func IsFormCode(token string) bool {
	_, ok := dosageForms[token]
	return ok
}

// FormName returns the long display name for a form abbreviation, or the
// abbreviation itself when unknown.
func FormName(code string) string {
	if name, ok := dosageForms[code]; ok {
		return name
	}
	return code
}

// PackClass classifies a package count into N1, N2 or N3 using the
// per-form thresholds. Unknown sizes return an empty class.
func PackClass(form string, size int) string {
	if size <= 0 {
		return ""
	}
	rule, ok := packSizeRules[form]
	if !ok {
		rule = defaultPackSizeRule
	}
	switch {
	case size <= rule[0]:
		return "N1"
	case size <= rule[1]:
		return "N2"
	default:
		return "N3"
	}
}
