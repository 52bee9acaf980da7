package entities

// Festbetrag tiers as published in the reference price lists.
const (
	TierSameSubstance          = 1 // same active substance
	TierComparableSubstance    = 2 // pharmacologically comparable substances
	TierComparableTherapeutics = 3 // therapeutically comparable effect
)

// Medication is one priced package entry from the Festbetrag list. A PZN can
// appear with several package sizes and dosage forms, so the logical key is
// (pzn, packageSize, dosageForm).
type Medication struct {
	Pzn               string   `json:"pzn"`
	Name              string   `json:"name"`
	Manufacturer      string   `json:"manufacturer,omitempty"`
	ActiveIngredient  string   `json:"activeIngredient,omitempty"`
	StrengthPrimary   *float64 `json:"strengthPrimary,omitempty"`
	StrengthSecondary *float64 `json:"strengthSecondary,omitempty"`
	PackageSize       int      `json:"packageSize"`
	DosageForm        string   `json:"dosageForm"`
	Price             Cents    `json:"price"`
	Festbetrag        *Cents   `json:"festbetrag,omitempty"`
	FestbetragGroup   string   `json:"festbetragGroup,omitempty"`
	Tier              int      `json:"tier,omitempty"`
	SnapshotDate      string   `json:"snapshotDate,omitempty"`
	Exempt            bool     `json:"exempt"`
}

// PriceDelta returns price minus Festbetrag, or nil when no Festbetrag is
// published for the group. The delta is always derived, never stored.
func (m *Medication) PriceDelta() *Cents {
	if m.Festbetrag == nil {
		return nil
	}
	d := m.Price - *m.Festbetrag
	return &d
}
