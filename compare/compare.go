// Package compare implements price-versus-Festbetrag classification,
// co-payment exemption evaluation and cheaper-equivalent lookups.
package compare

import (
	"github.com/medpreis/festbetrag-api/interfaces"
	"github.com/medpreis/festbetrag-api/listparser/entities"
)

// Position of a price relative to its Festbetrag.
type Position string

const (
	UnderCeiling Position = "underCeiling"
	OverCeiling  Position = "overCeiling"
	AtCeiling    Position = "exactlyAtCeiling"
	NoCeiling    Position = "noCeiling"
)

// Classify returns the position of a price against the Festbetrag by the
// sign of price minus ceiling. A missing Festbetrag gives NoCeiling.
func Classify(price entities.Cents, festbetrag *entities.Cents) Position {
	if festbetrag == nil {
		return NoCeiling
	}
	switch delta := price - *festbetrag; {
	case delta < 0:
		return UnderCeiling
	case delta > 0:
		return OverCeiling
	default:
		return AtCeiling
	}
}

// Delta returns price minus Festbetrag in cents, nil without a Festbetrag.
func Delta(price entities.Cents, festbetrag *entities.Cents) *entities.Cents {
	if festbetrag == nil {
		return nil
	}
	d := price - *festbetrag
	return &d
}

// IsExempt reports co-payment exemption: the price sits at or below 70% of
// the Festbetrag, or the manufacturer holds a rebate agreement. The
// threshold compares 10*price against 7*ceiling so fractional-cent
// boundaries stay exact. Without a published Festbetrag the price test can
// never pass.
func IsExempt(price entities.Cents, festbetrag *entities.Cents, manufacturerAgreement bool) bool {
	if manufacturerAgreement {
		return true
	}
	if festbetrag == nil {
		return false
	}
	return 10*price <= 7*(*festbetrag)
}

// Alternative is a substitutable medication with the amount saved by
// switching to it from the reference record.
type Alternative struct {
	Medication entities.Medication `json:"medication"`
	Savings    entities.Cents      `json:"savings"`
}

// Matcher finds substitutable medications through the record store.
type Matcher struct {
	store interfaces.RecordStore
}

// NewMatcher creates a matcher backed by the given store.
func NewMatcher(store interfaces.RecordStore) *Matcher {
	return &Matcher{store: store}
}

// Alternatives returns the substitutable records for m, cheapest first,
// with savings relative to m's price. Savings can be negative when the
// alternative is dearer.
func (mt *Matcher) Alternatives(m entities.Medication, limit int) ([]Alternative, error) {
	candidates, err := mt.store.FindAlternatives(m, limit)
	if err != nil {
		return nil, err
	}

	alternatives := make([]Alternative, 0, len(candidates))
	for _, c := range candidates {
		alternatives = append(alternatives, Alternative{
			Medication: c,
			Savings:    m.Price - c.Price,
		})
	}

	return alternatives, nil
}
