package compare

import (
	"testing"

	"github.com/medpreis/festbetrag-api/listparser/entities"
)

func cents(v int64) *entities.Cents {
	c := entities.Cents(v)
	return &c
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		price      entities.Cents
		festbetrag *entities.Cents
		expected   Position
	}{
		{"under ceiling", 1420, cents(1597), UnderCeiling},
		{"over ceiling", 1650, cents(1597), OverCeiling},
		{"exactly at ceiling", 1597, cents(1597), AtCeiling},
		{"one cent under", 1596, cents(1597), UnderCeiling},
		{"one cent over", 1598, cents(1597), OverCeiling},
		{"no ceiling", 1420, nil, NoCeiling},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.price, tt.festbetrag); got != tt.expected {
				t.Errorf("Classify(%d, %v) = %q, want %q", tt.price, tt.festbetrag, got, tt.expected)
			}
		})
	}
}

func TestDelta(t *testing.T) {
	if d := Delta(1650, cents(1597)); d == nil || *d != 53 {
		t.Errorf("Delta(1650, 1597) = %v, want 53", d)
	}
	if d := Delta(1420, cents(1597)); d == nil || *d != -177 {
		t.Errorf("Delta(1420, 1597) = %v, want -177", d)
	}
	if d := Delta(1420, nil); d != nil {
		t.Errorf("Delta without ceiling = %v, want nil", d)
	}
}

func TestIsExempt(t *testing.T) {
	tests := []struct {
		name       string
		price      entities.Cents
		festbetrag *entities.Cents
		agreement  bool
		expected   bool
	}{
		// 70% of 14,00 is 9,80
		{"well under threshold", 900, cents(1400), false, true},
		{"exactly at threshold", 980, cents(1400), false, true},
		{"one cent over threshold", 981, cents(1400), false, false},
		{"at ceiling", 1400, cents(1400), false, false},
		// 70% of 19,29 is 13,503, the boundary is not a whole cent
		{"under fractional threshold", 1350, cents(1929), false, true},
		{"over fractional threshold", 1351, cents(1929), false, false},
		{"agreement overrides price", 1500, cents(1400), true, true},
		{"agreement without ceiling", 1500, nil, true, true},
		{"no ceiling no agreement", 100, nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsExempt(tt.price, tt.festbetrag, tt.agreement)
			if got != tt.expected {
				t.Errorf("IsExempt(%d, %v, %v) = %v, want %v",
					tt.price, tt.festbetrag, tt.agreement, got, tt.expected)
			}
		})
	}
}

// fakeStore returns canned alternatives for the matcher.
type fakeStore struct {
	alternatives []entities.Medication
	err          error
}

func (f *fakeStore) UpsertBatch(records []entities.Medication, overwriteExempt bool) (int, int, int, error) {
	return 0, 0, 0, nil
}
func (f *fakeStore) ApplyExemptions(updates []entities.ExemptionUpdate, resetFirst bool) (int, int, error) {
	return 0, 0, nil
}
func (f *fakeStore) ResetExemptFlags() (int64, error) { return 0, nil }
func (f *fakeStore) GetByPzn(pzn string) ([]entities.Medication, error) {
	return nil, nil
}
func (f *fakeStore) SearchByPznPrefix(prefix string, limit int) ([]entities.Medication, error) {
	return nil, nil
}
func (f *fakeStore) SearchByName(query string, limit int) ([]entities.Medication, error) {
	return nil, nil
}
func (f *fakeStore) SearchByIngredient(query string, limit int) ([]entities.Medication, error) {
	return nil, nil
}
func (f *fakeStore) FindAlternatives(m entities.Medication, limit int) ([]entities.Medication, error) {
	return f.alternatives, f.err
}
func (f *fakeStore) Count() (int, error)       { return 0, nil }
func (f *fakeStore) CountExempt() (int, error) { return 0, nil }
func (f *fakeStore) Ping() error               { return nil }

func TestMatcherAlternatives(t *testing.T) {
	reference := entities.Medication{Pzn: "11111111", Price: 1420, FestbetragGroup: "Ibuprofen, Gruppe 1"}

	store := &fakeStore{alternatives: []entities.Medication{
		{Pzn: "22222222", Price: 990},
		{Pzn: "33333333", Price: 1500},
	}}

	alternatives, err := NewMatcher(store).Alternatives(reference, 10)
	if err != nil {
		t.Fatalf("Alternatives returned error: %v", err)
	}
	if len(alternatives) != 2 {
		t.Fatalf("got %d alternatives, want 2", len(alternatives))
	}

	if alternatives[0].Savings != 430 {
		t.Errorf("Savings = %d, want 430", alternatives[0].Savings)
	}
	// A dearer equivalent shows negative savings
	if alternatives[1].Savings != -80 {
		t.Errorf("Savings = %d, want -80", alternatives[1].Savings)
	}
}

func TestMatcherEmptyResult(t *testing.T) {
	alternatives, err := NewMatcher(&fakeStore{}).Alternatives(entities.Medication{Pzn: "11111111"}, 10)
	if err != nil {
		t.Fatalf("Alternatives returned error: %v", err)
	}
	if len(alternatives) != 0 {
		t.Errorf("got %d alternatives, want 0", len(alternatives))
	}
}
