package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medpreis/festbetrag-api/compare"
	"github.com/medpreis/festbetrag-api/data"
	"github.com/medpreis/festbetrag-api/listparser/entities"
	"github.com/medpreis/festbetrag-api/validation"
)

func cents(v int64) entities.Cents { return entities.Cents(v) }

func centsPtr(v int64) *entities.Cents {
	c := entities.Cents(v)
	return &c
}

// fakeStore serves canned records keyed by PZN.
type fakeStore struct {
	byPzn        map[string][]entities.Medication
	searchResult []entities.Medication
	alternatives []entities.Medication
	failLookup   bool

	lastQuery string
	lastMode  string
	lastLimit int
}

func (f *fakeStore) GetByPzn(pzn string) ([]entities.Medication, error) {
	if f.failLookup {
		return nil, errors.New("database closed")
	}
	return f.byPzn[pzn], nil
}

func (f *fakeStore) SearchByPznPrefix(prefix string, limit int) ([]entities.Medication, error) {
	f.lastQuery, f.lastMode, f.lastLimit = prefix, "pzn", limit
	return f.searchResult, nil
}

func (f *fakeStore) SearchByName(query string, limit int) ([]entities.Medication, error) {
	f.lastQuery, f.lastMode, f.lastLimit = query, "name", limit
	return f.searchResult, nil
}

func (f *fakeStore) SearchByIngredient(query string, limit int) ([]entities.Medication, error) {
	f.lastQuery, f.lastMode, f.lastLimit = query, "ingredient", limit
	return f.searchResult, nil
}

func (f *fakeStore) FindAlternatives(m entities.Medication, limit int) ([]entities.Medication, error) {
	return f.alternatives, nil
}

func (f *fakeStore) UpsertBatch(records []entities.Medication, overwriteExempt bool) (int, int, int, error) {
	return 0, 0, 0, nil
}
func (f *fakeStore) ApplyExemptions(updates []entities.ExemptionUpdate, resetFirst bool) (int, int, error) {
	return 0, 0, nil
}
func (f *fakeStore) ResetExemptFlags() (int64, error) { return 0, nil }
func (f *fakeStore) Count() (int, error)              { return 0, nil }
func (f *fakeStore) CountExempt() (int, error)        { return 0, nil }
func (f *fakeStore) Ping() error                      { return nil }

// fakeHealth returns a fixed health verdict.
type fakeHealth struct {
	status     string
	httpStatus int
}

func (f *fakeHealth) HealthCheck() (string, map[string]any, int) {
	return f.status, map[string]any{"records": 42}, f.httpStatus
}

func newTestRouter(store *fakeStore, health *fakeHealth) chi.Router {
	status := data.NewStatusContainer()
	status.SetServerStartTime(time.Now().Add(-time.Minute))

	h := NewHandler(store, validation.NewFieldValidator(),
		compare.NewMatcher(store), status, health, 100)

	r := chi.NewRouter()
	r.Get("/medications/{pzn}", h.FindMedication)
	r.Get("/medications/{pzn}/alternatives", h.FindAlternatives)
	r.Get("/search", h.SearchMedications)
	r.Get("/health", h.HealthCheck)
	return r
}

func doRequest(t *testing.T, router chi.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sampleRecord() entities.Medication {
	return entities.Medication{
		Pzn:             "12345678",
		Name:            "IBU HEXAL 400MG",
		Manufacturer:    "Hexal AG",
		PackageSize:     20,
		DosageForm:      "TABL",
		Price:           cents(1597),
		Festbetrag:      centsPtr(1420),
		FestbetragGroup: "Ibuprofen, Gruppe 1",
	}
}

func TestFindMedication(t *testing.T) {
	store := &fakeStore{byPzn: map[string][]entities.Medication{
		"12345678": {sampleRecord()},
	}}
	router := newTestRouter(store, &fakeHealth{})

	rec := doRequest(t, router, "/medications/12345678")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}

	var views []MedicationView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d views, want 1", len(views))
	}
	v := views[0]
	if v.Pzn != "12345678" {
		t.Errorf("pzn = %q", v.Pzn)
	}
	if v.Position != compare.OverCeiling {
		t.Errorf("position = %q, want overCeiling", v.Position)
	}
	if v.PriceDelta == nil || *v.PriceDelta != cents(177) {
		t.Errorf("priceDelta = %v, want 177 cents", v.PriceDelta)
	}
	// 15,97 is above 70% of the 14,20 ceiling and the flag is unset
	if v.CopaymentExempt {
		t.Error("copaymentExempt = true, want false")
	}
	if v.FormName != "Tabletten" {
		t.Errorf("formName = %q, want Tabletten", v.FormName)
	}
	if v.PackClass != "N2" {
		t.Errorf("packClass = %q, want N2", v.PackClass)
	}
}

func TestFindMedicationErrors(t *testing.T) {
	tests := []struct {
		name     string
		store    *fakeStore
		path     string
		expected int
	}{
		{"invalid pzn", &fakeStore{}, "/medications/1234", http.StatusBadRequest},
		{"non digit pzn", &fakeStore{}, "/medications/abcdefgh", http.StatusBadRequest},
		{"unknown pzn", &fakeStore{}, "/medications/99999999", http.StatusNotFound},
		{"store failure", &fakeStore{failLookup: true}, "/medications/12345678", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(tt.store, &fakeHealth{})
			rec := doRequest(t, router, tt.path)
			if rec.Code != tt.expected {
				t.Errorf("status = %d, want %d", rec.Code, tt.expected)
			}

			var body map[string]interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("error response is not JSON: %v", err)
			}
			if body["error"] != http.StatusText(tt.expected) {
				t.Errorf("error field = %v", body["error"])
			}
		})
	}
}

func TestSearchMedications(t *testing.T) {
	store := &fakeStore{searchResult: []entities.Medication{sampleRecord()}}
	router := newTestRouter(store, &fakeHealth{})

	t.Run("default mode is name", func(t *testing.T) {
		rec := doRequest(t, router, "/search?q=ibuprofen")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if store.lastMode != "name" || store.lastQuery != "ibuprofen" {
			t.Errorf("dispatched %s/%q, want name/ibuprofen", store.lastMode, store.lastQuery)
		}
		if store.lastLimit != 100 {
			t.Errorf("limit = %d, want the configured cap 100", store.lastLimit)
		}
	})

	t.Run("pzn prefix mode", func(t *testing.T) {
		rec := doRequest(t, router, "/search?q=123&mode=pzn")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if store.lastMode != "pzn" || store.lastQuery != "123" {
			t.Errorf("dispatched %s/%q, want pzn/123", store.lastMode, store.lastQuery)
		}
	})

	t.Run("ingredient mode", func(t *testing.T) {
		rec := doRequest(t, router, "/search?q=Ibuprofen&mode=ingredient")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if store.lastMode != "ingredient" {
			t.Errorf("dispatched %s, want ingredient", store.lastMode)
		}
	})

	t.Run("limit below cap wins", func(t *testing.T) {
		doRequest(t, router, "/search?q=ibuprofen&limit=5")
		if store.lastLimit != 5 {
			t.Errorf("limit = %d, want 5", store.lastLimit)
		}
	})

	t.Run("limit above cap is clamped", func(t *testing.T) {
		doRequest(t, router, "/search?q=ibuprofen&limit=9999")
		if store.lastLimit != 100 {
			t.Errorf("limit = %d, want 100", store.lastLimit)
		}
	})

	t.Run("no matches still 200 with empty array", func(t *testing.T) {
		empty := &fakeStore{}
		emptyRouter := newTestRouter(empty, &fakeHealth{})
		rec := doRequest(t, emptyRouter, "/search?q=nichts")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if body := rec.Body.String(); body != "[]" {
			t.Errorf("body = %q, want []", body)
		}
	})
}

func TestSearchMedicationsBadRequests(t *testing.T) {
	router := newTestRouter(&fakeStore{}, &fakeHealth{})

	tests := []struct {
		name string
		path string
	}{
		{"missing term", "/search"},
		{"invalid mode", "/search?q=aspirin&mode=color"},
		{"zero limit", "/search?q=aspirin&limit=0"},
		{"non numeric limit", "/search?q=aspirin&limit=viele"},
		{"pzn prefix with letters", "/search?q=12ab&mode=pzn"},
		{"pzn prefix too long", "/search?q=123456789&mode=pzn"},
		{"script injection", "/search?q=%3Cscript%3E"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, tt.path)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestFindAlternativesEndpoint(t *testing.T) {
	cheaper := sampleRecord()
	cheaper.Pzn = "87654321"
	cheaper.Name = "IBU BASICS 400MG"
	cheaper.Price = cents(1167)

	store := &fakeStore{
		byPzn:        map[string][]entities.Medication{"12345678": {sampleRecord()}},
		alternatives: []entities.Medication{cheaper},
	}
	router := newTestRouter(store, &fakeHealth{})

	rec := doRequest(t, router, "/medications/12345678/alternatives")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var response []AlternativesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("got %d reference records, want 1", len(response))
	}
	if response[0].Reference.Pzn != "12345678" {
		t.Errorf("reference pzn = %q", response[0].Reference.Pzn)
	}
	if len(response[0].Alternatives) != 1 {
		t.Fatalf("got %d alternatives, want 1", len(response[0].Alternatives))
	}
	alt := response[0].Alternatives[0]
	if alt.Medication.Pzn != "87654321" {
		t.Errorf("alternative pzn = %q", alt.Medication.Pzn)
	}
	if alt.Savings != cents(430) {
		t.Errorf("savings = %d, want 430", alt.Savings)
	}
}

func TestFindAlternativesNoSubstitutes(t *testing.T) {
	store := &fakeStore{
		byPzn: map[string][]entities.Medication{"12345678": {sampleRecord()}},
	}
	router := newTestRouter(store, &fakeHealth{})

	rec := doRequest(t, router, "/medications/12345678/alternatives")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var response []AlternativesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if response[0].Alternatives == nil || len(response[0].Alternatives) != 0 {
		t.Errorf("alternatives = %v, want empty array", response[0].Alternatives)
	}
}

func TestHealthCheckEndpoint(t *testing.T) {
	tests := []struct {
		status     string
		httpStatus int
	}{
		{"healthy", http.StatusOK},
		{"degraded", http.StatusOK},
		{"unhealthy", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			router := newTestRouter(&fakeStore{}, &fakeHealth{status: tt.status, httpStatus: tt.httpStatus})
			rec := doRequest(t, router, "/health")
			if rec.Code != tt.httpStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.httpStatus)
			}

			var response HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
				t.Fatalf("invalid JSON response: %v", err)
			}
			if response.Status != tt.status {
				t.Errorf("status field = %q, want %q", response.Status, tt.status)
			}
			if response.UptimeSeconds <= 0 {
				t.Errorf("uptime_seconds = %f, want > 0", response.UptimeSeconds)
			}
			if response.Data["records"] != float64(42) {
				t.Errorf("data.records = %v", response.Data["records"])
			}
			if _, ok := response.System["goroutines"]; !ok {
				t.Error("system.goroutines missing")
			}
		})
	}
}
