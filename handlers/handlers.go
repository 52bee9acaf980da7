// Package handlers provides HTTP request handlers for the festbetrag API
// endpoints. It includes handlers for record lookup by PZN, search, cheaper
// alternative lookup, health checks, and response formatting with proper
// input validation and error handling.
package handlers

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medpreis/festbetrag-api/compare"
	"github.com/medpreis/festbetrag-api/interfaces"
	"github.com/medpreis/festbetrag-api/listparser"
	"github.com/medpreis/festbetrag-api/listparser/entities"
	"github.com/medpreis/festbetrag-api/logging"
)

// Handler serves the API endpoints with injected dependencies
type Handler struct {
	records     interfaces.RecordStore
	validator   interfaces.FieldValidator
	matcher     *compare.Matcher
	status      interfaces.StatusStore
	health      interfaces.HealthChecker
	searchLimit int
}

// NewHandler creates a new handler with injected dependencies
func NewHandler(records interfaces.RecordStore, validator interfaces.FieldValidator,
	matcher *compare.Matcher, status interfaces.StatusStore,
	health interfaces.HealthChecker, searchLimit int) *Handler {
	return &Handler{
		records:     records,
		validator:   validator,
		matcher:     matcher,
		status:      status,
		health:      health,
		searchLimit: searchLimit,
	}
}

// MedicationView is a stored record enriched with the derived price
// comparison fields
type MedicationView struct {
	entities.Medication
	PriceDelta      *entities.Cents  `json:"priceDelta"`
	Position        compare.Position `json:"position"`
	CopaymentExempt bool             `json:"copaymentExempt"`
	FormName        string           `json:"formName,omitempty"`
	PackClass       string           `json:"packClass,omitempty"`
}

// AlternativesResponse pairs a stored record with its cheaper substitutes
type AlternativesResponse struct {
	Reference    MedicationView        `json:"reference"`
	Alternatives []compare.Alternative `json:"alternatives"`
}

// RespondWithJSON writes a JSON response
func (h *Handler) RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *Handler) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

func (h *Handler) view(m entities.Medication) MedicationView {
	return MedicationView{
		Medication: m,
		PriceDelta: compare.Delta(m.Price, m.Festbetrag),
		Position:   compare.Classify(m.Price, m.Festbetrag),
		// The stored flag doubles as the manufacturer agreement input:
		// the exemption lists publish agreement-based exemptions
		CopaymentExempt: compare.IsExempt(m.Price, m.Festbetrag, m.Exempt),
		FormName:        listparser.FormName(m.DosageForm),
		PackClass:       listparser.PackClass(m.DosageForm, m.PackageSize),
	}
}

// FindMedication returns all stored records for a PZN
func (h *Handler) FindMedication(w http.ResponseWriter, r *http.Request) {
	pzn, err := h.validator.ValidatePzn(chi.URLParam(r, "pzn"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.records.GetByPzn(pzn)
	if err != nil {
		logging.Error("Record lookup failed", "pzn", pzn, "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Lookup failed")
		return
	}
	if len(records) == 0 {
		h.RespondWithError(w, http.StatusNotFound, "Medication not found")
		return
	}

	views := make([]MedicationView, 0, len(records))
	for _, m := range records {
		views = append(views, h.view(m))
	}

	h.RespondWithJSON(w, http.StatusOK, views)
}

// SearchMedications searches records by PZN prefix, name or active
// ingredient depending on the mode query parameter
func (h *Handler) SearchMedications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		h.RespondWithError(w, http.StatusBadRequest, "Missing search term")
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "name"
	}

	limit := h.searchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		if n < limit {
			limit = n
		}
	}

	var results []entities.Medication
	var err error

	switch mode {
	case "pzn":
		prefix, len8 := digitPrefix(query)
		if !len8 {
			h.RespondWithError(w, http.StatusBadRequest, "Invalid identifier prefix")
			return
		}
		results, err = h.records.SearchByPznPrefix(prefix, limit)
	case "name":
		if err := h.validator.ValidateInput(query); err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		results, err = h.records.SearchByName(query, limit)
	case "ingredient":
		if err := h.validator.ValidateInput(query); err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		results, err = h.records.SearchByIngredient(query, limit)
	default:
		h.RespondWithError(w, http.StatusBadRequest, "Invalid search mode")
		return
	}

	if err != nil {
		logging.Error("Search failed", "mode", mode, "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	// Always return 200 with results array (empty if no matches)
	views := make([]MedicationView, 0, len(results))
	for _, m := range results {
		views = append(views, h.view(m))
	}
	h.RespondWithJSON(w, http.StatusOK, views)
}

// FindAlternatives returns substitutable cheaper records for every stored
// record under a PZN
func (h *Handler) FindAlternatives(w http.ResponseWriter, r *http.Request) {
	pzn, err := h.validator.ValidatePzn(chi.URLParam(r, "pzn"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.records.GetByPzn(pzn)
	if err != nil {
		logging.Error("Record lookup failed", "pzn", pzn, "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Lookup failed")
		return
	}
	if len(records) == 0 {
		h.RespondWithError(w, http.StatusNotFound, "Medication not found")
		return
	}

	response := make([]AlternativesResponse, 0, len(records))
	for _, m := range records {
		alternatives, err := h.matcher.Alternatives(m, h.searchLimit)
		if err != nil {
			logging.Error("Alternative lookup failed", "pzn", pzn, "error", err)
			h.RespondWithError(w, http.StatusInternalServerError, "Lookup failed")
			return
		}
		if alternatives == nil {
			alternatives = []compare.Alternative{}
		}
		response = append(response, AlternativesResponse{
			Reference:    h.view(m),
			Alternatives: alternatives,
		})
	}

	h.RespondWithJSON(w, http.StatusOK, response)
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string                 `json:"status"`
	UptimeSeconds float64                `json:"uptime_seconds"`
	Data          map[string]interface{} `json:"data"`
	System        map[string]interface{} `json:"system"`
}

// HealthCheck returns server health information
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.status.ServerStartTime())

	status, details, httpStatus := h.health.HealthCheck()

	response := HealthResponse{
		Status:        status,
		UptimeSeconds: uptime.Seconds(),
		Data:          details,
		System: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}

	h.RespondWithJSON(w, httpStatus, response)
}

// digitPrefix reports whether s is one to eight digits, suitable as a PZN
// prefix search term
func digitPrefix(s string) (string, bool) {
	if len(s) == 0 || len(s) > 8 {
		return "", false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return s, true
}
