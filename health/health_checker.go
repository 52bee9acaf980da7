// Package health provides health checking functionality for the festbetrag API.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/medpreis/festbetrag-api/interfaces"
)

// The lists are published monthly, so the data is allowed to age for
// several weeks before the service reports as degraded.
const (
	degradedAge  = 35 * 24 * time.Hour
	unhealthyAge = 60 * 24 * time.Hour
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	records interfaces.RecordStore
	status  interfaces.StatusStore
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(records interfaces.RecordStore, status interfaces.StatusStore) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		records: records,
		status:  status,
	}
}

// HealthCheck returns HTTP-specific health data
// Used by /health HTTP endpoint
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	recordCount := h.status.RecordCount()
	exemptCount := h.status.ExemptCount()
	lastImport := h.status.LastImport()
	isImporting := h.status.IsImporting()

	dataAge := time.Since(lastImport)

	pingErr := h.records.Ping()

	switch {
	case pingErr != nil:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case recordCount == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > unhealthyAge:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > degradedAge:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"last_import":        lastImport.Format(time.RFC3339),
		"data_age_days":      math.Round(dataAge.Hours()/24*10) / 10,
		"records":            recordCount,
		"exempt":             exemptCount,
		"is_importing":       isImporting,
		"database_reachable": pingErr == nil,
	}
	if pingErr != nil {
		data["database_error"] = pingErr.Error()
	}

	return status, data, httpStatus
}
