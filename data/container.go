// Package data provides thread-safe import status tracking for the
// festbetrag API. The StatusContainer holds the last import summary and
// the current record counts with atomic operations so handlers never
// block on a running import.
package data

import (
	"sync/atomic"
	"time"

	"github.com/medpreis/festbetrag-api/interfaces"
	"github.com/medpreis/festbetrag-api/listparser/entities"
	"github.com/medpreis/festbetrag-api/logging"
)

// Compile-time check to ensure StatusContainer implements StatusStore
var _ interfaces.StatusStore = (*StatusContainer)(nil)

// StatusContainer holds import status with atomic values
type StatusContainer struct {
	lastSummary     atomic.Value // *entities.ImportSummary
	lastImport      atomic.Value // time.Time
	recordCount     atomic.Int64
	exemptCount     atomic.Int64
	importing       atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewStatusContainer creates a new StatusContainer with empty status
func NewStatusContainer() *StatusContainer {
	sc := &StatusContainer{}
	sc.lastImport.Store(time.Time{})
	sc.serverStartTime.Store(time.Time{})
	return sc
}

// LastSummary returns the summary of the most recent import, or nil if
// no import has run yet
func (sc *StatusContainer) LastSummary() *entities.ImportSummary {
	if v := sc.lastSummary.Load(); v != nil {
		if summary, ok := v.(*entities.ImportSummary); ok {
			return summary
		}
	}

	return nil
}

// LastImport returns the timestamp of the last completed import
func (sc *StatusContainer) LastImport() time.Time {
	if v := sc.lastImport.Load(); v != nil {
		if lastImport, ok := v.(time.Time); ok {
			return lastImport
		}
	}

	logging.Warn("Could not get the last import value")
	return time.Time{}
}

// RecordCount returns the number of stored records
func (sc *StatusContainer) RecordCount() int64 {
	return sc.recordCount.Load()
}

// ExemptCount returns the number of records flagged exempt
func (sc *StatusContainer) ExemptCount() int64 {
	return sc.exemptCount.Load()
}

// IsImporting returns true if an import is currently in progress
func (sc *StatusContainer) IsImporting() bool {
	return sc.importing.Load()
}

// SetServerStartTime sets the server start time
func (sc *StatusContainer) SetServerStartTime(startTime time.Time) {
	sc.serverStartTime.Store(startTime)
}

// ServerStartTime returns the server start time
func (sc *StatusContainer) ServerStartTime() time.Time {
	if v := sc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateStatus atomically records the result of a completed import
func (sc *StatusContainer) UpdateStatus(summary *entities.ImportSummary, records, exempt int64) {
	sc.lastSummary.Store(summary)
	sc.recordCount.Store(records)
	sc.exemptCount.Store(exempt)
	sc.lastImport.Store(time.Now())
}

// BeginImport marks the start of an import run
// Returns true if the import can proceed, false if another run is in progress
func (sc *StatusContainer) BeginImport() bool {
	return sc.importing.CompareAndSwap(false, true)
}

// EndImport marks the end of an import run
func (sc *StatusContainer) EndImport() {
	sc.importing.Store(false)
}
