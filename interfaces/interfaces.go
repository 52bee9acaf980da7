// Package interfaces defines the core abstractions of the Festbetrag API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"time"

	"github.com/medpreis/festbetrag-api/listparser/entities"
)

// RecordStore is the contract for the persistent medication store. One
// import batch writes at a time, reads may run concurrently.
type RecordStore interface {
	// UpsertBatch writes all records in one transaction. Records the store
	// rejects are skipped and counted as conflicts, an I/O or commit error
	// rolls the whole batch back. The exemption flag of existing rows is
	// preserved unless overwriteExempt is set.
	UpsertBatch(records []entities.Medication, overwriteExempt bool) (inserted, updated, conflicts int, err error)

	// ApplyExemptions flags the listed PZNs as co-payment exempt in one
	// transaction, optionally clearing all flags first.
	ApplyExemptions(updates []entities.ExemptionUpdate, resetFirst bool) (updated, notFound int, err error)
	ResetExemptFlags() (int64, error)

	// Reads, all ordered by price ascending
	GetByPzn(pzn string) ([]entities.Medication, error)
	SearchByPznPrefix(prefix string, limit int) ([]entities.Medication, error)
	SearchByName(query string, limit int) ([]entities.Medication, error)
	SearchByIngredient(query string, limit int) ([]entities.Medication, error)
	FindAlternatives(m entities.Medication, limit int) ([]entities.Medication, error)

	Count() (int, error)
	CountExempt() (int, error)
	Ping() error
}

// FieldValidator turns raw extractor candidates into validated records.
// It never panics; invalid candidates come back with a typed rejection.
type FieldValidator interface {
	ValidateCandidate(c entities.Candidate) (entities.Medication, *entities.Rejection)

	// ValidatePzn validates a PZN path or query parameter
	ValidatePzn(input string) (string, error)

	// ValidateInput validates free-text search input
	ValidateInput(input string) error
}

// Importer runs list imports against the record store.
type Importer interface {
	ImportFestbetragList(path string) (*entities.ImportSummary, error)
	ImportExemptionList(path string) (*entities.ImportSummary, error)
	ImportExemptionCSV(path string, resetFirst bool) (*entities.ImportSummary, error)
}

// StatusStore exposes the state of the last import run to handlers and
// health checks without touching the database.
type StatusStore interface {
	LastSummary() *entities.ImportSummary
	LastImport() time.Time
	RecordCount() int64
	ExemptCount() int64
	IsImporting() bool

	BeginImport() bool
	EndImport()
	UpdateStatus(summary *entities.ImportSummary, records, exempt int64)

	ServerStartTime() time.Time
	SetServerStartTime(t time.Time)
}

// Scheduler manages the periodic import runs and health monitoring.
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker reports system health for the /health endpoint.
type HealthChecker interface {
	HealthCheck() (status string, details map[string]any, httpStatus int)
}
