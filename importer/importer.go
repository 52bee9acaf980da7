// Package importer runs full list import passes: scan, validate, and write
// the records to the store in one atomic batch per run.
package importer

import (
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/medpreis/festbetrag-api/interfaces"
	"github.com/medpreis/festbetrag-api/listparser"
	"github.com/medpreis/festbetrag-api/listparser/entities"
	"github.com/medpreis/festbetrag-api/logging"
	"github.com/medpreis/festbetrag-api/metrics"
)

// Compile-time check to ensure Importer implements interfaces.Importer
var _ interfaces.Importer = (*Importer)(nil)

// The publishers put the effective date into the filename,
// e.g. festbetraege_20260801.txt
var filenameDate = regexp.MustCompile(`(\d{4})(\d{2})(\d{2})`)

// Importer validates extracted candidates and writes them to the store.
type Importer struct {
	store     interfaces.RecordStore
	validator interfaces.FieldValidator
}

// New creates an importer over the given store and validator.
func New(store interfaces.RecordStore, validator interfaces.FieldValidator) *Importer {
	return &Importer{store: store, validator: validator}
}

// ImportFestbetragList imports a reimbursement-ceiling list. Malformed
// lines are counted and skipped; a read or storage failure aborts the run
// with the store unchanged.
func (im *Importer) ImportFestbetragList(path string) (*entities.ImportSummary, error) {
	start := time.Now()
	summary := &entities.ImportSummary{
		Source:       filepath.Base(path),
		SnapshotDate: SnapshotDateFromFilename(path),
		StartedAt:    start,
	}

	candidates, stats, err := listparser.ParseFestbetragFile(path)
	if err != nil {
		return nil, fmt.Errorf("festbetrag import of %s failed: %w", path, err)
	}
	summary.LinesRead = stats.LinesRead

	records := im.validateAll(candidates, summary)
	for i := range records {
		records[i].SnapshotDate = summary.SnapshotDate
	}

	inserted, updated, conflicts, err := im.store.UpsertBatch(records, false)
	if err != nil {
		return nil, fmt.Errorf("festbetrag import of %s failed: %w", path, err)
	}
	summary.Inserted = inserted
	summary.Updated = updated
	summary.Conflicts = conflicts

	im.finish(summary, stats, start)
	logging.Info("Festbetrag import completed",
		"source", summary.Source,
		"snapshot_date", summary.SnapshotDate,
		"accepted", summary.Accepted,
		"rejected", summary.Rejected,
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"conflicts", summary.Conflicts,
		"duration", summary.Duration.String())

	return summary, nil
}

// ImportExemptionList imports a co-payment exemption list in text form.
// Accepted entries flag their PZNs in one transaction.
func (im *Importer) ImportExemptionList(path string) (*entities.ImportSummary, error) {
	candidates, stats, err := listparser.ParseExemptionFile(path)
	if err != nil {
		return nil, fmt.Errorf("exemption import of %s failed: %w", path, err)
	}
	return im.applyExemptionCandidates(path, candidates, stats, false)
}

// ImportExemptionCSV imports a co-payment exemption list in CSV form.
// With resetFirst all existing flags are cleared in the same transaction,
// making the CSV the complete new exemption state.
func (im *Importer) ImportExemptionCSV(path string, resetFirst bool) (*entities.ImportSummary, error) {
	candidates, stats, err := listparser.ReadExemptionCSV(path)
	if err != nil {
		return nil, fmt.Errorf("exemption CSV import of %s failed: %w", path, err)
	}
	return im.applyExemptionCandidates(path, candidates, stats, resetFirst)
}

func (im *Importer) applyExemptionCandidates(path string, candidates []entities.Candidate, stats *listparser.ScanStats, resetFirst bool) (*entities.ImportSummary, error) {
	start := time.Now()
	summary := &entities.ImportSummary{
		Source:    filepath.Base(path),
		StartedAt: start,
		LinesRead: stats.LinesRead,
	}

	records := im.validateAll(candidates, summary)

	updates := make([]entities.ExemptionUpdate, 0, len(records))
	for _, m := range records {
		updates = append(updates, entities.ExemptionUpdate{Pzn: m.Pzn, Manufacturer: m.Manufacturer})
	}

	updated, notFound, err := im.store.ApplyExemptions(updates, resetFirst)
	if err != nil {
		return nil, fmt.Errorf("exemption import of %s failed: %w", path, err)
	}
	summary.Updated = updated
	summary.NotFound = notFound

	im.finish(summary, stats, start)
	logging.Info("Exemption import completed",
		"source", summary.Source,
		"accepted", summary.Accepted,
		"rejected", summary.Rejected,
		"flagged", summary.Updated,
		"not_found", summary.NotFound,
		"reset_first", resetFirst,
		"duration", summary.Duration.String())

	return summary, nil
}

// validateAll runs the field validator over all candidates, filling the
// summary histogram. A missing manufacturer is looked up in the vendor
// table embedded in the medication name.
func (im *Importer) validateAll(candidates []entities.Candidate, summary *entities.ImportSummary) []entities.Medication {
	records := make([]entities.Medication, 0, len(candidates))
	for _, c := range candidates {
		m, rej := im.validator.ValidateCandidate(c)
		if rej != nil {
			summary.Reject(rej.Reason)
			metrics.ImportRecordsTotal.WithLabelValues("rejected").Inc()
			metrics.ImportRejectsTotal.WithLabelValues(string(rej.Reason)).Inc()
			logging.Debug("Candidate rejected",
				"reason", rej.Reason, "detail", rej.Detail, "line", c.LineNumber)
			continue
		}

		if m.Manufacturer == "" {
			if vendor, ok := listparser.GuessManufacturer(m.Name); ok {
				m.Manufacturer = vendor
			}
		}

		records = append(records, m)
		summary.Accepted++
		metrics.ImportRecordsTotal.WithLabelValues("accepted").Inc()
	}
	return records
}

func (im *Importer) finish(summary *entities.ImportSummary, stats *listparser.ScanStats, start time.Time) {
	summary.Duration = time.Since(start)
	metrics.ImportLinesTotal.Add(float64(stats.LinesRead))
	metrics.ImportDuration.Observe(summary.Duration.Seconds())
	metrics.ImportLastRun.SetToCurrentTime()
}

// SnapshotDateFromFilename extracts the list's effective date from a
// YYYYMMDD sequence in the filename, formatted as DD.MM.YYYY. Files
// without a date get the current day.
func SnapshotDateFromFilename(path string) string {
	if m := filenameDate.FindStringSubmatch(filepath.Base(path)); m != nil {
		return fmt.Sprintf("%s.%s.%s", m[3], m[2], m[1])
	}
	return time.Now().Format("02.01.2006")
}
