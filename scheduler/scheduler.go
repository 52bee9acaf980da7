// Package scheduler provides automated list import scheduling and health
// monitoring for the festbetrag API. It scans the import directory on a
// daily schedule, runs the importer for every list file it finds, and
// coordinates import runs with the status container using dependency injection.
package scheduler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/medpreis/festbetrag-api/interfaces"
	"github.com/medpreis/festbetrag-api/listparser/entities"
	"github.com/medpreis/festbetrag-api/logging"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles list imports and health monitoring using dependency injection
type Scheduler struct {
	records   interfaces.RecordStore
	status    interfaces.StatusStore
	importer  interfaces.Importer
	importDir string
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(records interfaces.RecordStore, status interfaces.StatusStore, importer interfaces.Importer, importDir string) *Scheduler {
	return &Scheduler{
		records:   records,
		status:    status,
		importer:  importer,
		importDir: importDir,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start runs an initial import pass and schedules the daily re-scan
func (s *Scheduler) Start() error {
	// Initial pass, tolerating an empty import directory on first boot
	if err := s.runImports(); err != nil {
		logging.Error("Initial import pass failed", "error", err)
	}

	// The lists are published monthly but the exact day varies, so the
	// directory is re-scanned every night
	_, err := s.scheduler.Every(1).Days().At("05:30").Do(func() {
		if err := s.runImports(); err != nil {
			logging.Error("Failed to run scheduled imports", "error", err)
		}
	})

	if err != nil {
		logging.Error("Failed to schedule imports", "error", err)
		return fmt.Errorf("failed to schedule imports: %w", err)
	}

	s.scheduler.StartAsync()

	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// runImports scans the import directory and imports every list file.
// Festbetrag lists are imported before exemption lists so the flags land
// on the records they reference.
func (s *Scheduler) runImports() error {
	if !s.status.BeginImport() {
		logging.Info("Import already in progress, skipping...")
		return nil
	}
	defer s.status.EndImport()

	logging.Info(fmt.Sprintf("Starting import pass at: %s", time.Now().Format(time.RFC3339)))
	start := time.Now()

	festbetrag, exemptions, err := s.listFiles()
	if err != nil {
		return fmt.Errorf("failed to scan import directory: %w", err)
	}
	if len(festbetrag) == 0 && len(exemptions) == 0 {
		logging.Info("No list files found", "dir", s.importDir)
		return s.refreshStatus(nil, start)
	}

	var last *entities.ImportSummary
	for _, path := range festbetrag {
		summary, err := s.importer.ImportFestbetragList(path)
		if err != nil {
			logging.Error("Festbetrag list import failed", "file", path, "error", err)
			continue
		}
		last = summary
	}

	for _, path := range exemptions {
		var summary *entities.ImportSummary
		var err error
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			summary, err = s.importer.ImportExemptionCSV(path, false)
		} else {
			summary, err = s.importer.ImportExemptionList(path)
		}
		if err != nil {
			logging.Error("Exemption list import failed", "file", path, "error", err)
			continue
		}
		last = summary
	}

	return s.refreshStatus(last, start)
}

// refreshStatus reloads the record counts from the store into the
// status container after an import pass
func (s *Scheduler) refreshStatus(summary *entities.ImportSummary, start time.Time) error {
	records, err := s.records.Count()
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}
	exempt, err := s.records.CountExempt()
	if err != nil {
		return fmt.Errorf("failed to count exempt records: %w", err)
	}
	s.status.UpdateStatus(summary, int64(records), int64(exempt))

	elapsed := time.Since(start)
	logging.Info("Import pass completed", "duration", elapsed.String(), "record_count", records, "exempt_count", exempt)
	return nil
}

// listFiles splits the import directory into Festbetrag and exemption
// lists. Exemption lists are recognized by name, everything else with a
// list extension counts as a Festbetrag list.
func (s *Scheduler) listFiles() (festbetrag, exemptions []string, err error) {
	dirEntries, err := os.ReadDir(s.importDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".txt" && ext != ".csv" {
			continue
		}
		path := filepath.Join(s.importDir, name)
		// CSV only exists for exemption lists
		if ext == ".csv" || isExemptionFile(name) {
			exemptions = append(exemptions, path)
		} else {
			festbetrag = append(festbetrag, path)
		}
	}

	// Oldest snapshot first so re-imports converge on the newest list
	sort.Strings(festbetrag)
	sort.Strings(exemptions)
	return festbetrag, exemptions, nil
}

func isExemptionFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "befreit") || strings.Contains(lower, "zuzahlung") || strings.Contains(lower, "exempt")
}

// startHealthMonitoring monitors the age of the imported data
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(6 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastImport := s.status.LastImport()
			if time.Since(lastImport) > 35*24*time.Hour {
				logging.Warn("Data hasn't been refreshed in over 35 days")
			}
		}
	}()
}
