// Package store persists medication records in SQLite. Imports run as one
// writer in a single transaction, API reads may run concurrently.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/medpreis/festbetrag-api/interfaces"
	"github.com/medpreis/festbetrag-api/listparser/entities"
	"github.com/medpreis/festbetrag-api/logging"
)

// Compile-time check to ensure Store implements RecordStore
var _ interfaces.RecordStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS medications (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	pzn                TEXT NOT NULL,
	name               TEXT NOT NULL,
	manufacturer       TEXT NOT NULL DEFAULT '',
	active_ingredient  TEXT NOT NULL DEFAULT '',
	strength_primary   REAL,
	strength_secondary REAL,
	package_size       INTEGER NOT NULL DEFAULT 0,
	dosage_form        TEXT NOT NULL DEFAULT '',
	price_cents        INTEGER NOT NULL,
	festbetrag_cents   INTEGER,
	festbetrag_group   TEXT NOT NULL DEFAULT '',
	tier               INTEGER NOT NULL DEFAULT 0,
	snapshot_date      TEXT NOT NULL DEFAULT '',
	exempt             INTEGER NOT NULL DEFAULT 0,
	UNIQUE(pzn, package_size, dosage_form)
);
CREATE INDEX IF NOT EXISTS idx_medications_pzn ON medications(pzn);
CREATE INDEX IF NOT EXISTS idx_medications_ingredient ON medications(active_ingredient);
CREATE INDEX IF NOT EXISTS idx_medications_group ON medications(festbetrag_group);
CREATE INDEX IF NOT EXISTS idx_medications_name ON medications(name);
CREATE INDEX IF NOT EXISTS idx_medications_exempt ON medications(exempt);
`

const medicationColumns = `pzn, name, manufacturer, active_ingredient,
	strength_primary, strength_secondary, package_size, dosage_form,
	price_cents, festbetrag_cents, festbetrag_group, tier, snapshot_date, exempt`

// Store wraps the SQLite database holding the medication records.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// WAL lets API reads proceed while an import transaction is open
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks database reachability.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// UpsertBatch writes all records inside one transaction. A failed commit or
// I/O error rolls everything back, leaving the previous state intact. On a
// key conflict all fields are overwritten except the exemption flag, which
// earlier exemption imports own, unless overwriteExempt is set. Records the
// database rejects are skipped and reported in the conflict count.
func (s *Store) UpsertBatch(records []entities.Medication, overwriteExempt bool) (int, int, int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	selectStmt, err := tx.Prepare(`SELECT id FROM medications WHERE pzn = ? AND package_size = ? AND dosage_form = ?`)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to prepare select: %w", err)
	}
	defer selectStmt.Close()

	insertStmt, err := tx.Prepare(`INSERT INTO medications (` + medicationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insertStmt.Close()

	updateStmt, err := tx.Prepare(`UPDATE medications SET
		name = ?, manufacturer = ?, active_ingredient = ?,
		strength_primary = ?, strength_secondary = ?,
		price_cents = ?, festbetrag_cents = ?, festbetrag_group = ?,
		tier = ?, snapshot_date = ?,
		exempt = CASE WHEN ? THEN ? ELSE exempt END
		WHERE id = ?`)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to prepare update: %w", err)
	}
	defer updateStmt.Close()

	var inserted, updated, conflicts int
	for i := range records {
		m := &records[i]

		var id int64
		err := selectStmt.QueryRow(m.Pzn, m.PackageSize, m.DosageForm).Scan(&id)
		switch {
		case err == sql.ErrNoRows:
			_, err = insertStmt.Exec(
				m.Pzn, m.Name, m.Manufacturer, m.ActiveIngredient,
				nullFloat(m.StrengthPrimary), nullFloat(m.StrengthSecondary),
				m.PackageSize, m.DosageForm,
				int64(m.Price), nullCents(m.Festbetrag), m.FestbetragGroup,
				m.Tier, m.SnapshotDate, boolInt(m.Exempt))
			if err != nil {
				// record-level storage conflict: skip this record, keep the batch
				conflicts++
				logging.Warn("Record upsert failed", "pzn", m.Pzn, "error", err)
				continue
			}
			inserted++
		case err != nil:
			return 0, 0, 0, fmt.Errorf("failed to look up record %s: %w", m.Pzn, err)
		default:
			_, err = updateStmt.Exec(
				m.Name, m.Manufacturer, m.ActiveIngredient,
				nullFloat(m.StrengthPrimary), nullFloat(m.StrengthSecondary),
				int64(m.Price), nullCents(m.Festbetrag), m.FestbetragGroup,
				m.Tier, m.SnapshotDate,
				boolInt(overwriteExempt), boolInt(m.Exempt), id)
			if err != nil {
				conflicts++
				logging.Warn("Record update failed", "pzn", m.Pzn, "error", err)
				continue
			}
			updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to commit batch: %w", err)
	}

	if conflicts > 0 {
		logging.Warn("Batch finished with record conflicts", "conflicts", conflicts)
	}

	return inserted, updated, conflicts, nil
}

// ApplyExemptions flags every package variant of the listed PZNs as
// co-payment exempt, in one transaction so a failed run changes nothing.
// A non-empty manufacturer also updates the stored manufacturer, exemption
// lists often carry the vendor the price lists lack.
func (s *Store) ApplyExemptions(updates []entities.ExemptionUpdate, resetFirst bool) (int, int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if resetFirst {
		if _, err := tx.Exec(`UPDATE medications SET exempt = 0 WHERE exempt = 1`); err != nil {
			return 0, 0, fmt.Errorf("failed to reset exemption flags: %w", err)
		}
	}

	flagStmt, err := tx.Prepare(`UPDATE medications SET exempt = 1 WHERE pzn = ?`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare exemption update: %w", err)
	}
	defer flagStmt.Close()

	vendorStmt, err := tx.Prepare(`UPDATE medications SET exempt = 1, manufacturer = ? WHERE pzn = ?`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare exemption update: %w", err)
	}
	defer vendorStmt.Close()

	var updated, notFound int
	for _, u := range updates {
		var res sql.Result
		if u.Manufacturer != "" {
			res, err = vendorStmt.Exec(u.Manufacturer, u.Pzn)
		} else {
			res, err = flagStmt.Exec(u.Pzn)
		}
		if err != nil {
			return 0, 0, fmt.Errorf("failed to flag %s: %w", u.Pzn, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return 0, 0, fmt.Errorf("failed to read affected rows for %s: %w", u.Pzn, err)
		}
		if n == 0 {
			notFound++
		} else {
			updated += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit exemptions: %w", err)
	}

	return updated, notFound, nil
}

// ResetExemptFlags clears the exemption flag on every record and returns
// the number of rows affected.
func (s *Store) ResetExemptFlags() (int64, error) {
	res, err := s.db.Exec(`UPDATE medications SET exempt = 0 WHERE exempt = 1`)
	if err != nil {
		return 0, fmt.Errorf("failed to reset exemption flags: %w", err)
	}
	return res.RowsAffected()
}

// GetByPzn returns every package variant of a PZN, cheapest first.
func (s *Store) GetByPzn(pzn string) ([]entities.Medication, error) {
	return s.queryMedications(`SELECT `+medicationColumns+` FROM medications
		WHERE pzn = ? ORDER BY price_cents ASC`, pzn)
}

// SearchByPznPrefix returns records whose PZN starts with prefix.
func (s *Store) SearchByPznPrefix(prefix string, limit int) ([]entities.Medication, error) {
	return s.queryMedications(`SELECT `+medicationColumns+` FROM medications
		WHERE pzn LIKE ? ORDER BY price_cents ASC LIMIT ?`, prefix+"%", limit)
}

// SearchByName returns records whose name contains the query, case
// insensitive, cheapest first.
func (s *Store) SearchByName(query string, limit int) ([]entities.Medication, error) {
	return s.queryMedications(`SELECT `+medicationColumns+` FROM medications
		WHERE UPPER(name) LIKE '%' || UPPER(?) || '%'
		ORDER BY price_cents ASC LIMIT ?`, query, limit)
}

// SearchByIngredient returns records whose active ingredient contains the
// query, case insensitive, cheapest first.
func (s *Store) SearchByIngredient(query string, limit int) ([]entities.Medication, error) {
	return s.queryMedications(`SELECT `+medicationColumns+` FROM medications
		WHERE UPPER(active_ingredient) LIKE '%' || UPPER(?) || '%'
		ORDER BY price_cents ASC LIMIT ?`, query, limit)
}

// FindAlternatives returns substitutable records: same Festbetrag group,
// same strengths (both absent counts as equal, one absent does not), same
// package size and dosage form, excluding the record itself. Cheapest first.
func (s *Store) FindAlternatives(m entities.Medication, limit int) ([]entities.Medication, error) {
	if m.FestbetragGroup == "" {
		return nil, nil
	}
	return s.queryMedications(`SELECT `+medicationColumns+` FROM medications
		WHERE festbetrag_group = ?
		  AND strength_primary IS ?
		  AND strength_secondary IS ?
		  AND package_size = ?
		  AND dosage_form = ?
		  AND pzn != ?
		ORDER BY price_cents ASC LIMIT ?`,
		m.FestbetragGroup,
		nullFloat(m.StrengthPrimary), nullFloat(m.StrengthSecondary),
		m.PackageSize, m.DosageForm, m.Pzn, limit)
}

// Count returns the total number of records.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM medications`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// CountExempt returns the number of co-payment exempt records.
func (s *Store) CountExempt() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM medications WHERE exempt = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count exempt records: %w", err)
	}
	return n, nil
}

func (s *Store) queryMedications(query string, args ...any) ([]entities.Medication, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var result []entities.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	return result, nil
}

func scanMedication(rows *sql.Rows) (entities.Medication, error) {
	var m entities.Medication
	var strengthPrimary, strengthSecondary sql.NullFloat64
	var festbetrag sql.NullInt64
	var exempt int

	err := rows.Scan(&m.Pzn, &m.Name, &m.Manufacturer, &m.ActiveIngredient,
		&strengthPrimary, &strengthSecondary, &m.PackageSize, &m.DosageForm,
		&m.Price, &festbetrag, &m.FestbetragGroup, &m.Tier, &m.SnapshotDate, &exempt)
	if err != nil {
		return m, fmt.Errorf("failed to scan record: %w", err)
	}

	if strengthPrimary.Valid {
		m.StrengthPrimary = &strengthPrimary.Float64
	}
	if strengthSecondary.Valid {
		m.StrengthSecondary = &strengthSecondary.Float64
	}
	if festbetrag.Valid {
		c := entities.Cents(festbetrag.Int64)
		m.Festbetrag = &c
	}
	m.Exempt = exempt != 0

	return m, nil
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullCents(c *entities.Cents) any {
	if c == nil {
		return nil
	}
	return int64(*c)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
