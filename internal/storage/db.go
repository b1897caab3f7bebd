package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"ghgreport/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS factors (
  id INTEGER PRIMARY KEY,
  source TEXT NOT NULL,
  scope TEXT NOT NULL,
  unit TEXT NOT NULL,
  kgCo2ePerUnit REAL NOT NULL,
  standard TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(source, scope, unit)
);
CREATE INDEX IF NOT EXISTS idx_factors_source ON factors(source);

CREATE TABLE IF NOT EXISTS batches (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  sourceFile TEXT NOT NULL,
  format TEXT NOT NULL,
  hash TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'ingested',
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  batchId INTEGER NOT NULL,
  lineNo INTEGER NOT NULL,
  source TEXT,
  date TEXT,
  quantity TEXT,
  unit TEXT,
  location TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(batchId, lineNo),
  FOREIGN KEY(batchId) REFERENCES batches(id)
);

CREATE TABLE IF NOT EXISTS results (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  batchId INTEGER NOT NULL,
  lineNo INTEGER NOT NULL,
  canonicalSource TEXT NOT NULL,
  category TEXT,
  canonicalDate TEXT,
  qty REAL,
  canonicalUnit TEXT,
  quality TEXT NOT NULL,
  flagsJson TEXT NOT NULL,
  scope TEXT NOT NULL,
  rule TEXT,
  matchStatus TEXT NOT NULL,
  matchReason TEXT NOT NULL,
  factorId INTEGER,
  unitScale REAL NOT NULL DEFAULT 1,
  co2eKg REAL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(batchId, lineNo),
  FOREIGN KEY(batchId) REFERENCES batches(id)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  batchId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(batchId) REFERENCES batches(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// ReplaceFactors swaps the stored reference table wholesale. Factor IDs
// come from the loaded dataset so index keys stay stable.
func (d *DB) ReplaceFactors(list []internal.EmissionFactor) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM factors`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO factors (id, source, scope, unit, kgCo2ePerUnit, standard, updatedAt)
VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range list {
		if _, err := stmt.Exec(f.ID, f.Source, string(f.Scope), f.Unit, f.KgCO2ePerUnit, f.Standard); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListFactors() ([]internal.EmissionFactor, error) {
	rows, err := d.conn.Query(`
SELECT id, source, scope, unit, kgCo2ePerUnit, standard
FROM factors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.EmissionFactor
	for rows.Next() {
		var f internal.EmissionFactor
		var scope string
		if err := rows.Scan(&f.ID, &f.Source, &scope, &f.Unit, &f.KgCO2ePerUnit, &f.Standard); err != nil {
			return nil, err
		}
		f.Scope = internal.Scope(scope)
		out = append(out, f)
	}
	return out, rows.Err()
}

func (d *DB) InsertBatch(name, sourceFile, format, hash string) (internal.Batch, error) {
	_, err := d.conn.Exec(`
INSERT INTO batches (name, sourceFile, format, hash, status)
VALUES (?, ?, ?, ?, 'ingested')
ON CONFLICT(hash) DO UPDATE SET
  name=excluded.name,
  sourceFile=excluded.sourceFile,
  format=excluded.format,
  status='ingested',
  updatedAt=CURRENT_TIMESTAMP`, name, sourceFile, format, hash)
	if err != nil {
		return internal.Batch{}, err
	}
	return d.batchWhere(`hash = ?`, hash)
}

func (d *DB) BatchByID(id int) (internal.Batch, error) {
	return d.batchWhere(`id = ?`, id)
}

func (d *DB) batchWhere(cond string, arg any) (internal.Batch, error) {
	row := d.conn.QueryRow(`
SELECT id, name, sourceFile, format, hash, status, createdAt
FROM batches WHERE `+cond, arg)

	var b internal.Batch
	if err := row.Scan(&b.ID, &b.Name, &b.SourceFile, &b.Format, &b.Hash, &b.Status, &b.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return internal.Batch{}, fmt.Errorf("batch not found: %v", arg)
		}
		return internal.Batch{}, err
	}
	return b, nil
}

func (d *DB) ListBatchesByStatus(status string, limit int) ([]internal.Batch, error) {
	rows, err := d.conn.Query(`
SELECT id, name, sourceFile, format, hash, status, createdAt
FROM batches WHERE status = ? ORDER BY id LIMIT ?`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Batch
	for rows.Next() {
		var b internal.Batch
		if err := rows.Scan(&b.ID, &b.Name, &b.SourceFile, &b.Format, &b.Hash, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (d *DB) UpdateBatchStatus(id int, status string) error {
	_, err := d.conn.Exec(`
UPDATE batches SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	return err
}

func (d *DB) ReplaceRawRecords(batchID int, records []internal.RawRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM records WHERE batchId = ?`, batchID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO records (batchId, lineNo, source, date, quantity, unit, location)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(batchID, r.LineNo, r.Source, r.Date, r.Quantity, r.Unit, r.Location); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListRawRecords(batchID int) ([]internal.RawRecord, error) {
	rows, err := d.conn.Query(`
SELECT lineNo, source, date, quantity, unit, location
FROM records WHERE batchId = ? ORDER BY lineNo`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RawRecord
	for rows.Next() {
		var r internal.RawRecord
		if err := rows.Scan(&r.LineNo, &r.Source, &r.Date, &r.Quantity, &r.Unit, &r.Location); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) ClearBatchResults(batchID int) error {
	_, err := d.conn.Exec(`DELETE FROM results WHERE batchId = ?`, batchID)
	return err
}

func (d *DB) InsertResults(batchID int, records []internal.CalculatedRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO results (
  batchId, lineNo, canonicalSource, category, canonicalDate, qty, canonicalUnit,
  quality, flagsJson, scope, rule, matchStatus, matchReason, factorId, unitScale, co2eKg
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		flagsJSON, _ := json.Marshal(r.Flags)
		var factorID *int
		if r.Factor != nil {
			id := r.Factor.ID
			factorID = &id
		}
		if _, err := stmt.Exec(
			batchID, r.LineNo, r.CanonicalSource, r.Category, r.CanonicalDate, r.Qty, r.CanonicalUnit,
			string(r.Quality), string(flagsJSON), string(r.Scope), r.Rule,
			string(r.Status), string(r.Reason), factorID, r.UnitScale, r.CO2eKg,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetResults rebuilds the calculated record set for a batch in original
// input order, re-attaching stored factors.
func (d *DB) GetResults(batchID int) ([]internal.CalculatedRecord, error) {
	rows, err := d.conn.Query(`
SELECT
  rec.lineNo, rec.source, rec.date, rec.quantity, rec.unit, rec.location,
  res.canonicalSource, res.category, res.canonicalDate, res.qty, res.canonicalUnit,
  res.quality, res.flagsJson, res.scope, res.rule, res.matchStatus, res.matchReason,
  res.unitScale, res.co2eKg,
  f.id, f.source, f.scope, f.unit, f.kgCo2ePerUnit, f.standard
FROM results res
JOIN records rec ON rec.batchId = res.batchId AND rec.lineNo = res.lineNo
LEFT JOIN factors f ON f.id = res.factorId
WHERE res.batchId = ?
ORDER BY res.lineNo`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CalculatedRecord
	for rows.Next() {
		var r internal.CalculatedRecord
		var flagsJSON, quality, scope, status, reason string
		var rule sql.NullString
		var fID sql.NullInt64
		var fSource, fScope, fUnit, fStandard sql.NullString
		var fValue sql.NullFloat64

		if err := rows.Scan(
			&r.LineNo, &r.RawRecord.Source, &r.RawRecord.Date, &r.RawRecord.Quantity, &r.RawRecord.Unit, &r.Location,
			&r.CanonicalSource, &r.Category, &r.CanonicalDate, &r.Qty, &r.CanonicalUnit,
			&quality, &flagsJSON, &scope, &rule, &status, &reason,
			&r.UnitScale, &r.CO2eKg,
			&fID, &fSource, &fScope, &fUnit, &fValue, &fStandard,
		); err != nil {
			return nil, err
		}

		r.Quality = internal.DataQuality(quality)
		_ = json.Unmarshal([]byte(flagsJSON), &r.Flags)
		r.Scope = internal.Scope(scope)
		r.Rule = rule.String
		r.Status = internal.MatchStatus(status)
		r.Reason = internal.MatchReason(reason)

		if fID.Valid {
			r.Factor = &internal.EmissionFactor{
				ID:            int(fID.Int64),
				Source:        fSource.String,
				Scope:         internal.Scope(fScope.String),
				Unit:          fUnit.String,
				KgCO2ePerUnit: fValue.Float64,
				Standard:      fStandard.String,
			}
		}

		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(traceID string, batchID int, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`
INSERT INTO runs (traceId, batchId, timingsJson, countsJson)
VALUES (?, ?, ?, ?)`, traceID, batchID, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value, updatedAt) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updatedAt=CURRENT_TIMESTAMP`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	row := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &value, nil
}
