package persist

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver, no CGO required

	"github.com/ebph-project/ebphd/internal/domain"
)

// db wraps a SQLite connection, WAL-mode and migrated, that indexes the
// profile records Store writes to profiles/<key>.bin — so `ebphd list`/
// `show` can answer without reading every blob off disk.
type db struct {
	sql *sql.DB
}

func openDB(dir string) (*db, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "index.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	conn.SetMaxOpenConns(1) // SQLite is single-writer
	conn.SetMaxIdleConns(1)

	d := &db{sql: conn}
	if err := d.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

func (d *db) Close() error { return d.sql.Close() }

func (d *db) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS profile_index (
			profile_key   INTEGER PRIMARY KEY,
			exe_path      TEXT NOT NULL,
			status        INTEGER NOT NULL,
			train_count   INTEGER NOT NULL,
			normal_count  INTEGER NOT NULL,
			anomalies     INTEGER NOT NULL,
			sequences     INTEGER NOT NULL,
			last_saved    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_profile_index_status ON profile_index(status)`,
	}
	for _, m := range migrations {
		if _, err := d.sql.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// IndexRow is the summary the index keeps per profile — enough for the
// `ebphd list`/`show` commands without touching the blob.
type IndexRow struct {
	Key         domain.ProfileKey
	ExePath     string
	Status      uint8
	TrainCount  uint64
	NormalCount uint64
	Anomalies   uint64
	Sequences   uint64
	LastSaved   time.Time
}

func (d *db) Upsert(row IndexRow) error {
	_, err := d.sql.Exec(
		`INSERT INTO profile_index (profile_key, exe_path, status, train_count, normal_count, anomalies, sequences, last_saved)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(profile_key) DO UPDATE SET
			exe_path=excluded.exe_path,
			status=excluded.status,
			train_count=excluded.train_count,
			normal_count=excluded.normal_count,
			anomalies=excluded.anomalies,
			sequences=excluded.sequences,
			last_saved=excluded.last_saved`,
		uint64(row.Key), row.ExePath, row.Status, row.TrainCount,
		row.NormalCount, row.Anomalies, row.Sequences, row.LastSaved.Unix(),
	)
	return err
}

func (d *db) Delete(key domain.ProfileKey) error {
	result, err := d.sql.Exec(`DELETE FROM profile_index WHERE profile_key = ?`, uint64(key))
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (d *db) Get(key domain.ProfileKey) (*IndexRow, error) {
	row := d.sql.QueryRow(
		`SELECT profile_key, exe_path, status, train_count, normal_count, anomalies, sequences, last_saved
		 FROM profile_index WHERE profile_key = ?`, uint64(key))
	return scanRow(row)
}

func (d *db) List() ([]IndexRow, error) {
	rows, err := d.sql.Query(
		`SELECT profile_key, exe_path, status, train_count, normal_count, anomalies, sequences, last_saved
		 FROM profile_index ORDER BY last_saved DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IndexRow
	for rows.Next() {
		r, err := scanRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInto(s scanner) (*IndexRow, error) {
	var r IndexRow
	var key uint64
	var lastSaved int64
	if err := s.Scan(&key, &r.ExePath, &r.Status, &r.TrainCount, &r.NormalCount, &r.Anomalies, &r.Sequences, &lastSaved); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	r.Key = domain.ProfileKey(key)
	r.LastSaved = time.Unix(lastSaved, 0)
	return &r, nil
}

func scanRow(row *sql.Row) (*IndexRow, error)   { return scanInto(row) }
func scanRows(rows *sql.Rows) (*IndexRow, error) { return scanInto(rows) }
