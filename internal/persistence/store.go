// Package persistence owns the embedded single-file SQLite store for
// user-data submissions. SQLite serializes its own writes; callers get
// atomic single-row semantics and nothing stronger.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is RFC 3339 with a fixed-width nanosecond fraction. The
// created_at column is TEXT and ListRecords orders by it, so the encoding
// must sort lexicographically in chronological order; RFC3339Nano trims
// trailing zeros and breaks that for whole-second timestamps.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS user_data (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    budget          REAL NOT NULL,
    city            TEXT NOT NULL,
    investment_type TEXT NOT NULL,
    target_audience TEXT NOT NULL,
    created_at      TEXT NOT NULL
);`

// Record is one stored submission, as returned to API callers.
type Record struct {
	ID             int64     `json:"id"`
	Budget         float64   `json:"budget"`
	City           string    `json:"city"`
	InvestmentType string    `json:"investmentType"`
	TargetAudience string    `json:"targetAudience"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Fields are the caller-supplied columns of a submission.
type Fields struct {
	Budget         float64
	City           string
	InvestmentType string
	TargetAudience string
}

// Store wraps the SQLite handle for the user_data table.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the store at path and verifies it is healthy.
// A store that fails the health probe is assumed corrupted: the file is
// deleted and recreated empty. If even the fresh store cannot be opened,
// the error is returned and the caller should treat it as fatal.
func Open(path string) (*Store, error) {
	db, err := openAndVerify(path)
	if err == nil {
		return &Store{db: db, path: path}, nil
	}

	log.Printf("WARN: store at %s failed health probe (%v); recreating empty store", path, err)
	if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
		return nil, fmt.Errorf("remove corrupted store %s: %w", path, rmErr)
	}
	db, err = openAndVerify(path)
	if err != nil {
		return nil, fmt.Errorf("reinitialize store %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// openAndVerify opens the file, runs the integrity probe and ensures the
// schema exists. Any failure closes the handle before returning.
func openAndVerify(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	var result string
	if err := db.QueryRow(`PRAGMA integrity_check;`).Scan(&result); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("integrity check: %w", err)
	}
	if result != "ok" {
		_ = db.Close()
		return nil, fmt.Errorf("integrity check reported %q", result)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

// InsertRecord stores one submission and returns the row as persisted,
// including the generated id and timestamp.
func (s *Store) InsertRecord(ctx context.Context, f Fields) (Record, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO user_data (budget, city, investment_type, target_audience, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		f.Budget, f.City, f.InvestmentType, f.TargetAudience, now.Format(timeLayout))
	if err != nil {
		return Record{}, fmt.Errorf("insert user_data: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("insert user_data: last id: %w", err)
	}
	return Record{
		ID:             id,
		Budget:         f.Budget,
		City:           f.City,
		InvestmentType: f.InvestmentType,
		TargetAudience: f.TargetAudience,
		CreatedAt:      now,
	}, nil
}

// ListRecords returns all submissions, newest first. Rows sharing a
// timestamp fall back to id order so the sequence is stable.
func (s *Store) ListRecords(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, budget, city, investment_type, target_audience, created_at
		 FROM user_data
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list user_data: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			r  Record
			ts string
		)
		if err := rows.Scan(&r.ID, &r.Budget, &r.City, &r.InvestmentType, &r.TargetAudience, &ts); err != nil {
			return nil, fmt.Errorf("scan user_data row: %w", err)
		}
		created, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", ts, err)
		}
		r.CreatedAt = created
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list user_data: %w", err)
	}
	return records, nil
}

// Ping reports whether the underlying handle is still usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Path returns the store file location.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
